package ports

import (
	"context"
	"time"

	"FeedDigest/internal/domain"
)

// FetchResult is the outcome of one conditional feed retrieval. When the
// server reports not-modified the body is nil and NotModified is set; that
// is not an error. ETag/LastModified carry the validators returned by the
// server and are empty when the response omitted them.
type FetchResult struct {
	NotModified  bool
	Body         []byte
	ETag         string
	LastModified string
}

// FeedFetcher retrieves a feed body using the last known cache validators.
// The fetch itself is side-effect free; persisting the returned validators
// is the caller's job.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL, etag, lastModified string) (FetchResult, error)
}

// FeedParser turns a raw feed body into canonical items. An unrecognized
// dialect yields an empty slice, not an error.
type FeedParser interface {
	Parse(body []byte) ([]domain.CanonicalItem, error)
}

// ArticleExtractor fetches an article page and runs layered metadata
// extraction over it. Failures are per-item: the caller marks the item
// seen and moves on.
type ArticleExtractor interface {
	Extract(ctx context.Context, articleURL string) (domain.ExtractedMeta, error)
}

// DedupStore gates re-processing via the persistent seen-set.
type DedupStore interface {
	// FilterNew returns the subset of uids with no seen record, in input
	// order. It never mutates state.
	FilterNew(ctx context.Context, uids []string) ([]string, error)
	// MarkSeen inserts a seen record unless the uid already has one.
	// Calling it twice with the same uid is not an error.
	MarkSeen(ctx context.Context, rec domain.SeenRecord) error
	// LastNewTimestamp reports the most recent first-seen timestamp for a
	// feed, or the empty string when the feed has never produced one.
	LastNewTimestamp(ctx context.Context, feedURL string) (string, error)
}

// ArticleStore persists resolved article records keyed by uid.
type ArticleStore interface {
	// UpsertArticle overwrites all extracted fields and advances
	// last_updated_at; safe to call repeatedly with the same uid.
	UpsertArticle(ctx context.Context, rec domain.ArticleRecord) error
	// TopJournal returns the most frequent non-empty journal recorded for
	// the feed, used for report naming when a run finds nothing new.
	TopJournal(ctx context.Context, feedURL string) (string, error)
}

// FeedStateStore persists conditional-fetch validators per feed URL.
type FeedStateStore interface {
	FeedState(ctx context.Context, feedURL string) (domain.FeedCacheState, error)
	SaveFeedState(ctx context.Context, state domain.FeedCacheState) error
}

// Translator maps an ordered list of strings to same-length translations.
// The contract is passthrough: when unconfigured or failing it returns the
// originals instead of an error, and empty inputs map to empty outputs.
type Translator interface {
	Translate(ctx context.Context, texts []string) []string
}

// ReportSink writes the per-feed run artifact.
type ReportSink interface {
	Write(journal, lastNewTS string, entries []domain.ReportEntry) (string, error)
}

// Clock injects wall-clock reads so filenames and "last new" dates are
// deterministic under test.
type Clock interface {
	Now() time.Time
}
