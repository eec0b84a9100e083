package domain

// CanonicalItem is the dialect-independent shape a feed entry is normalized
// into before deduplication and extraction. All fields are optional; the
// empty string means absent.
type CanonicalItem struct {
	Title   string
	Link    string
	IDLike  string
	PubDate string
	DOI     string
	Journal string
}

// ExtractedMeta holds metadata pulled from an article page by the layered
// extraction chain (structured data, meta tags, heuristic search).
type ExtractedMeta struct {
	Title         string
	Abstract      string
	DatePublished string
	Journal       string
	Type          string
	DOI           string
	ArticleURL    string
	RawStructured string
}

// FeedCacheState carries the cache validators persisted per feed URL.
type FeedCacheState struct {
	FeedURL       string
	ETag          string
	LastModified  string
	LastCheckedAt string
}

// SeenRecord marks a uid as processed. Rows are append-only: once inserted
// they are never mutated or deleted.
type SeenRecord struct {
	UID         string
	FeedURL     string
	ArticleURL  string
	DOI         string
	PubDate     string
	FirstSeenAt string
}

// ArticleRecord is the persisted, mutable record for one article uid.
type ArticleRecord struct {
	UID           string
	FeedURL       string
	Journal       string
	TitleEN       string
	TitleCN       string
	Type          string
	PubDate       string
	DOI           string
	ArticleURL    string
	AbstractEN    string
	AbstractCN    string
	RawStructured string
	FetchedAt     string
	LastUpdatedAt string
}

// ReportEntry is one newly discovered article rendered into a feed report.
type ReportEntry struct {
	UID        string
	Journal    string
	TitleEN    string
	TitleCN    string
	Type       string
	PubDate    string
	DOI        string
	ArticleURL string
	AbstractEN string
	AbstractCN string
}
