package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

var schemeExpr = regexp.MustCompile(`^https?://(www\.)?`)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher      ports.FeedFetcher
	Parser       ports.FeedParser
	Extractor    ports.ArticleExtractor
	Dedup        ports.DedupStore
	Articles     ports.ArticleStore
	FeedState    ports.FeedStateStore
	Translator   ports.Translator
	Reports      ports.ReportSink
	Clock        ports.Clock
	Logger       *slog.Logger
	SleepBetween time.Duration
}

// Pipeline runs the per-feed ingestion sequence: conditional fetch, parse,
// dedup filter, per-item extraction/translation/persistence, report.
// Execution is strictly sequential; per-feed and per-item failures are
// isolated and never abort the rest of the run.
type Pipeline struct {
	fetcher    ports.FeedFetcher
	parser     ports.FeedParser
	extractor  ports.ArticleExtractor
	dedup      ports.DedupStore
	articles   ports.ArticleStore
	feedState  ports.FeedStateStore
	translator ports.Translator
	reports    ports.ReportSink
	clock      ports.Clock
	logger     *slog.Logger
	sleep      time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:    deps.Fetcher,
		parser:     deps.Parser,
		extractor:  deps.Extractor,
		dedup:      deps.Dedup,
		articles:   deps.Articles,
		feedState:  deps.FeedState,
		translator: deps.Translator,
		reports:    deps.Reports,
		clock:      deps.Clock,
		logger:     deps.Logger,
		sleep:      deps.SleepBetween,
	}
}

// Run processes each configured feed once and returns the report paths
// that were written. Feeds that fail to fetch or parse produce no report.
func (p *Pipeline) Run(ctx context.Context, feeds []string) []string {
	logger := p.logger.With("run_id", uuid.NewString())

	var written []string
	for _, feedURL := range feeds {
		if path, ok := p.processFeed(ctx, logger.With("feed", feedURL), feedURL); ok {
			written = append(written, path)
		}
	}
	return written
}

func (p *Pipeline) processFeed(ctx context.Context, logger *slog.Logger, feedURL string) (string, bool) {
	state, err := p.feedState.FeedState(ctx, feedURL)
	if err != nil {
		logger.Warn("load feed state failed", "error", err)
		return "", false
	}

	result, err := p.fetcher.Fetch(ctx, feedURL, state.ETag, state.LastModified)
	if err != nil {
		logger.Warn("fetch feed failed", "error", err)
		return "", false
	}

	next := domain.FeedCacheState{FeedURL: feedURL, LastCheckedAt: p.nowTS()}
	if result.NotModified {
		next.ETag = state.ETag
		next.LastModified = state.LastModified
	} else {
		next.ETag = result.ETag
		next.LastModified = result.LastModified
	}
	if err := p.feedState.SaveFeedState(ctx, next); err != nil {
		logger.Warn("save feed state failed", "error", err)
	}

	var items []domain.CanonicalItem
	if result.NotModified {
		logger.Info("feed not modified")
	} else {
		items, err = p.parser.Parse(result.Body)
		if err != nil {
			logger.Warn("parse feed failed", "error", err)
			return "", false
		}
		logger.Info("feed parsed", "items", len(items))
	}

	entries := p.processItems(ctx, logger, feedURL, items)

	journal := p.resolveJournal(ctx, logger, feedURL, entries)
	lastNew, err := p.dedup.LastNewTimestamp(ctx, feedURL)
	if err != nil {
		logger.Warn("load last-new timestamp failed", "error", err)
	}
	if lastNew == "" {
		lastNew = p.nowTS()
	}

	path, err := p.reports.Write(journal, lastNew, entries)
	if err != nil {
		logger.Warn("write report failed", "error", err)
		return "", false
	}

	logger.Info("report written", "path", path, "new_articles", len(entries))
	return path, true
}

func (p *Pipeline) processItems(ctx context.Context, logger *slog.Logger, feedURL string, items []domain.CanonicalItem) []domain.ReportEntry {
	uids := make([]string, len(items))
	for i, item := range items {
		uids[i] = domain.ComputeUID(item)
	}

	freshUIDs, err := p.dedup.FilterNew(ctx, uids)
	if err != nil {
		logger.Warn("dedup filter failed", "error", err)
		return nil
	}
	fresh := make(map[string]bool, len(freshUIDs))
	for _, uid := range freshUIDs {
		fresh[uid] = true
	}

	var entries []domain.ReportEntry
	for i, item := range items {
		uid := uids[i]
		if !fresh[uid] {
			continue
		}
		// A uid repeated inside one body is collapsed to its first item.
		fresh[uid] = false

		if entry, ok := p.processItem(ctx, logger, feedURL, uid, item); ok {
			entries = append(entries, entry)
		}
		p.pause()
	}
	return entries
}

// processItem extracts, translates, and persists one newly seen item.
// An unreachable article is still marked seen so it is not retried on
// every subsequent run, but no article record is written for it.
func (p *Pipeline) processItem(ctx context.Context, logger *slog.Logger, feedURL, uid string, item domain.CanonicalItem) (domain.ReportEntry, bool) {
	meta, err := p.extractor.Extract(ctx, item.Link)
	if err != nil {
		logger.Warn("fetch article failed", "url", item.Link, "error", err)
		p.markSeen(ctx, logger, domain.SeenRecord{
			UID:     uid,
			FeedURL: feedURL,
			// feed-level data is all we have for the seen row
			ArticleURL: item.Link,
			DOI:        item.DOI,
			PubDate:    item.PubDate,
		})
		return domain.ReportEntry{}, false
	}

	// Feed-supplied values are the last-resort fallback behind all three
	// extraction layers.
	titleEN := firstNonEmpty(meta.Title, item.Title)
	pubDate := firstNonEmpty(meta.DatePublished, item.PubDate)
	doi := firstNonEmpty(meta.DOI, item.DOI)
	articleURL := firstNonEmpty(meta.ArticleURL, item.Link)

	translated := p.translator.Translate(ctx, []string{titleEN, meta.Abstract})
	titleCN, abstractCN := translated[0], translated[1]

	now := p.nowTS()
	rec := domain.ArticleRecord{
		UID:           uid,
		FeedURL:       feedURL,
		Journal:       meta.Journal,
		TitleEN:       titleEN,
		TitleCN:       titleCN,
		Type:          meta.Type,
		PubDate:       pubDate,
		DOI:           doi,
		ArticleURL:    articleURL,
		AbstractEN:    meta.Abstract,
		AbstractCN:    abstractCN,
		RawStructured: meta.RawStructured,
		FetchedAt:     now,
		LastUpdatedAt: now,
	}
	if err := p.articles.UpsertArticle(ctx, rec); err != nil {
		// Leave the uid unseen so the next run retries the whole item.
		logger.Warn("persist article failed", "uid", uid, "error", err)
		return domain.ReportEntry{}, false
	}

	p.markSeen(ctx, logger, domain.SeenRecord{
		UID:        uid,
		FeedURL:    feedURL,
		ArticleURL: articleURL,
		DOI:        doi,
		PubDate:    pubDate,
	})

	return domain.ReportEntry{
		UID:        uid,
		Journal:    meta.Journal,
		TitleEN:    titleEN,
		TitleCN:    titleCN,
		Type:       meta.Type,
		PubDate:    pubDate,
		DOI:        doi,
		ArticleURL: articleURL,
		AbstractEN: meta.Abstract,
		AbstractCN: abstractCN,
	}, true
}

func (p *Pipeline) markSeen(ctx context.Context, logger *slog.Logger, rec domain.SeenRecord) {
	rec.FirstSeenAt = p.nowTS()
	if err := p.dedup.MarkSeen(ctx, rec); err != nil {
		logger.Warn("mark seen failed", "uid", rec.UID, "error", err)
	}
}

// resolveJournal names the report: majority journal among this run's new
// articles, else the feed's historical top journal, else the feed host.
func (p *Pipeline) resolveJournal(ctx context.Context, logger *slog.Logger, feedURL string, entries []domain.ReportEntry) string {
	if j := majorityJournal(entries); j != "" {
		return j
	}

	j, err := p.articles.TopJournal(ctx, feedURL)
	if err != nil {
		logger.Warn("load historical journal failed", "error", err)
	}
	if j != "" {
		return j
	}

	if host := feedHost(feedURL); host != "" {
		return host
	}
	return "UnknownJournal"
}

func majorityJournal(entries []domain.ReportEntry) string {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if e.Journal == "" {
			continue
		}
		if counts[e.Journal] == 0 {
			order = append(order, e.Journal)
		}
		counts[e.Journal]++
	}

	best := ""
	for _, j := range order {
		if best == "" || counts[j] > counts[best] {
			best = j
		}
	}
	return best
}

func feedHost(feedURL string) string {
	stripped := schemeExpr.ReplaceAllString(feedURL, "")
	host, _, _ := strings.Cut(stripped, "/")
	return host
}

func (p *Pipeline) nowTS() string {
	return p.clock.Now().Format(time.RFC3339)
}

func (p *Pipeline) pause() {
	if p.sleep > 0 {
		time.Sleep(p.sleep)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
