package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

// Extractor fetches article pages and distills metadata out of them by
// layered precedence: JSON-LD structured data, then citation meta tags,
// then a heuristic abstract search. Later layers only fill fields the
// earlier ones left empty.
type Extractor struct {
	client    *http.Client
	userAgent string
}

var _ ports.ArticleExtractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client; a nil client gets a 25s timeout default.
func NewExtractor(client *http.Client, userAgent string) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	return &Extractor{client: client, userAgent: userAgent}
}

// Extract downloads the article page and runs the extraction layers.
// Any transport or status failure is returned to the caller as a per-item
// failure; it must not abort the rest of the feed.
func (e *Extractor) Extract(ctx context.Context, articleURL string) (domain.ExtractedMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return domain.ExtractedMeta{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.ExtractedMeta{}, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.ExtractedMeta{}, fmt.Errorf("article returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.ExtractedMeta{}, fmt.Errorf("parse document: %w", err)
	}

	meta := extractFromDocument(doc)
	meta.ArticleURL = articleURL
	return meta, nil
}

// extractFromDocument applies the three extraction layers to a parsed page.
func extractFromDocument(doc *goquery.Document) domain.ExtractedMeta {
	var meta domain.ExtractedMeta

	if block, raw, ok := firstArticleBlock(doc); ok {
		meta.Title = domain.NormalizeText(block.title())
		meta.Abstract = domain.NormalizeText(block.abstract())
		meta.DatePublished = domain.NormalizeText(block.datePublished())
		meta.Journal = domain.NormalizeText(block.journal())
		meta.Type = domain.NormalizeText(block.ArticleSection)
		meta.DOI = domain.NormalizeText(block.Identifier.DOI())
		meta.RawStructured = raw
	}

	fillEmpty(&meta.Journal, metaContent(doc, "citation_journal_title"))
	fillEmpty(&meta.Title, metaContent(doc, "citation_title"))
	fillEmpty(&meta.DOI, metaContent(doc, "citation_doi"))
	fillEmpty(&meta.DatePublished, metaContent(doc, "citation_publication_date"))
	fillEmpty(&meta.Type, metaContent(doc, "citation_article_type"))
	fillEmpty(&meta.Abstract, metaContent(doc, "dc.description"))
	fillEmpty(&meta.Abstract, metaContent(doc, "description"))

	if meta.Abstract == "" {
		meta.Abstract = heuristicAbstract(doc)
	}

	return meta
}

// firstArticleBlock scans the embedded JSON-LD script blocks for the first
// object typed Article/ScholarlyArticle/NewsArticle. Top-level arrays are
// flattened; malformed blocks are skipped individually.
func firstArticleBlock(doc *goquery.Document) (articleBlock, string, bool) {
	var (
		found bool
		block articleBlock
		raw   string
	)

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		payload := []byte(s.Text())

		var objects []json.RawMessage
		if err := json.Unmarshal(payload, &objects); err != nil {
			var single json.RawMessage
			if err := json.Unmarshal(payload, &single); err != nil {
				return true
			}
			objects = []json.RawMessage{single}
		}

		for _, obj := range objects {
			var candidate articleBlock
			if err := json.Unmarshal(obj, &candidate); err != nil {
				continue
			}
			if candidate.isArticle() {
				found = true
				block = candidate
				raw = string(obj)
				return false
			}
		}
		return true
	})

	return block, raw, found
}

// metaContent reads the content attribute of a named meta tag.
func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First()
	content, _ := sel.Attr("content")
	return domain.NormalizeText(content)
}

// heuristicAbstract is the last extraction layer: a container whose id or
// class mentions "abstract", falling back to og:description.
func heuristicAbstract(doc *goquery.Document) string {
	var text string

	doc.Find("section, div, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if id, ok := s.Attr("id"); ok && strings.Contains(strings.ToLower(id), "abstract") {
			text = s.Text()
			return false
		}
		return true
	})

	if text == "" {
		doc.Find("section, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if class, ok := s.Attr("class"); ok && strings.Contains(strings.ToLower(class), "abstract") {
				text = s.Text()
				return false
			}
			return true
		})
	}

	if text == "" {
		content, _ := doc.Find(`meta[property="og:description"]`).First().Attr("content")
		text = content
	}

	return domain.NormalizeText(text)
}

func fillEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
