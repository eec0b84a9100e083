package feed

import (
	"encoding/xml"
	"fmt"
	"log/slog"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

// Feed namespaces consumed by the dialect parsers.
const (
	nsRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRSS1  = "http://purl.org/rss/1.0/"
	nsDC    = "http://purl.org/dc/elements/1.1/"
	nsPrism = "http://prismstandard.org/namespaces/basic/2.0/"
	nsAtom  = "http://www.w3.org/2005/Atom"
)

// Parser detects the feed dialect from the decoded root element and runs
// the matching parser from a closed set of dialect implementations.
type Parser struct {
	logger *slog.Logger
}

var _ ports.FeedParser = (*Parser)(nil)

// NewParser builds a parser; logger may be nil.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse decodes the feed body and produces canonical items. An
// unrecognized root element degrades to zero items with a warning; only
// malformed XML is an error.
func (p *Parser) Parse(body []byte) ([]domain.CanonicalItem, error) {
	var root node
	if err := xml.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decode feed xml: %w", err)
	}

	d := detectDialect(&root)
	if d == nil {
		if p.logger != nil {
			p.logger.Warn("unrecognized feed dialect", "root", root.XMLName.Local)
		}
		return []domain.CanonicalItem{}, nil
	}

	return d.items(&root), nil
}

// dialect is the closed contract all feed dialect parsers implement.
type dialect interface {
	items(root *node) []domain.CanonicalItem
}

func detectDialect(root *node) dialect {
	switch {
	case root.XMLName.Local == "RDF" || root.child(nsRSS1, "channel") != nil:
		return rdfDialect{}
	case root.XMLName.Local == "rss" || root.child("", "channel") != nil:
		return rss2Dialect{}
	case root.XMLName.Local == "feed" || len(root.childrenAnyNS("entry")) > 0:
		return atomDialect{}
	default:
		return nil
	}
}

// rdfDialect handles RDF-rooted RSS 1.0 feeds (science publishers with
// prism/dc extensions).
type rdfDialect struct{}

func (rdfDialect) items(root *node) []domain.CanonicalItem {
	var items []domain.CanonicalItem
	for _, item := range root.children(nsRSS1, "item") {
		link := item.childText(nsRSS1, "link")
		about := item.attr(nsRDF, "about")
		identifier := item.childText(nsDC, "identifier")

		doi := item.childText(nsPrism, "doi")
		if doi == "" {
			doi = domain.GuessDOI(identifier, link)
		}

		items = append(items, normalize(domain.CanonicalItem{
			Title:   firstNonEmpty(item.childText(nsRSS1, "title"), item.childText(nsDC, "title")),
			Link:    link,
			IDLike:  firstNonEmpty(about, identifier, link),
			PubDate: item.childText(nsDC, "date"),
			DOI:     doi,
			Journal: item.childText(nsPrism, "publicationName"),
		}))
	}
	return items
}

// rss2Dialect handles plain RSS 2.0 channels. The dialect has no explicit
// DOI field, so the DOI is a best-effort scan over guid/description/link.
type rss2Dialect struct{}

func (rss2Dialect) items(root *node) []domain.CanonicalItem {
	channel := root.child("", "channel")
	if channel == nil {
		return nil
	}

	var items []domain.CanonicalItem
	for _, item := range channel.children("", "item") {
		link := item.childText("", "link")
		guid := item.childText("", "guid")

		items = append(items, normalize(domain.CanonicalItem{
			Title:   firstNonEmpty(item.childText("", "title"), item.childText(nsDC, "title")),
			Link:    link,
			IDLike:  firstNonEmpty(guid, link),
			PubDate: firstNonEmpty(item.childText("", "pubDate"), item.childText(nsDC, "date")),
			DOI:     domain.GuessDOI(guid, item.childText("", "description"), link),
		}))
	}
	return items
}

// atomDialect handles Atom feeds, with or without namespace prefixes.
type atomDialect struct{}

func (atomDialect) items(root *node) []domain.CanonicalItem {
	var items []domain.CanonicalItem
	for _, entry := range root.childrenAnyNS("entry") {
		link := atomLink(entry)
		id := entry.childTextAnyNS("id")

		items = append(items, normalize(domain.CanonicalItem{
			Title:   entry.childTextAnyNS("title"),
			Link:    link,
			IDLike:  firstNonEmpty(id, link),
			PubDate: firstNonEmpty(entry.childTextAnyNS("published"), entry.childTextAnyNS("updated")),
			DOI:     domain.GuessDOI(id, link),
		}))
	}
	return items
}

// atomLink prefers the rel="alternate" link element, then any link.
func atomLink(entry *node) string {
	links := entry.childrenAnyNS("link")
	for _, l := range links {
		if l.attr("", "rel") == "alternate" {
			return l.attr("", "href")
		}
	}
	if len(links) > 0 {
		return links[0].attr("", "href")
	}
	return ""
}

func normalize(item domain.CanonicalItem) domain.CanonicalItem {
	item.Title = domain.NormalizeText(item.Title)
	item.Link = domain.NormalizeText(item.Link)
	item.IDLike = domain.NormalizeText(item.IDLike)
	item.PubDate = domain.NormalizeText(item.PubDate)
	item.DOI = domain.NormalizeText(item.DOI)
	item.Journal = domain.NormalizeText(item.Journal)
	return item
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
