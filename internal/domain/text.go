package domain

import (
	"html"
	"regexp"
	"strings"
)

var (
	wsExpr  = regexp.MustCompile(`\s+`)
	doiExpr = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"']+`)
)

// NormalizeText entity-unescapes a string and collapses runs of whitespace
// into single spaces. An empty result means the field is absent.
func NormalizeText(s string) string {
	s = html.UnescapeString(s)
	return strings.TrimSpace(wsExpr.ReplaceAllString(s, " "))
}

// GuessDOI scans the candidates in order for the first DOI-shaped substring
// (10.<4-9 digits>/<non-whitespace>), trimmed of trailing punctuation.
// Returns the empty string when nothing matches.
func GuessDOI(candidates ...string) string {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if m := doiExpr.FindString(s); m != "" {
			return strings.TrimRight(m, ").,;")
		}
	}
	return ""
}
