package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

var (
	unsafeExpr = regexp.MustCompile(`[\\/:*?"<>|]`)
	spaceExpr  = regexp.MustCompile(`\s+`)
)

// Writer renders one Markdown report per feed per run into the output
// directory. The filename carries the sanitized journal name plus a
// second-precision run timestamp so consecutive runs never collide.
type Writer struct {
	dir   string
	clock ports.Clock
}

var _ ports.ReportSink = (*Writer)(nil)

// NewWriter wires the output directory with the injected clock.
func NewWriter(dir string, clock ports.Clock) *Writer {
	return &Writer{dir: dir, clock: clock}
}

// Write renders the report and returns the written path. The header embeds
// the feed's most recent "had new articles" date and the run date; an
// empty entry list produces the placeholder body instead of an error.
func (w *Writer) Write(journal, lastNewTS string, entries []domain.ReportEntry) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}

	now := w.clock.Now()
	name := fmt.Sprintf("rss_report_%s_%s.md", SanitizeFilename(journal), now.Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	lastNewDate := now.Format("2006-01-02")
	if lastNewTS != "" {
		lastNewDate, _, _ = strings.Cut(lastNewTS, "T")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s RSS Report — %s — %s\n\n", journal, lastNewDate, now.Format("2006-01-02"))

	if len(entries) == 0 {
		b.WriteString("No new articles today.\n")
	}

	for i, e := range entries {
		fmt.Fprintf(&b, "**%d. %s**\n\n", i+1, e.TitleEN)
		writeField(&b, "Title (ZH-CN)", e.TitleCN)
		writeField(&b, "Journal", e.Journal)
		writeField(&b, "Type", e.Type)
		writeField(&b, "Publication date", e.PubDate)
		writeField(&b, "DOI", e.DOI)
		writeField(&b, "Article URL", e.ArticleURL)
		if e.AbstractEN != "" {
			fmt.Fprintf(&b, "**Abstract (EN)**:\n\n%s\n\n", e.AbstractEN)
		}
		if e.AbstractCN != "" {
			fmt.Fprintf(&b, "**Abstract (ZH-CN)**:\n\n%s\n\n", e.AbstractCN)
		}
		b.WriteString("---\n\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "**%s**: %s\n\n", label, value)
	}
}

// SanitizeFilename strips characters that are unsafe in filenames and
// collapses whitespace to underscores.
func SanitizeFilename(s string) string {
	s = unsafeExpr.ReplaceAllString(s, "_")
	s = spaceExpr.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "report"
	}
	return s
}
