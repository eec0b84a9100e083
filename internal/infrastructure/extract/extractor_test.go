package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestStructuredDataWinsOverMetaTags(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><head>
		<meta name="citation_title" content="Meta title"/>
		<meta name="citation_doi" content="10.9999/meta"/>
		<script type="application/ld+json">{
			"@type": "ScholarlyArticle",
			"headline": "Structured title",
			"abstract": "Structured abstract",
			"datePublished": "2026-08-29",
			"isPartOf": {"name": "Nature"},
			"identifier": "doi:10.1038/structured"
		}</script>
	</head><body></body></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "Structured title", meta.Title)
	assert.Equal(t, "Structured abstract", meta.Abstract)
	assert.Equal(t, "2026-08-29", meta.DatePublished)
	assert.Equal(t, "Nature", meta.Journal)
	assert.Equal(t, "10.1038/structured", meta.DOI)
	assert.Contains(t, meta.RawStructured, "Structured title")
}

func TestIdentifierList(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><head>
		<script type="application/ld+json">{
			"@type": "Article",
			"name": "Listed",
			"identifier": ["https://doi.org/10.1000/xyz", "other"]
		}</script>
	</head></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "10.1000/xyz", meta.DOI)
}

func TestIdentifierObjectVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, ident, want string
	}{
		{"single object value", `{"@type": "PropertyValue", "value": "doi:10.1000/obj"}`, "10.1000/obj"},
		{"single object id", `{"@id": "https://doi.org/10.1000/objid"}`, "10.1000/objid"},
		{"list of objects", `[{"value": "issn:0028-0836"}, {"value": "10.1000/listed"}]`, "10.1000/listed"},
		{"absent", `null`, ""},
		{"no doi shape", `"issn:0028-0836"`, ""},
	}

	for _, c := range cases {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">{
			"@type": "Article", "name": "X", "identifier": `+c.ident+`}</script></head></html>`)
		assert.Equal(t, c.want, extractFromDocument(doc).DOI, c.name)
	}
}

func TestTypeListAndTopLevelArray(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><head>
		<script type="application/ld+json">[
			{"@type": "Organization", "name": "Publisher Inc"},
			{"@type": ["NewsArticle", "Article"], "headline": "From array"}
		]</script>
	</head></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "From array", meta.Title)
}

func TestMalformedBlockSkipped(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><head>
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">{"@type": "Article", "headline": "Good block"}</script>
	</head></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "Good block", meta.Title)
}

func TestMetaTagsFillRemainingFields(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><head>
		<script type="application/ld+json">{"@type": "Article", "headline": "Structured title"}</script>
		<meta name="citation_journal_title" content="Science"/>
		<meta name="citation_title" content="Meta title"/>
		<meta name="citation_doi" content="10.1126/science.meta"/>
		<meta name="citation_publication_date" content="2026/08/28"/>
		<meta name="citation_article_type" content="Research Article"/>
		<meta name="description" content="Meta description"/>
	</head></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "Structured title", meta.Title, "structured layer holds the field it filled")
	assert.Equal(t, "Science", meta.Journal)
	assert.Equal(t, "10.1126/science.meta", meta.DOI)
	assert.Equal(t, "2026/08/28", meta.DatePublished)
	assert.Equal(t, "Research Article", meta.Type)
	assert.Equal(t, "Meta description", meta.Abstract)
}

func TestHeuristicAbstractByID(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><body>
		<section id="abstract-section">Background: heuristics still matter.</section>
	</body></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "Background: heuristics still matter.", meta.Abstract)
}

func TestHeuristicAbstractByClass(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><body>
		<div class="c-article-Abstract body">Class-carried abstract text.</div>
	</body></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "Class-carried abstract text.", meta.Abstract)
}

func TestHeuristicAbstractOGFallback(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><head>
		<meta property="og:description" content="OpenGraph description."/>
	</head><body><p>No abstract container here.</p></body></html>`)

	meta := extractFromDocument(doc)
	assert.Equal(t, "OpenGraph description.", meta.Abstract)
}

func TestExtractFetchesPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><head>
			<script type="application/ld+json">{"@type": "Article", "headline": "Served"}</script>
		</head></html>`))
	}))
	defer srv.Close()

	meta, err := NewExtractor(srv.Client(), "test-agent").Extract(context.Background(), srv.URL+"/articles/1")
	require.NoError(t, err)
	assert.Equal(t, "Served", meta.Title)
	assert.Equal(t, srv.URL+"/articles/1", meta.ArticleURL)
}

func TestExtractFailsOnErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewExtractor(srv.Client(), "test-agent").Extract(context.Background(), srv.URL)
	require.Error(t, err)
}
