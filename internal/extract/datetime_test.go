package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestPublishedAt_MetaTag(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<meta property="article:published_time" content="2025-09-10T08:00:00Z">
		<script type="application/ld+json">{"@type":"NewsArticle","datePublished":"2024-01-01T00:00:00Z"}</script>
	</head><body><time datetime="2023-05-05T00:00:00Z">May 5, 2023</time></body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC)), "got %s", got)
}

func TestPublishedAt_MetaNameAttribute(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<meta name="published_time" content="2025-09-10T08:00:00+02:00">
	</head><body></body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 9, 10, 6, 0, 0, 0, time.UTC)), "got %s", got)
}

func TestPublishedAt_LinkedDataWhenMetaMissing(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<script type="application/ld+json">{"@type":"NewsArticle","datePublished":"2025-09-10T08:00:00+09:00"}</script>
	</head><body></body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 9, 9, 23, 0, 0, 0, time.UTC)), "got %s", got)
}

func TestPublishedAt_LinkedDataGraphAndTypeArray(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<script type="application/ld+json">{
			"@context": "https://schema.org",
			"@graph": [
				{"@type": "WebPage", "datePublished": "2020-01-01T00:00:00Z"},
				{"@type": ["BlogPosting"], "dateCreated": "2025-09-10T01:02:03Z"}
			]
		}</script>
	</head><body></body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 9, 10, 1, 2, 3, 0, time.UTC)), "got %s", got)
}

func TestPublishedAt_MalformedLinkedDataFallsThrough(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<meta property="article:published_time" content="not a date">
		<script type="application/ld+json">{"@type": "NewsArticle", "datePublished": </script>
	</head><body><time datetime="2025-09-10T12:00:00Z">whenever</time></body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)), "got %s", got)
}

func TestPublishedAt_TimeElementTextFallback(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<time datetime="garbage">Posted September 10, 2025</time>
	</body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestPublishedAt_BareYearAttributeFallsBackToText(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<time datetime="2025">Posted September 10, 2025</time>
	</body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestPublishedAt_UnixSecondsMetaIgnored(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<meta property="article:published_time" content="1757491200">
	</head><body><p>No other dates.</p></body></html>`)

	_, ok := PublishedAt(doc)
	assert.False(t, ok)
}

func TestPublishedAt_PageTextFallback(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="byline">By Someone · September 10, 2025</div>
		<p>Body text.</p>
	</body></html>`)

	got, ok := PublishedAt(doc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestPublishedAt_NothingFound(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>No dates here.</p></body></html>`)

	_, ok := PublishedAt(doc)
	assert.False(t, ok)
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{"utc designator", "2025-09-10T08:00:00Z", time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC), true},
		{"offset", "2025-09-10T17:00:00+09:00", time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC), true},
		{"naive is utc", "2025-09-10 08:00:00", time.Date(2025, 9, 10, 8, 0, 0, 0, time.UTC), true},
		{"date only", " 2025-09-10 ", time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), true},
		{"bare year", "2025", time.Time{}, false},
		{"run-together digits", "20250910", time.Time{}, false},
		{"unix seconds", "1757491200", time.Time{}, false},
		{"human date", "September 10, 2025", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseISO(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseHumanDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{"plain", "September 10, 2025", time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), true},
		{"extra whitespace", "March  3,   2024 at noon", time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), true},
		{"first of several", "June 1, 2020 and July 2, 2021", time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"impossible day", "February 30, 2025", time.Time{}, false},
		{"abbreviated month", "Sep 10, 2025", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseHumanDate(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
