package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// dateStrategy is one source of a publish instant.
type dateStrategy func(doc *goquery.Document) (time.Time, bool)

// publishedStrategies are tried in order; the first success wins.
var publishedStrategies = []dateStrategy{
	metaPublishedAt,
	linkedDataPublishedAt,
	timeElementPublishedAt,
	pageTextPublishedAt,
}

// publishedMetaNames are matched against both the property and name attributes of <meta>.
var publishedMetaNames = []string{
	"article:published_time",
	"og:article:published_time",
	"published_time",
}

var humanDatePattern = regexp.MustCompile(
	`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`,
)

const humanDateLayout = "January 2, 2006"

// isoDatePattern is the leading calendar date every accepted machine timestamp
// carries. It keeps bare years, run-together digits and unix seconds out of dateparse.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]|$)`)

// PublishedAt returns the article's publish instant, or false when no source yields one.
func PublishedAt(doc *goquery.Document) (time.Time, bool) {
	for _, strategy := range publishedStrategies {
		if t, ok := strategy(doc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func metaPublishedAt(doc *goquery.Document) (time.Time, bool) {
	for _, name := range publishedMetaNames {
		sel := doc.Find(`meta[property="` + name + `"], meta[name="` + name + `"]`).First()
		content, ok := sel.Attr("content")
		if !ok {
			continue
		}
		if t, ok := parseISO(content); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func linkedDataPublishedAt(doc *goquery.Document) (time.Time, bool) {
	for _, obj := range linkedDataArticles(doc) {
		value, ok := stringField(obj, "datePublished")
		if !ok {
			value, ok = stringField(obj, "dateCreated")
		}
		if !ok {
			continue
		}
		if t, ok := parseISO(value); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func timeElementPublishedAt(doc *goquery.Document) (time.Time, bool) {
	el := doc.Find("time").First()
	if el.Length() == 0 {
		return time.Time{}, false
	}

	if attr, ok := el.Attr("datetime"); ok {
		if t, ok := parseISO(attr); ok {
			return t, true
		}
	}

	return parseHumanDate(visibleText(el))
}

func pageTextPublishedAt(doc *goquery.Document) (time.Time, bool) {
	return parseHumanDate(visibleText(doc.Selection))
}

// parseISO parses an ISO-8601 date or timestamp. Values without an offset are UTC.
func parseISO(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if !isoDatePattern.MatchString(value) {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseHumanDate finds the first "September 10, 2025" style date in text and
// returns midnight UTC of that day.
func parseHumanDate(text string) (time.Time, bool) {
	match := humanDatePattern.FindString(text)
	if match == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(humanDateLayout, strings.Join(strings.Fields(match), " "))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
