package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const linkedDataSelector = `script[type="application/ld+json"]`

// articleTypes are the schema.org types treated as an article.
var articleTypes = map[string]bool{
	"NewsArticle":          true,
	"Article":              true,
	"BlogPosting":          true,
	"ReportageNewsArticle": true,
}

// linkedDataArticles returns every article object found in the page's JSON-LD
// blocks, in document order. Blocks that are not valid JSON are skipped.
func linkedDataArticles(doc *goquery.Document) []map[string]any {
	var out []map[string]any

	doc.Find(linkedDataSelector).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}

		collectArticles(data, &out)
	})

	return out
}

func collectArticles(v any, out *[]map[string]any) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectArticles(item, out)
		}
	case map[string]any:
		if isArticleType(t["@type"]) {
			*out = append(*out, t)
		}
		if graph, ok := t["@graph"]; ok {
			collectArticles(graph, out)
		}
	}
}

// isArticleType accepts both "@type": "NewsArticle" and "@type": ["NewsArticle", ...].
func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

// stringField returns obj[key] when it is a non-blank string.
func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
