package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// containerSelectors lists likely article containers, most specific first.
// The whole document is used when none match.
var containerSelectors = []string{
	"article",
	"div.article-content",
	"div[data-component='ArticleBody']",
	"main article",
	"main",
}

// excludedRegions are ancestors that mark a paragraph as page furniture.
const excludedRegions = "aside, figcaption, nav, footer"

const minParagraphRunes = 2

// BodyOptions tunes paragraph collection.
type BodyOptions struct {
	// MaxParagraphs keeps only the first N paragraphs; 0 keeps all.
	MaxParagraphs int
	// Denylist drops paragraphs whose lowercase text contains any entry.
	Denylist []string
}

// Body returns the article body as plain text. It prefers a JSON-LD articleBody and
// falls back to the paragraphs of the main content container. The result may be empty.
func Body(doc *goquery.Document, opts BodyOptions) string {
	if body, ok := linkedDataBody(doc); ok {
		return body
	}
	return Paragraphs(doc, opts)
}

func linkedDataBody(doc *goquery.Document) (string, bool) {
	for _, obj := range linkedDataArticles(doc) {
		if body, ok := stringField(obj, "articleBody"); ok {
			return body, true
		}
	}
	return "", false
}

// Paragraphs joins the content paragraphs of the main container with blank lines.
func Paragraphs(doc *goquery.Document, opts BodyOptions) string {
	denylist := make([]string, 0, len(opts.Denylist))
	for _, d := range opts.Denylist {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			denylist = append(denylist, d)
		}
	}

	var paras []string

	contentContainer(doc).Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if p.ParentsFiltered(excludedRegions).Length() > 0 {
			return true
		}

		text := visibleText(p)
		if utf8.RuneCountInString(text) < minParagraphRunes || denied(text, denylist) {
			return true
		}

		paras = append(paras, text)
		return opts.MaxParagraphs <= 0 || len(paras) < opts.MaxParagraphs
	})

	return strings.Join(paras, "\n\n")
}

func contentContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range containerSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

func denied(text string, denylist []string) bool {
	lowered := strings.ToLower(text)
	for _, d := range denylist {
		if strings.Contains(lowered, d) {
			return true
		}
	}
	return false
}
