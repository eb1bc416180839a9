package extract

import "github.com/PuerkitoBio/goquery"

// Title returns the visible text of the page's first <h1>, or "" when there is none.
func Title(doc *goquery.Document) string {
	return visibleText(doc.Find("h1").First())
}
