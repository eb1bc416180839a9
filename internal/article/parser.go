// Package article turns an article page into a domain.Article.
package article

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news_crawler/internal/domain"
	"news_crawler/internal/extract"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Parser struct {
	fetcher  Fetcher
	location *time.Location
	denylist []string
}

// New returns a parser that reports local publish times in loc.
func New(fetcher Fetcher, loc *time.Location, denylist []string) *Parser {
	return &Parser{
		fetcher:  fetcher,
		location: loc,
		denylist: denylist,
	}
}

// Parse fetches link and extracts its title, publish instant and body.
// Fetch failures are returned; missing fields are not.
func (p *Parser) Parse(ctx context.Context, link domain.ArticleLink, maxParagraphs int) (*domain.Article, error) {
	body, err := p.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}

	return p.ParseHTML(link.URL, body, maxParagraphs)
}

// ParseHTML extracts an article from already fetched markup.
func (p *Parser) ParseHTML(url string, html []byte, maxParagraphs int) (*domain.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}

	a := &domain.Article{
		URL:   url,
		Title: extract.Title(doc),
		Body: extract.Body(doc, extract.BodyOptions{
			MaxParagraphs: maxParagraphs,
			Denylist:      p.denylist,
		}),
	}

	if published, ok := extract.PublishedAt(doc); ok {
		a.SetPublished(&published, p.location)
	}

	return a, nil
}
