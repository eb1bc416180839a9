// Package feed reads article entries from an RSS or Atom feed.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"news_crawler/internal/domain"
	"news_crawler/internal/extract"
)

// httpPrefix is the scheme prefix used to decide whether a GUID is a usable URL.
const httpPrefix = "http"

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options controls how entry summaries are turned into plain text.
type Options struct {
	MaxParagraphs int
	Denylist      []string
}

type Reader struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

func New(fetcher Fetcher, opts Options, logger *slog.Logger) *Reader {
	return &Reader{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With("component", "feed_reader"),
	}
}

// ReadFeed fetches feedURL once and returns up to limit entries in feed order.
func (r *Reader) ReadFeed(ctx context.Context, feedURL string, limit int) ([]domain.FeedEntry, error) {
	body, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	entries, err := ParseFeed(body, limit, r.opts)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("read feed",
		"url", feedURL,
		"entries", len(entries),
		"limit", limit,
	)

	return entries, nil
}

// ParseFeed parses an RSS or Atom document. Entries without a usable link and repeats
// of an earlier link are skipped, so limit counts unique URLs.
func ParseFeed(body []byte, limit int, opts Options) ([]domain.FeedEntry, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]domain.FeedEntry, 0, min(len(parsed.Items), max(limit, 0)))
	seen := make(map[string]bool, len(entries))

	for _, item := range parsed.Items {
		if len(entries) >= limit {
			break
		}

		link := extractLink(item)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		entries = append(entries, domain.FeedEntry{
			URL:       link,
			Title:     strings.TrimSpace(item.Title),
			Published: publishedAt(item),
			Summary:   summaryText(item, opts),
		})
	}

	return entries, nil
}

// extractLink prefers the explicit link and falls back to a GUID that looks like a URL.
func extractLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}

	if guid := strings.TrimSpace(item.GUID); strings.HasPrefix(guid, httpPrefix) {
		return guid
	}

	return ""
}

func publishedAt(item *gofeed.Item) *time.Time {
	t := item.PublishedParsed
	if t == nil {
		t = item.UpdatedParsed
	}
	if t == nil {
		return nil
	}

	utc := t.UTC()
	return &utc
}

// summaryText converts the entry's content, or its description, from HTML to plain text.
func summaryText(item *gofeed.Item, opts Options) string {
	raw := item.Content
	if strings.TrimSpace(raw) == "" {
		raw = item.Description
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	text := extract.Paragraphs(doc, extract.BodyOptions{
		MaxParagraphs: opts.MaxParagraphs,
		Denylist:      opts.Denylist,
	})
	if text != "" {
		return text
	}

	// plain-text descriptions carry no <p> markup
	return strings.Join(strings.Fields(doc.Text()), " ")
}
