// Package category discovers article links on an HTML category listing page.
package category

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"news_crawler/internal/domain"
)

const DefaultHeadlineSelector = "h1, h2, h3"

// articlePathPattern matches the /YYYY/MM/ segment of dated article URLs.
var articlePathPattern = regexp.MustCompile(`/\d{4}/\d{2}/`)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options controls which anchors count as article links.
type Options struct {
	// SiteDomain restricts links to this host and its subdomains.
	// Empty means the listing page's own host without a leading "www.".
	SiteDomain string
	// HeadlineSelector finds the headline elements searched first.
	HeadlineSelector string
}

type Collector struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

func New(fetcher Fetcher, opts Options, logger *slog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With("component", "category_collector"),
	}
}

// CollectLinks fetches the listing page and returns up to limit article links in discovery order.
func (c *Collector) CollectLinks(ctx context.Context, pageURL string, limit int) ([]domain.ArticleLink, error) {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse category page: %w", err)
	}

	links := ExtractLinks(doc, pageURL, limit, c.opts)

	c.logger.Debug("collected links",
		"url", pageURL,
		"count", len(links),
		"limit", limit,
	)

	return links, nil
}

// ExtractLinks returns up to limit unique article links found in doc. Anchors inside
// headline elements come first, then every other anchor, each in document order.
func ExtractLinks(doc *goquery.Document, pageURL string, limit int, opts Options) []domain.ArticleLink {
	if limit <= 0 {
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	headline := opts.HeadlineSelector
	if headline == "" {
		headline = DefaultHeadlineSelector
	}

	set := &linkSet{
		base:  base,
		site:  siteDomain(opts.SiteDomain, base),
		limit: limit,
		seen:  make(map[string]bool),
	}

	doc.Find(headline).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		href, ok := h.Find("a[href]").First().Attr("href")
		if ok {
			set.add(href)
		}
		return !set.full()
	})

	if !set.full() {
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			set.add(href)
			return !set.full()
		})
	}

	return set.links
}

type linkSet struct {
	base  *url.URL
	site  string
	limit int
	seen  map[string]bool
	links []domain.ArticleLink
}

func (s *linkSet) full() bool {
	return len(s.links) >= s.limit
}

func (s *linkSet) add(href string) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || !IsArticleURL(ref, s.site) {
		return
	}

	abs := s.base.ResolveReference(ref)
	abs.Fragment = ""
	abs.RawFragment = ""
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return
	}

	key := abs.String()
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.links = append(s.links, domain.ArticleLink{URL: key})
}

// IsArticleURL reports whether ref is on site (relative, the site itself or a subdomain)
// and has a dated article path.
func IsArticleURL(ref *url.URL, site string) bool {
	if !articlePathPattern.MatchString(ref.Path) {
		return false
	}

	host := strings.ToLower(ref.Hostname())
	if host == "" {
		return ref.Scheme == ""
	}

	return host == site || strings.HasSuffix(host, "."+site)
}

func siteDomain(configured string, base *url.URL) string {
	d := strings.ToLower(strings.TrimSpace(configured))
	if d == "" {
		d = strings.ToLower(base.Hostname())
	}
	return strings.TrimPrefix(d, "www.")
}
