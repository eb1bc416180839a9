package server

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"news_crawler/internal/domain"
)

const (
	minLimit = 1
	maxLimit = 50
	maxSleep = 5 * time.Second

	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Defaults are the crawl settings used when a request does not override them.
type Defaults struct {
	CategoryURL       string
	FeedURL           string
	Mode              domain.Mode
	Limit             int
	Sleep             time.Duration
	Location          *time.Location
	MaxParagraphs     int
	FeedMaxParagraphs int
	FetchFeedBodies   bool
	KeepUndated       bool
	FallbackLatest    bool
}

// sourceURL returns the default listing for mode.
func (d Defaults) sourceURL(mode domain.Mode) string {
	if mode == domain.ModeFeed {
		return d.FeedURL
	}
	return d.CategoryURL
}

// Base returns the crawl settings for mode with no request overrides applied.
func (d Defaults) Base(mode domain.Mode) domain.CrawlConfig {
	if mode == "" {
		mode = domain.ModeHTML
	}

	cfg := domain.CrawlConfig{
		SourceURL:       d.sourceURL(mode),
		Mode:            mode,
		MaxItems:        clampInt(d.Limit, minLimit, maxLimit),
		PoliteDelay:     clampDuration(d.Sleep, 0, maxSleep),
		OnlyToday:       true,
		Location:        d.Location,
		MaxParagraphs:   d.MaxParagraphs,
		FetchFeedBodies: d.FetchFeedBodies,
		KeepUndated:     d.KeepUndated,
		FallbackLatest:  d.FallbackLatest,
	}
	if mode == domain.ModeFeed {
		cfg.MaxParagraphs = d.FeedMaxParagraphs
	}
	return cfg
}

// CrawlConfig builds the crawl settings for one request. Malformed parameters fall
// back to the defaults; numeric parameters are clamped to their allowed range.
func (d Defaults) CrawlConfig(c *gin.Context) domain.CrawlConfig {
	mode, ok := domain.ParseMode(strings.ToLower(strings.TrimSpace(c.Query("mode"))))
	if !ok {
		mode = d.Mode
	}

	cfg := d.Base(mode)
	cfg.OnlyToday = strings.TrimSpace(c.Query("today")) != "0"

	if raw := strings.TrimSpace(c.Query("url")); isHTTPURL(raw) {
		cfg.SourceURL = raw
	}

	limitParam := c.Query("limit")
	if limitParam == "" {
		limitParam = c.Query("n")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limitParam)); err == nil {
		cfg.MaxItems = clampInt(n, minLimit, maxLimit)
	}

	if f, err := strconv.ParseFloat(strings.TrimSpace(c.Query("sleep")), 64); err == nil && !math.IsNaN(f) {
		f = math.Max(0, math.Min(f, maxSleep.Seconds()))
		cfg.PoliteDelay = time.Duration(f * float64(time.Second))
	}

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		if date, err := domain.ParseDate(raw); err == nil {
			cfg.TargetDate = &date
		}
	}

	switch strings.TrimSpace(c.Query("deep")) {
	case "1", "true":
		cfg.FetchFeedBodies = true
	case "0", "false":
		cfg.FetchFeedBodies = false
	}

	return cfg
}

func isHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	return max(lo, min(v, hi))
}

// runsLimit parses the limit of /runs, defaulting to 20 and capped at 100.
func runsLimit(c *gin.Context) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil {
		return defaultRunsLimit
	}
	return clampInt(n, 1, maxRunsLimit)
}
