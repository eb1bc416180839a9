package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_crawler/internal/domain"
)

func testDefaults() Defaults {
	return Defaults{
		CategoryURL:       "https://example.com/category/ai/",
		FeedURL:           "https://example.com/category/ai/feed/",
		Mode:              domain.ModeHTML,
		Limit:             40,
		Sleep:             700 * time.Millisecond,
		Location:          time.FixedZone("KST", 9*60*60),
		MaxParagraphs:     0,
		FeedMaxParagraphs: 8,
		KeepUndated:       true,
	}
}

func contextFor(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestDefaults_CrawlConfigDefaults(t *testing.T) {
	cfg := testDefaults().CrawlConfig(contextFor("/crawl"))

	assert.Equal(t, "https://example.com/category/ai/", cfg.SourceURL)
	assert.Equal(t, domain.ModeHTML, cfg.Mode)
	assert.Equal(t, 40, cfg.MaxItems)
	assert.Equal(t, 700*time.Millisecond, cfg.PoliteDelay)
	assert.True(t, cfg.OnlyToday)
	assert.Nil(t, cfg.TargetDate)
	assert.Equal(t, 0, cfg.MaxParagraphs)
	assert.False(t, cfg.FetchFeedBodies)
	assert.True(t, cfg.KeepUndated)
	assert.Equal(t, "KST", cfg.Location.String())
}

func TestDefaults_CrawlConfigParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, cfg domain.CrawlConfig)
	}{
		{"today disabled", "today=0", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.False(t, cfg.OnlyToday)
		}},
		{"today any other value", "today=yes", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.True(t, cfg.OnlyToday)
		}},
		{"limit", "limit=5", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 5, cfg.MaxItems)
		}},
		{"n alias", "n=7", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 7, cfg.MaxItems)
		}},
		{"limit wins over n", "limit=3&n=9", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 3, cfg.MaxItems)
		}},
		{"limit clamped high", "limit=500", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 50, cfg.MaxItems)
		}},
		{"limit clamped low", "limit=-4", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 1, cfg.MaxItems)
		}},
		{"limit invalid", "limit=lots", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 40, cfg.MaxItems)
		}},
		{"sleep", "sleep=1.5", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 1500*time.Millisecond, cfg.PoliteDelay)
		}},
		{"sleep zero", "sleep=0", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, time.Duration(0), cfg.PoliteDelay)
		}},
		{"sleep clamped", "sleep=60", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 5*time.Second, cfg.PoliteDelay)
		}},
		{"sleep negative", "sleep=-1", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, time.Duration(0), cfg.PoliteDelay)
		}},
		{"sleep invalid", "sleep=NaN", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, 700*time.Millisecond, cfg.PoliteDelay)
		}},
		{"url", "url=https://other.example.org/category/robots/", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, "https://other.example.org/category/robots/", cfg.SourceURL)
		}},
		{"url not absolute", "url=/category/robots/", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, "https://example.com/category/ai/", cfg.SourceURL)
		}},
		{"url bad scheme", "url=ftp://example.com/", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, "https://example.com/category/ai/", cfg.SourceURL)
		}},
		{"date", "date=2025-09-10", func(t *testing.T, cfg domain.CrawlConfig) {
			require.NotNil(t, cfg.TargetDate)
			assert.Equal(t, domain.Date{Year: 2025, Month: time.September, Day: 10}, *cfg.TargetDate)
		}},
		{"date invalid", "date=10/09/2025", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Nil(t, cfg.TargetDate)
		}},
		{"feed mode", "mode=feed", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, domain.ModeFeed, cfg.Mode)
			assert.Equal(t, "https://example.com/category/ai/feed/", cfg.SourceURL)
			assert.Equal(t, 8, cfg.MaxParagraphs)
		}},
		{"unknown mode", "mode=json", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.Equal(t, domain.ModeHTML, cfg.Mode)
		}},
		{"deep", "mode=feed&deep=1", func(t *testing.T, cfg domain.CrawlConfig) {
			assert.True(t, cfg.FetchFeedBodies)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, testDefaults().CrawlConfig(contextFor("/crawl?"+tt.query)))
		})
	}
}

func TestDefaults_FeedModeByDefault(t *testing.T) {
	d := testDefaults()
	d.Mode = domain.ModeFeed

	cfg := d.CrawlConfig(contextFor("/crawl?mode=html"))
	assert.Equal(t, domain.ModeHTML, cfg.Mode)
	assert.Equal(t, "https://example.com/category/ai/", cfg.SourceURL)

	cfg = d.CrawlConfig(contextFor("/crawl"))
	assert.Equal(t, domain.ModeFeed, cfg.Mode)
	assert.Equal(t, "https://example.com/category/ai/feed/", cfg.SourceURL)
}

func TestRunsLimit(t *testing.T) {
	assert.Equal(t, 20, runsLimit(contextFor("/runs")))
	assert.Equal(t, 5, runsLimit(contextFor("/runs?limit=5")))
	assert.Equal(t, 100, runsLimit(contextFor("/runs?limit=1000")))
	assert.Equal(t, 1, runsLimit(contextFor("/runs?limit=0")))
}

func TestDefaults_Base(t *testing.T) {
	d := testDefaults()
	d.Limit = 500

	cfg := d.Base("")
	assert.Equal(t, domain.ModeHTML, cfg.Mode)
	assert.Equal(t, 50, cfg.MaxItems)
	assert.True(t, cfg.OnlyToday)
	assert.Nil(t, cfg.TargetDate)

	cfg = d.Base(domain.ModeFeed)
	assert.Equal(t, "https://example.com/category/ai/feed/", cfg.SourceURL)
	assert.Equal(t, 8, cfg.MaxParagraphs)
}
