package scheduler

import (
	"context"
	"log/slog"
	"time"

	"news_crawler/internal/domain"
)

// Crawler defines the interface for crawl operations.
type Crawler interface {
	Crawl(ctx context.Context, cfg domain.CrawlConfig) (*domain.CrawlResult, error)
}

// ConfigFunc builds the settings for each scheduled crawl.
type ConfigFunc func() domain.CrawlConfig

type Scheduler struct {
	crawler  Crawler
	config   ConfigFunc
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(crawler Crawler, config ConfigFunc, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		crawler:  crawler,
		config:   config,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start crawls immediately and then once per interval until ctx is done.
// A run is cancelled if it is still going when the next one is due.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCrawl(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCrawl(ctx)
		}
	}
}

func (s *Scheduler) runCrawl(ctx context.Context) {
	crawlCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	result, err := s.crawler.Crawl(crawlCtx, s.config())
	if err != nil {
		s.logger.Error("scheduled crawl failed", "error", err)
		return
	}

	s.logger.Info("scheduled crawl finished",
		"count", result.Count(),
		"run_id", result.RunID,
	)
}
