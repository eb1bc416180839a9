package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"news_crawler/internal/domain"
)

type CrawlService struct {
	links     LinkCollector
	articles  ArticleParser
	feeds     FeedReader
	runs      RunStore
	publisher Publisher
	logger    *slog.Logger

	sleep func(time.Duration)
	now   func() time.Time
}

// NewCrawlService wires a crawl service. runs and publisher may be nil.
func NewCrawlService(
	links LinkCollector,
	articles ArticleParser,
	feeds FeedReader,
	runs RunStore,
	publisher Publisher,
	logger *slog.Logger,
) *CrawlService {
	return &CrawlService{
		links:     links,
		articles:  articles,
		feeds:     feeds,
		runs:      runs,
		publisher: publisher,
		logger:    logger.With("component", "crawl_service"),
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Crawl runs one crawl. Only a failure to read the listing is returned as an error;
// per-article, archive and publish failures are logged and counted.
func (s *CrawlService) Crawl(ctx context.Context, cfg domain.CrawlConfig) (*domain.CrawlResult, error) {
	startTime := s.now()

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	cfg.Location = loc

	result := &domain.CrawlResult{
		SourceURL: cfg.SourceURL,
		Mode:      cfg.Mode,
		Timezone:  loc.String(),
		Items:     make([]domain.Article, 0),
	}

	var filter *DayFilter
	if cfg.OnlyToday {
		target := domain.DateOf(s.now().In(loc))
		if cfg.TargetDate != nil {
			target = *cfg.TargetDate
		}
		result.TargetDate = &target
		filter = &DayFilter{Target: target, Location: loc}
	}

	logger := s.logger.With("source_url", cfg.SourceURL, "mode", cfg.Mode)
	logger.Info("starting crawl",
		"max_items", cfg.MaxItems,
		"only_today", cfg.OnlyToday,
		"target_date", result.TargetDate,
		"polite_delay", cfg.PoliteDelay,
	)

	var err error
	switch cfg.Mode {
	case domain.ModeFeed:
		err = s.crawlFeed(ctx, cfg, filter, result, logger)
	default:
		result.Mode = domain.ModeHTML
		err = s.crawlHTML(ctx, cfg, filter, result, logger)
	}
	if err != nil {
		return nil, err
	}

	s.archive(ctx, result, logger)
	s.publish(ctx, result, logger)

	result.Stats.Duration = time.Since(startTime)

	logger.Info("crawl completed",
		"collected", result.Stats.Collected,
		"parsed", result.Stats.Parsed,
		"failed", result.Stats.Failed,
		"filtered", result.Stats.Filtered,
		"count", result.Count(),
		"published", result.Stats.Published,
		"duration", result.Stats.Duration,
	)

	return result, nil
}

func (s *CrawlService) crawlHTML(
	ctx context.Context,
	cfg domain.CrawlConfig,
	filter *DayFilter,
	result *domain.CrawlResult,
	logger *slog.Logger,
) error {
	links, err := s.links.CollectLinks(ctx, cfg.SourceURL, cfg.MaxItems)
	if err != nil {
		return fmt.Errorf("collect links: %w", err)
	}

	result.Stats.Collected = len(links)
	logger.Info("collected article links", "count", len(links))

	for i, link := range links {
		if i > 0 {
			s.pause(cfg.PoliteDelay)
		}

		article, err := s.articles.Parse(ctx, link, cfg.MaxParagraphs)
		if err != nil {
			logger.Warn("failed to parse article", "url", link.URL, "error", err)
			result.Stats.Failed++
			continue
		}
		result.Stats.Parsed++

		if filter != nil && !filter.Keep(article) {
			result.Stats.Filtered++
			continue
		}

		result.Items = append(result.Items, *article)
	}

	return nil
}

func (s *CrawlService) crawlFeed(
	ctx context.Context,
	cfg domain.CrawlConfig,
	filter *DayFilter,
	result *domain.CrawlResult,
	logger *slog.Logger,
) error {
	entries, err := s.feeds.ReadFeed(ctx, cfg.SourceURL, cfg.MaxItems)
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}

	result.Stats.Collected = len(entries)
	logger.Info("read feed entries", "count", len(entries))

	seen := make(map[string]bool, len(entries))
	records := make([]domain.Article, 0, len(entries))
	for _, e := range entries {
		if seen[e.URL] {
			continue
		}
		seen[e.URL] = true

		a := domain.Article{URL: e.URL, Title: e.Title, Body: e.Summary}
		a.SetPublished(e.Published, cfg.Location)
		records = append(records, a)
	}
	result.Stats.Parsed = len(records)

	items := records
	if filter != nil {
		filter.KeepUndated = cfg.KeepUndated

		kept := make([]domain.Article, 0, len(records))
		for i := range records {
			if filter.Keep(&records[i]) {
				kept = append(kept, records[i])
			}
		}
		result.Stats.Filtered = len(records) - len(kept)
		items = kept

		if len(kept) == 0 && cfg.FallbackLatest && len(records) > 0 {
			logger.Info("no entries for target date, returning latest entries", "count", len(records))
			result.Stats.Filtered = 0
			items = records
		}
	}

	if cfg.FetchFeedBodies {
		for i := range items {
			if i > 0 {
				s.pause(cfg.PoliteDelay)
			}

			full, err := s.articles.Parse(ctx, domain.ArticleLink{URL: items[i].URL}, cfg.MaxParagraphs)
			if err != nil {
				logger.Warn("failed to fetch article body, keeping feed summary", "url", items[i].URL, "error", err)
				result.Stats.Failed++
				continue
			}
			if full.Body != "" {
				items[i].Body = full.Body
			}
		}
	}

	result.Items = items
	return nil
}

func (s *CrawlService) pause(d time.Duration) {
	if d > 0 {
		s.sleep(d)
	}
}

func (s *CrawlService) archive(ctx context.Context, result *domain.CrawlResult, logger *slog.Logger) {
	if s.runs == nil {
		return
	}

	id, err := s.runs.SaveRun(ctx, result)
	if err != nil {
		logger.Warn("failed to archive crawl run", "error", err)
		return
	}

	result.RunID = id
	logger.Debug("archived crawl run", "run_id", id)
}

func (s *CrawlService) publish(ctx context.Context, result *domain.CrawlResult, logger *slog.Logger) {
	if s.publisher == nil {
		return
	}

	for i := range result.Items {
		article := &result.Items[i]
		if err := s.publisher.Publish(ctx, article); err != nil {
			logger.Warn("failed to publish article", "url", article.URL, "error", err)
			continue
		}
		result.Stats.Published++
	}
}
