package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"news_crawler/internal/article"
	"news_crawler/internal/config"
	"news_crawler/internal/domain"
	"news_crawler/internal/fetcher"
	"news_crawler/internal/publisher"
	"news_crawler/internal/scheduler"
	"news_crawler/internal/server"
	"news_crawler/internal/service"
	"news_crawler/internal/source/category"
	"news_crawler/internal/source/feed"
	"news_crawler/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("failed to resolve timezone", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional run archive
	var (
		runStore  service.RunStore
		runReader server.RunReader
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		store := postgres.NewRunStore(db, loc)
		runStore = store
		runReader = store
	}

	// Optional RabbitMQ publisher
	var articlePublisher service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		articlePublisher = rabbitMQ
	}

	client := fetcher.New(fetcher.Config{
		Timeout:   cfg.Crawl.Timeout,
		UserAgent: cfg.Crawl.UserAgent,
	})

	collector := category.New(client, category.Options{
		SiteDomain:       cfg.Crawl.SiteDomain,
		HeadlineSelector: cfg.Crawl.HeadlineSelector,
	}, logger)
	reader := feed.New(client, feed.Options{
		MaxParagraphs: cfg.Crawl.FeedMaxParagraphs,
		Denylist:      cfg.Crawl.BodyDenylist,
	}, logger)
	parser := article.New(client, loc, cfg.Crawl.BodyDenylist)

	crawlService := service.NewCrawlService(
		collector,
		parser,
		reader,
		runStore,
		articlePublisher,
		logger,
	)

	defaults := server.Defaults{
		CategoryURL:       cfg.Crawl.CategoryURL,
		FeedURL:           cfg.Crawl.FeedURL,
		Mode:              domain.ModeHTML,
		Limit:             cfg.Crawl.Limit,
		Sleep:             cfg.Crawl.Sleep,
		Location:          loc,
		MaxParagraphs:     cfg.Crawl.MaxParagraphs,
		FeedMaxParagraphs: cfg.Crawl.FeedMaxParagraphs,
		FetchFeedBodies:   cfg.Crawl.FeedFetchBody,
		KeepUndated:       *cfg.Crawl.FeedKeepUndated,
		FallbackLatest:    cfg.Crawl.FeedFallback,
	}
	if cfg.Crawl.RSSOnly {
		defaults.Mode = domain.ModeFeed
	}

	srv := server.New(server.Config{
		Addr:   cfg.Server.Addr,
		APIKey: cfg.Server.APIKey,
		Debug:  cfg.LogLevel == "debug",
	}, defaults, crawlService, runReader, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if cfg.Schedule.Interval > 0 {
		sched := scheduler.NewScheduler(crawlService, func() domain.CrawlConfig {
			return defaults.Base(defaults.Mode)
		}, cfg.Schedule.Interval, logger)

		go func() {
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	logger.Info("starting news crawler",
		"source", cfg.SourceURL(),
		"mode", defaults.Mode,
		"timezone", loc.String(),
		"archive", runStore != nil,
		"publish", articlePublisher != nil,
		"interval", cfg.Schedule.Interval,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown http server", "error", err)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
