// Package server exposes crawls and the run archive over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"news_crawler/internal/domain"
)

var ErrArchiveDisabled = errors.New("run archive is not configured")

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

type Crawler interface {
	Crawl(ctx context.Context, cfg domain.CrawlConfig) (*domain.CrawlResult, error)
}

type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
	GetRun(ctx context.Context, id int64) (*domain.RunSummary, error)
}

type Config struct {
	Addr   string
	APIKey string
	Debug  bool
}

type Server struct {
	crawler  Crawler
	runs     RunReader
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time

	router     *gin.Engine
	httpServer *http.Server
}

// New builds the router. runs may be nil, in which case /runs answers 503.
func New(cfg Config, defaults Defaults, crawler Crawler, runs RunReader, logger *slog.Logger) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if defaults.Location == nil {
		defaults.Location = time.UTC
	}

	s := &Server{
		crawler:  crawler,
		runs:     runs,
		defaults: defaults,
		logger:   logger.With("component", "http_server"),
		now:      time.Now,
	}

	router := gin.New()
	// the request logger wraps recovery so recovered panics still get a log line
	router.Use(requestLogger(s.logger))
	router.Use(recovery(s.logger))

	router.GET("/ping", s.handlePing)

	protected := router.Group("/", apiKeyAuth(cfg.APIKey))
	protected.GET("/crawl", s.handleCrawl)
	protected.GET("/runs", s.handleListRuns)
	protected.GET("/runs/:id", s.handleGetRun)

	s.router = router
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
