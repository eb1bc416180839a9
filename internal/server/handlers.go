package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"news_crawler/internal/domain"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type statsResponse struct {
	domain.CrawlStats
	DurationMS int64 `json:"duration_ms"`
}

type crawlResponse struct {
	OK         bool             `json:"ok"`
	TargetDate *domain.Date     `json:"target_date,omitempty"`
	Timezone   string           `json:"timezone"`
	Mode       domain.Mode      `json:"mode"`
	SourceURL  string           `json:"source_url"`
	Count      int              `json:"count"`
	Items      []domain.Article `json:"items"`
	Stats      statsResponse    `json:"stats"`
	RunID      int64            `json:"run_id,omitempty"`
}

type pingResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	TimeKST string `json:"time_kst"`
}

type runsResponse struct {
	OK   bool                `json:"ok"`
	Runs []domain.RunSummary `json:"runs"`
}

type runResponse struct {
	OK  bool               `json:"ok"`
	Run *domain.RunSummary `json:"run"`
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, pingResponse{
		OK:      true,
		Message: "pong",
		TimeKST: s.now().In(s.defaults.Location).Format(time.RFC3339),
	})
}

func (s *Server) handleCrawl(c *gin.Context) {
	cfg := s.defaults.CrawlConfig(c)

	// a client disconnect must not abort a crawl that is already running
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := s.crawler.Crawl(ctx, cfg)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{OK: false, Error: err.Error()})
		return
	}

	items := result.Items
	if items == nil {
		items = []domain.Article{}
	}

	c.JSON(http.StatusOK, crawlResponse{
		OK:         true,
		TargetDate: result.TargetDate,
		Timezone:   result.Timezone,
		Mode:       result.Mode,
		SourceURL:  result.SourceURL,
		Count:      len(items),
		Items:      items,
		Stats: statsResponse{
			CrawlStats: result.Stats,
			DurationMS: result.Stats.Duration.Milliseconds(),
		},
		RunID: result.RunID,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{OK: false, Error: ErrArchiveDisabled.Error()})
		return
	}

	runs, err := s.runs.ListRuns(c.Request.Context(), runsLimit(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{OK: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, runsResponse{OK: true, Runs: runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{OK: false, Error: ErrArchiveDisabled.Error()})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{OK: false, Error: "invalid run id"})
		return
	}

	run, err := s.runs.GetRun(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		c.JSON(http.StatusNotFound, errorResponse{OK: false, Error: err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{OK: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, runResponse{OK: true, Run: run})
}
