package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"news_crawler/internal/domain"
)

var ErrRunNotFound = domain.ErrRunNotFound

const itemColumns = 6

// RunStore archives crawl results.
type RunStore struct {
	db        *sqlx.DB
	txManager *TransactionManager
	location  *time.Location
}

// NewRunStore returns a store that rebuilds local publish times in the run's
// timezone, or in loc when that zone cannot be loaded.
func NewRunStore(db *sqlx.DB, loc *time.Location) *RunStore {
	return &RunStore{
		db:        db,
		txManager: NewTransactionManager(db),
		location:  loc,
	}
}

type itemRow struct {
	URL          string     `db:"url"`
	Title        string     `db:"title"`
	PublishedUTC *time.Time `db:"published_utc"`
	Body         string     `db:"body"`
}

// SaveRun stores the result and its items in one transaction and returns the run id.
func (s *RunStore) SaveRun(ctx context.Context, result *domain.CrawlResult) (int64, error) {
	var id int64

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)

		var targetDate *string
		if result.TargetDate != nil {
			d := result.TargetDate.String()
			targetDate = &d
		}

		query := `
			INSERT INTO crawl_runs (
				source_url, mode, target_date, timezone, item_count, failed_count, duration_ms
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`

		err := exec.QueryRowxContext(txCtx, query,
			result.SourceURL,
			string(result.Mode),
			targetDate,
			result.Timezone,
			result.Count(),
			result.Stats.Failed,
			result.Stats.Duration.Milliseconds(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if err := insertItems(txCtx, exec, id, result.Items); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func insertItems(ctx context.Context, exec sqlx.ExtContext, runID int64, items []domain.Article) error {
	if len(items) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO crawl_items (run_id, position, url, title, published_utc, body) VALUES ")
	valueArgs := make([]any, 0, len(items)*itemColumns)

	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := 0; col < itemColumns; col++ {
			if col > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*itemColumns + col + 1))
		}
		sb.WriteString(")")

		valueArgs = append(valueArgs, runID, i, item.URL, item.Title, item.PublishedUTC, item.Body)
	}

	_, err := exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

// ListRuns returns the newest runs first, without their items.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	query := `
		SELECT id, source_url, mode, target_date, timezone, item_count, failed_count, created_at
		FROM crawl_runs
		ORDER BY id DESC
		LIMIT $1`

	runs := make([]domain.RunSummary, 0, max(limit, 0))
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its items in crawl order.
func (s *RunStore) GetRun(ctx context.Context, id int64) (*domain.RunSummary, error) {
	var run domain.RunSummary
	query := `
		SELECT id, source_url, mode, target_date, timezone, item_count, failed_count, created_at
		FROM crawl_runs
		WHERE id = $1`

	err := s.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}

	var rows []itemRow
	err = s.db.SelectContext(ctx, &rows,
		"SELECT url, title, published_utc, body FROM crawl_items WHERE run_id = $1 ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	loc := s.locationFor(run.Timezone)
	run.Items = make([]domain.Article, len(rows))
	for i, r := range rows {
		run.Items[i] = domain.Article{URL: r.URL, Title: r.Title, Body: r.Body}
		run.Items[i].SetPublished(r.PublishedUTC, loc)
	}

	return &run, nil
}

func (s *RunStore) locationFor(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if s.location != nil {
		return s.location
	}
	return time.UTC
}
