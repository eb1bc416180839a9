package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_crawler/internal/domain"
)

type LinkCollector interface {
	CollectLinks(ctx context.Context, pageURL string, limit int) ([]domain.ArticleLink, error)
}

type ArticleParser interface {
	Parse(ctx context.Context, link domain.ArticleLink, maxParagraphs int) (*domain.Article, error)
}

type FeedReader interface {
	ReadFeed(ctx context.Context, feedURL string, limit int) ([]domain.FeedEntry, error)
}

type RunStore interface {
	SaveRun(ctx context.Context, result *domain.CrawlResult) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
	GetRun(ctx context.Context, id int64) (*domain.RunSummary, error)
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article) error
	Close() error
}
