package service

import (
	"time"

	"news_crawler/internal/domain"
)

// DayFilter keeps articles published on Target as seen in Location.
type DayFilter struct {
	Target      domain.Date
	Location    *time.Location
	KeepUndated bool
}

func (f DayFilter) Keep(a *domain.Article) bool {
	if a.PublishedUTC == nil {
		return f.KeepUndated
	}

	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}

	return domain.DateOf(a.PublishedUTC.In(loc)) == f.Target
}
