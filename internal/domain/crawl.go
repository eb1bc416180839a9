package domain

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects how article links are discovered.
type Mode string

const (
	ModeHTML Mode = "html"
	ModeFeed Mode = "feed"
)

// ParseMode returns the mode named by s and whether it is known.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeHTML:
		return ModeHTML, true
	case ModeFeed:
		return ModeFeed, true
	}
	return "", false
}

// Date is a calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// CrawlConfig holds the settings of a single crawl request.
type CrawlConfig struct {
	SourceURL       string
	Mode            Mode
	MaxItems        int
	PoliteDelay     time.Duration
	OnlyToday       bool
	TargetDate      *Date
	Location        *time.Location
	MaxParagraphs   int
	FetchFeedBodies bool
	KeepUndated     bool
	FallbackLatest  bool
}

// CrawlResult is the terminal output of one crawl.
type CrawlResult struct {
	SourceURL  string
	Mode       Mode
	TargetDate *Date
	Timezone   string
	Items      []Article
	Stats      CrawlStats
	// RunID is set when the result was archived.
	RunID int64
}

// Count returns the number of surviving articles.
func (r *CrawlResult) Count() int {
	return len(r.Items)
}

// CrawlStats holds counters about a crawl.
type CrawlStats struct {
	Collected int           `json:"collected"`
	Parsed    int           `json:"parsed"`
	Failed    int           `json:"failed"`
	Filtered  int           `json:"filtered"`
	Published int           `json:"published"`
	Duration  time.Duration `json:"-"`
}

// ErrRunNotFound is returned when an archived run does not exist.
var ErrRunNotFound = errors.New("crawl run not found")

// RunSummary describes an archived crawl run.
type RunSummary struct {
	ID         int64     `db:"id" json:"id"`
	SourceURL  string    `db:"source_url" json:"source_url"`
	Mode       string    `db:"mode" json:"mode"`
	TargetDate *string   `db:"target_date" json:"target_date"`
	Timezone   string    `db:"timezone" json:"timezone"`
	ItemCount  int       `db:"item_count" json:"count"`
	Failed     int       `db:"failed_count" json:"failed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Items      []Article `db:"-" json:"items,omitempty"`
}
