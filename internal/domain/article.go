package domain

import "time"

// ArticleLink is an absolute URL believed to point at an article page.
type ArticleLink struct {
	URL string
}

// Article is one crawled article record.
type Article struct {
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	PublishedUTC   *time.Time `json:"published_utc"`
	PublishedLocal *time.Time `json:"published_local"`
	Body           string     `json:"body"`
}

// SetPublished stores the publish instant in UTC and its wall-clock form in loc.
// A nil t clears both.
func (a *Article) SetPublished(t *time.Time, loc *time.Location) {
	if t == nil {
		a.PublishedUTC = nil
		a.PublishedLocal = nil
		return
	}

	utc := t.UTC()
	local := utc.In(loc)
	a.PublishedUTC = &utc
	a.PublishedLocal = &local
}

// FeedEntry is a single item read from an RSS or Atom feed.
type FeedEntry struct {
	URL       string
	Title     string
	Published *time.Time
	Summary   string
}
