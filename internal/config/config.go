package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCategoryURL = "https://techcrunch.com/category/artificial-intelligence/"
	DefaultFeedURL     = "https://techcrunch.com/category/artificial-intelligence/feed/"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
	DefaultTimezone = "Asia/Seoul"
)

type Config struct {
	Crawl    CrawlConfig    `yaml:"crawl"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Schedule ScheduleConfig `yaml:"schedule"`
	LogLevel string         `yaml:"log_level"`
}

type CrawlConfig struct {
	CategoryURL       string        `yaml:"category_url"`
	FeedURL           string        `yaml:"feed_url"`
	RSSOnly           bool          `yaml:"rss_only"`
	Limit             int           `yaml:"limit"`
	Sleep             time.Duration `yaml:"sleep"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	Timezone          string        `yaml:"timezone"`
	SiteDomain        string        `yaml:"site_domain"`
	HeadlineSelector  string        `yaml:"headline_selector"`
	MaxParagraphs     int           `yaml:"max_paragraphs"`
	FeedMaxParagraphs int           `yaml:"feed_max_paragraphs"`
	FeedFetchBody     bool          `yaml:"feed_fetch_body"`
	FeedKeepUndated   *bool         `yaml:"feed_keep_undated"`
	FeedFallback      bool          `yaml:"feed_fallback_latest"`
	BodyDenylist      []string      `yaml:"body_denylist"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig enables the run archive when URL is set.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RabbitMQConfig enables article publishing when URL is set.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// ScheduleConfig enables periodic crawls when Interval is positive.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidLogLevel = errors.New("log_level must be one of: debug, info, warn, error")
)

// Load reads the optional YAML file at path, applies environment overrides and defaults.
// A missing file is not an error; configuration may come from the environment alone.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.Crawl.Sleep = unsetDuration

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// unsetDuration marks a duration that may legitimately be configured as zero.
const unsetDuration time.Duration = -1

type lookupFunc func(key string) (string, bool)

// applyEnv overrides fields from the environment. Values that fail to parse are ignored.
func (c *Config) applyEnv(lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}
	seconds := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 {
				*dst = time.Duration(f * float64(time.Second))
			}
		}
	}

	str("CATEGORY_URL", &c.Crawl.CategoryURL)
	str("FEED_URL", &c.Crawl.FeedURL)
	boolean("RSS_ONLY", &c.Crawl.RSSOnly)
	integer("LIMIT", &c.Crawl.Limit)
	seconds("SLEEP_SEC", &c.Crawl.Sleep)
	seconds("TIMEOUT_SEC", &c.Crawl.Timeout)
	str("USER_AGENT", &c.Crawl.UserAgent)
	str("TIMEZONE", &c.Crawl.Timezone)
	str("SITE_DOMAIN", &c.Crawl.SiteDomain)
	str("HEADLINE_SELECTOR", &c.Crawl.HeadlineSelector)
	integer("BODY_MAX_PARAGRAPHS", &c.Crawl.MaxParagraphs)
	integer("FEED_BODY_MAX_PARAGRAPHS", &c.Crawl.FeedMaxParagraphs)
	boolean("FEED_FETCH_BODY", &c.Crawl.FeedFetchBody)
	boolean("FEED_FALLBACK_LATEST", &c.Crawl.FeedFallback)

	if v, ok := lookup("FEED_KEEP_UNDATED"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Crawl.FeedKeepUndated = &b
		}
	}
	if v, ok := lookup("BODY_DENYLIST"); ok {
		c.Crawl.BodyDenylist = splitList(v)
	}

	str("HTTP_ADDR", &c.Server.Addr)
	str("API_KEY", &c.Server.APIKey)
	str("DATABASE_URL", &c.Database.URL)
	str("RABBITMQ_URL", &c.RabbitMQ.URL)
	str("RABBITMQ_EXCHANGE", &c.RabbitMQ.Exchange)
	str("RABBITMQ_ROUTING_KEY", &c.RabbitMQ.RoutingKey)
	str("RABBITMQ_QUEUE", &c.RabbitMQ.QueueName)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("CRAWL_INTERVAL"); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d >= 0 {
			c.Schedule.Interval = d
		}
	}
}

// splitList returns an empty, non-nil list for a blank value so that an explicitly
// empty BODY_DENYLIST disables the default.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) setDefaults() {
	if c.Crawl.CategoryURL == "" {
		c.Crawl.CategoryURL = DefaultCategoryURL
	}
	if c.Crawl.FeedURL == "" {
		c.Crawl.FeedURL = DefaultFeedURL
	}
	if c.Crawl.Limit <= 0 {
		c.Crawl.Limit = 40
	}
	if c.Crawl.Sleep < 0 {
		c.Crawl.Sleep = 700 * time.Millisecond
	}
	if c.Crawl.Timeout <= 0 {
		c.Crawl.Timeout = 20 * time.Second
	}
	if c.Crawl.UserAgent == "" {
		c.Crawl.UserAgent = DefaultUserAgent
	}
	if c.Crawl.Timezone == "" {
		c.Crawl.Timezone = DefaultTimezone
	}
	if c.Crawl.HeadlineSelector == "" {
		c.Crawl.HeadlineSelector = "h1, h2, h3"
	}
	if c.Crawl.FeedMaxParagraphs == 0 {
		c.Crawl.FeedMaxParagraphs = 8
	}
	if c.Crawl.FeedKeepUndated == nil {
		keep := true
		c.Crawl.FeedKeepUndated = &keep
	}
	if c.Crawl.BodyDenylist == nil {
		c.Crawl.BodyDenylist = []string{"subscribe", "newsletter"}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "news_crawler"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "articles"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "crawled_articles"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

// Location resolves the configured timezone. Asia/Seoul falls back to a fixed
// UTC+9 zone when the tz database is unavailable.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Crawl.Timezone)
	if err == nil {
		return loc, nil
	}
	if c.Crawl.Timezone == DefaultTimezone {
		return time.FixedZone("KST", 9*60*60), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Crawl.Timezone)
}

// SourceURL returns the default listing URL for the configured mode.
func (c *Config) SourceURL() string {
	if c.Crawl.RSSOnly {
		return c.Crawl.FeedURL
	}
	return c.Crawl.CategoryURL
}
