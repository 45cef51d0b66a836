package config

import (
	"time"

	"golang-forex-pulse/pkg/config"
)

// Finnhub holds the configuration for the Finnhub calendar and news API.
type Finnhub struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryBackoff        time.Duration `mapstructure:"retry_backoff"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// Feed is an RSS/Atom source merged into the news cycle.
type Feed struct {
	URL      string `mapstructure:"url"`
	Category string `mapstructure:"category"`
	Source   string `mapstructure:"source"`
}

// News holds news-cycle settings.
type News struct {
	Categories  []string      `mapstructure:"categories"`
	MaxArticles int           `mapstructure:"max_articles"`
	Retention   time.Duration `mapstructure:"retention"`
	Feeds       []Feed        `mapstructure:"feeds"`
}

// Trigger holds the shared secret for the cron trigger endpoints.
type Trigger struct {
	APIKey string `mapstructure:"api_key"`
}

// Scheduler holds the cron expressions of the in-process scheduler. An empty
// expression disables that cycle's schedule; the HTTP trigger still works.
type Scheduler struct {
	Enabled            bool          `mapstructure:"enabled"`
	CalendarHighImpact string        `mapstructure:"calendar_high_impact"`
	CalendarUpdate     string        `mapstructure:"calendar_update"`
	NewsUpdate         string        `mapstructure:"news_update"`
	ScoreRecompute     string        `mapstructure:"score_recompute"`
	CycleTimeout       time.Duration `mapstructure:"cycle_timeout"`
}

// Telegram holds configuration for the high-impact notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Finnhub   Finnhub         `mapstructure:"finnhub"`
	News      News            `mapstructure:"news"`
	Trigger   Trigger         `mapstructure:"trigger"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                       "forex-pulse",
		"app.env":                        "development",
		"logger.level":                   "info",
		"logger.encoding":                "json",
		"database.port":                  5432,
		"database.ssl_mode":              "disable",
		"database.time_zone":             "UTC",
		"redis.enabled":                  false,
		"redis.port":                     6379,
		"redis.stream_max_len":           1000,
		"api.port":                       8080,
		"finnhub.api_key":                "",
		"finnhub.base_url":               "https://finnhub.io/api/v1",
		"finnhub.request_timeout":        "10s",
		"finnhub.max_request_per_minute": 60,
		"finnhub.max_retries":            2,
		"finnhub.retry_backoff":          "500ms",
		"finnhub.cache_ttl":              "0s",
		"news.categories":                []string{"forex", "general", "crypto"},
		"news.max_articles":              50,
		"news.retention":                 "168h",
		"trigger.api_key":                "",
		"scheduler.enabled":              true,
		"scheduler.calendar_high_impact": "*/15 * * * *",
		"scheduler.calendar_update":      "0 */4 * * *",
		"scheduler.news_update":          "*/30 * * * *",
		"scheduler.score_recompute":      "",
		"scheduler.cycle_timeout":        "2m",
		"telegram.bot_token":             "",
		"telegram.chat_id":               0,
	}
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
