package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "AINEWS_CONFIG"
	addrEnv          = "AINEWS_ADDR"
	supabaseURLEnv   = "SUPABASE_URL"
	supabaseKeyEnv   = "SUPABASE_KEY"
	databaseDSNEnv   = "DATABASE_DSN"
	llmEndpointEnv   = "LLM_ENDPOINT"
	llmModelEnv      = "LLM_MODEL"
	llmAPIKeyEnv     = "LLM_API_KEY"
	telegramBotEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	defaultThrottle  = 5 * time.Second
	defaultSchedule  = 24 * time.Hour
	defaultMaxItems  = 3
	defaultYTOrigin  = "https://www.youtube.com"
	defaultArxivFeed = "https://export.arxiv.org/api/query?search_query=cat:cs.AI&start=0&max_results=3&sortBy=submittedDate&sortOrder=descending"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Logging       LoggingConfig      `yaml:"logging"`
	Store         StoreConfig        `yaml:"store"`
	LLM           LLMConfig          `yaml:"llm"`
	Sources       SourcesConfig      `yaml:"sources"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig carries the slog level string.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StoreConfig selects the articles datastore. A non-empty PostgresDSN picks
// the direct Postgres gateway; otherwise the Supabase REST gateway is used
// and both URL and key must be present.
type StoreConfig struct {
	SupabaseURL string `yaml:"supabaseUrl"`
	SupabaseKey string `yaml:"supabaseKey"`
	PostgresDSN string `yaml:"postgresDsn"`
}

// LLMConfig defines how to reach the chat-completions endpoint.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SourcesConfig groups per-adapter settings.
type SourcesConfig struct {
	News    NewsConfig    `yaml:"news"`
	Arxiv   ArxivConfig   `yaml:"arxiv"`
	YouTube YouTubeConfig `yaml:"youtube"`
}

// NewsFeedConfig describes one RSS feed pulled by the news adapter.
type NewsFeedConfig struct {
	Source          string `yaml:"source"`
	URL             string `yaml:"url"`
	KeywordFiltered bool   `yaml:"keywordFiltered"`
}

// NewsConfig wires the news adapter: feeds, the keyword predicate applied to
// filtered feeds, and the per-feed item bound.
type NewsConfig struct {
	Feeds           []NewsFeedConfig `yaml:"feeds"`
	Keywords        []string         `yaml:"keywords"`
	MaxItems        int              `yaml:"maxItems"`
	FreshnessSource string           `yaml:"freshnessSource"`
}

// ArxivConfig wires the paper-feed adapter. Throttle is the minimum interval
// between successive enrichment calls on this path.
type ArxivConfig struct {
	QueryURL string `yaml:"queryUrl"`
	MaxItems int    `yaml:"maxItems"`
	Throttle string `yaml:"throttle"`
}

// ThrottleInterval resolves the throttle string to a duration.
func (a ArxivConfig) ThrottleInterval() time.Duration {
	if a.Throttle == "" {
		return defaultThrottle
	}
	d, err := time.ParseDuration(a.Throttle)
	if err != nil || d < 0 {
		log.Printf("config: invalid arxiv throttle %q, reverting to %s", a.Throttle, defaultThrottle)
		return defaultThrottle
	}
	return d
}

// YouTubeConfig wires the video-search adapter.
type YouTubeConfig struct {
	Query    string `yaml:"query"`
	MaxItems int    `yaml:"maxItems"`
	Origin   string `yaml:"origin"`
}

// SchedulerConfig defines the optional background ingestion cycle.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

// IntervalDuration resolves the interval string to a duration.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	if s.Interval == "" {
		return defaultSchedule
	}
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		log.Printf("config: invalid scheduler interval %q, reverting to %s", s.Interval, defaultSchedule)
		return defaultSchedule
	}
	return d
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digest messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) over the defaults and applies
// environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources.News.Feeds) == 0 {
		cfg.Sources.News.Feeds = defaultConfig().Sources.News.Feeds
	}
	if len(cfg.Sources.News.Keywords) == 0 {
		cfg.Sources.News.Keywords = defaultConfig().Sources.News.Keywords
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Store.SupabaseURL = v
	}
	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Store.SupabaseKey = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Store.PostgresDSN = v
	}
	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(telegramBotEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8000"},
		Logging: LoggingConfig{Level: "info"},
		LLM: LLMConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
			Model:    "gemini-2.5-flash-lite",
		},
		Sources: SourcesConfig{
			News: NewsConfig{
				Feeds: []NewsFeedConfig{
					{Source: "TechCrunch", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
					{Source: "TheVerge", URL: "https://www.theverge.com/rss/index.xml", KeywordFiltered: true},
				},
				Keywords:        []string{"ai", "artificial intelligence"},
				MaxItems:        defaultMaxItems,
				FreshnessSource: "TheVerge",
			},
			Arxiv: ArxivConfig{
				QueryURL: defaultArxivFeed,
				MaxItems: defaultMaxItems,
				Throttle: "5s",
			},
			YouTube: YouTubeConfig{
				Query:    "artificial intelligence",
				MaxItems: defaultMaxItems,
				Origin:   defaultYTOrigin,
			},
		},
		Scheduler: SchedulerConfig{Enabled: false, Interval: "24h"},
	}
}
