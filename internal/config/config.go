package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config is the application's configuration model. It is read-only once
// loaded.
type Config struct {
	Account     AccountConfig     `yaml:"account"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Filters     FiltersConfig     `yaml:"filters"`
	Quota       QuotaConfig       `yaml:"quota"`
	Bot         BotConfig         `yaml:"bot"`
	Rating      RatingConfig      `yaml:"rating"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Logging     LoggingConfig     `yaml:"logging"`
	Storage     StorageConfig     `yaml:"storage"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type AccountConfig struct {
	// Username is the bot's own screen name.
	Username string `yaml:"username"`
}

type CredentialsConfig struct {
	// OAuth1.0a user credentials. Empty values are read from X_CONSUMER_KEY,
	// X_CONSUMER_SECRET, X_ACCESS_TOKEN and X_ACCESS_SECRET.
	ConsumerKey    string `yaml:"consumerKey"`
	ConsumerSecret string `yaml:"consumerSecret"`
	AccessToken    string `yaml:"accessToken"`
	AccessSecret   string `yaml:"accessSecret"`
}

type FiltersConfig struct {
	Track          []string `yaml:"track"`
	SearchQuery    string   `yaml:"searchQuery"`
	HashtagsFilter bool     `yaml:"hashtagsFilter"`

	MuteTweetKeywords []string `yaml:"muteTweetKeywords"`
	MuteLinkDomains   []string `yaml:"muteLinkDomains"`
	MuteUserKeywords  []string `yaml:"muteUserKeywords"`

	// BlacklistListID names the list whose members are never acted on.
	BlacklistListID string `yaml:"blacklistListId"`

	// Max* thresholds are inclusive; -1 disables one.
	MinFollowers     int `yaml:"minFollowers"`
	MaxFriends       int `yaml:"maxFriends"`
	MinUserPosts     int `yaml:"minUserPosts"`
	MaxUserPosts     int `yaml:"maxUserPosts"`
	MaxTweetHashtags int `yaml:"maxTweetHashtags"`

	FilterReposts bool `yaml:"filterReposts"`
	FilterReplies bool `yaml:"filterReplies"`
	// Language is a platform language code; empty accepts every language.
	Language string `yaml:"language"`
}

// QuotaConfig limits actions per hour. -1 means unlimited; 0 stops all
// reposts and quotes.
type QuotaConfig struct {
	HourlyUser   int `yaml:"hourlyUser"`
	HourlyGlobal int `yaml:"hourlyGlobal"`
}

const (
	ModeNormal = "normal"
	ModeRate   = "rate"
)

type BotConfig struct {
	Mode         string `yaml:"mode"` // "normal" or "rate"
	LikeMentions bool   `yaml:"likeMentions"`
	// Greeting is sent to new followers; empty disables greetings.
	Greeting    string `yaml:"greeting"`
	SearchLimit int    `yaml:"searchLimit"`
}

type RatingConfig struct {
	Scale    int    `yaml:"scale"`
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`
	Neutral  string `yaml:"neutral"`
	// Lexicon adds to or overrides the built-in word scores.
	Lexicon map[string]int `yaml:"lexicon"`
}

// ScheduleConfig holds cron specs; an empty spec disables that job.
type ScheduleConfig struct {
	Search    string `yaml:"search"`
	Whitelist string `yaml:"whitelist"`
	Blacklist string `yaml:"blacklist"`
	Mentions  string `yaml:"mentions"`
	Followers string `yaml:"followers"`
	Rollover  string `yaml:"rollover"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Filters: FiltersConfig{
			Track:             []string{"golang", "cybersecurity", "infosec"},
			SearchQuery:       "golang OR infosec -filter:retweets",
			MuteTweetKeywords: []string{"giveaway", "follow back"},
			MuteLinkDomains:   []string{"bit.ly/free"},
			MuteUserKeywords:  []string{"crypto signals"},
			MinFollowers:      100,
			MaxFriends:        5000,
			MinUserPosts:      20,
			MaxUserPosts:      100000,
			MaxTweetHashtags:  3,
			FilterReplies:     true,
			Language:          "en",
		},
		Quota:  QuotaConfig{HourlyUser: 2, HourlyGlobal: 20},
		Bot:    BotConfig{Mode: ModeNormal, SearchLimit: 50},
		Rating: RatingConfig{Scale: 5, Positive: "🟩", Negative: "🟥", Neutral: "⬜"},
		Schedule: ScheduleConfig{
			Search:    "@every 2m",
			Whitelist: "@every 30m",
			Blacklist: "@every 30m",
			Mentions:  "@every 5m",
			Followers: "@every 10m",
			Rollover:  "@hourly",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Storage: StorageConfig{DBPath: "./tweetgate.db"},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.Credentials.ConsumerKey, "X_CONSUMER_KEY")
	fill(&c.Credentials.ConsumerSecret, "X_CONSUMER_SECRET")
	fill(&c.Credentials.AccessToken, "X_ACCESS_TOKEN")
	fill(&c.Credentials.AccessSecret, "X_ACCESS_SECRET")
	fill(&c.Account.Username, "X_USERNAME")
	fill(&c.Metrics.Addr, "METRICS_ADDR")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports the first problem with c, wrapping ErrInvalid.
func (c Config) Validate() error {
	switch c.Bot.Mode {
	case "", ModeNormal, ModeRate:
	default:
		return fmt.Errorf("%w: unknown bot mode %q", ErrInvalid, c.Bot.Mode)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: unsupported log format %q", ErrInvalid, c.Logging.Format)
	}
	if c.Rating.Scale < 1 {
		return fmt.Errorf("%w: rating scale must be at least 1", ErrInvalid)
	}
	f := c.Filters
	for name, v := range map[string]int{
		"minFollowers": f.MinFollowers,
		"minUserPosts": f.MinUserPosts,
		"searchLimit":  c.Bot.SearchLimit,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, name)
		}
	}
	for name, v := range map[string]int{
		"maxFriends":   f.MaxFriends,
		"maxUserPosts": f.MaxUserPosts,
		"hourlyUser":   c.Quota.HourlyUser,
		"hourlyGlobal": c.Quota.HourlyGlobal,
	} {
		if v < -1 {
			return fmt.Errorf("%w: %s must be -1 (unlimited) or at least 0", ErrInvalid, name)
		}
	}
	// every accepted item carries at least one track match
	if f.MaxTweetHashtags == 0 || f.MaxTweetHashtags < -1 {
		return fmt.Errorf("%w: maxTweetHashtags must be -1 (unlimited) or at least 1", ErrInvalid)
	}
	return nil
}

// RateMode reports whether items should be quoted with a sentiment bar.
func (c Config) RateMode() bool { return strings.EqualFold(c.Bot.Mode, ModeRate) }

// Load reads YAML config from path over the defaults, applies the
// environment and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
