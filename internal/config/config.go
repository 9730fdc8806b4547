package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MAILTRIAGE"

// Config keeps runtime settings for the server and the bot.
type Config struct {
	DatabaseURL  string
	SeedDemoData bool

	HTTPAddr  string
	JWTSecret string
	TokenTTL  time.Duration

	APIURL     string
	APIToken   string
	APITimeout time.Duration

	TelegramToken  string
	ReportInterval time.Duration
	DigestTime     string
	Timezone       string

	GmailCredentials string
	GmailToken       string
	GmailQuery       string
	SyncInterval     time.Duration
}

// Load reads defaults, then the optional config file, then MAILTRIAGE_*
// environment variables. An empty configFile skips the file.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "mailtriage.db")
	v.SetDefault("seed_demo_data", true)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("api_timeout", "10s")
	v.SetDefault("report_interval_hours", 5)
	v.SetDefault("timezone", "Local")
	v.SetDefault("gmail_token", "token.json")
	v.SetDefault("gmail_query", "in:inbox -in:draft")
	v.SetDefault("sync_interval_minutes", 15)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		DatabaseURL:      strings.TrimSpace(v.GetString("database_url")),
		SeedDemoData:     v.GetBool("seed_demo_data"),
		HTTPAddr:         strings.TrimSpace(v.GetString("http_addr")),
		JWTSecret:        v.GetString("jwt_secret"),
		TokenTTL:         v.GetDuration("token_ttl"),
		APIURL:           strings.TrimSpace(v.GetString("api_url")),
		APIToken:         strings.TrimSpace(v.GetString("api_token")),
		APITimeout:       v.GetDuration("api_timeout"),
		TelegramToken:    strings.TrimSpace(v.GetString("telegram_token")),
		ReportInterval:   hours(v.GetInt("report_interval_hours")),
		DigestTime:       strings.TrimSpace(v.GetString("digest_time")),
		Timezone:         strings.TrimSpace(v.GetString("timezone")),
		GmailCredentials: strings.TrimSpace(v.GetString("gmail_credentials")),
		GmailToken:       strings.TrimSpace(v.GetString("gmail_token")),
		GmailQuery:       v.GetString("gmail_query"),
		SyncInterval:     time.Duration(v.GetInt("sync_interval_minutes")) * time.Minute,
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "mailtriage.db"
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return cfg, nil
}

// Location resolves Timezone, falling back to the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GmailEnabled reports whether mailbox import is configured.
func (c Config) GmailEnabled() bool {
	return c.GmailCredentials != ""
}

// ValidateServer checks the settings the API server needs.
func (c Config) ValidateServer() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("MAILTRIAGE_JWT_SECRET is required"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("MAILTRIAGE_HTTP_ADDR must not be empty"))
	}
	if c.GmailEnabled() && c.SyncInterval < time.Minute {
		errs = append(errs, errors.New("MAILTRIAGE_SYNC_INTERVAL_MINUTES must be at least 1"))
	}
	return errors.Join(errs...)
}

// ValidateBot checks the settings the Telegram bot needs.
func (c Config) ValidateBot() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("MAILTRIAGE_TELEGRAM_TOKEN is required"))
	}
	if c.APIURL != "" && c.APIToken == "" {
		errs = append(errs, errors.New("MAILTRIAGE_API_TOKEN is required with MAILTRIAGE_API_URL"))
	}
	if c.DigestTime != "" {
		if _, err := time.Parse("15:04", c.DigestTime); err != nil {
			errs = append(errs, fmt.Errorf("MAILTRIAGE_DIGEST_TIME %q: expected HH:MM", c.DigestTime))
		}
	}
	return errors.Join(errs...)
}

func hours(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Hour
}
