package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/eddychk/viagoscrap/internal/notify"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DBPath string

	// Scraping
	Headless      bool
	TimeoutMs     int
	RespectRobots bool
	ScraperDebug  bool

	// Scheduling
	ScrapeIntervalMin int
	MaxConcurrent     int

	// HTTP server
	HTTPPort string
	APIKey   string

	// Notifications
	EmailProvider  string // "resend" or "smtp"
	ResendAPIKey   string
	AlertFromEmail string
	AlertToEmail   string
	DashboardURL   string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPUseTLS     bool
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DBPath:            "data/viagoscrap.db",
		Headless:          false,
		TimeoutMs:         30000,
		RespectRobots:     true,
		ScrapeIntervalMin: 15,
		MaxConcurrent:     2,
		HTTPPort:          "8000",
		EmailProvider:     "resend",
		DashboardURL:      "http://127.0.0.1:8000",
		SMTPPort:          587,
		SMTPUseTLS:        true,
	}
}

// LoadFromEnv loads .env (if present) then overrides config from
// environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		c.Headless = envBool(v)
	}
	if v := os.Getenv("TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TimeoutMs = n
		}
	}
	if v := os.Getenv("SCRAPE_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			c.ScrapeIntervalMin = n
		}
	}
	if v := os.Getenv("VIAGO_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("VIAGO_RESPECT_ROBOTS"); v != "" {
		c.RespectRobots = envBool(v)
	}
	if v := os.Getenv("SCRAPER_DEBUG"); v != "" {
		c.ScraperDebug = envBool(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("VIAGO_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("EMAIL_PROVIDER"); v != "" {
		c.EmailProvider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.ResendAPIKey = v
	}
	if v := os.Getenv("ALERT_FROM_EMAIL"); v != "" {
		c.AlertFromEmail = v
	}
	if v := os.Getenv("ALERT_TO_EMAIL"); v != "" {
		c.AlertToEmail = v
	}
	if v := os.Getenv("DASHBOARD_URL"); v != "" {
		c.DashboardURL = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SMTPPort = n
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTPUsername = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTPPassword = v
	}
	if v := os.Getenv("SMTP_USE_TLS"); v != "" {
		c.SMTPUseTLS = envBool(v)
	}
}

// Notify maps the email settings into the notifier's config.
func (c *Config) Notify() notify.Config {
	return notify.Config{
		Provider:       c.EmailProvider,
		ResendAPIKey:   c.ResendAPIKey,
		FromEmail:      c.AlertFromEmail,
		DefaultToEmail: c.AlertToEmail,
		DashboardURL:   c.DashboardURL,
		SMTPHost:       c.SMTPHost,
		SMTPPort:       c.SMTPPort,
		SMTPUsername:   c.SMTPUsername,
		SMTPPassword:   c.SMTPPassword,
		SMTPUseTLS:     c.SMTPUseTLS,
	}
}

// NotificationsEnabled reports whether the configured provider has enough
// credentials to actually send.
func (c *Config) NotificationsEnabled() bool {
	if c.EmailProvider == "smtp" {
		return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != "" && c.AlertFromEmail != ""
	}
	return c.ResendAPIKey != "" && c.AlertFromEmail != ""
}

func envBool(v string) bool {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(v), `"'`)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
