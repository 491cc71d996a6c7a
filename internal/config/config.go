package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	MoexBaseURL   string
	YahooBaseURL  string
	DigestTime    string // HH:MM; empty disables the daily digest
	LogLevel      string
}

// Load reads configuration from environment variables, with an optional
// .env file for local runs.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MoexBaseURL:   strings.TrimSpace(os.Getenv("MOEX_BASE_URL")),
		YahooBaseURL:  strings.TrimSpace(os.Getenv("YAHOO_BASE_URL")),
		DigestTime:    strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		LogLevel:      strings.TrimSpace(os.Getenv("LOG_LEVEL")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "app_data/database.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}
