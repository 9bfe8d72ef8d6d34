package config

import (
	"errors"
	"strings"
	"time"

	"finance/internal/money"

	"github.com/spf13/viper"
)

var ErrMissingAPIKey = errors.New("API_KEY not set")

type Config struct {
	AppEnv          string
	Port            string
	DatabasePath    string
	SessionSecret   string
	SessionTTL      time.Duration
	AllowedOrigins  string
	LogLevel        string
	StartingCash    int64
	APIKey          string
	QuoteBaseURL    string
	QuoteNamePath   string
	QuotePricePath  string
	QuoteSymbolPath string
	QuoteTimeout    time.Duration
}

// Load reads an optional .env file in the working directory, then the process
// environment, which takes precedence.
func Load() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "finance.db")
	v.SetDefault("SESSION_SECRET", "dev-secret-change-me")
	v.SetDefault("SESSION_TTL_MINUTES", 24*60)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STARTING_CASH", "10000.00")
	v.SetDefault("QUOTE_BASE_URL", "https://cloud.iexapis.com/stable")
	v.SetDefault("QUOTE_NAME_PATH", "$.companyName")
	v.SetDefault("QUOTE_PRICE_PATH", "$.latestPrice")
	v.SetDefault("QUOTE_SYMBOL_PATH", "$.symbol")
	v.SetDefault("QUOTE_TIMEOUT_SECONDS", 5)

	return Config{
		AppEnv:          v.GetString("APP_ENV"),
		Port:            v.GetString("PORT"),
		DatabasePath:    v.GetString("DATABASE_PATH"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		SessionTTL:      minutes(v.GetInt("SESSION_TTL_MINUTES"), 24*60),
		AllowedOrigins:  v.GetString("ALLOWED_ORIGINS"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		StartingCash:    startingCash(v.GetString("STARTING_CASH")),
		APIKey:          strings.TrimSpace(v.GetString("API_KEY")),
		QuoteBaseURL:    strings.TrimRight(v.GetString("QUOTE_BASE_URL"), "/"),
		QuoteNamePath:   v.GetString("QUOTE_NAME_PATH"),
		QuotePricePath:  v.GetString("QUOTE_PRICE_PATH"),
		QuoteSymbolPath: v.GetString("QUOTE_SYMBOL_PATH"),
		QuoteTimeout:    seconds(v.GetInt("QUOTE_TIMEOUT_SECONDS"), 5),
	}
}

// Validate reports settings the server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func minutes(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Minute
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

func startingCash(raw string) int64 {
	const fallback = 1000000
	parsed, err := money.ParseMinor(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
