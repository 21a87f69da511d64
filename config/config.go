package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the service. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Port        int
	Environment string
	DatabaseURL string
	PublicURL   string
	CORSOrigins []string

	LogLevel    string
	LogEncoding string

	MediaRoot string
	MediaURL  string

	RedisURL        string
	RankingCacheTTL time.Duration

	FacebookAPIURL      string
	FacebookPageID      string
	FacebookAccessToken string

	SentryDSN string

	SeasonOrigin time.Time
	SeasonMonths int
}

var defaults = map[string]any{
	"PORT":                 4000,
	"ENVIRONMENT":          "development",
	"PUBLIC_URL":           "https://academy.beer",
	"CORS_ORIGINS":         "http://localhost:3000",
	"LOG_LEVEL":            "info",
	"LOG_ENCODING":         "json",
	"MEDIA_ROOT":           "media",
	"MEDIA_URL":            "/media/",
	"RANKING_CACHE_TTL":    "10m",
	"FACEBOOK_API_URL":     "https://graph.facebook.com/v2.12",
	"SEASON_ORIGIN":        "2018-01-01",
	"SEASON_LENGTH_MONTHS": 6,
}

// LoadEnv loads .env into the process environment when the file exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                v.GetInt("PORT"),
		Environment:         v.GetString("ENVIRONMENT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		PublicURL:           strings.TrimSuffix(v.GetString("PUBLIC_URL"), "/"),
		CORSOrigins:         splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogEncoding:         v.GetString("LOG_ENCODING"),
		MediaRoot:           v.GetString("MEDIA_ROOT"),
		MediaURL:            v.GetString("MEDIA_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		RankingCacheTTL:     v.GetDuration("RANKING_CACHE_TTL"),
		FacebookAPIURL:      strings.TrimSuffix(v.GetString("FACEBOOK_API_URL"), "/"),
		FacebookPageID:      v.GetString("FACEBOOK_PAGE_ID"),
		FacebookAccessToken: v.GetString("FACEBOOK_ACCESS_TOKEN"),
		SentryDSN:           v.GetString("SENTRY_DSN"),
		SeasonMonths:        v.GetInt("SEASON_LENGTH_MONTHS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required in .env or environment")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.SeasonMonths <= 0 {
		return nil, fmt.Errorf("invalid SEASON_LENGTH_MONTHS %d", cfg.SeasonMonths)
	}

	origin, err := time.Parse("2006-01-02", v.GetString("SEASON_ORIGIN"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEASON_ORIGIN: %w", err)
	}
	cfg.SeasonOrigin = origin

	return cfg, nil
}

// FacebookEnabled reports whether game announcements can be posted.
func (c *Config) FacebookEnabled() bool {
	return c.FacebookPageID != "" && c.FacebookAccessToken != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
