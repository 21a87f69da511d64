package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"DATABASE_URL": "sqlite://academy.db"}))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "https://academy.beer", cfg.PublicURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Minute, cfg.RankingCacheTTL)
	assert.Equal(t, time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.SeasonOrigin)
	assert.Equal(t, 6, cfg.SeasonMonths)
	assert.False(t, cfg.FacebookEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"DATABASE_URL":          "postgres://localhost/academy",
		"PORT":                  "8080",
		"PUBLIC_URL":            "https://example.com/",
		"CORS_ORIGINS":          "https://a.example, https://b.example ,",
		"FACEBOOK_PAGE_ID":      "123",
		"FACEBOOK_ACCESS_TOKEN": "secret",
		"ENVIRONMENT":           "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://example.com", cfg.PublicURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.FacebookEnabled())
	assert.True(t, cfg.IsProduction())
}

func TestFromViperRejectsBadValues(t *testing.T) {
	_, err := fromViper(newViper(nil))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = fromViper(newViper(map[string]any{"DATABASE_URL": "sqlite://x.db", "SEASON_ORIGIN": "soon"}))
	assert.ErrorContains(t, err, "SEASON_ORIGIN")

	_, err = fromViper(newViper(map[string]any{"DATABASE_URL": "sqlite://x.db", "SEASON_LENGTH_MONTHS": 0}))
	assert.ErrorContains(t, err, "SEASON_LENGTH_MONTHS")
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor("postgres://localhost/academy")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = dialectorFor("sqlite://academy.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = dialectorFor("mysql://localhost/academy")
	assert.Error(t, err)
}
