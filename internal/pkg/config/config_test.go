package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slugboard/slugboard/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.CookieSecure())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 12, cfg.Auth.BcryptRotationCost)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s3cret",
		"PORT":         "9000",
		"ENV":          "Production",
		"SESSION_TTL":  "1h",
		"STORE_DRIVER": "postgres",
		"STORE_DSN":    "postgres://localhost/slugboard",
		"REDIS_ADDR":   "localhost:6379",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.True(t, cfg.CookieSecure())
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_MissingSecret(t *testing.T) {
	for _, env := range []map[string]string{{}, {"JWT_SECRET": "  "}} {
		_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
		assert.ErrorIs(t, err, domain.ErrMissingSecret)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":  "s3cret",
		"SESSION_TTL": "forever",
	}))
	assert.Error(t, err)
}

func TestLoad_BcryptCost(t *testing.T) {
	cases := []struct {
		name     string
		cost     string
		rotation string
		ok       bool
	}{
		{"defaults", "10", "12", true},
		{"equal costs", "11", "11", true},
		{"below minimum", "9", "12", false},
		{"test cost", "4", "4", false},
		{"rotation below base", "12", "10", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
				"JWT_SECRET":           "s3cret",
				"BCRYPT_COST":          tc.cost,
				"BCRYPT_ROTATION_COST": tc.rotation,
			}))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
