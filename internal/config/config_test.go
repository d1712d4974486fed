package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("SESSION_DURATION", "")

	cfg := Load()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sql", cfg.StoreBackend)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("LOGIN_RATE_LIMIT", "not-a-number")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.True(t, cfg.IsProduction())
}

func TestValidateTimezone(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "default", timezone: "", wantErr: false},
		{name: "named zone", timezone: "America/New_York", wantErr: false},
		{name: "unknown zone", timezone: "Not/AZone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_TIMEZONE", tt.timezone)

			err := Load().Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Not/AZone")
				return
			}
			assert.NoError(t, err)
		})
	}
}
