package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultExpiration(t *testing.T) {
	clearEnv(t, "JWT_SECRET", "JWT_EXPIRATION_HOURS")
	os.Setenv("JWT_SECRET", "test-secret-key")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
}

func TestNewJWTConfig_CustomExpiration(t *testing.T) {
	tests := []struct {
		name          string
		expiration    string
		expectedHours int
	}{
		{"custom expiration 12 hours", "12", 12},
		{"minimum expiration 1 hour", "1", 1},
		{"one week", "168", 168},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, "JWT_SECRET", "JWT_EXPIRATION_HOURS")
			os.Setenv("JWT_SECRET", "test-secret-key")
			os.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHours, cfg.ExpirationHours)
		})
	}
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	clearEnv(t, "JWT_SECRET", "JWT_EXPIRATION_HOURS")

	cfg, err := NewJWTConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_InvalidExpiration(t *testing.T) {
	tests := []struct {
		name       string
		expiration string
	}{
		{"non-numeric expiration", "invalid"},
		{"zero expiration", "0"},
		{"negative expiration", "-1"},
		{"float expiration", "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, "JWT_SECRET", "JWT_EXPIRATION_HOURS")
			os.Setenv("JWT_SECRET", "test-secret-key")
			os.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "JWT_EXPIRATION_HOURS")
		})
	}
}

func TestJWTConfig_ExpiresIn(t *testing.T) {
	cfg := &JWTConfig{Secret: "s", ExpirationHours: 36}
	assert.Equal(t, 36*time.Hour, cfg.ExpiresIn())
}
