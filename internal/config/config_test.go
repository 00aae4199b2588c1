package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BOOKING_TIMEZONE", "Asia/Taipei")
	t.Setenv("DB_DSN", "postgres://localhost/courts")
}

func TestFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.AvailabilityCacheTTL)
	assert.Equal(t, "Asia/Taipei", cfg.BookingTimeZone)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvRequiresTimeZone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BOOKING_TIMEZONE", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidateBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"postgres with dsn", Config{JWTSecret: "s", BookingTimeZone: "UTC", StorageBackend: BackendPostgres, DBDSN: "x"}, false},
		{"postgres without dsn", Config{JWTSecret: "s", BookingTimeZone: "UTC", StorageBackend: BackendPostgres}, true},
		{"memory with catalog", Config{JWTSecret: "s", BookingTimeZone: "UTC", StorageBackend: BackendMemory, CatalogFile: "c.yaml"}, false},
		{"memory without catalog", Config{JWTSecret: "s", BookingTimeZone: "UTC", StorageBackend: BackendMemory}, true},
		{"unknown backend", Config{JWTSecret: "s", BookingTimeZone: "UTC", StorageBackend: "sqlite"}, true},
		{"negative cache ttl", Config{JWTSecret: "s", BookingTimeZone: "UTC", StorageBackend: BackendMemory, CatalogFile: "c.yaml", AvailabilityCacheTTL: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
