package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REDIS_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "bookingapi.db", cfg.Database.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 2*time.Hour, cfg.Redis.CacheTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "file:bookingapi.db?_foreign_keys=on&_busy_timeout=5000", cfg.Database.DSN())
}

func TestLoadPostgresFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "booking")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "bookings")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("CACHE_TTL", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal port=5432 user=booking password=secret dbname=bookings sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "sqlite",
			cfg:  Config{Server: ServerConfig{Port: "8080"}, Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"}},
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Server: ServerConfig{Port: "8080"}, Database: DatabaseConfig{Driver: DriverSQLite}},
			wantErr: true,
		},
		{
			name:    "postgres without host",
			cfg:     Config{Server: ServerConfig{Port: "8080"}, Database: DatabaseConfig{Driver: DriverPostgres, Name: "db", User: "u"}},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Server: ServerConfig{Port: "8080"}, Database: DatabaseConfig{Driver: "mysql"}},
			wantErr: true,
		},
		{
			name:    "missing port",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
