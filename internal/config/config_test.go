package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8085

[database]
host = "db"
user = "wellness"
password = "from-file"
dbname = "wellness"

[auth]
jwt_secret = "file-secret"

[booking]
timezone = "Europe/Madrid"
request_timeout_seconds = 3
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.HTTPPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 3, cfg.Booking.MaxTxRetries)
	assert.Equal(t, 3*time.Second, cfg.Booking.RequestTimeout())
	assert.Equal(t, 24*time.Hour, cfg.Booking.IdempotencyTTL())
	assert.Equal(t, "Europe/Madrid", cfg.Booking.Location().String())
	assert.Contains(t, cfg.Database.DSN(), "host=db port=5432")
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("AUTH_JWT_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Database: DatabaseConfig{Host: "db", DBName: "wellness"},
			Auth:     AuthConfig{JWTSecret: "s"},
		}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.HTTPPort = 70000 }},
		{name: "no host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "idle over open", mutate: func(c *Config) { c.Database.MaxIdleConns = 100 }},
		{name: "no jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }},
		{name: "unknown timezone", mutate: func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }},
		{name: "negative retries", mutate: func(c *Config) { c.Booking.MaxTxRetries = -1 }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
