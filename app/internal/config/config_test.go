package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Auth.JWTSecret = "secret"
	cfg.Fulfillment.APIKey = "pf-key"
	return cfg
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	require.Equal(t, Default().HTTP.Addr, cfg.HTTP.Addr)
	require.Equal(t, 30*24*time.Hour, cfg.Cart.SlotTTL)
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/shop"
cart:
  sync_timeout: 3s
kafka:
  brokers: ["localhost:9092"]
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, 3*time.Second, cfg.Cart.SyncTimeout)
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 2*time.Hour, cfg.Cart.IdleTTL, "unset keys keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7000")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CART_SYNC_TIMEOUT", "750ms")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := Load("")

	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTP.Addr)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 750*time.Millisecond, cfg.Cart.SyncTimeout)
	require.True(t, cfg.Database.AutoMigrate)
}

func TestLoad_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [oops"), 0o600))
	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("CART_SYNC_TIMEOUT", "soon")
	_, err = Load("")
	require.ErrorContains(t, err, "CART_SYNC_TIMEOUT")
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, want: "invalid database driver"},
		{name: "dsn", mutate: func(c *Config) { c.Database.DSN = "" }, want: "dsn"},
		{name: "jwt", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, want: "JWT_SECRET"},
		{name: "printful", mutate: func(c *Config) { c.Fulfillment.APIKey = "" }, want: "PRINTFUL_API_KEY"},
		{name: "sync timeout", mutate: func(c *Config) { c.Cart.SyncTimeout = 0 }, want: "sync_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
