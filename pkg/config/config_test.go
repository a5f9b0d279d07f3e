package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 100, cfg.RateLimit.DefaultPerHour)
	assert.Equal(t, 10, cfg.RateLimit.CatalogPerMin)
	assert.Equal(t, 20, cfg.RateLimit.StockPerMin)
	assert.Equal(t, 30, cfg.RateLimit.QueryPerMin)
	assert.Equal(t, 60*time.Second, cfg.Cache.InventoryTTL)
	assert.Equal(t, 10*time.Second, cfg.Dispatcher.ApplyTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Dispatcher.RetryBackoff)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Empty(t, cfg.Auth.Users)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "MEMORY")
	v.Set("HTTP_PORT", "9090")
	v.Set("DISPATCHER_WORKERS", 4)
	v.Set("APPLY_RETRY_BACKOFF_MS", "10")
	v.Set("DB_AUTO_MIGRATE", "false")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092")
	v.Set("AUTH_USERS", "admin:$2a$10$abc,ops:$2a$10$def")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 4, cfg.Dispatcher.Workers)
	assert.Equal(t, 10*time.Millisecond, cfg.Dispatcher.RetryBackoff)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, map[string]string{"admin": "$2a$10$abc", "ops": "$2a$10$def"}, cfg.Auth.Users)
}

func TestFromViper_Validation(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "sqlite")
	_, err := FromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("APP_ENV", "production")
	_, err = FromViper(v)
	assert.Error(t, err, "JWT_SECRET es obligatorio fuera de development")

	v.Set("JWT_SECRET", "s3cr3t")
	_, err = FromViper(v)
	assert.NoError(t, err)

	v = viper.New()
	v.Set("AUTH_USERS", "sin-hash")
	_, err = FromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
