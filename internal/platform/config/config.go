package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Server captures process level configuration.
type Server struct {
	Addr     string `toml:"addr"`
	LogLevel string `toml:"log_level"`

	Store       StoreConfig       `toml:"store"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	Preferences PreferencesConfig `toml:"preferences"`
	Identity    IdentityConfig    `toml:"identity"`
	Catalog     CatalogConfig     `toml:"catalog"`
}

// StoreConfig selects and guards the preference store backend.
type StoreConfig struct {
	Backend          string `toml:"backend"`
	FailureThreshold int    `toml:"failure_threshold"`
	SuccessThreshold int    `toml:"success_threshold"`
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string        `toml:"url"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// PostgresConfig configures the database/sql pool.
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
}

// PreferencesConfig tunes the preference flows.
type PreferencesConfig struct {
	// GracePeriod is how long a flow keeps its loaded value after the last
	// subscriber leaves.
	GracePeriod time.Duration `toml:"grace_period"`
}

// IdentityConfig tunes the X-User-ID injector.
type IdentityConfig struct {
	WaitTimeout time.Duration `toml:"wait_timeout"`
}

// CatalogConfig points at the product-review backend.
type CatalogConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Server {
	return Server{
		Addr:     ":8080",
		LogLevel: "info",
		Store: StoreConfig{
			Backend:          BackendMemory,
			FailureThreshold: 5,
			SuccessThreshold: 3,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 10,
		},
		Preferences: PreferencesConfig{
			GracePeriod: 5 * time.Second,
		},
		Identity: IdentityConfig{
			WaitTimeout: 2 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL: "http://localhost:8081/api",
			Timeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// REVIEWD_CONFIG (if any), then environment variables.
func Load() (Server, error) {
	cfg := Default()
	if path := os.Getenv("REVIEWD_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Server{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile overlays the TOML file at path onto cfg.
func LoadFile(path string, cfg *Server) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Server) {
	setString(&cfg.Addr, "REVIEWD_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Store.Backend, "STORE_BACKEND")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setString(&cfg.Catalog.BaseURL, "CATALOG_BASE_URL")
	setDuration(&cfg.Preferences.GracePeriod, "PREFERENCES_GRACE_PERIOD")
	setDuration(&cfg.Identity.WaitTimeout, "IDENTITY_WAIT_TIMEOUT")
	setDuration(&cfg.Catalog.Timeout, "CATALOG_TIMEOUT")
	setInt(&cfg.Store.FailureThreshold, "STORE_FAILURE_THRESHOLD")
	setInt(&cfg.Store.SuccessThreshold, "STORE_SUCCESS_THRESHOLD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
