// Package config handles loading, validation and access to application
// configuration from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Defaults.
const (
	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second

	defaultStorageBackend = "file"
	defaultStorageDir     = "./data"

	defaultCrawlTimeout   = 10 * time.Second
	defaultCrawlPageDelay = 500 * time.Millisecond
	defaultSearchDelay    = 2 * time.Second
	defaultSearchLimit    = 100
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects and configures the document store backend.
type StorageConfig struct {
	// Backend is one of "file", "memory" or "postgres".
	Backend string `mapstructure:"backend"`
	// Dir is the document directory for the file backend.
	Dir string `mapstructure:"dir"`
	// DSN is the connection string for the postgres backend.
	DSN string `mapstructure:"dsn"`
}

// SearchConfig holds business-search provider settings.
type SearchConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Login    string        `mapstructure:"login"`
	Password string        `mapstructure:"password"`
	Limit    int           `mapstructure:"limit"`
	Delay    time.Duration `mapstructure:"delay"`
}

// CrawlConfig holds website crawl settings.
type CrawlConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	PageDelay time.Duration `mapstructure:"page_delay"`
	VerifyMX  bool          `mapstructure:"verify_mx"`
}

// RedisConfig holds the optional event stream settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Config is the root application configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Search  SearchConfig  `mapstructure:"search"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// Load reads configuration from the given file path (optional) plus
// environment variables prefixed with BRIO_.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app.environment", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("server.read_timeout", defaultServerReadTimeout)
	v.SetDefault("server.write_timeout", defaultServerWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultServerIdleTimeout)
	v.SetDefault("storage.backend", defaultStorageBackend)
	v.SetDefault("storage.dir", defaultStorageDir)
	v.SetDefault("search.limit", defaultSearchLimit)
	v.SetDefault("search.delay", defaultSearchDelay)
	v.SetDefault("crawl.timeout", defaultCrawlTimeout)
	v.SetDefault("crawl.page_delay", defaultCrawlPageDelay)
	v.SetDefault("crawl.verify_mx", false)

	v.SetEnvPrefix("BRIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// No file is fine, defaults and env vars apply.
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Server.Address == "" {
		return errors.New("server.address must not be empty")
	}
	if c.Search.Limit <= 0 {
		return errors.New("search.limit must be positive")
	}
	if c.Crawl.Timeout <= 0 {
		return errors.New("crawl.timeout must be positive")
	}
	return nil
}
