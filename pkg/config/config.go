package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "CATALOG"

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreDisk   StoreKind = "disk"
	StoreRedis  StoreKind = "redis"
)

type StoreConfig struct {
	Kind     StoreKind `mapstructure:"kind"`
	RedisUrl string    `mapstructure:"redis_url"`
	Prefix   string    `mapstructure:"prefix"`
	Dir      string    `mapstructure:"dir"`
}

// AuthConfig enables client credential tokens for the catalog api when
// TokenUrl is set.
type AuthConfig struct {
	TokenUrl     string `mapstructure:"token_url"`
	ClientId     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Audience     string `mapstructure:"audience"`
}

func (a AuthConfig) Enabled() bool {
	return a.TokenUrl != ""
}

type TrackingConfig struct {
	AmqpUrl string `mapstructure:"amqp_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	BaseUrl     string         `mapstructure:"base_url"`
	PageSize    int            `mapstructure:"page_size"`
	Debounce    time.Duration  `mapstructure:"debounce"`
	Concurrency int            `mapstructure:"concurrency"`
	Listen      string         `mapstructure:"listen"`
	Dataset     string         `mapstructure:"dataset"`
	Store       StoreConfig    `mapstructure:"store"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Tracking    TrackingConfig `mapstructure:"tracking"`
	Log         LogConfig      `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("page_size", 20)
	v.SetDefault("debounce", 150*time.Millisecond)
	v.SetDefault("concurrency", 4)
	v.SetDefault("listen", ":8080")
	v.SetDefault("dataset", "")
	v.SetDefault("store.kind", string(StoreMemory))
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.prefix", "catalog:")
	v.SetDefault("store.dir", "data")
	v.SetDefault("auth.token_url", "")
	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.client_secret", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("tracking.amqp_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// New returns a viper instance reading CATALOG_ prefixed environment
// variables, e.g. CATALOG_STORE_REDIS_URL for store.redis_url.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the optional config file at path, or catalog.{yaml,toml,json}
// from the working directory, on top of defaults and environment.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("catalog")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.BaseUrl = strings.TrimRight(strings.TrimSpace(cfg.BaseUrl), "/")
	cfg.Store.Kind = StoreKind(strings.ToLower(strings.TrimSpace(string(cfg.Store.Kind))))
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = StoreMemory
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 150 * time.Millisecond
	}
}

func validate(cfg *Config) error {
	if cfg.BaseUrl == "" {
		return errors.New("base_url is required")
	}
	switch cfg.Store.Kind {
	case StoreMemory, StoreDisk, StoreRedis:
	default:
		return fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
	if cfg.Store.Kind == StoreRedis && cfg.Store.RedisUrl == "" {
		return errors.New("store.redis_url is required for the redis store")
	}
	if cfg.Auth.Enabled() && cfg.Auth.ClientId == "" {
		return errors.New("auth.client_id is required when auth.token_url is set")
	}
	return nil
}
