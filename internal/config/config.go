// Package config loads catalog explorer configuration from a YAML file,
// CATALOG_* environment variables and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CATALOG_UPSTREAM_TIMEOUT=5s.
const EnvPrefix = "CATALOG"

type Config struct {
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type UpstreamConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent  string        `mapstructure:"user_agent" validate:"required"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RateLimit  float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst      int           `mapstructure:"burst" validate:"gte=0"`
}

type ResolverConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"gte=1,lte=256"`
	Debounce       time.Duration `mapstructure:"debounce" validate:"gte=0"`
	MinQueryLength int           `mapstructure:"min_query_length" validate:"gte=0"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory redis"`
}

type FavoritesConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=file redis sqlite"`
	// Path is the directory holding the favorites file or database.
	Path string `mapstructure:"path" validate:"required"`
	Key  string `mapstructure:"key" validate:"required"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error disabled"`
	Pretty bool   `mapstructure:"pretty"`
}

// UsesRedis reports whether any component is configured with a Redis backend.
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == "redis" || c.Favorites.Backend == "redis"
}

// Load reads configuration. An empty configFile searches ./catalog.yaml and
// $HOME/.config/catalog-explorer/catalog.yaml; a missing file there is not
// an error. An explicit configFile must exist.
func Load(configFile string) (*Config, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("catalog")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/catalog-explorer")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind the Redis password to the conventional variable as well
	if err := v.BindEnv("redis.password", EnvPrefix+"_REDIS_PASSWORD", "REDIS_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind REDIS_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, fmt.Sprintf("%s: %s", strings.TrimPrefix(e.Namespace(), "Config."), e.Translate(trans)))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.user_agent", "catalog-explorer/0.1.0")
	v.SetDefault("upstream.max_retries", 0)
	v.SetDefault("upstream.rate_limit", 100.0)
	v.SetDefault("upstream.burst", 100)

	v.SetDefault("resolver.max_concurrency", 16)
	v.SetDefault("resolver.debounce", 300*time.Millisecond)
	v.SetDefault("resolver.min_query_length", 2)

	v.SetDefault("cache.backend", "memory")

	v.SetDefault("favorites.backend", "file")
	v.SetDefault("favorites.path", defaultDataDir())
	v.SetDefault("favorites.key", "pokemon-favorites")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "catalog-explorer")
	}
	return ".catalog-explorer"
}
