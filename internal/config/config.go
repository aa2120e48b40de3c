// Package config reads the storefront command configuration from the
// environment. Every variable carries the STOREFRONT_ prefix.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/pkg/di"
	"github.com/goliatone/go-storefront-cache/remote/httpstore"
)

// Prefix is prepended to every variable name.
const Prefix = "STOREFRONT_"

// Config is the command configuration.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Backend  string `env:"BACKEND" envDefault:"memory"`
	DSN      string `env:"DSN"`
	PoolSize int    `env:"POOL_SIZE" envDefault:"8"`
	Dedupe   bool   `env:"DEDUPE" envDefault:"true"`

	Cache CacheConfig `envPrefix:"CACHE_"`
	HTTP  HTTPConfig  `envPrefix:"HTTP_"`
	Probe ProbeConfig `envPrefix:"PROBE_"`
	OTel  OTelConfig  `envPrefix:"OTEL_"`
}

type CacheConfig struct {
	Backend            string        `env:"BACKEND" envDefault:"map"`
	TTL                time.Duration `env:"TTL" envDefault:"30m"`
	Capacity           int           `env:"CAPACITY" envDefault:"10000"`
	NumShards          int           `env:"SHARDS" envDefault:"64"`
	EvictionPercentage int           `env:"EVICTION_PERCENTAGE" envDefault:"10"`
	Retention          time.Duration `env:"RETENTION" envDefault:"24h"`
}

// HTTPConfig applies to the http backend only.
type HTTPConfig struct {
	Codec     string            `env:"CODEC" envDefault:"json"`
	Timeout   time.Duration     `env:"TIMEOUT" envDefault:"10s"`
	RateLimit float64           `env:"RATE_LIMIT"`
	Burst     int               `env:"BURST" envDefault:"1"`
	Headers   map[string]string `env:"HEADERS"`
}

// ProbeConfig enables the HTTP connectivity probe when URL is set.
type ProbeConfig struct {
	URL      string        `env:"URL"`
	Interval time.Duration `env:"INTERVAL" envDefault:"15s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"3s"`
}

type OTelConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"true"`
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
}

// ParseEnv loads configuration from the process environment.
func ParseEnv() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// ParseMap loads configuration from vars instead of the process
// environment. Keys carry the prefix.
func ParseMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ContainerConfig maps the environment onto the container configuration.
func (c Config) ContainerConfig() di.Config {
	return di.Config{
		Cache: cache.Config{
			Backend:            c.Cache.Backend,
			TTL:                c.Cache.TTL,
			Capacity:           c.Cache.Capacity,
			NumShards:          c.Cache.NumShards,
			EvictionPercentage: c.Cache.EvictionPercentage,
			Retention:          c.Cache.Retention,
		},
		Backend:  c.Backend,
		DSN:      c.DSN,
		PoolSize: c.PoolSize,
	}
}

// HTTPOptions configures the http backend client.
func (c Config) HTTPOptions() []httpstore.Option {
	opts := []httpstore.Option{
		httpstore.WithCodec(c.HTTP.Codec),
		httpstore.WithTimeout(c.HTTP.Timeout),
	}
	if len(c.HTTP.Headers) > 0 {
		opts = append(opts, httpstore.WithHeaders(c.HTTP.Headers))
	}
	if c.HTTP.RateLimit > 0 {
		opts = append(opts, httpstore.WithRateLimit(c.HTTP.RateLimit, c.HTTP.Burst))
	}
	return opts
}

// Level maps LogLevel onto slog. Unknown values fall back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
