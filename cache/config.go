package cache

import (
	"time"

	"github.com/goliatone/go-storefront-cache/internal/cacheinfra"
)

// Backend names for Config.Backend.
const (
	BackendMap     = cacheinfra.BackendMap
	BackendSturdyc = cacheinfra.BackendSturdyc
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Backend is BackendMap (default, unbounded) or BackendSturdyc (bounded).
	Backend string
	// TTL applies to every namespace.
	TTL time.Duration

	Capacity           int
	NumShards          int
	EvictionPercentage int
	Retention          time.Duration
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewStore constructs the store selected by cfg.Backend. A nil clock uses
// the wall clock.
func NewStore(cfg Config, clock Clock) (Store, error) {
	if cfg.Backend == BackendSturdyc {
		s, err := cacheinfra.NewSturdycStore(cfg.toInternal(), clock)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := cacheinfra.NewMapStore(cfg.toInternal(), clock)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Backend:            c.Backend,
		TTL:                c.TTL,
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		Retention:          c.Retention,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Backend:            cfg.Backend,
		TTL:                cfg.TTL,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		Retention:          cfg.Retention,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
