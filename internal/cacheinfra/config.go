package cacheinfra

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/viccon/sturdyc"
)

// Backend names accepted by Config.Backend.
const (
	BackendMap     = "map"
	BackendSturdyc = "sturdyc"
)

// Config holds the settings for the entry stores in this package.
type Config struct {
	// Backend selects the storage implementation. Empty means BackendMap.
	Backend string

	// TTL is how long an entry counts as valid after it was inserted.
	// Expired entries stay readable as stale values until removed.
	TTL time.Duration

	// The remaining fields only apply to BackendSturdyc.

	// Capacity bounds the number of entries before sturdyc evicts.
	Capacity int

	// NumShards determines the number of sturdyc shards.
	NumShards int

	// EvictionPercentage is the share of a full shard evicted at once (1-100).
	EvictionPercentage int

	// Retention is how long sturdyc keeps an entry at all. It must be at
	// least TTL so that stale fallbacks survive past expiry.
	Retention time.Duration

	// EvictionInterval sets how often sturdyc sweeps retained entries.
	// Zero uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns the unbounded map store with a 30 minute TTL.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMap,
		TTL:                30 * time.Minute,
		Capacity:           10000,
		NumShards:          64,
		EvictionPercentage: 10,
		Retention:          24 * time.Hour,
	}
}

// Validate checks the configuration and returns a validation category error.
func (c Config) Validate() error {
	sturdy := c.Backend == BackendSturdyc

	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(BackendMap, BackendSturdyc)),
		validation.Field(&c.TTL, validation.Required, validation.By(positiveDuration)),
		validation.Field(&c.Capacity, validation.When(sturdy, validation.Required, validation.Min(1))),
		validation.Field(&c.NumShards, validation.When(sturdy, validation.Required, validation.Min(1))),
		validation.Field(&c.EvictionPercentage, validation.When(sturdy, validation.Required, validation.Min(1), validation.Max(100))),
		validation.Field(&c.Retention, validation.When(sturdy, validation.Required, validation.By(atLeast(c.TTL)))),
		validation.Field(&c.EvictionInterval, validation.By(nonNegativeDuration)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid cache config").
			WithTextCode("INVALID_CACHE_CONFIG")
	}
	return nil
}

// ToSturdycOptions maps the optional settings onto sturdyc options.
// Capacity, shards, retention and eviction percentage go to sturdyc.New.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

func positiveDuration(v any) error {
	if d, _ := v.(time.Duration); d <= 0 {
		return validation.NewError("validation_positive", "must be greater than 0")
	}
	return nil
}

func nonNegativeDuration(v any) error {
	if d, _ := v.(time.Duration); d < 0 {
		return validation.NewError("validation_non_negative", "must be non-negative")
	}
	return nil
}

func atLeast(min time.Duration) validation.RuleFunc {
	return func(v any) error {
		if d, _ := v.(time.Duration); d < min {
			return validation.NewError("validation_retention", "must not be shorter than the TTL")
		}
		return nil
	}
}
