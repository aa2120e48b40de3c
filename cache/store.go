package cache

import (
	"time"

	"github.com/goliatone/go-storefront-cache/internal/cacheinfra"
)

// Entry is a cached value together with its insertion time.
type Entry = cacheinfra.Entry

// Clock supplies the current time. Tests inject a controllable one.
type Clock = cacheinfra.Clock

// SystemClock reads the wall clock.
type SystemClock = cacheinfra.SystemClock

// Store is the namespaced TTL cache shared by the repositories.
//
// Get never has side effects: expired entries are still returned so callers
// can serve them as stale values. Validity is checked with IsValid.
type Store interface {
	Get(key string) (Entry, bool)
	IsValid(key string) bool
	Put(key string, value any) Entry
	Invalidate(key string)
	InvalidateNamespace(prefix string)
	Clear()
	Keys(prefix string) []string
	Len() int
	TTL() time.Duration
}

// Lookup returns the entry value for key as T, ignoring validity.
// A missing key or a value of another type reports false.
func Lookup[T any](s Store, key string) (T, bool) {
	var zero T
	e, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := e.Value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// LookupValid is Lookup restricted to entries still inside the TTL.
func LookupValid[T any](s Store, key string) (T, bool) {
	if !s.IsValid(key) {
		var zero T
		return zero, false
	}
	return Lookup[T](s, key)
}
