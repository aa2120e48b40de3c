package cacheinfra

import (
	"sort"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// MapStore keeps entries in a concurrent map with no capacity bound.
// Nothing is evicted: expired entries remain as stale values until they are
// invalidated or the store is cleared.
type MapStore struct {
	entries *xsync.MapOf[string, Entry]
	ttl     time.Duration
	clock   Clock
}

// NewMapStore validates cfg and builds a map backed store.
func NewMapStore(cfg Config, clock Clock) (*MapStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &MapStore{
		entries: xsync.NewMapOf[string, Entry](),
		ttl:     cfg.TTL,
		clock:   clock,
	}, nil
}

func (s *MapStore) Get(key string) (Entry, bool) {
	return s.entries.Load(key)
}

func (s *MapStore) IsValid(key string) bool {
	e, ok := s.entries.Load(key)
	return ok && e.ValidAt(s.clock.Now(), s.ttl)
}

// Put replaces the entry for key atomically.
func (s *MapStore) Put(key string, value any) Entry {
	now := s.clock.Now()
	entry, _ := s.entries.Compute(key, func(old Entry, loaded bool) (Entry, bool) {
		return Entry{Key: key, Value: value, InsertedAt: insertionTime(now, old, loaded)}, false
	})
	return entry
}

func (s *MapStore) Invalidate(key string) {
	s.entries.Delete(key)
}

func (s *MapStore) InvalidateNamespace(prefix string) {
	for _, key := range s.Keys(prefix) {
		s.entries.Delete(key)
	}
}

func (s *MapStore) Clear() {
	s.entries.Clear()
}

// Keys returns the sorted keys that start with prefix.
func (s *MapStore) Keys(prefix string) []string {
	var keys []string
	s.entries.Range(func(key string, _ Entry) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)
	return keys
}

func (s *MapStore) Len() int {
	return s.entries.Size()
}

func (s *MapStore) TTL() time.Duration {
	return s.ttl
}
