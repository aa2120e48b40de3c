package cacheinfra

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// SturdycStore is the capacity bounded store. sturdyc owns retention and
// eviction; validity is still judged against TTL and the injected clock, so
// an entry can be stale long before sturdyc drops it.
type SturdycStore struct {
	client *sturdyc.Client[Entry]
	ttl    time.Duration
	clock  Clock

	// mu serializes read-modify-write in Put.
	mu sync.Mutex
}

// NewSturdycStore validates cfg and builds a sturdyc client from it.
func NewSturdycStore(cfg Config, clock Clock) (*SturdycStore, error) {
	cfg.Backend = BackendSturdyc
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}

	client := sturdyc.New[Entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.Retention,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{client: client, ttl: cfg.TTL, clock: clock}, nil
}

func (s *SturdycStore) Get(key string) (Entry, bool) {
	return s.client.Get(key)
}

func (s *SturdycStore) IsValid(key string) bool {
	e, ok := s.client.Get(key)
	return ok && e.ValidAt(s.clock.Now(), s.ttl)
}

func (s *SturdycStore) Put(key string, value any) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, loaded := s.client.Get(key)
	entry := Entry{Key: key, Value: value, InsertedAt: insertionTime(s.clock.Now(), old, loaded)}
	s.client.Set(key, entry)
	return entry
}

func (s *SturdycStore) Invalidate(key string) {
	s.client.Delete(key)
}

func (s *SturdycStore) InvalidateNamespace(prefix string) {
	for _, key := range s.Keys(prefix) {
		s.client.Delete(key)
	}
}

func (s *SturdycStore) Clear() {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
}

func (s *SturdycStore) Keys(prefix string) []string {
	var keys []string
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *SturdycStore) Len() int {
	return s.client.Size()
}

func (s *SturdycStore) TTL() time.Duration {
	return s.ttl
}
