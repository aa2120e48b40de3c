package cacheinfra

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/testsupport"
)

type entryStore interface {
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

func newStores(t *testing.T, clock Clock) map[string]entryStore {
	t.Helper()

	cfg := DefaultConfig()

	mapStore, err := NewMapStore(cfg, clock)
	if err != nil {
		t.Fatalf("NewMapStore: %v", err)
	}

	sturdyStore, err := NewSturdycStore(cfg, clock)
	if err != nil {
		t.Fatalf("NewSturdycStore: %v", err)
	}

	return map[string]entryStore{
		BackendMap:     mapStore,
		BackendSturdyc: sturdyStore,
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, s entryStore, clock *testsupport.Clock)) {
	for _, name := range []string{BackendMap, BackendSturdyc} {
		t.Run(name, func(t *testing.T) {
			clock := testsupport.NewClock(time.Time{})
			fn(t, newStores(t, clock)[name], clock)
		})
	}
}

func TestStore_ValidWithinTTL(t *testing.T) {
	forEachStore(t, func(t *testing.T, s entryStore, clock *testsupport.Clock) {
		s.Put("product_42", "chair")

		clock.Advance(1000 * time.Second)
		if !s.IsValid("product_42") {
			t.Fatal("expected entry to be valid inside TTL")
		}
		e, ok := s.Get("product_42")
		if !ok || e.Value != "chair" {
			t.Fatalf("expected chair, got %+v (found=%v)", e, ok)
		}

		clock.Advance(800 * time.Second)
		if s.IsValid("product_42") {
			t.Fatal("expected entry to be invalid once TTL elapsed")
		}
		if _, ok := s.Get("product_42"); !ok {
			t.Fatal("expected expired entry to remain readable")
		}
	})
}

func TestStore_PutReplacesAndAdvancesTimestamp(t *testing.T) {
	forEachStore(t, func(t *testing.T, s entryStore, clock *testsupport.Clock) {
		first := s.Put("k", 1)
		clock.Advance(2000 * time.Second)
		second := s.Put("k", 2)

		if !second.InsertedAt.After(first.InsertedAt) {
			t.Errorf("expected timestamp to advance, got %v then %v", first.InsertedAt, second.InsertedAt)
		}
		if e, _ := s.Get("k"); e.Value != 2 {
			t.Errorf("expected replaced value, got %v", e.Value)
		}
	})
}

func TestStore_InsertedAtNeverDecreases(t *testing.T) {
	forEachStore(t, func(t *testing.T, s entryStore, clock *testsupport.Clock) {
		clock.Advance(time.Hour)
		first := s.Put("k", "a")

		clock.Set(testsupport.Epoch)
		second := s.Put("k", "b")

		if second.InsertedAt.Before(first.InsertedAt) {
			t.Errorf("InsertedAt went backwards: %v -> %v", first.InsertedAt, second.InsertedAt)
		}
		if second.Value != "b" {
			t.Errorf("expected value to be replaced, got %v", second.Value)
		}
	})
}

func TestStore_InvalidateNamespace(t *testing.T) {
	forEachStore(t, func(t *testing.T, s entryStore, _ *testsupport.Clock) {
		s.Put("product_1", 1)
		s.Put("product_2", 2)
		s.Put("category_furniture", 3)
		s.Put("user_1", 4)

		if got := s.Keys("product_"); len(got) != 2 || got[0] != "product_1" || got[1] != "product_2" {
			t.Fatalf("unexpected product keys %v", got)
		}

		s.InvalidateNamespace("product_")
		if len(s.Keys("product_")) != 0 {
			t.Error("expected product namespace to be empty")
		}
		if _, ok := s.Get("category_furniture"); !ok {
			t.Error("expected other namespaces to survive")
		}

		s.Invalidate("user_1")
		if _, ok := s.Get("user_1"); ok {
			t.Error("expected user_1 to be removed")
		}

		s.Clear()
		if s.Len() != 0 {
			t.Errorf("expected empty store after Clear, got %d", s.Len())
		}
	})
}

func TestStore_ConcurrentPuts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s entryStore, _ *testsupport.Clock) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s.Put(fmt.Sprintf("product_%d", i%5), i)
				s.IsValid("product_0")
			}(i)
		}
		wg.Wait()

		if got := len(s.Keys("product_")); got != 5 {
			t.Errorf("expected 5 keys, got %d", got)
		}
	})
}

func TestNewStores_RejectInvalidConfig(t *testing.T) {
	if _, err := NewMapStore(Config{}, nil); err == nil {
		t.Error("expected map store to reject zero TTL")
	}
	if _, err := NewSturdycStore(Config{TTL: time.Minute}, nil); err == nil {
		t.Error("expected sturdyc store to reject missing capacity")
	}
}
