package di

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/model"
	"github.com/goliatone/go-storefront-cache/pkg/testsupport"
	"github.com/goliatone/go-storefront-cache/remote"
	"github.com/goliatone/go-storefront-cache/remote/memstore"
)

func await[T any](t *testing.T, v interface {
	Await(context.Context) (T, bool)
}) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, ok := v.Await(ctx)
	if !ok {
		t.Fatal("future was not delivered in time")
	}
	return got
}

func TestNewContainer(t *testing.T) {
	config := Config{
		Cache: cache.Config{
			Backend:            cache.BackendSturdyc,
			TTL:                5 * time.Minute,
			Capacity:           1000,
			NumShards:          16,
			EvictionPercentage: 10,
			Retention:          time.Hour,
		},
		Backend:  BackendMemory,
		PoolSize: 4,
	}

	container, err := NewContainer(context.Background(), config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.Store() == nil {
		t.Error("Container should have a non-nil store")
	}
	if !container.Binding().Available() {
		t.Error("expected the memory backend to resolve")
	}
	if container.Products() == nil || container.Users() == nil ||
		container.Categories() == nil || container.Promotions() == nil {
		t.Error("expected every repository to be wired")
	}
	if got := container.Store().TTL(); got != config.Cache.TTL {
		t.Errorf("expected TTL %v, got %v", config.Cache.TTL, got)
	}
	if stored := container.Config(); stored.PoolSize != config.PoolSize {
		t.Errorf("expected pool size %d, got %d", config.PoolSize, stored.PoolSize)
	}
	if names := container.Registry().Names(); len(names) != 4 {
		t.Errorf("expected 4 registered backends, got %v", names)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background())
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	defaults := DefaultConfig()
	if container.Config().Backend != defaults.Backend {
		t.Errorf("expected backend %q, got %q", defaults.Backend, container.Config().Backend)
	}
	if container.Store().TTL() != defaults.Cache.TTL {
		t.Errorf("expected default TTL %v, got %v", defaults.Cache.TTL, container.Store().TTL())
	}
	if !container.Probe().IsOnline() {
		t.Error("expected the default probe to report online")
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing backend", func(c *Config) { c.Backend = "" }},
		{"sqlite without dsn", func(c *Config) { c.Backend = BackendSQLite }},
		{"http without dsn", func(c *Config) { c.Backend = BackendHTTP }},
		{"zero pool", func(c *Config) { c.PoolSize = 0 }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			if _, err := NewContainer(context.Background(), config); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestConfigValidate_PoolSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -3, true},
		{"one", 1, false},
		{"default", DefaultConfig().PoolSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.PoolSize = tt.size

			err := config.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var e *goerrors.Error
			if !errors.As(err, &e) || e.TextCode != "INVALID_CONTAINER_CONFIG" {
				t.Fatalf("expected INVALID_CONTAINER_CONFIG, got %v", err)
			}
		})
	}
}

func TestNewContainer_UnresolvedBackendDegrades(t *testing.T) {
	config := DefaultConfig()
	config.Backend = "firestore"

	container, err := NewContainer(context.Background(), config)
	if err != nil {
		t.Fatalf("an unresolved backend must not fail construction: %v", err)
	}
	if container.Binding().Available() {
		t.Fatal("expected the binding to be unavailable")
	}

	products := await[[]model.Product](t, container.Products().FetchAll(context.Background()))
	if products == nil || len(products) != 0 {
		t.Errorf("expected an empty catalog, got %#v", products)
	}
}

func TestNewContainer_MemorySeedFile(t *testing.T) {
	config := DefaultConfig()
	config.DSN = testsupport.CatalogPath()

	container, err := NewContainer(context.Background(), config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	categories := await[[]string](t, container.Categories().FetchAll(context.Background()))
	if len(categories) != 2 {
		t.Errorf("expected the seeded categories, got %v", categories)
	}
	banner := await[string](t, container.Promotions().ActiveBannerURL(context.Background()))
	if banner != "https://cdn.example.com/spring.png" {
		t.Errorf("unexpected banner %q", banner)
	}
}

func TestNewContainer_SQLiteBackend(t *testing.T) {
	config := DefaultConfig()
	config.Backend = BackendSQLite
	config.DSN = ":memory:"

	container, err := NewContainer(context.Background(), config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if !container.Binding().Available() {
		t.Fatal("expected the sqlite backend to resolve")
	}

	ctx := context.Background()
	user := model.User{UserID: "u-7", Name: "Eve"}
	if _, err := container.Users().Save(ctx, user).Await(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	container.ClearAll()
	got := await[*model.User](t, container.Users().FetchByID(ctx, "u-7"))
	if got == nil || got.Name != "Eve" {
		t.Fatalf("expected the user from sqlite, got %+v", got)
	}
}

// Repositories of one container share a store, so a product cached by a
// list query is visible to FetchByID and a ClearAll reaches every family.
func TestContainer_SharedStore(t *testing.T) {
	clock := testsupport.NewClock(time.Time{})
	backend := memstore.New()
	backend.SeedAll(testsupport.LoadCatalog(t))
	probe := connectivity.NewStaticProbe(true)

	container, err := NewContainerWithDefaults(context.Background(),
		WithBackend(backend), WithClock(clock), WithProbe(probe))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	ctx := context.Background()

	await[[]model.Product](t, container.Products().FetchAll(ctx))
	await[*model.User](t, container.Users().FetchByID(ctx, "u-1"))
	backend.ResetCalls()

	if p := await[*model.Product](t, container.Products().FetchByID(ctx, "44")); p == nil {
		t.Fatal("expected product 44 from the shared store")
	}
	if calls := backend.TotalCalls(); calls != 0 {
		t.Errorf("expected no remote calls, got %d", calls)
	}

	container.ClearAll()
	if n := container.Store().Len(); n != 0 {
		t.Errorf("expected an empty store after ClearAll, got %d entries", n)
	}

	clock.Advance(time.Hour)
	probe.Set(false)
	if u := await[*model.User](t, container.Users().FetchByID(ctx, "u-1")); u == nil {
		t.Error("expected offline miss to still reach the backend")
	}
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	backend := memstore.New()
	backend.SeedAll(testsupport.LoadCatalog(t))
	backend.SetLatency(5 * time.Millisecond)

	config := DefaultConfig()
	config.PoolSize = 2
	container, err := NewContainer(context.Background(), config, WithBackend(backend))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	ctx := context.Background()
	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				if got := await[[]model.Product](t, container.Products().FetchFeatured(ctx)); len(got) != 2 {
					t.Errorf("worker %d: expected 2 featured products, got %d", i, len(got))
				}
			case 1:
				await[[]model.Product](t, container.Products().Search(ctx, "desk"))
			case 2:
				await[[]string](t, container.Categories().FetchAll(ctx))
			default:
				await[[]model.CartItem](t, container.Users().FetchCart(ctx, "u-1"))
			}
		}(i)
	}
	wg.Wait()

	if err := container.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	want := []string{BackendHTTP, BackendMemory, BackendPostgres, BackendSQLite}
	got := registry.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}

	if _, err := registry.Resolve(context.Background(), "nope", ""); !remote.IsUnavailable(err) {
		t.Errorf("expected an unavailable error, got %v", err)
	}
}
