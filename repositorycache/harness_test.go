package repositorycache

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/model"
	"github.com/goliatone/go-storefront-cache/pkg/testsupport"
	"github.com/goliatone/go-storefront-cache/remote"
	"github.com/goliatone/go-storefront-cache/remote/memstore"
)

const testTTL = 1800 * time.Second

type harness struct {
	clock  *testsupport.Clock
	store  cache.Store
	remote *memstore.Store
	probe  *connectivity.StaticProbe

	binding    *remote.Binding
	products   *ProductRepository
	users      *UserRepository
	categories *CategoryRepository
	promotions *PromotionRepository
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	clock := testsupport.NewClock(time.Time{})
	cfg := cache.DefaultConfig()
	cfg.TTL = testTTL
	store, err := cache.NewStore(cfg, clock)
	if err != nil {
		t.Fatalf("cache.NewStore: %v", err)
	}

	backend := memstore.New()
	probe := connectivity.NewStaticProbe(true)
	pool := async.NewPool(4)
	binding := remote.NewBinding(backend, remote.WithPool(pool))

	return &harness{
		clock:      clock,
		store:      store,
		remote:     backend,
		probe:      probe,
		binding:    binding,
		products:   NewProductRepository(store, binding, probe, opts...),
		users:      NewUserRepository(store, binding, probe, opts...),
		categories: NewCategoryRepository(store, binding, probe, opts...),
		promotions: NewPromotionRepository(store, binding, probe, opts...),
	}
}

func (h *harness) seedCatalog(t *testing.T) {
	t.Helper()
	h.remote.SeedAll(testsupport.LoadCatalog(t))
}

func awaitValue[T any](t *testing.T, f *async.Future[T]) T {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	v, ok := f.Await(ctx)
	if !ok {
		t.Fatal("future was not delivered in time")
	}
	return v
}

func awaitTask[T any](t *testing.T, task *async.Task[T]) (T, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return task.Await(ctx)
}

func product(id, name string) model.Product {
	return model.Product{
		ProductID: id,
		Name:      name,
		Tags:      []string{},
		ImageURLs: []string{},
		ArModels:  []model.ArModel{},
	}
}

func productNames(products []model.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}
