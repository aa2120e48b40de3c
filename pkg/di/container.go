package di

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/remote"
	"github.com/goliatone/go-storefront-cache/remote/httpstore"
	"github.com/goliatone/go-storefront-cache/remote/memstore"
	"github.com/goliatone/go-storefront-cache/remote/sqlstore"
	"github.com/goliatone/go-storefront-cache/repositorycache"
)

// Backend names understood by DefaultRegistry.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

// Config selects the cache and the remote store a Container wires together.
type Config struct {
	Cache cache.Config
	// Backend is a name registered in the container's registry.
	Backend string
	// DSN is handed to the backend factory: a seed file for memory, a
	// database DSN for sqlite and postgres, a base URL for http.
	DSN string
	// PoolSize bounds concurrent remote calls.
	PoolSize int
}

// DefaultConfig returns an in-memory setup with the default cache.
func DefaultConfig() Config {
	return Config{
		Cache:    cache.DefaultConfig(),
		Backend:  BackendMemory,
		PoolSize: 8,
	}
}

// Validate checks the container configuration, including the cache section.
func (c Config) Validate() error {
	needsDSN := c.Backend == BackendSQLite || c.Backend == BackendPostgres || c.Backend == BackendHTTP
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required),
		validation.Field(&c.DSN, validation.When(needsDSN, validation.Required)),
		validation.Field(&c.PoolSize, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid container config").
			WithTextCode("INVALID_CONTAINER_CONFIG")
	}
	return c.Cache.Validate()
}

// DefaultRegistry registers the memory, sqlite, postgres and http backends.
func DefaultRegistry(httpOpts ...httpstore.Option) *remote.Registry {
	r := remote.NewRegistry()
	r.Register(BackendMemory, memstore.FileFactory())
	r.Register(BackendSQLite, sqlstore.Factory(sqlstore.DriverSQLite))
	r.Register(BackendPostgres, sqlstore.Factory(sqlstore.DriverPostgres))
	r.Register(BackendHTTP, httpstore.Factory(httpOpts...))
	return r
}

// Option customises a Container.
type Option func(*Container)

// WithLogger sets the logger shared by the binding and the repositories.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock drives cache timestamps, mainly for tests and demos.
func WithClock(clock cache.Clock) Option {
	return func(c *Container) { c.clock = clock }
}

// WithProbe sets the connectivity probe. The default is always online.
func WithProbe(probe connectivity.Probe) Option {
	return func(c *Container) {
		if probe != nil {
			c.probe = probe
		}
	}
}

// WithRegistry replaces DefaultRegistry.
func WithRegistry(registry *remote.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithBackend skips backend resolution and uses backend directly.
func WithBackend(backend remote.Backend) Option {
	return func(c *Container) { c.backend = backend }
}

// WithRepositoryOptions passes options to every repository.
func WithRepositoryOptions(opts ...repositorycache.Option) Option {
	return func(c *Container) {
		c.repoOpts = append(c.repoOpts, opts...)
	}
}

// Container owns one cache store, one remote binding and the repositories
// sharing them. Repositories of one container see each other's writes.
type Container struct {
	config   Config
	logger   *slog.Logger
	clock    cache.Clock
	probe    connectivity.Probe
	registry *remote.Registry
	backend  remote.Backend
	repoOpts []repositorycache.Option

	store   cache.Store
	pool    *async.Pool
	binding *remote.Binding

	products   *repositorycache.ProductRepository
	users      *repositorycache.UserRepository
	categories *repositorycache.CategoryRepository
	promotions *repositorycache.PromotionRepository
}

// NewContainer validates config and wires the container. A backend that
// cannot be resolved is not an error: the binding reports it as unavailable
// and the repositories serve cached or empty results.
func NewContainer(ctx context.Context, config Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config: config,
		logger: slog.Default(),
		probe:  connectivity.Always,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}

	store, err := cache.NewStore(config.Cache, c.clock)
	if err != nil {
		return nil, err
	}
	c.store = store
	c.pool = async.NewPool(config.PoolSize)

	bindOpts := []remote.Option{remote.WithPool(c.pool), remote.WithLogger(c.logger)}
	if c.backend != nil {
		c.binding = remote.NewBinding(c.backend, bindOpts...)
	} else {
		c.binding = remote.Bind(ctx, c.registry, config.Backend, config.DSN, bindOpts...)
	}

	repoOpts := append([]repositorycache.Option{repositorycache.WithLogger(c.logger)}, c.repoOpts...)
	c.products = repositorycache.NewProductRepository(c.store, c.binding, c.probe, repoOpts...)
	c.users = repositorycache.NewUserRepository(c.store, c.binding, c.probe, repoOpts...)
	c.categories = repositorycache.NewCategoryRepository(c.store, c.binding, c.probe, repoOpts...)
	c.promotions = repositorycache.NewPromotionRepository(c.store, c.binding, c.probe, repoOpts...)

	c.logger.Info("storefront container ready",
		"backend", config.Backend,
		"available", c.binding.Available(),
		"cache_backend", config.Cache.Backend,
		"ttl", config.Cache.TTL,
	)
	return c, nil
}

// NewContainerWithDefaults wires an in-memory container with DefaultConfig.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, DefaultConfig(), opts...)
}

// Config returns the configuration the container was built with.
func (c *Container) Config() Config {
	return c.config
}

// Store returns the cache shared by every repository.
func (c *Container) Store() cache.Store {
	return c.store
}

func (c *Container) Binding() *remote.Binding {
	return c.binding
}

func (c *Container) Probe() connectivity.Probe {
	return c.probe
}

func (c *Container) Registry() *remote.Registry {
	return c.registry
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

func (c *Container) Products() *repositorycache.ProductRepository {
	return c.products
}

func (c *Container) Users() *repositorycache.UserRepository {
	return c.users
}

func (c *Container) Categories() *repositorycache.CategoryRepository {
	return c.categories
}

func (c *Container) Promotions() *repositorycache.PromotionRepository {
	return c.promotions
}

// ClearAll drops every cache entry of every family.
func (c *Container) ClearAll() {
	c.store.Clear()
}

// Close waits for in-flight remote calls and releases the backend.
func (c *Container) Close() error {
	c.pool.Wait()
	if err := c.binding.Close(); err != nil {
		return fmt.Errorf("di: close binding: %w", err)
	}
	return nil
}
