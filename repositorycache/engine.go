package repositorycache

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/remote"
)

const tracerName = "github.com/goliatone/go-storefront-cache/repositorycache"

// Outcome is the terminal state of one fetch.
type Outcome string

const (
	OutcomeHit           Outcome = "hit"
	OutcomeStaleOffline  Outcome = "stale_offline"
	OutcomeStored        Outcome = "stored"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeFallbackStale Outcome = "fallback_stale"
	OutcomeFallbackEmpty Outcome = "fallback_empty"
)

// Option configures a repository.
type Option func(*engine)

// WithLogger sets the logger used for outcome and failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithDedupe toggles sharing one remote load between concurrent misses of
// the same key. It is on by default.
func WithDedupe(enabled bool) Option {
	return func(e *engine) {
		if enabled {
			e.group = &singleflight.Group{}
			return
		}
		e.group = nil
	}
}

// WithProbe overrides the connectivity probe.
func WithProbe(probe connectivity.Probe) Option {
	return func(e *engine) {
		if probe != nil {
			e.probe = probe
		}
	}
}

// engine runs the cache, connectivity, remote, fallback sequence shared by
// every repository.
type engine struct {
	store   cache.Store
	binding *remote.Binding
	probe   connectivity.Probe
	logger  *slog.Logger
	tracer  trace.Tracer
	group   *singleflight.Group
}

func newEngine(store cache.Store, binding *remote.Binding, probe connectivity.Probe, opts ...Option) *engine {
	if probe == nil {
		probe = connectivity.Always
	}
	if binding == nil {
		binding = remote.NewBinding(nil)
	}
	e := &engine{
		store:   store,
		binding: binding,
		probe:   probe,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
		group:   &singleflight.Group{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// plan describes one cacheable read.
type plan[T any] struct {
	op         string
	key        string
	collection string

	// load runs the remote read. found is false when there is nothing to
	// cache, for example a missing document.
	load func(ctx context.Context) (value T, found bool, err error)
	// store writes a loaded value. Nil means a plain Put under key.
	store func(value T)
	clone func(T) T
	empty func() T
}

type loaded[T any] struct {
	value T
	found bool
}

// fetch resolves p against the cache first and the remote store second. The
// returned future always delivers exactly one value.
func fetch[T any](ctx context.Context, e *engine, p plan[T]) *async.Future[T] {
	ctx, span := e.tracer.Start(ctx, toSnake(p.op), trace.WithAttributes(
		attribute.String("cache.key", p.key),
		attribute.String("remote.collection", p.collection),
	))
	finish := func(outcome Outcome, err error) {
		e.report(ctx, span, p.op, p.key, outcome, err)
	}

	if v, ok := cache.LookupValid[T](e.store, p.key); ok {
		finish(OutcomeHit, nil)
		return async.Ready(p.clone(v))
	}

	if !e.probe.IsOnline() {
		if v, ok := cache.Lookup[T](e.store, p.key); ok {
			finish(OutcomeStaleOffline, nil)
			return async.Ready(p.clone(v))
		}
	}

	// Waiting happens on a plain goroutine; the remote calls themselves are
	// bounded by the binding's pool.
	task := async.Run(nil, func() (loaded[T], error) {
		return load(ctx, e, p)
	})

	delivered := async.Then(task, func(res loaded[T]) (T, error) {
		if !res.found {
			finish(OutcomeNotFound, nil)
			return res.value, nil
		}
		finish(OutcomeStored, nil)
		return p.clone(res.value), nil
	})

	return async.Recover(delivered, func(err error) T {
		if v, ok := cache.Lookup[T](e.store, p.key); ok {
			finish(OutcomeFallbackStale, err)
			return p.clone(v)
		}
		finish(OutcomeFallbackEmpty, err)
		return p.empty()
	})
}

func load[T any](ctx context.Context, e *engine, p plan[T]) (loaded[T], error) {
	// A shared load must outlive any single caller.
	ctx = context.WithoutCancel(ctx)

	run := func() (any, error) {
		v, found, err := p.load(ctx)
		if err != nil {
			return nil, err
		}
		if found {
			if p.store != nil {
				p.store(v)
			} else {
				e.store.Put(p.key, v)
			}
		}
		return loaded[T]{value: v, found: found}, nil
	}

	var (
		res any
		err error
	)
	if e.group != nil {
		res, err, _ = e.group.Do(p.key, run)
	} else {
		res, err = run()
	}
	if err != nil {
		return loaded[T]{}, err
	}
	return res.(loaded[T]), nil
}

func (e *engine) report(ctx context.Context, span trace.Span, op, key string, outcome Outcome, err error) {
	defer span.End()

	span.SetAttributes(attribute.String("cache.outcome", string(outcome)))
	attrs := []any{"op", op, "key", key, "outcome", string(outcome)}
	if tags := cacheTagsFromContext(ctx); len(tags) > 0 {
		span.SetAttributes(attribute.StringSlice("cache.tags", tags))
		attrs = append(attrs, "tags", tags)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.WarnContext(ctx, "remote fetch failed, using fallback", append(attrs, "error", err)...)
		return
	}
	e.logger.DebugContext(ctx, "fetch completed", attrs...)
}
