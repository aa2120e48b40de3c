package remote

import (
	"context"
	"io"
	"log/slog"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/document"
)

// Binding runs remote operations on the shared worker pool and classifies
// every failure. A Binding without a backend stays usable: each operation
// completes with a BINDING_UNAVAILABLE error.
type Binding struct {
	backend Backend
	reason  string
	pool    *async.Pool
	logger  *slog.Logger
}

// Option configures a Binding.
type Option func(*Binding)

// WithPool runs operations on pool instead of unbounded goroutines.
func WithPool(pool *async.Pool) Option {
	return func(b *Binding) { b.pool = pool }
}

// WithLogger sets the logger used for binding diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binding) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBinding wraps backend. A nil backend produces an unavailable binding.
func NewBinding(backend Backend, opts ...Option) *Binding {
	b := &Binding{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if backend == nil {
		b.reason = "no backend configured"
	}
	return b
}

// Bind resolves name through registry. When resolution fails the error is
// logged and an unavailable binding is returned, so callers degrade instead
// of failing at startup.
func Bind(ctx context.Context, registry *Registry, name, dsn string, opts ...Option) *Binding {
	backend, err := registry.Resolve(ctx, name, dsn)
	b := NewBinding(backend, opts...)
	if err != nil {
		b.reason = err.Error()
		b.logger.Warn("remote binding unavailable", "backend", name, "error", err)
	}
	return b
}

// Available reports whether a backend is bound.
func (b *Binding) Available() bool {
	return b != nil && b.backend != nil
}

// Close releases the backend when it holds resources.
func (b *Binding) Close() error {
	if !b.Available() {
		return nil
	}
	if c, ok := b.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Get fetches one document. The task value is nil when it does not exist.
func (b *Binding) Get(ctx context.Context, collection, id string) *async.Task[*Document] {
	return invoke(ctx, b, "get", func(ctx context.Context, be Backend) (*Document, error) {
		return be.GetDocument(ctx, collection, id)
	})
}

// Query runs spec. An invalid spec fails with INVOCATION_FAILED.
func (b *Binding) Query(ctx context.Context, spec QuerySpec) *async.Task[[]Document] {
	if err := spec.Validate(); err != nil {
		return async.Rejected[[]Document](invocationError("query", err))
	}
	return invoke(ctx, b, "query", func(ctx context.Context, be Backend) ([]Document, error) {
		docs, err := be.QueryDocuments(ctx, spec)
		if err == nil && docs == nil {
			docs = []Document{}
		}
		return docs, err
	})
}

// Set writes a whole document and resolves to the stored id.
func (b *Binding) Set(ctx context.Context, collection, id string, fields document.Fields) *async.Task[string] {
	return invoke(ctx, b, "set", func(ctx context.Context, be Backend) (string, error) {
		return be.SetDocument(ctx, collection, id, document.Clone(fields))
	})
}

// Update merges fields into an existing document.
func (b *Binding) Update(ctx context.Context, collection, id string, fields document.Fields) *async.Task[struct{}] {
	return invoke(ctx, b, "update", func(ctx context.Context, be Backend) (struct{}, error) {
		return struct{}{}, be.UpdateFields(ctx, collection, id, document.Clone(fields))
	})
}

func (b *Binding) Delete(ctx context.Context, collection, id string) *async.Task[struct{}] {
	return invoke(ctx, b, "delete", func(ctx context.Context, be Backend) (struct{}, error) {
		return struct{}{}, be.DeleteDocument(ctx, collection, id)
	})
}

func invoke[T any](ctx context.Context, b *Binding, op string, fn func(context.Context, Backend) (T, error)) *async.Task[T] {
	if !b.Available() {
		reason := "no backend configured"
		if b != nil && b.reason != "" {
			reason = b.reason
		}
		return async.Rejected[T](unavailableError(op, reason))
	}

	backend := b.backend
	return async.Run(b.pool, func() (value T, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				var zero T
				value = zero
				err = invocationError(op, &async.PanicError{Value: rec})
			}
		}()

		value, err = fn(ctx, backend)
		if err != nil {
			var zero T
			return zero, operationError(op, err)
		}
		return value, nil
	})
}
