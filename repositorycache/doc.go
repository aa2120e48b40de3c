// Package repositorycache provides the storefront repositories: products,
// users, categories and promotions, each serving reads through the shared
// cache.Store.
//
// # Overview
//
// Every read follows the same policy:
//
//  1. A valid cache entry is delivered immediately, with no remote call.
//  2. When the connectivity probe reports offline and an entry exists, the
//     stale entry is delivered, again with no remote call.
//  3. Otherwise the remote store is queried through the remote.Binding. The
//     documents are converted, stored under the request key and delivered.
//     List reads also write each product through under product_<id>.
//  4. Any remote failure delivers the cached entry regardless of its age,
//     or an empty result when there is none.
//
// Reads return *async.Future values, which never fail. Callers that need
// to block use Await with their own context:
//
//	products := repositorycache.NewProductRepository(store, binding, probe)
//	chairs, ok := products.FetchByCategory(ctx, "furniture").Await(ctx)
//
// # Concurrent misses
//
// Concurrent misses for the same key share one remote load by default
// (see WithDedupe). The shared load is detached from the callers' contexts,
// so a caller that stops waiting does not fail the others.
//
// # Writes
//
// UserRepository writes (Save, UpdateFields, Delete) return *async.Task
// values that do report failure. A successful write refreshes or drops the
// cached profile.
//
// # Observability
//
// Each read opens a span named after the operation in snake case
// (fetch_by_category, fetch_all, ...). The span carries cache.key,
// remote.collection and cache.outcome, plus cache.tags when the context was
// prepared with WithCacheTags. Outcomes are logged at debug level and
// failures at warn level through log/slog.
package repositorycache
