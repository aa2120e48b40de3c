package repositorycache

import (
	"context"
	"strings"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/model"
)

// Search delivers products matching query. A blank query matches nothing.
//
// Offline, only products already cached under their own key are scanned.
// Online, the full catalog is fetched (or served from cache) and filtered
// on the client.
func (r *ProductRepository) Search(ctx context.Context, query string) *async.Future[[]model.Product] {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return async.Ready([]model.Product{})
	}

	if !r.probe.IsOnline() {
		return async.Ready(r.searchCached(needle))
	}

	return async.Map(r.FetchAll(ctx), func(all []model.Product) []model.Product {
		out := make([]model.Product, 0)
		for _, p := range all {
			if matches(p, needle) {
				out = append(out, p)
			}
		}
		return out
	})
}

func (r *ProductRepository) searchCached(needle string) []model.Product {
	out := make([]model.Product, 0)
	for _, key := range r.store.Keys(cache.NamespaceProduct.Prefix()) {
		p, ok := cache.Lookup[*model.Product](r.store, key)
		if !ok || p == nil {
			continue
		}
		if matches(*p, needle) {
			out = append(out, p.Clone())
		}
	}
	return out
}
