package repositorycache

import (
	"context"
	"strings"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/model"
	"github.com/goliatone/go-storefront-cache/remote"
)

// Remote collection and field names.
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionPromotions = "promotions"
	CollectionUsers      = "users"

	FieldCategory  = "category"
	FieldFeatured  = "featured"
	FieldPopular   = "popular"
	FieldTimestamp = "timestamp"
	FieldActive    = "active"
	FieldName      = "name"
	FieldImageURL  = "imageUrl"
)

// DefaultListLimit applies to the featured list and to popular and new
// lists requested with a non-positive limit.
const DefaultListLimit = 10

// ProductRepository serves catalog reads from the cache, the remote store,
// or stale data, in that order. Every method returns a future that never
// fails: remote errors degrade to stale values or empty results.
type ProductRepository struct {
	*engine
}

// NewProductRepository builds a repository over store and binding. A nil
// probe means always online.
func NewProductRepository(store cache.Store, binding *remote.Binding, probe connectivity.Probe, opts ...Option) *ProductRepository {
	return &ProductRepository{engine: newEngine(store, binding, probe, opts...)}
}

// FetchByID delivers the product or nil when it does not exist or cannot be
// loaded. A missing document is not cached.
func (r *ProductRepository) FetchByID(ctx context.Context, id string) *async.Future[*model.Product] {
	if strings.TrimSpace(id) == "" {
		return async.Ready[*model.Product](nil)
	}
	return fetch(ctx, r.engine, plan[*model.Product]{
		op:         "FetchByID",
		key:        cache.NamespaceProduct.Key(id),
		collection: CollectionProducts,
		load: func(ctx context.Context) (*model.Product, bool, error) {
			doc, err := r.binding.Get(ctx, CollectionProducts, id).Result()
			if err != nil || doc == nil {
				return nil, false, err
			}
			p := model.ProductCodec.Decode(doc.ID, doc.Fields)
			return &p, true, nil
		},
		clone: cloneProductPtr,
		empty: func() *model.Product { return nil },
	})
}

// FetchByCategory delivers products whose category equals category.
func (r *ProductRepository) FetchByCategory(ctx context.Context, category string) *async.Future[[]model.Product] {
	return r.fetchList(ctx, "FetchByCategory", cache.NamespaceCategory.Key(category),
		remote.Query(CollectionProducts).Where(FieldCategory, category))
}

// FetchFeatured delivers up to DefaultListLimit featured products.
func (r *ProductRepository) FetchFeatured(ctx context.Context) *async.Future[[]model.Product] {
	return r.fetchList(ctx, "FetchFeatured", cache.NamespaceFeaturedProducts.Key(),
		remote.Query(CollectionProducts).Where(FieldFeatured, true).WithLimit(DefaultListLimit))
}

// FetchPopular delivers up to limit popular products.
func (r *ProductRepository) FetchPopular(ctx context.Context, limit int) *async.Future[[]model.Product] {
	limit = listLimit(limit)
	return r.fetchList(ctx, "FetchPopular", cache.NamespacePopularProducts.Key(limit),
		remote.Query(CollectionProducts).Where(FieldPopular, true).WithLimit(limit))
}

// FetchNew delivers up to limit products, newest first. An empty answer is
// a valid result and replaces the previous entry.
func (r *ProductRepository) FetchNew(ctx context.Context, limit int) *async.Future[[]model.Product] {
	limit = listLimit(limit)
	return r.fetchList(ctx, "FetchNew", cache.NamespaceNewProducts.Key(limit),
		remote.Query(CollectionProducts).OrderedBy(FieldTimestamp, remote.Descending).WithLimit(limit))
}

// FetchAll delivers the whole catalog.
func (r *ProductRepository) FetchAll(ctx context.Context) *async.Future[[]model.Product] {
	return r.fetchList(ctx, "FetchAll", cache.NamespaceAllProducts.Key(), remote.Query(CollectionProducts))
}

// RefreshProduct drops the cached product and fetches it again.
func (r *ProductRepository) RefreshProduct(ctx context.Context, id string) *async.Future[*model.Product] {
	r.store.Invalidate(cache.NamespaceProduct.Key(id))
	return r.FetchByID(ctx, id)
}

// RefreshCategory drops the cached category list and fetches it again.
func (r *ProductRepository) RefreshCategory(ctx context.Context, category string) *async.Future[[]model.Product] {
	r.store.Invalidate(cache.NamespaceCategory.Key(category))
	return r.FetchByCategory(ctx, category)
}

// RefreshAll drops every product namespace and fetches the whole catalog.
// Other families sharing the store are left alone.
func (r *ProductRepository) RefreshAll(ctx context.Context) *async.Future[[]model.Product] {
	r.ClearCache()
	return r.FetchAll(ctx)
}

// ClearCache drops every product namespace.
func (r *ProductRepository) ClearCache() {
	for _, ns := range cache.ProductFamily {
		r.store.InvalidateNamespace(ns.Prefix())
	}
}

func (r *ProductRepository) fetchList(ctx context.Context, op, key string, spec remote.QuerySpec) *async.Future[[]model.Product] {
	return fetch(ctx, r.engine, plan[[]model.Product]{
		op:         op,
		key:        key,
		collection: spec.Collection,
		load: func(ctx context.Context) ([]model.Product, bool, error) {
			docs, err := r.binding.Query(ctx, spec).Result()
			if err != nil {
				return nil, false, err
			}
			products := make([]model.Product, 0, len(docs))
			for _, doc := range docs {
				products = append(products, model.ProductCodec.Decode(doc.ID, doc.Fields))
			}
			return products, true, nil
		},
		store: func(products []model.Product) {
			r.store.Put(key, products)
			r.writeThrough(products)
		},
		clone: cloneProducts,
		empty: func() []model.Product { return []model.Product{} },
	})
}

// writeThrough caches each listed product under its own key so that later
// FetchByID calls and offline search can see it.
func (r *ProductRepository) writeThrough(products []model.Product) {
	for i := range products {
		if products[i].ProductID == "" {
			continue
		}
		p := products[i].Clone()
		r.store.Put(cache.NamespaceProduct.Key(p.ProductID), &p)
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func cloneProductPtr(p *model.Product) *model.Product {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// matches is the search predicate: a case-insensitive substring match on
// name, description or any tag. needle must already be lower case.
func matches(p model.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
