package repositorycache

import (
	"context"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/document"
	"github.com/goliatone/go-storefront-cache/remote"
)

// CategoryRepository lists category names.
type CategoryRepository struct {
	*engine
}

func NewCategoryRepository(store cache.Store, binding *remote.Binding, probe connectivity.Probe, opts ...Option) *CategoryRepository {
	return &CategoryRepository{engine: newEngine(store, binding, probe, opts...)}
}

// FetchAll delivers every non-empty category name.
func (r *CategoryRepository) FetchAll(ctx context.Context) *async.Future[[]string] {
	return fetch(ctx, r.engine, plan[[]string]{
		op:         "FetchCategories",
		key:        cache.NamespaceAllCategories.Key(),
		collection: CollectionCategories,
		load: func(ctx context.Context) ([]string, bool, error) {
			docs, err := r.binding.Query(ctx, remote.Query(CollectionCategories)).Result()
			if err != nil {
				return nil, false, err
			}
			names := make([]string, 0, len(docs))
			for _, doc := range docs {
				if name := document.String(doc.Fields, FieldName); name != "" {
					names = append(names, name)
				}
			}
			return names, true, nil
		},
		clone: cloneStrings,
		empty: func() []string { return []string{} },
	})
}

// PromotionRepository resolves the storefront banner.
type PromotionRepository struct {
	*engine
}

func NewPromotionRepository(store cache.Store, binding *remote.Binding, probe connectivity.Probe, opts ...Option) *PromotionRepository {
	return &PromotionRepository{engine: newEngine(store, binding, probe, opts...)}
}

// ActiveBannerURL delivers the image of the first active promotion, or ""
// when none is active.
func (r *PromotionRepository) ActiveBannerURL(ctx context.Context) *async.Future[string] {
	return fetch(ctx, r.engine, plan[string]{
		op:         "ActiveBannerURL",
		key:        cache.NamespacePromotion.Key(),
		collection: CollectionPromotions,
		load: func(ctx context.Context) (string, bool, error) {
			spec := remote.Query(CollectionPromotions).Where(FieldActive, true).WithLimit(1)
			docs, err := r.binding.Query(ctx, spec).Result()
			if err != nil {
				return "", false, err
			}
			if len(docs) == 0 {
				return "", true, nil
			}
			return document.String(docs[0].Fields, FieldImageURL), true, nil
		},
		clone: func(s string) string { return s },
		empty: func() string { return "" },
	})
}

func cloneStrings(in []string) []string {
	return append(make([]string, 0, len(in)), in...)
}
