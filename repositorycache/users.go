package repositorycache

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/cache"
	"github.com/goliatone/go-storefront-cache/connectivity"
	"github.com/goliatone/go-storefront-cache/document"
	"github.com/goliatone/go-storefront-cache/model"
	"github.com/goliatone/go-storefront-cache/remote"
)

// UserRepository serves account profiles and carts with the same cache
// policy as products. Writes go straight to the remote store and report
// their failure, since account flows need to know.
type UserRepository struct {
	*engine
}

func NewUserRepository(store cache.Store, binding *remote.Binding, probe connectivity.Probe, opts ...Option) *UserRepository {
	return &UserRepository{engine: newEngine(store, binding, probe, opts...)}
}

// FetchByID delivers the user or nil.
func (r *UserRepository) FetchByID(ctx context.Context, userID string) *async.Future[*model.User] {
	if strings.TrimSpace(userID) == "" {
		return async.Ready[*model.User](nil)
	}
	return fetch(ctx, r.engine, plan[*model.User]{
		op:         "FetchUserByID",
		key:        cache.NamespaceUser.Key(userID),
		collection: CollectionUsers,
		load: func(ctx context.Context) (*model.User, bool, error) {
			doc, err := r.binding.Get(ctx, CollectionUsers, userID).Result()
			if err != nil || doc == nil {
				return nil, false, err
			}
			u := model.UserCodec.Decode(doc.ID, doc.Fields)
			return &u, true, nil
		},
		clone: func(u *model.User) *model.User {
			if u == nil {
				return nil
			}
			c := u.Clone()
			return &c
		},
		empty: func() *model.User { return nil },
	})
}

// FetchCart delivers the items of the user's cart sub-collection.
func (r *UserRepository) FetchCart(ctx context.Context, userID string) *async.Future[[]model.CartItem] {
	if strings.TrimSpace(userID) == "" {
		return async.Ready([]model.CartItem{})
	}
	collection := CartCollection(userID)
	return fetch(ctx, r.engine, plan[[]model.CartItem]{
		op:         "FetchCart",
		key:        cache.NamespaceCart.Key(userID),
		collection: collection,
		load: func(ctx context.Context) ([]model.CartItem, bool, error) {
			docs, err := r.binding.Query(ctx, remote.Query(collection)).Result()
			if err != nil {
				return nil, false, err
			}
			items := make([]model.CartItem, 0, len(docs))
			for _, doc := range docs {
				items = append(items, model.CartItemCodec.Decode(doc.ID, doc.Fields))
			}
			return items, true, nil
		},
		clone: func(in []model.CartItem) []model.CartItem {
			return append(make([]model.CartItem, 0, len(in)), in...)
		},
		empty: func() []model.CartItem { return []model.CartItem{} },
	})
}

// Save writes the whole profile. On success the cached profile is replaced.
func (r *UserRepository) Save(ctx context.Context, user model.User) *async.Task[struct{}] {
	if strings.TrimSpace(user.UserID) == "" {
		return async.Rejected[struct{}](fmt.Errorf("save user: user id is required"))
	}
	saved := user.Clone()
	return async.Then(
		r.binding.Set(ctx, CollectionUsers, user.UserID, model.UserCodec.Encode(user)),
		func(string) (struct{}, error) {
			r.store.Put(cache.NamespaceUser.Key(saved.UserID), &saved)
			return struct{}{}, nil
		},
	)
}

// UpdateFields merges fields into the stored profile and drops the cached
// copy so the next read sees the merge.
func (r *UserRepository) UpdateFields(ctx context.Context, userID string, fields document.Fields) *async.Task[struct{}] {
	return r.invalidateAfter(userID, r.binding.Update(ctx, CollectionUsers, userID, fields))
}

// Delete removes the profile and its cached copy.
func (r *UserRepository) Delete(ctx context.Context, userID string) *async.Task[struct{}] {
	return r.invalidateAfter(userID, r.binding.Delete(ctx, CollectionUsers, userID))
}

func (r *UserRepository) invalidateAfter(userID string, task *async.Task[struct{}]) *async.Task[struct{}] {
	return async.Then(task, func(struct{}) (struct{}, error) {
		r.store.Invalidate(cache.NamespaceUser.Key(userID))
		return struct{}{}, nil
	})
}

// CartCollection is the sub-collection holding a user's cart.
func CartCollection(userID string) string {
	return CollectionUsers + "/" + userID + "/cart"
}
