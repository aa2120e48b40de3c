package repositorycache

import (
	"context"
	"testing"

	"github.com/goliatone/go-storefront-cache/document"
	"github.com/goliatone/go-storefront-cache/model"
	"github.com/goliatone/go-storefront-cache/remote"
	"github.com/goliatone/go-storefront-cache/remote/memstore"
)

func TestUserRepository_FetchByID(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	ctx := context.Background()

	u := awaitValue(t, h.users.FetchByID(ctx, "u-1"))
	if u == nil || u.Name != "Ana" || u.Address == nil || u.Address.City != "Madrid" {
		t.Fatalf("unexpected user %+v", u)
	}

	awaitValue(t, h.users.FetchByID(ctx, "u-1"))
	if calls := h.remote.Calls(memstore.OpGet); calls != 1 {
		t.Errorf("expected the second read to hit the cache, got %d gets", calls)
	}

	if missing := awaitValue(t, h.users.FetchByID(ctx, "nobody")); missing != nil {
		t.Errorf("expected nil for a missing user, got %+v", missing)
	}
	if blank := awaitValue(t, h.users.FetchByID(ctx, " ")); blank != nil {
		t.Errorf("expected nil for a blank id, got %+v", blank)
	}
}

func TestUserRepository_FetchCart(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)

	items := awaitValue(t, h.users.FetchCart(context.Background(), "u-1"))
	if len(items) != 1 || items[0].ProductID != "42" || items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", items)
	}
	if !h.store.IsValid("cart_u-1") {
		t.Error("expected the cart to be cached")
	}

	h.remote.Fail(memstore.ErrInjected)
	empty := awaitValue(t, h.users.FetchCart(context.Background(), "u-2"))
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected an empty cart on failure, got %#v", empty)
	}
}

func TestUserRepository_SaveReplacesCachedProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := model.User{UserID: "u-9", Name: "Bo", Email: "bo@example.com"}
	if _, err := awaitTask(t, h.users.Save(ctx, user)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := awaitValue(t, h.users.FetchByID(ctx, "u-9"))
	if got == nil || got.Email != "bo@example.com" {
		t.Fatalf("expected the saved profile, got %+v", got)
	}
	if calls := h.remote.Calls(memstore.OpGet); calls != 0 {
		t.Errorf("expected Save to populate the cache, got %d gets", calls)
	}
}

func TestUserRepository_WritesReportFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := awaitTask(t, h.users.Save(ctx, model.User{})); err == nil {
		t.Error("expected an error for a missing user id")
	}

	h.store.Put("user_u-1", &model.User{UserID: "u-1", Name: "cached"})
	h.remote.Fail(memstore.ErrInjected, memstore.OpSet, memstore.OpUpdate, memstore.OpDelete)

	tests := []struct {
		name string
		run  func() error
	}{
		{"save", func() error {
			_, err := awaitTask(t, h.users.Save(ctx, model.User{UserID: "u-1", Name: "new"}))
			return err
		}},
		{"update", func() error {
			_, err := awaitTask(t, h.users.UpdateFields(ctx, "u-1", document.Fields{"name": "new"}))
			return err
		}},
		{"delete", func() error {
			_, err := awaitTask(t, h.users.Delete(ctx, "u-1"))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !remote.IsOperationFailed(err) {
				t.Fatalf("expected an operation failure, got %v", err)
			}
			cached, ok := h.store.Get("user_u-1")
			if !ok || cached.Value.(*model.User).Name != "cached" {
				t.Error("a failed write must leave the cache untouched")
			}
		})
	}
}

func TestUserRepository_UpdateAndDeleteInvalidate(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	ctx := context.Background()

	awaitValue(t, h.users.FetchByID(ctx, "u-1"))

	if _, err := awaitTask(t, h.users.UpdateFields(ctx, "u-1", document.Fields{"name": "Ana María"})); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if _, ok := h.store.Get("user_u-1"); ok {
		t.Fatal("expected the update to drop the cached profile")
	}
	if u := awaitValue(t, h.users.FetchByID(ctx, "u-1")); u == nil || u.Name != "Ana María" {
		t.Fatalf("expected the merged profile, got %+v", u)
	}

	if _, err := awaitTask(t, h.users.Delete(ctx, "u-1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := h.store.Get("user_u-1"); ok {
		t.Fatal("expected the delete to drop the cached profile")
	}
	if u := awaitValue(t, h.users.FetchByID(ctx, "u-1")); u != nil {
		t.Errorf("expected the deleted profile to be gone, got %+v", u)
	}
}

func TestCartCollection(t *testing.T) {
	if got := CartCollection("u-1"); got != "users/u-1/cart" {
		t.Errorf("unexpected cart collection %q", got)
	}
}
