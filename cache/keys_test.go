package cache

import "testing"

func TestNamespace_Key(t *testing.T) {
	tests := []struct {
		ns    Namespace
		parts []any
		want  string
	}{
		{NamespaceProduct, []any{"42"}, "product_42"},
		{NamespaceCategory, []any{"furniture"}, "category_furniture"},
		{NamespaceAllProducts, nil, "all_products"},
		{NamespaceFeaturedProducts, nil, "featured_products"},
		{NamespacePopularProducts, []any{10}, "popular_products_10"},
		{NamespaceNewProducts, []any{5}, "new_products_5"},
		{NamespaceUser, []any{"u-1"}, "user_u-1"},
		{NamespaceCart, []any{"u-1"}, "cart_u-1"},
	}

	for _, tt := range tests {
		if got := tt.ns.Key(tt.parts...); got != tt.want {
			t.Errorf("%s.Key(%v) = %q, want %q", tt.ns, tt.parts, got, tt.want)
		}
	}
}

func TestNamespace_Discriminator(t *testing.T) {
	id, ok := NamespaceProduct.Discriminator("product_42")
	if !ok || id != "42" {
		t.Errorf("expected 42, got %q (ok=%v)", id, ok)
	}

	limit, ok := NamespacePopularProducts.Discriminator("popular_products_10")
	if !ok || limit != "10" {
		t.Errorf("expected 10, got %q (ok=%v)", limit, ok)
	}

	if _, ok := NamespaceProduct.Discriminator("category_furniture"); ok {
		t.Error("expected a foreign key to be rejected")
	}
}

func TestProductFamily_ExcludesOtherFamilies(t *testing.T) {
	for _, ns := range ProductFamily {
		for _, key := range []string{"user_u-1", "cart_u-1", "all_categories", "active_promotion"} {
			if ns.Owns(key) {
				t.Errorf("product namespace %q must not own %q", ns, key)
			}
		}
	}
}
