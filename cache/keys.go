package cache

import (
	"fmt"
	"strings"
)

// Namespace is the fixed prefix of a cache key naming a query family.
type Namespace string

const (
	NamespaceProduct          Namespace = "product_"
	NamespaceCategory         Namespace = "category_"
	NamespaceAllProducts      Namespace = "all_products"
	NamespaceFeaturedProducts Namespace = "featured_products"
	NamespacePopularProducts  Namespace = "popular_products"
	NamespaceNewProducts      Namespace = "new_products"

	NamespaceUser          Namespace = "user_"
	NamespaceCart          Namespace = "cart_"
	NamespaceAllCategories Namespace = "all_categories"
	NamespacePromotion     Namespace = "active_promotion"
)

// ProductFamily lists every namespace holding product data.
var ProductFamily = []Namespace{
	NamespaceProduct,
	NamespaceCategory,
	NamespaceAllProducts,
	NamespaceFeaturedProducts,
	NamespacePopularProducts,
	NamespaceNewProducts,
}

// KeySeparator joins discriminator segments.
const KeySeparator = "_"

// Key appends the discriminator segments to the namespace. Namespaces that
// already end in the separator take the first segment without a second one.
//
//	NamespaceProduct.Key("42")         // product_42
//	NamespacePopularProducts.Key(10)   // popular_products_10
//	NamespaceAllProducts.Key()         // all_products
func (n Namespace) Key(parts ...any) string {
	if len(parts) == 0 {
		return string(n)
	}

	segments := make([]string, len(parts))
	for i, p := range parts {
		segments[i] = fmt.Sprint(p)
	}

	prefix := string(n)
	if !strings.HasSuffix(prefix, KeySeparator) {
		prefix += KeySeparator
	}
	return prefix + strings.Join(segments, KeySeparator)
}

// Prefix is the string used for namespace scans and invalidation.
func (n Namespace) Prefix() string {
	return string(n)
}

// Owns reports whether key belongs to the namespace.
func (n Namespace) Owns(key string) bool {
	return strings.HasPrefix(key, string(n))
}

// Discriminator strips the namespace from key.
func (n Namespace) Discriminator(key string) (string, bool) {
	if !n.Owns(key) {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, string(n)), KeySeparator), true
}
