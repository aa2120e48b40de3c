// Package cache provides the in-memory, TTL based entry store shared by the
// storefront repositories.
//
// # Overview
//
// A Store maps string keys to Entries. Keys are built from a Namespace plus
// a discriminator, for example NamespaceProduct.Key("42") yields
// "product_42". Every namespace shares one TTL:
//
//	store, err := cache.NewStore(cache.DefaultConfig(), nil)
//	store.Put(cache.NamespaceProduct.Key("42"), chair)
//	chair, ok := cache.LookupValid[model.Product](store, "product_42")
//
// # Expiry
//
// Entries are never expired eagerly by the default map backend. An entry
// past its TTL is "stale": IsValid reports false but Get still returns it,
// which is what the repositories serve when offline or when the remote store
// fails. Entries leave the store only through Invalidate,
// InvalidateNamespace or Clear.
//
// The sturdyc backend bounds memory instead. It may drop entries once
// Capacity or Retention is reached, so stale fallbacks are best effort there.
//
// # Time
//
// InsertedAt is taken from the configured Clock and never decreases for a
// key, even if the clock steps backwards.
package cache
