package repositorycache

import (
	"context"
)

type cacheTagsContextKey struct{}

// WithCacheTags attaches tags to the context. Fetches made with it report
// the tags in their logs and as the cache.tags span attribute, which makes
// it possible to tell which screen or job caused a remote load.
func WithCacheTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}

	existing := cacheTagsFromContext(ctx)
	combined := dedupeStrings(append(existing, tags...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, cacheTagsContextKey{}, combined)
}

func cacheTagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(cacheTagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

// dedupeStrings keeps the first occurrence of each non-empty value.
func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
