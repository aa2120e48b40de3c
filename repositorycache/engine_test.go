package repositorycache

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/goliatone/go-storefront-cache/model"
	"github.com/goliatone/go-storefront-cache/remote/memstore"
)

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestFetch_RecordsOutcomeSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	h := newHarness(t, WithTracer(provider.Tracer("test")))
	h.seedCatalog(t)
	ctx := WithCacheTags(context.Background(), "home")

	awaitValue(t, h.products.FetchByCategory(ctx, "furniture"))
	awaitValue(t, h.products.FetchByCategory(ctx, "furniture"))
	h.clock.Advance(2 * testTTL)
	h.remote.Fail(memstore.ErrInjected)
	awaitValue(t, h.products.FetchByCategory(ctx, "furniture"))
	awaitValue(t, h.products.FetchFeatured(ctx))

	spans := recorder.Ended()
	want := []struct {
		name    string
		key     string
		outcome Outcome
	}{
		{"fetch_by_category", "category_furniture", OutcomeStored},
		{"fetch_by_category", "category_furniture", OutcomeHit},
		{"fetch_by_category", "category_furniture", OutcomeFallbackStale},
		{"fetch_featured", "featured_products", OutcomeFallbackEmpty},
	}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d", len(want), len(spans))
	}

	for i, w := range want {
		span := spans[i]
		if span.Name() != w.name {
			t.Errorf("span %d: expected name %q, got %q", i, w.name, span.Name())
		}
		if v, _ := spanAttr(span, "cache.key"); v.AsString() != w.key {
			t.Errorf("span %d: expected key %q, got %q", i, w.key, v.AsString())
		}
		if v, _ := spanAttr(span, "cache.outcome"); v.AsString() != string(w.outcome) {
			t.Errorf("span %d: expected outcome %q, got %q", i, w.outcome, v.AsString())
		}
		if v, ok := spanAttr(span, "cache.tags"); !ok || len(v.AsStringSlice()) != 1 {
			t.Errorf("span %d: expected cache tags, got %v", i, v.AsStringSlice())
		}
	}
}

func TestFetch_LogsFallbacks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := newHarness(t, WithLogger(logger))
	h.store.Put("all_products", []model.Product{product("1", "Chair")})
	h.clock.Advance(2 * testTTL)
	h.remote.Fail(memstore.ErrInjected)

	awaitValue(t, h.products.FetchAll(context.Background()))

	var record map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var r map[string]any
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if r["level"] == "WARN" {
			record = r
			break
		}
	}

	if record["level"] != "WARN" {
		t.Fatalf("expected a warning, got %s", buf.String())
	}
	if record["outcome"] != string(OutcomeFallbackStale) || record["key"] != "all_products" {
		t.Errorf("unexpected log record %v", record)
	}
	if _, ok := record["error"]; !ok {
		t.Error("expected the failure to be logged")
	}
}

func TestFetch_OfflineOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	h := newHarness(t, WithTracer(provider.Tracer("test")))
	h.store.Put("all_categories", []string{"furniture"})
	h.clock.Advance(time.Hour)
	h.probe.Set(false)

	got := awaitValue(t, h.categories.FetchAll(context.Background()))
	if len(got) != 1 {
		t.Fatalf("expected the stale categories, got %v", got)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if v, _ := spanAttr(spans[0], "cache.outcome"); v.AsString() != string(OutcomeStaleOffline) {
		t.Errorf("expected %q, got %q", OutcomeStaleOffline, v.AsString())
	}
}
