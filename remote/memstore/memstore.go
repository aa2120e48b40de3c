// Package memstore is an in-process remote.Backend. It backs the demo and
// the repository tests, so it counts calls and can inject failures.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cache/document"
	"github.com/goliatone/go-storefront-cache/remote"
)

// ErrInjected is returned by operations failed through Fail.
var ErrInjected = errors.New("memstore: injected failure")

// Op names an operation for call counting and fault injection.
type Op string

const (
	OpGet    Op = "get"
	OpQuery  Op = "query"
	OpSet    Op = "set"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Store keeps collections in memory. The zero value is not usable; call New.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]document.Fields

	faultMu sync.Mutex
	faults  map[Op]error
	panics  map[Op]bool
	latency time.Duration

	counts sync.Map // Op -> *atomic.Int64
}

var _ remote.Backend = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]document.Fields),
		faults:      make(map[Op]error),
		panics:      make(map[Op]bool),
	}
}

// Factory registers the store under a remote.Registry. The DSN is ignored
// and every resolution shares s.
func (s *Store) Factory() remote.Factory {
	return func(context.Context, string) (remote.Backend, error) {
		return s, nil
	}
}

// Load returns a store seeded from a JSON file laid out as
// {"collection": {"id": {fields}}}.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memstore: read seed: %w", err)
	}
	var collections map[string]map[string]document.Fields
	if err := json.Unmarshal(data, &collections); err != nil {
		return nil, fmt.Errorf("memstore: decode seed %s: %w", path, err)
	}
	s := New()
	s.SeedAll(collections)
	return s, nil
}

// FileFactory resolves a DSN naming a seed file for Load. An empty DSN
// yields an empty store.
func FileFactory() remote.Factory {
	return func(_ context.Context, dsn string) (remote.Backend, error) {
		if dsn == "" {
			return New(), nil
		}
		return Load(dsn)
	}
}

// Seed writes documents without counting calls.
func (s *Store) Seed(collection string, docs map[string]document.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	for id, f := range docs {
		c[id] = document.Clone(f)
	}
}

// SeedAll writes several collections at once.
func (s *Store) SeedAll(collections map[string]map[string]document.Fields) {
	for name, docs := range collections {
		s.Seed(name, docs)
	}
}

// Fail makes every later call of op return err. A nil err clears the fault.
// With no ops given the fault applies to every operation.
func (s *Store) Fail(err error, ops ...Op) {
	if len(ops) == 0 {
		ops = []Op{OpGet, OpQuery, OpSet, OpUpdate, OpDelete}
	}
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	for _, op := range ops {
		if err == nil {
			delete(s.faults, op)
			continue
		}
		s.faults[op] = err
	}
}

// Panic makes op panic, simulating a misbehaving SDK.
func (s *Store) Panic(op Op, enabled bool) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.panics[op] = enabled
}

// SetLatency delays every call by d.
func (s *Store) SetLatency(d time.Duration) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.latency = d
}

// Calls reports how many times op was invoked.
func (s *Store) Calls(op Op) int {
	if v, ok := s.counts.Load(op); ok {
		return int(v.(*atomic.Int64).Load())
	}
	return 0
}

// TotalCalls sums Calls over every operation.
func (s *Store) TotalCalls() int {
	total := 0
	s.counts.Range(func(_, v any) bool {
		total += int(v.(*atomic.Int64).Load())
		return true
	})
	return total
}

// ResetCalls zeroes the call counters.
func (s *Store) ResetCalls() {
	s.counts.Range(func(k, _ any) bool {
		s.counts.Delete(k)
		return true
	})
}

func (s *Store) enter(ctx context.Context, op Op) error {
	counter, _ := s.counts.LoadOrStore(op, new(atomic.Int64))
	counter.(*atomic.Int64).Add(1)

	s.faultMu.Lock()
	err, shouldPanic, latency := s.faults[op], s.panics[op], s.latency
	s.faultMu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if shouldPanic {
		panic(fmt.Sprintf("memstore: injected panic in %s", op))
	}
	return err
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*remote.Document, error) {
	if err := s.enter(ctx, OpGet); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &remote.Document{ID: id, Fields: document.Clone(f)}, nil
}

func (s *Store) QueryDocuments(ctx context.Context, spec remote.QuerySpec) ([]remote.Document, error) {
	if err := s.enter(ctx, OpQuery); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := make([]remote.Document, 0, len(s.collections[spec.Collection]))
	for id, f := range s.collections[spec.Collection] {
		if spec.Filter != nil && !document.Equal(f[spec.Filter.Field], spec.Filter.Value) {
			continue
		}
		docs = append(docs, remote.Document{ID: id, Fields: document.Clone(f)})
	}
	s.mu.RUnlock()

	// Map iteration is random; ids give a stable base order.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	if o := spec.OrderBy; o != nil {
		sort.SliceStable(docs, func(i, j int) bool {
			c := document.Compare(docs[i].Fields[o.Field], docs[j].Fields[o.Field])
			if o.Direction == remote.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if spec.Limit > 0 && len(docs) > spec.Limit {
		docs = docs[:spec.Limit]
	}
	return docs, nil
}

func (s *Store) SetDocument(ctx context.Context, collection, id string, fields document.Fields) (string, error) {
	if err := s.enter(ctx, OpSet); err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = document.Clone(fields)
	return id, nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields document.Fields) error {
	if err := s.enter(ctx, OpUpdate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.collections[collection][id]
	if !ok {
		return remote.ErrNotFound
	}
	merged := document.Clone(current)
	for k, v := range fields {
		merged[k] = v
	}
	s.collections[collection][id] = merged
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	if err := s.enter(ctx, OpDelete); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// collection must be called with mu held for writing.
func (s *Store) collection(name string) map[string]document.Fields {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]document.Fields)
		s.collections[name] = c
	}
	return c
}
