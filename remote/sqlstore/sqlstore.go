// Package sqlstore is a remote.Backend over a SQL database via bun. Every
// collection lives in a single documents table keyed by (collection, id)
// with the body stored as JSON.
//
// SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq) are supported. Equality
// filters and ordering are pushed down with each dialect's JSON operators.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-storefront-cache/document"
	"github.com/goliatone/go-storefront-cache/remote"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Collection string         `bun:"collection,pk"`
	ID         string         `bun:"id,pk"`
	Data       map[string]any `bun:"data,type:jsonb"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull"`
}

// Store implements remote.Backend.
type Store struct {
	db *bun.DB
}

var _ remote.Backend = (*Store)(nil)

// Open connects to driver with dsn and creates the documents table when it
// does not exist yet.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	var db *bun.DB
	switch driver {
	case DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		// One connection keeps :memory: databases shared and avoids
		// SQLITE_BUSY between writers.
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres db: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing bun.DB and ensures the schema.
func New(ctx context.Context, db *bun.DB) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	_, err := db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

// Factory opens a store for driver from the DSN handed to the registry.
func Factory(driver string) remote.Factory {
	return func(ctx context.Context, dsn string) (remote.Backend, error) {
		return Open(ctx, driver, dsn)
	}
}

// DB exposes the underlying handle, mainly for tests.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*remote.Document, error) {
	row := new(documentRow)
	err := s.db.NewSelect().
		Model(row).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s/%s: %w", collection, id, err)
	}
	doc := toDocument(*row)
	return &doc, nil
}

func (s *Store) QueryDocuments(ctx context.Context, spec remote.QuerySpec) ([]remote.Document, error) {
	var rows []documentRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("collection = ?", spec.Collection)

	if f := spec.Filter; f != nil {
		expr, args, err := s.equalityExpr(f.Field, f.Value)
		if err != nil {
			return nil, err
		}
		q = q.Where(expr, args...)
	}
	if o := spec.OrderBy; o != nil {
		q = q.OrderExpr(s.orderExpr(o.Direction), s.fieldPath(o.Field))
	}
	q = q.OrderExpr("id ASC")
	if spec.Limit > 0 {
		q = q.Limit(spec.Limit)
	}

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query %s: %w", spec, err)
	}

	docs := make([]remote.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return docs, nil
}

func (s *Store) SetDocument(ctx context.Context, collection, id string, fields document.Fields) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	row := &documentRow{
		Collection: collection,
		ID:         id,
		Data:       nonNilFields(fields),
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (collection, id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("upsert document %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields document.Fields) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(documentRow)
		err := tx.NewSelect().
			Model(row).
			Where("collection = ?", collection).
			Where("id = ?", id).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return remote.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("select document %s/%s: %w", collection, id, err)
		}

		row.Data = nonNilFields(row.Data)
		for k, v := range fields {
			row.Data[k] = v
		}
		row.UpdatedAt = time.Now().UTC()

		_, err = tx.NewUpdate().
			Model(row).
			Column("data", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update document %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := s.db.NewDelete().
		Model((*documentRow)(nil)).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) isPostgres() bool {
	return s.db.Dialect().Name() == dialect.PG
}

// fieldPath is the JSON path argument for field in the current dialect.
func (s *Store) fieldPath(field string) string {
	if s.isPostgres() {
		return field
	}
	return "$." + field
}

func (s *Store) equalityExpr(field string, value any) (string, []any, error) {
	if s.isPostgres() {
		raw, err := json.Marshal(value)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter value for %s: %w", field, err)
		}
		return "data -> ? = CAST(? AS jsonb)", []any{field, string(raw)}, nil
	}
	return "json_extract(data, ?) = ?", []any{s.fieldPath(field), value}, nil
}

func (s *Store) orderExpr(dir remote.Direction) string {
	direction := "ASC"
	if dir == remote.Descending {
		direction = "DESC"
	}
	if s.isPostgres() {
		return "data -> ? " + direction
	}
	return "json_extract(data, ?) " + direction
}

func toDocument(row documentRow) remote.Document {
	return remote.Document{ID: row.ID, Fields: nonNilFields(row.Data)}
}

func nonNilFields(f map[string]any) document.Fields {
	if f == nil {
		return document.Fields{}
	}
	return f
}
