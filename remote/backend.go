package remote

import (
	"context"

	"github.com/goliatone/go-storefront-cache/document"
)

// Document is one record of a remote collection.
type Document struct {
	ID     string
	Fields document.Fields
}

// Backend is the capability set a remote document store adapter provides.
//
// GetDocument reports a missing document as (nil, nil). QueryDocuments
// reports an empty match as an empty slice and a nil error; only a failure
// returns an error. SetDocument generates an id when id is empty and returns
// the id it stored under.
type Backend interface {
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	QueryDocuments(ctx context.Context, spec QuerySpec) ([]Document, error)
	SetDocument(ctx context.Context, collection, id string, fields document.Fields) (string, error)
	UpdateFields(ctx context.Context, collection, id string, fields document.Fields) error
	DeleteDocument(ctx context.Context, collection, id string) error
}

// Factory opens a backend from a backend specific DSN.
type Factory func(ctx context.Context, dsn string) (Backend, error)
