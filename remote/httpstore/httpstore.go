// Package httpstore is a remote.Backend for a REST document API.
//
// Documents live at {base}/docs/{collection}/{id} (GET, PUT, PATCH, DELETE).
// Queries are GET {base}/query/{collection} with the optional parameters
// where, eq (a JSON literal), orderBy, dir and limit, answered with
// {"documents": [{"id": ..., "fields": {...}}]}. Bodies are JSON or msgpack.
package httpstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-storefront-cache/document"
	"github.com/goliatone/go-storefront-cache/remote"
)

// Store implements remote.Backend over HTTP.
type Store struct {
	client  *resty.Client
	codec   bodyCodec
	limiter *rate.Limiter
}

var _ remote.Backend = (*Store)(nil)

// New builds a store for baseURL.
func New(baseURL string, opts ...Option) (*Store, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("httpstore: base url is required")
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	codec, err := lookupCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", codec.contentType)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}

	s := &Store{client: rc, codec: codec}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(cfg.RateLimit, cfg.Burst)
	}
	return s, nil
}

// Factory treats the registry DSN as the base URL.
func Factory(opts ...Option) remote.Factory {
	return func(_ context.Context, dsn string) (remote.Backend, error) {
		return New(dsn, opts...)
	}
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*remote.Document, error) {
	resp, err := s.do(ctx, resty.MethodGet, docPath(collection, id), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var wire wireDocument
	if err := s.codec.unmarshal(resp.Body(), &wire); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	if wire.ID == "" {
		wire.ID = id
	}
	return &remote.Document{ID: wire.ID, Fields: nonNilFields(wire.Fields)}, nil
}

func (s *Store) QueryDocuments(ctx context.Context, spec remote.QuerySpec) ([]remote.Document, error) {
	params := map[string]string{}
	if f := spec.Filter; f != nil {
		literal, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode filter value: %w", err)
		}
		params["where"] = f.Field
		params["eq"] = string(literal)
	}
	if o := spec.OrderBy; o != nil {
		params["orderBy"] = o.Field
		params["dir"] = o.Direction.String()
	}
	if spec.Limit > 0 {
		params["limit"] = strconv.Itoa(spec.Limit)
	}

	resp, err := s.do(ctx, resty.MethodGet, "/query/"+escapePath(spec.Collection), nil, params)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var wire wireQueryResult
	if err := s.codec.unmarshal(resp.Body(), &wire); err != nil {
		return nil, fmt.Errorf("decode query %s: %w", spec, err)
	}

	docs := make([]remote.Document, 0, len(wire.Documents))
	for _, d := range wire.Documents {
		docs = append(docs, remote.Document{ID: d.ID, Fields: nonNilFields(d.Fields)})
	}
	return docs, nil
}

func (s *Store) SetDocument(ctx context.Context, collection, id string, fields document.Fields) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	resp, err := s.do(ctx, resty.MethodPut, docPath(collection, id), fields, nil)
	if err != nil {
		return "", err
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var wire wireSetResult
	if len(resp.Body()) > 0 && s.codec.unmarshal(resp.Body(), &wire) == nil && wire.ID != "" {
		return wire.ID, nil
	}
	return id, nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields document.Fields) error {
	resp, err := s.do(ctx, resty.MethodPatch, docPath(collection, id), fields, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("patch %s/%s: %w", collection, id, remote.ErrNotFound)
	}
	return checkStatus(resp)
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	resp, err := s.do(ctx, resty.MethodDelete, docPath(collection, id), nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	return checkStatus(resp)
}

func (s *Store) do(ctx context.Context, method, path string, body any, params map[string]string) (*resty.Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req := s.client.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if body != nil {
		raw, err := s.codec.marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		req.SetHeader("Content-Type", s.codec.contentType).SetBody(raw)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func checkStatus(resp *resty.Response) error {
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

func docPath(collection, id string) string {
	return "/docs/" + escapePath(collection) + "/" + escapePath(id)
}

// escapePath escapes each segment of a slash separated collection path.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func nonNilFields(f map[string]any) document.Fields {
	if f == nil {
		return document.Fields{}
	}
	return f
}
