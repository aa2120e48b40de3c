package remote

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Direction is a sort direction for QuerySpec ordering.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" and "desc" in any case; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Descending
	}
	return Ascending
}

// Filter is a single equality predicate.
type Filter struct {
	Field string
	Value any
}

// Order requests server side ordering by one field.
type Order struct {
	Field     string
	Direction Direction
}

// QuerySpec describes a collection query. It is a value: the builder methods
// return modified copies and never touch the receiver.
type QuerySpec struct {
	Collection string
	Filter     *Filter
	OrderBy    *Order
	Limit      int
}

// Query starts a spec for collection.
func Query(collection string) QuerySpec {
	return QuerySpec{Collection: collection}
}

// Where returns a copy filtered on field == value.
func (q QuerySpec) Where(field string, value any) QuerySpec {
	q.Filter = &Filter{Field: field, Value: value}
	return q
}

// OrderedBy returns a copy ordered by field.
func (q QuerySpec) OrderedBy(field string, dir Direction) QuerySpec {
	q.OrderBy = &Order{Field: field, Direction: dir}
	return q
}

// WithLimit returns a copy limited to n documents. Zero means no limit.
func (q QuerySpec) WithLimit(n int) QuerySpec {
	q.Limit = n
	return q
}

// Validate checks the spec before it reaches a backend.
func (q QuerySpec) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Collection, validation.Required),
		validation.Field(&q.Limit, validation.Min(0)),
		validation.Field(&q.Filter, validation.By(func(v any) error {
			if f, _ := v.(*Filter); f != nil && strings.TrimSpace(f.Field) == "" {
				return validation.NewError("validation_filter_field", "filter field is required")
			}
			return nil
		})),
		validation.Field(&q.OrderBy, validation.By(func(v any) error {
			if o, _ := v.(*Order); o != nil && strings.TrimSpace(o.Field) == "" {
				return validation.NewError("validation_order_field", "order field is required")
			}
			return nil
		})),
	)
}

// String renders the spec for logs and span attributes.
func (q QuerySpec) String() string {
	var b strings.Builder
	b.WriteString(q.Collection)
	if q.Filter != nil {
		fmt.Fprintf(&b, " where %s == %v", q.Filter.Field, q.Filter.Value)
	}
	if q.OrderBy != nil {
		fmt.Fprintf(&b, " order by %s %s", q.OrderBy.Field, q.OrderBy.Direction)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " limit %d", q.Limit)
	}
	return b.String()
}
