package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Fields is a loosely typed remote document body keyed by field name.
type Fields = map[string]any

// String returns the text value of key, or "" when it is missing. Non-string
// scalars are formatted rather than dropped.
func String(f Fields, key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Float returns key as a float64. Integral and floating point wire values
// both normalize to the same number.
func Float(f Fields, key string) float64 {
	n, _ := toFloat(f[key])
	return n
}

// Int returns key as an int, truncating floating point wire values.
func Int(f Fields, key string) int {
	n, ok := toFloat(f[key])
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int(n)
}

// Bool returns key as a bool. Numeric 0/1 and "true"/"false" are accepted.
func Bool(f Fields, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		n, ok := toFloat(v)
		return ok && n != 0
	}
}

// Strings returns key as a string slice. It is never nil.
func Strings(f Fields, key string) []string {
	switch v := f[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Map returns the nested document stored under key, or nil when it is
// missing or not a map.
func Map(f Fields, key string) Fields {
	return toFields(f[key])
}

// Maps returns a list of nested documents. Elements that are not maps are
// skipped. It is never nil.
func Maps(f Fields, key string) []Fields {
	switch v := f[key].(type) {
	case []Fields:
		out := make([]Fields, 0, len(v))
		for _, m := range v {
			if m != nil {
				out = append(out, m)
			}
		}
		return out
	case []any:
		out := make([]Fields, 0, len(v))
		for _, item := range v {
			if m := toFields(item); m != nil {
				out = append(out, m)
			}
		}
		return out
	default:
		return []Fields{}
	}
}

// Time returns key as a time. time.Time, RFC 3339 strings and epoch
// milliseconds are accepted; anything else yields the zero time.
func Time(f Fields, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
		return time.Time{}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		return time.Time{}
	default:
		if ms, ok := toFloat(v); ok && ms != 0 {
			return time.UnixMilli(int64(ms)).UTC()
		}
		return time.Time{}
	}
}

// Equal reports whether two wire values are equal, treating numbers of
// different Go types as equal when their values match.
func Equal(a, b any) bool {
	if af, ok := toNumber(a); ok {
		if bf, ok := toNumber(b); ok {
			return af == bf
		}
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
}

// Compare orders two wire values for sorting. Numbers compare numerically,
// times chronologically and everything else by its text form.
func Compare(a, b any) int {
	if af, ok := toNumber(a); ok {
		if bf, ok := toNumber(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// toFloat is toNumber plus numeric strings.
func toFloat(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return toNumber(v)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toFields(v any) Fields {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(Fields, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	default:
		return nil
	}
}
