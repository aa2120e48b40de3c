package document

// Codec maps a remote document to a domain record and back.
//
// Decode never fails: missing fields become zero values, drifted numeric
// types are coerced and unknown fields are ignored. id is the document id
// assigned by the store; codecs use it when the body lacks its own id field.
type Codec[T any] interface {
	Decode(id string, f Fields) T
	Encode(record T) Fields
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs[T any] struct {
	DecodeFn func(id string, f Fields) T
	EncodeFn func(record T) Fields
}

// Decode implements Codec.
func (c CodecFuncs[T]) Decode(id string, f Fields) T {
	return c.DecodeFn(id, f)
}

// Encode implements Codec.
func (c CodecFuncs[T]) Encode(record T) Fields {
	return c.EncodeFn(record)
}

// Clone returns a shallow copy of f, so that callers can add fields without
// touching a document owned by someone else.
func Clone(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
