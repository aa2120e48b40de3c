package httpstore

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type wireDocument struct {
	ID     string         `json:"id" msgpack:"id"`
	Fields map[string]any `json:"fields" msgpack:"fields"`
}

type wireQueryResult struct {
	Documents []wireDocument `json:"documents" msgpack:"documents"`
}

type wireSetResult struct {
	ID string `json:"id" msgpack:"id"`
}

type bodyCodec struct {
	contentType string
	marshal     func(any) ([]byte, error)
	unmarshal   func([]byte, any) error
}

var codecs = map[string]bodyCodec{
	CodecJSON: {
		contentType: "application/json",
		marshal:     json.Marshal,
		unmarshal:   json.Unmarshal,
	},
	CodecMsgpack: {
		contentType: "application/msgpack",
		marshal:     msgpack.Marshal,
		unmarshal:   msgpack.Unmarshal,
	},
}

func lookupCodec(name string) (bodyCodec, error) {
	c, ok := codecs[name]
	if !ok {
		return bodyCodec{}, fmt.Errorf("httpstore: unknown codec %q", name)
	}
	return c, nil
}
