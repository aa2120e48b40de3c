package httpstore

import (
	"time"

	"golang.org/x/time/rate"
)

// Codec names for WithCodec.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Options configures a Store.
type Options struct {
	Codec   string
	Timeout time.Duration
	Headers map[string]string
	// RateLimit caps requests per second on the client side. Zero disables it.
	RateLimit rate.Limit
	Burst     int
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Codec:   CodecJSON,
		Timeout: 10 * time.Second,
		Burst:   1,
	}
}

// WithCodec selects the body encoding, CodecJSON or CodecMsgpack.
func WithCodec(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Codec = name
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithHeaders adds static headers, for example an API key.
func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithRateLimit limits the client to perSecond requests with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *Options) {
		o.RateLimit = rate.Limit(perSecond)
		if burst > 0 {
			o.Burst = burst
		}
	}
}
