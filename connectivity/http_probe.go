package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPProbe polls a health URL in the background and caches the answer, so
// IsOnline never blocks on the network.
type HTTPProbe struct {
	url      string
	interval time.Duration
	client   *resty.Client
	logger   *slog.Logger

	online atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// HTTPProbeOption configures an HTTPProbe.
type HTTPProbeOption func(*HTTPProbe)

func WithInterval(d time.Duration) HTTPProbeOption {
	return func(p *HTTPProbe) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithTimeout(d time.Duration) HTTPProbeOption {
	return func(p *HTTPProbe) {
		if d > 0 {
			p.client.SetTimeout(d)
		}
	}
}

func WithLogger(logger *slog.Logger) HTTPProbeOption {
	return func(p *HTTPProbe) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewHTTPProbe builds a probe for url. It reports online until the first
// check says otherwise.
func NewHTTPProbe(url string, opts ...HTTPProbeOption) *HTTPProbe {
	p := &HTTPProbe{
		url:      url,
		interval: 15 * time.Second,
		client:   resty.New().SetTimeout(3 * time.Second),
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	p.online.Store(true)
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *HTTPProbe) IsOnline() bool { return p.online.Load() }

// Check performs one health request and records the result. Any 2xx or 3xx
// answer counts as online. A request cut short by ctx leaves the state as is.
func (p *HTTPProbe) Check(ctx context.Context) bool {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if ctx.Err() != nil {
		return p.online.Load()
	}
	online := err == nil && !resp.IsError()

	if was := p.online.Swap(online); was != online {
		if online {
			p.logger.Info("connectivity restored", "url", p.url)
		} else {
			p.logger.Warn("connectivity lost", "url", p.url, "error", err)
		}
	}
	return online
}

// Start runs an immediate check and then one per interval until ctx ends
// or Stop is called.
func (p *HTTPProbe) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		go p.loop(ctx)
	})
}

// Stop ends the background loop and waits for it. A stopped probe cannot be
// started again.
func (p *HTTPProbe) Stop() {
	p.startOnce.Do(func() {})
	p.stopOnce.Do(func() {
		if p.cancel == nil {
			close(p.done)
			return
		}
		p.cancel()
		<-p.done
	})
}

func (p *HTTPProbe) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
