// Package connectivity reports whether the remote document store is
// reachable. Repositories query it synchronously before choosing between a
// stale cache entry and a remote load.
package connectivity

import "sync/atomic"

// Probe reports current network reachability.
type Probe interface {
	IsOnline() bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() bool

func (f ProbeFunc) IsOnline() bool { return f() }

// Always is a probe that is always online.
var Always Probe = ProbeFunc(func() bool { return true })

// StaticProbe holds a manually set state. It backs tests and forced
// offline mode.
type StaticProbe struct {
	online atomic.Bool
}

// NewStaticProbe returns a probe starting in the given state.
func NewStaticProbe(online bool) *StaticProbe {
	p := &StaticProbe{}
	p.online.Store(online)
	return p
}

func (p *StaticProbe) IsOnline() bool { return p.online.Load() }

// Set changes the reported state.
func (p *StaticProbe) Set(online bool) { p.online.Store(online) }
