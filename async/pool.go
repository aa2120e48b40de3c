package async

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// defaultWorkers is the pool size used when a non-positive size is requested.
func defaultWorkers() int {
	return runtime.GOMAXPROCS(0) * 4
}

// Pool is a bounded background execution context shared by the whole
// repository layer. Submitting never blocks the caller; at most size
// functions run at the same time and the rest wait for a slot.
type Pool struct {
	sem  *semaphore.Weighted
	size int
	wg   sync.WaitGroup
}

// NewPool creates a pool that runs at most size functions concurrently.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = defaultWorkers()
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size reports the concurrency bound.
func (p *Pool) Size() int {
	return p.size
}

// Go schedules fn. It returns immediately. A nil pool runs fn on a fresh
// goroutine without a bound.
func (p *Pool) Go(fn func()) {
	if p == nil {
		go fn()
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// Acquire only fails on context cancellation and Background never cancels.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		fn()
	}()
}

// Wait blocks until every scheduled function has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
