package async

import "context"

// Future is an eventually delivered value that can never fail. Repository
// callers receive futures; failures are folded into the value before delivery.
type Future[T any] struct {
	done  chan struct{}
	value T
}

// Ready returns a future that already holds value.
func Ready[T any](value T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

// Recover turns a task into a future. When the task fails, fallback maps the
// error to the value that is delivered instead.
func Recover[T any](t *Task[T], fallback func(error) T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	t.Subscribe(
		func(v T) {
			f.value = v
			close(f.done)
		},
		func(err error) {
			f.value = fallback(err)
			close(f.done)
		},
	)
	return f
}

// Map derives a future by applying fn to the value of f once it is delivered.
func Map[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	next := &Future[U]{done: make(chan struct{})}
	go func() {
		<-f.done
		next.value = fn(f.value)
		close(next.done)
	}()
	return next
}

// Done is closed once the value has been delivered.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the value is delivered or ctx is done. ok is false only
// when the caller stopped waiting.
func (f *Future[T]) Await(ctx context.Context) (value T, ok bool) {
	select {
	case <-f.done:
		return f.value, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Value blocks until the value is delivered.
func (f *Future[T]) Value() T {
	<-f.done
	return f.value
}

// Subscribe runs fn with the delivered value on a background goroutine.
func (f *Future[T]) Subscribe(fn func(T)) {
	go func() {
		<-f.done
		fn(f.value)
	}()
}
