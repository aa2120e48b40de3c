package async

import (
	"context"
	"fmt"
	"sync"
)

// PanicError is the failure reported by a Task whose function panicked.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("async: task panicked: %v", e.Value)
}

// Task is a single asynchronous computation that completes exactly once,
// either with a value or with an error.
type Task[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

func (t *Task[T]) complete(value T, err error) {
	t.once.Do(func() {
		t.value = value
		t.err = err
		close(t.done)
	})
}

// Run executes fn on the pool and returns a Task tracking its completion.
// A panic inside fn completes the task with a *PanicError.
func Run[T any](pool *Pool, fn func() (T, error)) *Task[T] {
	t := newTask[T]()
	pool.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				t.complete(zero, &PanicError{Value: r})
			}
		}()
		v, err := fn()
		t.complete(v, err)
	})
	return t
}

// Resolved returns a task that already succeeded with value.
func Resolved[T any](value T) *Task[T] {
	t := newTask[T]()
	t.complete(value, nil)
	return t
}

// Rejected returns a task that already failed with err.
func Rejected[T any](err error) *Task[T] {
	t := newTask[T]()
	var zero T
	t.complete(zero, err)
	return t
}

// Done is closed once the task has completed.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the task completes or ctx is done.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the task completes.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.value, t.err
}

// Subscribe registers completion callbacks. Exactly one of them runs, once,
// on a background goroutine after the task completes. Nil callbacks are skipped.
func (t *Task[T]) Subscribe(onSuccess func(T), onFailure func(error)) {
	go func() {
		<-t.done
		if t.err != nil {
			if onFailure != nil {
				onFailure(t.err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(t.value)
		}
	}()
}

// Then chains fn onto t. The continuation runs on the completion goroutine,
// so fn should not block for long. A failed t skips fn and propagates the error.
func Then[T, U any](t *Task[T], fn func(T) (U, error)) *Task[U] {
	next := newTask[U]()
	t.Subscribe(
		func(v T) {
			defer func() {
				if r := recover(); r != nil {
					var zero U
					next.complete(zero, &PanicError{Value: r})
				}
			}()
			next.complete(fn(v))
		},
		func(err error) {
			var zero U
			next.complete(zero, err)
		},
	)
	return next
}
