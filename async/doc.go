// Package async provides the completion primitives used between the remote
// binding and the repository layer.
//
// A Task is a one-shot computation that succeeds or fails. Its callbacks are
// registered with Subscribe and exactly one of them fires, once, on a
// background goroutine. Tasks compose with Then.
//
// A Future is what repository callers receive: a value that is always
// delivered and never carries an error. Recover converts a Task into a Future
// by mapping the failure to a fallback value, which is how stale or empty
// results are produced when the remote store cannot answer.
//
// Pool bounds how many background functions run at once. One pool is shared
// by the whole repository layer.
package async
