// Package remote binds the repositories to a remote document store.
//
// Adapters implement Backend and are registered by name in a Registry. The
// Binding resolved from it runs each operation on the shared async.Pool and
// completes an async.Task. Failures are *goerrors.Error values with one of
// three text codes:
//
//   - BINDING_UNAVAILABLE: no backend could be resolved
//   - INVOCATION_FAILED: the call was rejected or the adapter panicked
//   - REMOTE_OPERATION_FAILED: the store ran the call and reported failure
//
// Use IsUnavailable, IsInvocationFailed and IsOperationFailed to classify.
package remote
