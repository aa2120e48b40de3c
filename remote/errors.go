package remote

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to every error produced by this package.
const (
	CodeBindingUnavailable = "BINDING_UNAVAILABLE"
	CodeInvocationFailed   = "INVOCATION_FAILED"
	CodeOperationFailed    = "REMOTE_OPERATION_FAILED"
)

// ErrNotFound may be returned by backends for writes that target a missing
// document. Reads report a missing document as (nil, nil) instead.
var ErrNotFound = errors.New("remote: document not found")

func unavailableError(op, reason string) error {
	return goerrors.New(fmt.Sprintf("remote %s: backend unavailable: %s", op, reason), goerrors.CategoryExternal).
		WithTextCode(CodeBindingUnavailable).
		WithMetadata(map[string]any{"op": op})
}

func invocationError(op string, cause error) error {
	return goerrors.Wrap(cause, goerrors.CategoryInternal, fmt.Sprintf("remote %s: invocation failed", op)).
		WithTextCode(CodeInvocationFailed).
		WithMetadata(map[string]any{"op": op})
}

func operationError(op string, cause error) error {
	return goerrors.Wrap(cause, goerrors.CategoryExternal, fmt.Sprintf("remote %s: operation failed", op)).
		WithTextCode(CodeOperationFailed).
		WithMetadata(map[string]any{"op": op})
}

// IsUnavailable reports whether err means no backend could be resolved.
func IsUnavailable(err error) bool {
	return hasCode(err, CodeBindingUnavailable)
}

// IsInvocationFailed reports whether a resolved backend rejected or crashed
// on the call itself.
func IsInvocationFailed(err error) bool {
	return hasCode(err, CodeInvocationFailed)
}

// IsOperationFailed reports whether the remote store completed the call but
// reported failure.
func IsOperationFailed(err error) bool {
	return hasCode(err, CodeOperationFailed)
}

func hasCode(err error, code string) bool {
	var e *goerrors.Error
	return errors.As(err, &e) && e.TextCode == code
}
