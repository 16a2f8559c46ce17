package lambdaapi

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by routing and pipeline operations.
var (
	// ErrNotFound is returned when no registered route matches the
	// request path.
	ErrNotFound = errors.New("route not found")

	// ErrMethodNotAllowed is returned when the path matches a registered
	// route but the method does not.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNextCalledTwice is returned by a continuation that has already
	// advanced the chain within the current unit. The downstream units
	// are not re-executed.
	ErrNextCalledTwice = errors.New("next called twice in the same unit")

	// ErrResponseCommitted is returned by response send methods after a
	// terminal send has already occurred.
	ErrResponseCommitted = errors.New("response already committed")

	// ErrSealed is returned by registration methods after the first
	// dispatch has sealed the route table.
	ErrSealed = errors.New("route table sealed after first dispatch")
)

// ConfigError reports an invalid route or middleware registration. It is
// raised at registration time, never during dispatch.
type ConfigError struct {
	Pattern string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Pattern == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: route %q: %s", e.Pattern, e.Reason)
}

// FormatError reports an inbound event that could not be normalized:
// either its shape matched no known gateway format, or a detected format
// carried a malformed payload.
type FormatError struct {
	Format Format
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("event format (%s): %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("event format (%s): %s", e.Format, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// HTTPError carries an explicit status code from a handler or middleware
// into the error chain. Returning one is equivalent to failing with that
// status; the default error responder uses Status and Msg for the reply.
type HTTPError struct {
	Status int
	Msg    string
	Err    error
}

// NewHTTPError builds an HTTPError with the given status and message.
func NewHTTPError(status int, msg string) *HTTPError {
	return &HTTPError{Status: status, Msg: msg}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Msg, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Msg)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// FileError reports a failure from a file or storage-facing collaborator
// (for example a link signer). It surfaces to the error chain like any
// handler error.
type FileError struct {
	Ref string
	Err error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %q: %v", e.Ref, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// panicError wraps a recovered panic so the pipeline can route it to the
// error chain like a returned error.
type panicError struct {
	val any
}

func (e *panicError) Error() string { return fmt.Sprintf("handler panic: %v", e.val) }
