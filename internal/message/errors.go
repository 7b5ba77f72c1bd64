package message

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure that is reported to clients.
type Kind int

// Failure kinds understood by the dispatch boundary.
const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnimplemented
)

// status maps a kind to its response status. Conflicts are reported as 400,
// the status existing clients already expect for "already started".
func (k Kind) status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnimplemented:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// Error is a failure that carries the response status it maps to.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Status returns the response status for the error.
func (e *Error) Status() int {
	return e.Kind.status()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks.
var (
	ErrInternal      = &Error{Kind: KindInternal}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrUnimplemented = &Error{Kind: KindUnimplemented}
)

// Validation reports a malformed or missing request field.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown logical entity.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an operation whose target is already in the requested state.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unimplemented reports a capability the device binding does not provide.
func Unimplemented(capability string) error {
	return &Error{Kind: KindUnimplemented, Message: capability + " is not implemented for this device"}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// StatusOf returns the status carried by err or anything it wraps, 500 otherwise.
func StatusOf(err error) int {
	var s interface{ Status() int }
	if errors.As(err, &s) {
		if status := s.Status(); status > 0 {
			return status
		}
	}
	return http.StatusInternalServerError
}
