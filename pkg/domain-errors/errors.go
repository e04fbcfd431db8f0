// Package domainerrors defines the typed failures returned by services.
//
// Services translate store sentinels (pkg/platform/sentinel) into one of these
// codes so transports can map them without knowing about storage details:
//
//	if errors.Is(err, sentinel.ErrNotFound) {
//		return dErrors.New(dErrors.CodeNotFound, "document not found")
//	}
//	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation covers missing or malformed input fields.
	CodeValidation Code = "validation_error"
	// CodeInvalidInput covers values rejected at a trust boundary parser.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest covers undecodable or structurally invalid requests.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized means the caller could not be identified.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the caller's role may not perform the action.
	CodeForbidden Code = "forbidden"
	// CodeSelfVerification means the caller tried to verify their own submission.
	CodeSelfVerification Code = "self_verification"
	// CodeInvalidTransition means the requested status edge is not permitted.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeNotFound means a referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict means the entity changed underneath the caller.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation is raised by model constructors; services
	// convert it to CodeValidation before returning.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout means the operation ran out of time.
	CodeTimeout Code = "timeout"
	// CodeInternal wraps opaque store or infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain failure with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and context message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the outermost domain error from err.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better as a predicate.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// IsAuthorization reports whether err is any authorization failure: a wrong
// role or an attempt to verify one's own submission.
func IsAuthorization(err error) bool {
	return HasCode(err, CodeForbidden) || HasCode(err, CodeSelfVerification)
}

// CodeOf returns the outermost code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}
