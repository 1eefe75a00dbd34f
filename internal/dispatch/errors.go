package dispatch

import (
	"errors"
	"fmt"
)

// Error represents a failure raised by the dispatch machinery itself.
//
// Dispatch errors cover registration problems (opaque callables, condition
// signatures that do not mirror their handler) and invocation problems
// (no entry accepts the call shape, or entries accepted it but every
// condition declined). Errors raised *inside* a condition or a selected
// handler are never wrapped in an Error - they propagate to the caller
// unchanged, so "the dispatcher found nothing" stays distinguishable from
// "the chosen handler failed".
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Callable names the handler or condition involved, if any.
	Callable string
}

// ErrorCode categorizes dispatch errors.
type ErrorCode string

const (
	// ErrCodeIntrospection indicates a callable's formal signature could
	// not be determined.
	ErrCodeIntrospection ErrorCode = "INTROSPECTION"

	// ErrCodeSignatureMismatch indicates a condition's formal parameter
	// list does not mirror its handler's.
	ErrCodeSignatureMismatch ErrorCode = "SIGNATURE_MISMATCH"

	// ErrCodeUnsupportedSignature indicates argument binding was attempted
	// against a callable accepting unbounded extra arguments.
	ErrCodeUnsupportedSignature ErrorCode = "UNSUPPORTED_SIGNATURE"

	// ErrCodeNoMatchingSignature indicates no entry's signature and type
	// gates accepted the call shape at all.
	ErrCodeNoMatchingSignature ErrorCode = "NO_MATCHING_SIGNATURE"

	// ErrCodeNoSatisfiedCondition indicates at least one entry's gates
	// passed but every condition returned false and no unconditioned
	// fallback's gates passed.
	ErrCodeNoSatisfiedCondition ErrorCode = "NO_SATISFIED_CONDITION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Callable != "" {
		return fmt.Sprintf("%s: %s (callable=%s)", e.Code, e.Message, e.Callable)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the dispatch error code from an error.
// Returns "" if the error is not a dispatch Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNoMatch returns true if the error means no entry's signature gate
// accepted the call shape.
func IsNoMatch(err error) bool {
	return CodeOf(err) == ErrCodeNoMatchingSignature
}

// IsNoSatisfiedCondition returns true if the error means entries accepted
// the call shape but every condition declined it.
func IsNoSatisfiedCondition(err error) bool {
	return CodeOf(err) == ErrCodeNoSatisfiedCondition
}

// newIntrospectionError creates an Error for an undeterminable signature.
func newIntrospectionError(callable, message string) *Error {
	return &Error{
		Code:     ErrCodeIntrospection,
		Message:  message,
		Callable: callable,
	}
}

// newSignatureMismatchError creates an Error for a condition whose formal
// parameter list differs from its handler's.
func newSignatureMismatchError(handler, condition *Func) *Error {
	return &Error{
		Code: ErrCodeSignatureMismatch,
		Message: fmt.Sprintf(
			"condition %s must declare the same parameters as handler %s",
			condition.Name(), handler.Name(),
		),
		Callable: handler.Name(),
	}
}

// newUnsupportedSignatureError creates an Error for binding against a
// variadic-accepting callable.
func newUnsupportedSignatureError(f *Func) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedSignature,
		Message:  "cannot bind arguments for a callable accepting unbounded extra arguments",
		Callable: f.Name(),
	}
}

// newNoMatchError creates an Error for a call shape no entry accepts.
func newNoMatchError(npos int, kwargs map[string]any) *Error {
	return &Error{
		Code: ErrCodeNoMatchingSignature,
		Message: fmt.Sprintf(
			"no registered handler matches a call with %d positional and %d named arguments",
			npos, len(kwargs),
		),
	}
}

// newNoConditionError creates an Error for a call every condition declined.
func newNoConditionError() *Error {
	return &Error{
		Code:    ErrCodeNoSatisfiedCondition,
		Message: "call matched at least one handler signature but satisfied no condition",
	}
}
