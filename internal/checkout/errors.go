package checkout

import (
	"errors"
	"fmt"
)

// Code categorizes checkout errors.
type Code string

const (
	// CodeEmptyCart indicates checkout was started on an empty cart.
	CodeEmptyCart Code = "EMPTY_CART"

	// CodeAlreadyOpen indicates a second checkout attempt while one is
	// open for the session.
	CodeAlreadyOpen Code = "CHECKOUT_IN_PROGRESS"

	// CodeUnderpayment indicates cash received below the sale total.
	CodeUnderpayment Code = "UNDERPAYMENT"

	// CodeReferenceMissing indicates a card payment with no terminal
	// reference; commit needs an explicit confirmation instead.
	CodeReferenceMissing Code = "CARD_REFERENCE_MISSING"

	// CodeAppendFailed indicates the audit log append failed, so the
	// sale was not committed.
	CodeAppendFailed Code = "AUDIT_APPEND_FAILED"

	// CodeDone indicates a call on a workflow that already committed or
	// aborted.
	CodeDone Code = "CHECKOUT_FINISHED"
)

// Error is a checkout failure with a stable code for the caller to branch
// on.
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

// HasCode reports whether err carries a checkout *Error with the given
// code. Uses errors.As to handle wrapped errors.
func HasCode(err error, code Code) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsConflict reports whether err is the single-flight rejection of a
// second concurrent checkout.
func IsConflict(err error) bool {
	return HasCode(err, CodeAlreadyOpen)
}

// IsReferenceMissing reports whether err asks for the explicit
// no-reference confirmation step.
func IsReferenceMissing(err error) bool {
	return HasCode(err, CodeReferenceMissing)
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
