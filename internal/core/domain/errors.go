package domain

import (
	"errors"
	"fmt"
)

// DomainError is a failure with a stable, machine-readable code.
// Codes have the form FM-<AREA>-<NNNN>; the last four digits hint at the
// HTTP status the transport layer reports.
type DomainError struct {
	Code    string // Error code (e.g., "FM-FORK-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode returns the code of the first DomainError in err's chain,
// or "" when there is none.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Fork errors (FORK)
var (
	// ErrSessionNotFound indicates the fork id is unknown, revoked or evicted.
	ErrSessionNotFound = NewDomainError("FM-FORK-4040", "fork not found")
)

// Ledger errors (ADDR, RMT, TX, CDC)
var (
	// ErrInvalidAddress indicates a malformed base58 account address.
	ErrInvalidAddress = NewDomainError("FM-ADDR-4000", "invalid address")

	// ErrFetchFailed indicates the remote ledger failed for a reason other than not-found.
	ErrFetchFailed = NewDomainError("FM-RMT-5020", "remote fetch failed")

	// ErrDecodeError indicates a malformed encoded transaction.
	ErrDecodeError = NewDomainError("FM-TX-4000", "transaction decode failed")

	// ErrExecutionFailed indicates the engine rejected a transaction.
	ErrExecutionFailed = NewDomainError("FM-TX-4220", "transaction execution failed")

	// ErrCodecError indicates a malformed fixed-layout account buffer.
	ErrCodecError = NewDomainError("FM-CDC-4220", "account data codec error")
)

// Protocol errors (RPC)
var (
	// ErrMethodNotFound indicates an unknown JSON-RPC method.
	ErrMethodNotFound = NewDomainError("FM-RPC-4040", "method not found")
)

// System errors (SYS)
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("FM-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("FM-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("FM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("FM-SYS-4290", "too many requests")
)

// Argument errors (ARG)
var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("FM-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("FM-ARG-1002", "missing required argument")
)
