// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// includes utilities for converting to and from gRPC status errors.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Request validation
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeUnknownGraph     ErrorCode = "UNKNOWN_GRAPH"
	CodeUnknownDataset   ErrorCode = "UNKNOWN_DATASET"
	CodeUnknownMode      ErrorCode = "UNKNOWN_ROUTING_MODE"
	CodeMalformedWKB     ErrorCode = "MALFORMED_WKB"
	CodeContradictoryOpt ErrorCode = "CONTRADICTORY_OPTIONS"
	CodeEmptySelection   ErrorCode = "EMPTY_CELL_SELECTION"

	// Lookup
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Routing / graph invariants
	CodeUnreachable       ErrorCode = "UNREACHABLE"
	CodeCorruptGraph      ErrorCode = "CORRUPT_GRAPH"
	CodeGraphVersionSkew  ErrorCode = "GRAPH_VERSION_SKEW"
	CodeAlgorithmInternal ErrorCode = "ALGORITHM_INTERNAL"

	// Cache / object store
	CodeCacheLoadFailed  ErrorCode = "CACHE_LOAD_FAILED"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// General
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeUnimplemented ErrorCode = "UNIMPLEMENTED"
)

// Severity indicates the criticality of an error for logging purposes.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "error"
	}
}

// Error is the application-wide error type. It carries enough structure to
// both log usefully and cross the gRPC boundary as a status with a single
// line reason, per the error taxonomy in SPEC_FULL.md §8.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus converts the application error into a gRPC status.Status, so
// returning an *Error directly from an RPC handler produces a correctly
// coded response without an explicit conversion call at the call site.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Message)
}

func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeInvalidArgument, CodeUnknownGraph, CodeUnknownDataset, CodeUnknownMode,
		CodeMalformedWKB, CodeContradictoryOpt, CodeEmptySelection:
		return codes.InvalidArgument

	case CodeNotFound:
		return codes.NotFound

	case CodeUnreachable:
		return codes.FailedPrecondition

	case CodeCacheLoadFailed, CodeStoreUnavailable:
		return codes.Unavailable

	case CodeCorruptGraph, CodeGraphVersionSkew, CodeAlgorithmInternal:
		return codes.Internal

	case CodeUnimplemented:
		return codes.Unimplemented

	default:
		return codes.Internal
	}
}

// New creates a new application error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

// NewWithField is New with an offending request field attached.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

// Wrap creates a new application error wrapping an existing cause.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

// WithDetails attaches a key-value pair to the error's details map.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithSeverity overrides the error's severity.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, or CodeInternal if err is not an *Error.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToGRPC converts any error to a gRPC error. *Error values convert via their
// GRPCStatus method; everything else becomes an opaque internal error so
// that no unstructured error ever crosses the RPC boundary.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}
	return status.New(codes.Internal, err.Error()).Err()
}
