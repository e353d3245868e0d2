package apperror

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeUnknownGraph, "graph not found"),
			expected: "[UNKNOWN_GRAPH] graph not found",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidArgument, "destination cell invalid", "destinations"),
			expected: "[INVALID_ARGUMENT] destination cell invalid (field: destinations)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, CodeStoreUnavailable, "object store read failed")

	if !errors.Is(err, cause) {
		t.Fatal("expected Unwrap to expose the cause")
	}
}

func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want codes.Code
	}{
		{CodeInvalidArgument, codes.InvalidArgument},
		{CodeUnknownDataset, codes.InvalidArgument},
		{CodeNotFound, codes.NotFound},
		{CodeUnreachable, codes.FailedPrecondition},
		{CodeCacheLoadFailed, codes.Unavailable},
		{CodeCorruptGraph, codes.Internal},
		{CodeUnimplemented, codes.Unimplemented},
		{ErrorCode("something-unmapped"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "message")
			st := err.GRPCStatus()
			if st.Code() != tt.want {
				t.Errorf("grpcCode(%s) = %v, want %v", tt.code, st.Code(), tt.want)
			}
		})
	}
}

func TestIsAndCode(t *testing.T) {
	err := New(CodeUnknownMode, "unknown mode")
	if !Is(err, CodeUnknownMode) {
		t.Error("Is() should match the error's code")
	}
	if Is(err, CodeNotFound) {
		t.Error("Is() should not match a different code")
	}
	if Code(err) != CodeUnknownMode {
		t.Errorf("Code() = %v, want %v", Code(err), CodeUnknownMode)
	}
	if Code(errors.New("plain")) != CodeInternal {
		t.Error("Code() should fall back to CodeInternal for non-app errors")
	}
}

func TestToGRPC(t *testing.T) {
	if ToGRPC(nil) != nil {
		t.Error("ToGRPC(nil) should be nil")
	}

	appErr := New(CodeNotFound, "id not found")
	gerr := ToGRPC(appErr)
	if status.Code(gerr) != codes.NotFound {
		t.Errorf("ToGRPC should preserve mapped code, got %v", status.Code(gerr))
	}

	plain := errors.New("unstructured")
	gerr = ToGRPC(plain)
	if status.Code(gerr) != codes.Internal {
		t.Error("ToGRPC should map unstructured errors to Internal")
	}
}
