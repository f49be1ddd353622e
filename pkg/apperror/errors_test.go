// Package apperror provides tests for the custom error types and utility functions.
package apperror

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TestError_Error verifies that the Error() method returns the correct string format.
func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeUnknownReference, "unknown attribute reference"),
			expected: "[UNKNOWN_REFERENCE] unknown attribute reference",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeMissingAttributeType, "type is required", "attributes[0].type"),
			expected: "[MISSING_ATTRIBUTE_TYPE] type is required (field: attributes[0].type)",
		},
		{
			name:     "with provenance",
			err:      NewWithProvenance(CodeExtendsCycle, "cycle detected", "main", "spans/http.yaml"),
			expected: "[EXTENDS_CYCLE] cycle detected (main:spans/http.yaml)",
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

// TestError_Unwrap verifies that the Unwrap() method correctly returns the underlying cause.
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

// TestError_GRPCStatus verifies that the GRPCStatus() method maps ErrorCodes to correct gRPC codes.
func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		name         string
		code         ErrorCode
		expectedCode codes.Code
	}{
		{"invalid argument", CodeInvalidArgument, codes.InvalidArgument},
		{"not found", CodeLoaderFileNotFound, codes.NotFound},
		{"timeout", CodeInactivityTimeout, codes.DeadlineExceeded},
		{"extends cycle", CodeExtendsCycle, codes.FailedPrecondition},
		{"include cycle", CodeIncludeCycle, codes.FailedPrecondition},
		{"unimplemented", CodeUnimplemented, codes.Unimplemented},
		{"internal default", CodeInternal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "test message")
			st := err.GRPCStatus()
			if st.Code() != tt.expectedCode {
				t.Errorf("GRPCStatus().Code() = %v, want %v", st.Code(), tt.expectedCode)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(CodeExtendsCycle, "cycle")
	if !Is(err, CodeExtendsCycle) {
		t.Error("Is() should return true for matching code")
	}
	if Is(err, CodeIncludeCycle) {
		t.Error("Is() should return false for non-matching code")
	}
	if Is(errors.New("plain error"), CodeExtendsCycle) {
		t.Error("Is() should return false for non-apperror errors")
	}
}

func TestCode(t *testing.T) {
	if got := Code(New(CodeUnresolvedDependency, "x")); got != CodeUnresolvedDependency {
		t.Errorf("Code() = %v, want %v", got, CodeUnresolvedDependency)
	}
	if got := Code(errors.New("plain")); got != CodeInternal {
		t.Errorf("Code() = %v, want %v", got, CodeInternal)
	}
}

func TestToGRPC_FromGRPC_RoundTrip(t *testing.T) {
	original := New(CodeLoaderFileNotFound, "file missing")
	grpcErr := ToGRPC(original)

	st, ok := status.FromError(grpcErr)
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.NotFound {
		t.Errorf("grpc code = %v, want NotFound", st.Code())
	}

	back := FromGRPC(grpcErr)
	if back.Code != CodeNotFound {
		t.Errorf("FromGRPC code = %v, want CodeNotFound", back.Code)
	}
}

func TestToGRPC_Nil(t *testing.T) {
	if ToGRPC(nil) != nil {
		t.Error("ToGRPC(nil) should return nil")
	}
}

func TestSeverityHelpers(t *testing.T) {
	warn := NewWarning(CodeEnumMemberDuplication, "dup")
	if !IsWarning(warn) {
		t.Error("IsWarning should be true for warning severity")
	}

	crit := NewCritical(CodeInternal, "boom")
	if !IsCritical(crit) {
		t.Error("IsCritical should be true for critical severity")
	}
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	if !v.IsValid() {
		t.Error("empty ValidationErrors should be valid")
	}

	v.AddError(CodeDuplicateGroupID, "group declared twice")
	v.AddWarning(CodeEnumMemberDuplication, "duplicate member")
	v.AddErrorWithField(CodeUnknownReference, "bad ref", "attributes[2].ref")

	if v.IsValid() {
		t.Error("ValidationErrors with errors should not be valid")
	}
	if !v.HasErrors() || !v.HasWarnings() {
		t.Error("expected both errors and warnings present")
	}
	if len(v.ErrorMessages()) != 2 {
		t.Errorf("expected 2 error messages, got %d", len(v.ErrorMessages()))
	}
	if len(v.WarningMessages()) != 1 {
		t.Errorf("expected 1 warning message, got %d", len(v.WarningMessages()))
	}

	other := NewValidationErrors()
	other.AddError(CodeExtendsCycle, "cycle")
	v.Merge(other)
	if len(v.Errors) != 3 {
		t.Errorf("expected 3 errors after merge, got %d", len(v.Errors))
	}
}

func TestValidationErrors_Error(t *testing.T) {
	v := NewValidationErrors()
	if v.Error() != "no errors" {
		t.Errorf("Error() = %q, want %q", v.Error(), "no errors")
	}
	v.AddError(CodeInternal, "first")
	v.AddError(CodeInternal, "second")
	msg := v.Error()
	if msg == "" {
		t.Error("expected non-empty combined message")
	}
}

func TestWithDetailsAndField(t *testing.T) {
	err := New(CodeUnknownReference, "bad ref").
		WithDetails("ref", "http.method").
		WithField("attributes[0].ref").
		WithSeverity(SeverityCritical)

	if err.Details["ref"] != "http.method" {
		t.Error("WithDetails did not set detail")
	}
	if err.Field != "attributes[0].ref" {
		t.Error("WithField did not set field")
	}
	if err.Severity != SeverityCritical {
		t.Error("WithSeverity did not set severity")
	}
}
