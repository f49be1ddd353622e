// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// includes utilities for converting to and from gRPC status errors, kept for
// parity with the teacher's pattern should this module ever sit behind a
// gRPC-fronted deployment of the live-check core.
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
	// Loader errors (§7.1)
	CodeLoaderFileNotFound    ErrorCode = "LOADER_FILE_NOT_FOUND"
	CodeLoaderParseError      ErrorCode = "LOADER_PARSE_ERROR"
	CodeLoaderManifestError   ErrorCode = "LOADER_MANIFEST_ERROR"
	CodeLoaderDependencyCycle ErrorCode = "LOADER_DEPENDENCY_CYCLE"
	CodeLoaderUnreachable     ErrorCode = "LOADER_UNREACHABLE"

	// Validation errors (§7.2)
	CodeDuplicateGroupID       ErrorCode = "DUPLICATE_GROUP_ID"
	CodeStabilityConflict      ErrorCode = "STABILITY_DEPRECATION_CONFLICT"
	CodeEnumMemberDuplication  ErrorCode = "ENUM_MEMBER_DUPLICATION"
	CodeEnumValueTypeMismatch  ErrorCode = "ENUM_VALUE_TYPE_MISMATCH"
	CodeUnknownReference       ErrorCode = "UNKNOWN_REFERENCE"
	CodeMissingAttributeType   ErrorCode = "MISSING_ATTRIBUTE_TYPE"
	CodeInvalidTemplateBacking ErrorCode = "INVALID_TEMPLATE_BACKING"
	CodeInvalidSignalID        ErrorCode = "INVALID_SIGNAL_ID"

	// Resolution errors (§7.3)
	CodeExtendsCycle           ErrorCode = "EXTENDS_CYCLE"
	CodeIncludeCycle           ErrorCode = "INCLUDE_CYCLE"
	CodeUnresolvedDependency   ErrorCode = "UNRESOLVED_DEPENDENCY"
	CodeAttributeRedefinition  ErrorCode = "ATTRIBUTE_REDEFINITION"
	CodeAttributeRefOutOfRange ErrorCode = "ATTRIBUTE_REF_OUT_OF_RANGE"

	// Policy errors (§7.4)
	CodePolicySyntaxError     ErrorCode = "POLICY_SYNTAX_ERROR"
	CodePolicyEvaluationError ErrorCode = "POLICY_EVALUATION_ERROR"
	CodePolicyTransformError  ErrorCode = "POLICY_TRANSFORM_ERROR"

	// Runtime (live check) errors (§7.5)
	CodeSampleParseError  ErrorCode = "SAMPLE_PARSE_ERROR"
	CodeOTLPDecodeError   ErrorCode = "OTLP_DECODE_ERROR"
	CodeInactivityTimeout ErrorCode = "INACTIVITY_TIMEOUT"

	// Diff errors
	CodeDiffSchemaMismatch ErrorCode = "DIFF_SCHEMA_MISMATCH"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
	CodeUnimplemented   ErrorCode = "UNIMPLEMENTED"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error that might require immediate human intervention.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Provenance is attached to resolution errors so the compound error report
// can point at the exact registry + file that caused it (§7's "propagation
// policy ... full provenance").
type Provenance struct {
	RegistryID string
	Path       string
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code       ErrorCode      // Code is a unique identifier for the type of error.
	Message    string         // Message is a human-readable description of the error.
	Field      string         // Field indicates which input field caused the error, if applicable.
	Details    map[string]any // Details provides additional structured information about the error.
	Cause      error          // Cause is the underlying error that triggered this application error.
	Severity   Severity       // Severity indicates the criticality level of the error.
	Provenance *Provenance    // Provenance locates the source registry/file, when known.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	switch {
	case e.Provenance != nil:
		return fmt.Sprintf("[%s] %s (%s:%s)", e.Code, e.Message, e.Provenance.RegistryID, e.Provenance.Path)
	case e.Field != "":
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus converts the application error into a gRPC status.Status.
func (e *Error) GRPCStatus() *status.Status {
	code := e.grpcCode()
	return status.New(code, e.Message)
}

// grpcCode maps an ErrorCode to an appropriate gRPC codes.Code.
func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeInvalidArgument, CodeMissingAttributeType, CodeInvalidTemplateBacking,
		CodeInvalidSignalID, CodeEnumValueTypeMismatch, CodeNilInput:
		return codes.InvalidArgument

	case CodeLoaderFileNotFound, CodeNotFound:
		return codes.NotFound

	case CodeInactivityTimeout:
		return codes.DeadlineExceeded

	case CodeExtendsCycle, CodeIncludeCycle, CodeLoaderDependencyCycle,
		CodeUnresolvedDependency, CodeDiffSchemaMismatch, CodeAttributeRefOutOfRange:
		return codes.FailedPrecondition

	case CodeUnimplemented:
		return codes.Unimplemented

	default:
		return codes.Internal
	}
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWithField creates a new application error with the given code, message, and field.
// The default severity is SeverityError.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Field:    field,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWithProvenance creates a new error tagged with the registry/path that
// caused it, per §7's provenance-keyed resolution errors.
func NewWithProvenance(code ErrorCode, message, registryID, path string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Details:    make(map[string]any),
		Severity:   SeverityError,
		Provenance: &Provenance{RegistryID: registryID, Path: path},
	}
}

// NewWarning creates a new application error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityWarning,
	}
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityCritical,
	}
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
// The default severity is SeverityError.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithProvenance sets the provenance associated with the error and returns
// the modified error.
func (e *Error) WithProvenance(registryID, path string) *Error {
	e.Provenance = &Provenance{RegistryID: registryID, Path: path}
	return e
}

// WithSeverity sets the severity level of the error and returns the modified error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
// It uses errors.As to unwrap the error chain.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToGRPC converts an application error or any other error into a gRPC error status.
// If the error is an *Error, it uses its GRPCStatus method.
// If it's already a gRPC status error, it's returned as is.
// Otherwise, it's wrapped as an internal gRPC error.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}

	// If it's already a gRPC error
	if _, ok := status.FromError(err); ok {
		return err
	}

	// Wrap as an Internal error
	return status.Error(codes.Internal, err.Error())
}

// FromGRPC converts a gRPC error into an *Error.
// If the input error is nil, it returns nil.
// If the gRPC status code cannot be mapped to a specific ErrorCode,
// it defaults to CodeInternal.
func FromGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return New(CodeInternal, err.Error())
	}

	var code ErrorCode
	switch st.Code() {
	case codes.InvalidArgument:
		code = CodeInvalidArgument
	case codes.NotFound:
		code = CodeNotFound
	case codes.DeadlineExceeded:
		code = CodeInactivityTimeout
	case codes.FailedPrecondition:
		code = CodeUnresolvedDependency
	case codes.Unimplemented:
		code = CodeUnimplemented
	default:
		code = CodeInternal
	}

	return New(code, st.Message())
}

// IsWarning checks if the given error is an application error with SeverityWarning.
func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// IsCritical checks if the given error is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// Predefined errors for common scenarios.
var (
	ErrNilInput          = New(CodeNilInput, "input must not be nil")
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrInactivityTimeout = New(CodeInactivityTimeout, "live-check pipeline inactivity timeout")
)

// ValidationErrors is a collection of application errors and warnings,
// typically used for aggregating results of multiple validation checks. The
// resolver uses this to collect per-phase errors without short-circuiting
// (§7's "propagation policy").
type ValidationErrors struct {
	Errors   []*Error // Errors contains all collected errors (SeverityError and SeverityCritical).
	Warnings []*Error // Warnings contains all collected warnings (SeverityWarning).
}

// NewValidationErrors creates and returns a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// Add appends an *Error to the appropriate slice (Errors or Warnings)
// based on its Severity.
func (v *ValidationErrors) Add(err *Error) {
	if err == nil {
		return
	}
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// AddError creates and adds a new application error with SeverityError.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// AddWarning creates and adds a new application error with SeverityWarning.
func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

// AddErrorWithField creates and adds a new application error with a specific field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

// HasErrors returns true if the collection contains any errors (non-warning severity).
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings returns true if the collection contains any warnings.
func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// IsValid returns true if the collection contains no errors (warnings do not affect validity).
func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

// Merge combines the current ValidationErrors collection with another one.
// All errors and warnings from the 'other' collection are appended to the current one.
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

// Error implements the error interface so a ValidationErrors can itself be
// returned as a compound error (§7).
func (v *ValidationErrors) Error() string {
	msgs := v.ErrorMessages()
	if len(msgs) == 0 {
		return "no errors"
	}
	out := msgs[0]
	for _, m := range msgs[1:] {
		out += "; " + m
	}
	return out
}

// ErrorMessages returns a slice of string messages for all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// WarningMessages returns a slice of string messages for all collected warnings.
func (v *ValidationErrors) WarningMessages() []string {
	messages := make([]string, len(v.Warnings))
	for i, warn := range v.Warnings {
		messages[i] = warn.Message
	}
	return messages
}
