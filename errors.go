package shroud

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnknownKind indicates a record kind is not in the catalog.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrNilRecord indicates a nil record where one is required.
	ErrNilRecord = errors.New("nil record")

	// ErrUnknownField indicates a field is not declared for its kind.
	ErrUnknownField = errors.New("unknown field")

	// ErrNotSettable indicates a computed field was used where a stored field is required.
	ErrNotSettable = errors.New("field not settable")

	// ErrUndeclaredTransform indicates a transform is not declared for a field.
	ErrUndeclaredTransform = errors.New("undeclared transform")

	// ErrSelectionRange indicates a selection index outside the option list.
	ErrSelectionRange = errors.New("selection out of range")

	// ErrInvalidSchema indicates a malformed schema registration.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrTransform indicates a transform failed while serializing a record.
	ErrTransform = errors.New("transform failed")

	// ErrUnsupportedValue indicates a transform or setter got a value type it cannot handle.
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrLegacyEntry indicates a legacy registry entry could not be migrated.
	ErrLegacyEntry = errors.New("invalid legacy entry")

	// ErrMissingTransform indicates a persisted transform name no longer resolves.
	ErrMissingTransform = errors.New("missing transform")

	// ErrInvalidKey indicates a key is missing or has invalid size or format.
	ErrInvalidKey = errors.New("invalid key")
)

// ConfigError represents a configuration error: an unknown kind or field,
// an undeclared transform, or an out-of-range selection.
type ConfigError struct {
	Err       error  // Underlying sentinel error
	Field     string // Field reference in Kind-Field form
	Transform string // Transform name, when one was involved
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Transform != "" {
		return fmt.Sprintf("%s %q (field %s)", e.Err.Error(), e.Transform, e.Field)
	}
	if e.Transform != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.Transform)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransformError represents a failed transform invocation. It aborts the
// serialization pass it occurred in.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrTransform)
	Field     string // Field reference in Kind-Field form
	Transform string // Name of the transform that failed
	Cause     error  // Original error from the transform
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transform %s on field %s: %v", e.Transform, e.Field, e.Cause)
	}
	return fmt.Sprintf("transform %s on field %s", e.Transform, e.Field)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *TransformError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// LegacyError reports one legacy registry entry that could not be migrated.
// Migration continues past it.
type LegacyError struct {
	Entry  string // The raw legacy entry
	Reason string // Why it was rejected
}

func (e *LegacyError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrLegacyEntry.Error(), e.Entry, e.Reason)
}

func (e *LegacyError) Unwrap() error {
	return ErrLegacyEntry
}

// newConfigError creates a ConfigError.
func newConfigError(sentinel error, transform, field string) error {
	return &ConfigError{
		Err:       sentinel,
		Field:     field,
		Transform: transform,
	}
}

// newTransformError creates a TransformError for a failed transform.
func newTransformError(ref FieldRef, transform string, cause error) error {
	return &TransformError{
		Err:       ErrTransform,
		Field:     ref.String(),
		Transform: transform,
		Cause:     cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
