package tabula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/tabula/schema/field"
)

// Standard sentinel errors for common failure categories.
var (
	// ErrConfiguration is returned when a declaration carries mutually
	// exclusive or otherwise invalid configuration.
	ErrConfiguration = errors.New("tabula: invalid declaration configuration")

	// ErrUnresolvedTarget is returned when a relationship target cannot
	// be resolved during wiring.
	ErrUnresolvedTarget = errors.New("tabula: unresolved relationship target")

	// ErrUnmappableType is returned when a field type has no storage
	// representation and no explicit override.
	ErrUnmappableType = errors.New("tabula: unmappable field type")

	// ErrValidation is returned when instance data fails validation.
	ErrValidation = errors.New("tabula: validation failed")
)

// ConfigurationError represents an invalid declaration: conflicting
// builder options, malformed references, or duplicate registrations.
// It is raised synchronously from Register, never deferred.
type ConfigurationError struct {
	Model string // declaring model name, if known.
	Name  string // offending field or relationship name, if any.
	Err   error  // underlying builder or loader error.
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	switch {
	case e.Model != "" && e.Name != "":
		return fmt.Sprintf("tabula: %s.%s: %v", e.Model, e.Name, e.Err)
	case e.Model != "":
		return fmt.Sprintf("tabula: %s: %v", e.Model, e.Err)
	default:
		return fmt.Sprintf("tabula: %v", e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ConfigurationError.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration
}

// NewConfigurationError returns a new ConfigurationError for the given
// model and member.
func NewConfigurationError(model, name string, err error) *ConfigurationError {
	return &ConfigurationError{Model: model, Name: name, Err: err}
}

// IsConfiguration returns true if the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e) || errors.Is(err, ErrConfiguration)
}

// UnresolvedTargetError represents a relationship whose target
// expression could not be resolved: a forward reference naming no
// registered model, a union of two or more concrete targets, or a link
// model without a table.
type UnresolvedTargetError struct {
	Model  string // declaring model name.
	Rel    string // relationship name.
	Target string // textual form of the target expression.
	Reason string // why resolution failed.
}

// Error returns the error string.
func (e *UnresolvedTargetError) Error() string {
	return fmt.Sprintf("tabula: %s.%s: cannot resolve target %s: %s", e.Model, e.Rel, e.Target, e.Reason)
}

// Is reports whether the target error matches UnresolvedTargetError.
func (e *UnresolvedTargetError) Is(err error) bool {
	return err == ErrUnresolvedTarget
}

// NewUnresolvedTargetError returns a new UnresolvedTargetError.
func NewUnresolvedTargetError(model, rel, target, reason string) *UnresolvedTargetError {
	return &UnresolvedTargetError{Model: model, Rel: rel, Target: target, Reason: reason}
}

// IsUnresolvedTarget returns true if the error is an UnresolvedTargetError.
func IsUnresolvedTarget(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedTargetError
	return errors.As(err, &e) || errors.Is(err, ErrUnresolvedTarget)
}

// UnmappableTypeError represents a field whose declared type has no
// storage representation and no explicit storage type or manual column.
type UnmappableTypeError struct {
	Model string     // declaring model name, if known.
	Name  string     // field name.
	Type  field.Type // the unmappable type.
}

// Error returns the error string.
func (e *UnmappableTypeError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("tabula: %s.%s: no storage mapping for type %q", e.Model, e.Name, e.Type)
	}
	return fmt.Sprintf("tabula: %s: no storage mapping for type %q", e.Name, e.Type)
}

// Is reports whether the target error matches UnmappableTypeError.
func (e *UnmappableTypeError) Is(err error) bool {
	return err == ErrUnmappableType
}

// NewUnmappableTypeError returns a new UnmappableTypeError.
func NewUnmappableTypeError(model, name string, t field.Type) *UnmappableTypeError {
	return &UnmappableTypeError{Model: model, Name: name, Type: t}
}

// IsUnmappableType returns true if the error is an UnmappableTypeError.
func IsUnmappableType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnmappableTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnmappableType)
}

// FieldError is a single field failure inside a ValidationError.
type FieldError struct {
	Name string // field name.
	Err  error  // what failed for this field.
}

// Error returns the error string.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every failing field of one validation
// pass. Validation never stops at the first failure.
type ValidationError struct {
	Model  string // model name being validated.
	Fields []*FieldError
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("tabula: validation failed for %s: %v", e.Model, e.Fields[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "tabula: validation failed for %s (%d fields):", e.Model, len(e.Fields))
	for _, fe := range e.Fields {
		fmt.Fprintf(&sb, "\n  - %v", fe)
	}
	return sb.String()
}

// Is reports whether the target error matches ValidationError.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// Field returns the error recorded for the named field, if any.
func (e *ValidationError) Field(name string) (*FieldError, bool) {
	for _, fe := range e.Fields {
		if fe.Name == name {
			return fe, true
		}
	}
	return nil, false
}

// NewValidationError returns a new ValidationError if there are field
// errors, otherwise nil.
func NewValidationError(model string, fields ...*FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Model: model, Fields: fields}
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}
