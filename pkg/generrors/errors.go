// Package generrors provides structured error types for clientgen.
//
// Every failure of the load, resolve and assemble stages is one of the types
// below, so callers can branch with errors.Is and errors.As instead of
// matching message text.
//
// # Error Categories
//
//   - UnknownValueError: a closed vocabulary (schema type, parameter location,
//     media type, security scheme type) received a literal it does not know
//   - MalformedInputError: the code model document is structurally broken
//   - DiscriminatorError: a polymorphic object has no discriminator in its
//     own declaration or in any ancestor
//   - GroupingCycleError: a groupedBy/originalParameter chain revisits a parameter
//   - CredentialError: example data was about to embed a credential-like value
//   - ConfigError: invalid configuration or options
//
// Heuristic fallbacks (class name truncation, maxpagesize detection,
// lowest-common-parent degenerating to any) are never reported as errors.
package generrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrMalformedInput indicates the input code model could not be used.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownValue indicates a literal outside a closed vocabulary.
	ErrUnknownValue = errors.New("unknown value")

	// ErrDiscriminatorNotFound indicates a polymorphic type without discriminator.
	ErrDiscriminatorNotFound = errors.New("discriminator not found")

	// ErrGroupingCycle indicates a cyclic parameter derivation chain.
	ErrGroupingCycle = errors.New("parameter grouping cycle")

	// ErrPossibleCredential indicates example data that looks like a secret.
	ErrPossibleCredential = errors.New("possible credential")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// UnknownValueError reports a literal that is not part of a closed vocabulary.
// Unknown values are malformed input, so the error also matches ErrMalformedInput.
type UnknownValueError struct {
	// Vocabulary names the closed set, e.g. "schema type" or "parameter location"
	Vocabulary string
	// Value is the offending literal as it appeared in the input
	Value string
	// Path is the location of the value in the document, if known
	Path string
	// Line is the line number in the source document (0 if unknown)
	Line int
}

// Error returns a human-readable error message.
func (e *UnknownValueError) Error() string {
	msg := fmt.Sprintf("unknown %s %q", e.Vocabulary, e.Value)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnknownValueError) Is(target error) bool {
	return target == ErrUnknownValue || target == ErrMalformedInput
}

// MalformedInputError represents a code model document that cannot be turned
// into a schema graph.
type MalformedInputError struct {
	// Path is the file path or document location
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *MalformedInputError) Error() string {
	msg := "malformed input"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// DiscriminatorError is returned when discriminator resolution is invoked on
// a type for which neither the type nor any ancestor declares one.
type DiscriminatorError struct {
	// TypeName is the name of the object schema
	TypeName string
}

// Error returns a human-readable error message.
func (e *DiscriminatorError) Error() string {
	return fmt.Sprintf("discriminator not found in type %s and its parents", e.TypeName)
}

// Is reports whether target matches this error type.
func (e *DiscriminatorError) Is(target error) bool {
	return target == ErrDiscriminatorNotFound || target == ErrMalformedInput
}

// GroupingCycleError reports a groupedBy or originalParameter chain that
// revisits a parameter.
type GroupingCycleError struct {
	// Operation is the operation the parameter belongs to
	Operation string
	// Chain lists the parameter names visited, ending with the repeated one
	Chain []string
}

// Error returns a human-readable error message.
func (e *GroupingCycleError) Error() string {
	msg := "parameter grouping cycle"
	if e.Operation != "" {
		msg += " in operation " + e.Operation
	}
	if len(e.Chain) > 0 {
		msg += ": " + strings.Join(e.Chain, " -> ")
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *GroupingCycleError) Is(target error) bool {
	return target == ErrGroupingCycle || target == ErrMalformedInput
}

// CredentialError is returned when generated example data would contain a
// value under a credential-like name.
type CredentialError struct {
	// Name is the property or parameter name that matched a credential keyword
	Name string
	// Path is the JSON path of the value inside the example
	Path string
}

// Error returns a human-readable error message.
func (e *CredentialError) Error() string {
	msg := fmt.Sprintf("possible credential in example data: %q", e.Name)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *CredentialError) Is(target error) bool {
	return target == ErrPossibleCredential
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	// Option is the name of the offending option
	Option string
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += ": " + e.Option
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
