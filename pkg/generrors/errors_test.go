package generrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownValueError(t *testing.T) {
	err := &UnknownValueError{Vocabulary: "parameter location", Value: "body2", Path: "clients[0]", Line: 12}

	assert.Equal(t, `unknown parameter location "body2" at clients[0] (line 12)`, err.Error())
	assert.True(t, errors.Is(err, ErrUnknownValue))
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.False(t, errors.Is(err, ErrConfig))
}

func TestErrorsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"unknown value", &UnknownValueError{Vocabulary: "media type", Value: "yaml"}, ErrUnknownValue},
		{"malformed", &MalformedInputError{Message: "missing clients"}, ErrMalformedInput},
		{"discriminator", &DiscriminatorError{TypeName: "Fish"}, ErrDiscriminatorNotFound},
		{"cycle", &GroupingCycleError{Operation: "list", Chain: []string{"a", "b", "a"}}, ErrGroupingCycle},
		{"credential", &CredentialError{Name: "apiKey"}, ErrPossibleCredential},
		{"config", &ConfigError{Option: "maxPathLength"}, ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("generation failed: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}
}

func TestMalformedInputErrorUnwrap(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := &MalformedInputError{Path: "model.yaml", Line: 3, Column: 7, Message: "cannot decode", Cause: cause}

	assert.Equal(t, "malformed input in model.yaml at line 3, column 7: cannot decode: yaml: line 3: mapping values are not allowed", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestDiscriminatorErrorAs(t *testing.T) {
	var err error = fmt.Errorf("map Salmon: %w", &DiscriminatorError{TypeName: "Salmon"})

	var target *DiscriminatorError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "Salmon", target.TypeName)
	assert.Contains(t, err.Error(), "discriminator not found in type Salmon and its parents")
}

func TestGroupingCycleErrorMessage(t *testing.T) {
	err := &GroupingCycleError{Operation: "Widgets_Create", Chain: []string{"options", "body", "options"}}
	assert.Equal(t, "parameter grouping cycle in operation Widgets_Create: options -> body -> options", err.Error())
}
