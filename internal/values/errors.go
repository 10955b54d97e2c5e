package values

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSelection is returned when an enumeration is set outside its choice list
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidConfiguration is returned when a snapshot or configuration record fails validation
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// SelectionError reports a rejected enumeration index
type SelectionError struct {
	Field   Field
	Index   int
	Choices int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection for %s: index %d not in [0, %d)", e.Field, e.Index, e.Choices)
}

func (e *SelectionError) Unwrap() error {
	return ErrInvalidSelection
}

// Problem is one failed validation rule
type Problem struct {
	Field  string
	Reason string
}

// ValidationError collects every failed rule of a validation pass
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s %s", p.Field, p.Reason))
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Problems = append(e.Problems, Problem{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
