package pipeline

import (
	"errors"
	"fmt"
)

// ErrSchema matches every SchemaError through errors.Is.
var ErrSchema = errors.New("schema error")

// SchemaError reports a required structural column missing from a source table.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: source %q is missing required column %q", e.Source, e.Column)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

func requireColumns(source string, has func(string) bool, cols ...string) error {
	for _, c := range cols {
		if !has(c) {
			return &SchemaError{Source: source, Column: c}
		}
	}
	return nil
}
