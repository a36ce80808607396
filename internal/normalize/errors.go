package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedValue is matched by every *MalformedValueError.
	ErrMalformedValue = errors.New("malformed value")
	// ErrInvalidTable indicates a structural problem with the raw table.
	ErrInvalidTable = errors.New("invalid table")
)

// MalformedValueError reports a cell that is neither a number nor the sentinel.
type MalformedValueError struct {
	Column string
	Row    string
	Value  string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed value %q in column %q for %q", e.Value, e.Column, e.Row)
}

func (e *MalformedValueError) Unwrap() error { return ErrMalformedValue }

// MissingColumnError indicates a required header is absent from the table.
type MissingColumnError struct{ Column string }

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

func (e *MissingColumnError) Unwrap() error { return ErrInvalidTable }

// DuplicateKeyError indicates two rows share the same company name.
type DuplicateKeyError struct{ Name string }

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate company name %q", e.Name)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrInvalidTable }
