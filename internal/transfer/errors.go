package transfer

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap one of these so callers can use errors.Is.
var (
	// ErrSelectionCountMismatch means the wrong number of records is selected.
	ErrSelectionCountMismatch = errors.New("selection count mismatch")

	// ErrSelectionCountExceeded means more records are selected than allowed.
	ErrSelectionCountExceeded = errors.New("selection count exceeded")

	// ErrFieldListMismatch means input and output field lists differ in length.
	ErrFieldListMismatch = errors.New("field list mismatch")

	// ErrInvalidMethod means an unknown update method was requested.
	ErrInvalidMethod = errors.New("invalid method")

	// ErrNotImplemented is returned by the one-to-one update method.
	ErrNotImplemented = errors.New("not implemented")
)

// SelectionCountError reports a selection precondition failure on one table.
type SelectionCountError struct {
	Table    string
	Role     string // "input", "output" or "target"
	Selected int64  // effective selected count; SelectAll is already resolved
	Message  string
	Kind     error // ErrSelectionCountMismatch or ErrSelectionCountExceeded
}

func (e *SelectionCountError) Error() string {
	return fmt.Sprintf("%s table %q: %s (selected: %d)", e.Role, e.Table, e.Message, e.Selected)
}

func (e *SelectionCountError) Unwrap() error {
	return e.Kind
}

// FieldListMismatchError reports input and output field lists of different length.
type FieldListMismatchError struct {
	Input  int
	Output int
}

func (e *FieldListMismatchError) Error() string {
	return fmt.Sprintf("cannot match fields one-to-one: %d input fields, %d output fields", e.Input, e.Output)
}

func (e *FieldListMismatchError) Unwrap() error {
	return ErrFieldListMismatch
}

// InvalidMethodError reports an unrecognised update method string.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("%q is not a valid update method, valid values are %q and %q",
		e.Method, MethodOneToOne, MethodOneToMany)
}

func (e *InvalidMethodError) Unwrap() error {
	return ErrInvalidMethod
}
