package models

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a run wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrInputNotFound     = errors.New("input not found")
	ErrInputMalformed    = errors.New("input malformed")
	ErrOutputWriteFailed = errors.New("output write failed")
)

// GapError annotates a failure kind with the element and field involved.
type GapError struct {
	Kind    error  // one of the Err* sentinels above
	Element string // collimator or element name, may be empty
	Field   string // column name, may be empty
	Err     error  // underlying cause, may be nil
}

func (e *GapError) Error() string {
	msg := e.Kind.Error()
	if e.Element != "" {
		msg += fmt.Sprintf(": element %s", e.Element)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %s", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the failure kind.
func (e *GapError) Is(target error) bool { return target == e.Kind }

func (e *GapError) Unwrap() error { return e.Err }

// Malformed builds an ErrInputMalformed error.
func Malformed(element, field string, err error) error {
	return &GapError{Kind: ErrInputMalformed, Element: element, Field: field, Err: err}
}

// Annotate attributes err to element and field. An existing GapError keeps
// its kind and cause; anything else becomes ErrInputMalformed.
func Annotate(err error, element, field string) error {
	var ge *GapError
	if errors.As(err, &ge) {
		out := *ge
		out.Element = element
		if field != "" {
			out.Field = field
		}
		return &out
	}
	return Malformed(element, field, err)
}
