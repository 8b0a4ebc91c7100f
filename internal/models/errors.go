package models

import "fmt"

// MissingFieldError is returned when an expected key is absent from a JSON object
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.Object, e.Field)
}

func NewMissingFieldError(object, field string) *MissingFieldError {
	return &MissingFieldError{
		Object: object,
		Field:  field,
	}
}

// ParseError is returned when a payload or field does not have the expected JSON shape
type ParseError struct {
	Object string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: parsing field %q: %v", e.Object, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: parsing: %v", e.Object, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(object, field string, err error) *ParseError {
	return &ParseError{
		Object: object,
		Field:  field,
		Err:    err,
	}
}
