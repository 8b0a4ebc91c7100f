package search

import "fmt"

// NoMatchError is returned when no station name contains the query
type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no stations found for %q", e.Query)
}

func NewNoMatchError(query string) *NoMatchError {
	return &NoMatchError{Query: query}
}

// InvalidSelectionError is returned when the chosen id is not a number or not among the matches
type InvalidSelectionError struct {
	Input string
	Err   error
}

func (e *InvalidSelectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid selection %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid selection %q: no listed station has this id", e.Input)
}

func (e *InvalidSelectionError) Unwrap() error {
	return e.Err
}

func NewInvalidSelectionError(input string, err error) *InvalidSelectionError {
	return &InvalidSelectionError{
		Input: input,
		Err:   err,
	}
}
