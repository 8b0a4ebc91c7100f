package gios

import "fmt"

// NetworkError represents a request that did not reach the API or came back with a failure status
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GIOS API error: GET %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("GIOS API error: GET %s: status %d", e.URL, e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(url string, statusCode int, err error) *NetworkError {
	return &NetworkError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
