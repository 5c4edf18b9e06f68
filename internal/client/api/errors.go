package api

import "fmt"

// ServerError is a non-2xx backend response that is neither a 401 nor a
// transport failure. Detail carries the human-readable "detail" payload the
// backend attaches to errors; Status is the HTTP status code.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Detail, e.Status)
}
