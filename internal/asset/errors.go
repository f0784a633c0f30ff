package asset

import "fmt"

// LoadError reports a failed asset fetch or parse.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading asset %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
