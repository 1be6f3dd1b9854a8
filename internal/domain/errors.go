package domain

import (
	"context"
	"errors"
	"fmt"
)

// ServiceError is returned for any failed call to the catalog service:
// transport failure, non-success status or an undecodable body.
type ServiceError struct {
	Op         string // "list items", "list categories", ...
	StatusCode int    // 0 when the request never got a response
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog service: %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog service: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call was abandoned because its deadline passed.
func (e *ServiceError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// AsServiceError wraps err into a ServiceError unless it already is one.
func AsServiceError(op string, err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Op: op, Err: err}
}
