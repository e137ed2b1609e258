package service

import (
	"errors"
	"fmt"
)

var (
	// ErrService is matched by every *ServiceError.
	ErrService = errors.New("service: request failed")

	// ErrUnknownAlgorithm is returned for an algorithm key not in Algorithms.
	ErrUnknownAlgorithm = errors.New("service: unknown algorithm")
)

// ServiceError is an error field in a response, a non-2xx status, or a
// transport/decoding failure.
type ServiceError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("service: %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("service: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("service: %s: status %d", e.Op, e.Status)
	}
}

func (e *ServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrService, e.Err}
	}
	return []error{ErrService}
}
