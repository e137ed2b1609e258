package grid

import (
	"errors"
	"fmt"
)

// Domain errors for grid operations.
var (
	// ErrInvalidGrid is matched by every *InvalidGridError.
	ErrInvalidGrid = errors.New("grid: invalid grid")

	// ErrOutOfBounds is matched by every *OutOfBoundsError.
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")
)

// InvalidGridError reports a dimension or coordinate mismatch on load.
type InvalidGridError struct {
	Reason string
}

func (e *InvalidGridError) Error() string {
	return "grid: invalid grid: " + e.Reason
}

func (e *InvalidGridError) Unwrap() error {
	return ErrInvalidGrid
}

func invalidf(format string, args ...any) error {
	return &InvalidGridError{Reason: fmt.Sprintf(format, args...)}
}

// OutOfBoundsError reports a coordinate outside the current grid.
type OutOfBoundsError struct {
	Coord      Coord
	Rows, Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("grid: %s outside %dx%d grid", e.Coord, e.Rows, e.Cols)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}
