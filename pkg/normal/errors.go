package normal

import "errors"

var (
	// ErrInvalidConfiguration is returned when filter options cannot produce
	// a well-defined result (non-positive edge width or step size, zero scalar).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDegenerateInput marks source pixels whose decoded vector has no
	// direction and therefore cannot be rescaled.
	ErrDegenerateInput = errors.New("degenerate input")
)
