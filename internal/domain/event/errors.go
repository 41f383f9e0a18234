package event

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidPattern = errors.New("invalid type pattern")
)
