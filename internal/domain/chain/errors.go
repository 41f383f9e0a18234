package chain

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptyName       = errors.New("chain name must not be empty")
	ErrNilModule       = errors.New("nil module")
	ErrDuplicateModule = errors.New("duplicate module name")
	ErrDuplicateChain  = errors.New("duplicate chain name")
)
