package repository

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrContributorNotFound = errors.New("contributor not found")
	ErrEmptyContributor    = errors.New("contributor must not be empty")
)
