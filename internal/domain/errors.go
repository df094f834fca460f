package domain

import "errors"

var (
	// ErrNotFound is returned when a configured account name does not
	// match any open account
	ErrNotFound = errors.New("not found")

	// ErrZeroPrimaryValue is returned when the primary portfolio is worth
	// nothing, so no ratio between the two portfolios exists
	ErrZeroPrimaryValue = errors.New("primary portfolio total value is zero")

	// ErrDuplicateFigi is returned when one account reports the same FIGI
	// in more than one position
	ErrDuplicateFigi = errors.New("duplicate figi in portfolio")
)
