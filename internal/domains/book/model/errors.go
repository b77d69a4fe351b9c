package model

import "errors"

// Error codes
const (
	ErrCodeBookNotFound       = "BOOK001"
	ErrCodeISBNExists         = "BOOK002"
	ErrCodeGenreNotFound      = "BOOK003"
	ErrCodeInvariantViolation = "BOOK004"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrISBNExists    = errors.New("a book with this ISBN already exists")
	ErrGenreNotFound = errors.New("genre not found")

	// ErrInvariantViolation marks states that correct call discipline can
	// never produce (negative review count, nonzero average with no
	// reviews). It is a bug signal, surfaced as an internal error and
	// never silently coerced.
	ErrInvariantViolation = errors.New("rating aggregate invariant violation")
)
