package orcz

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTable     = errors.New("missing table")
	ErrMissingTableBody = errors.New("missing table body")

	ErrMissingSource     = errors.New("missing source")
	ErrMissingRewards    = errors.New("missing rewards")
	ErrMissingIssueDate  = errors.New("missing issue date")
	ErrMissingExpiration = errors.New("missing expiration")
	ErrMissingCode       = errors.New("missing code")

	// ErrUnresolvedReference is returned when a "Same code as <date>" cell names a
	// date that no row in the table was issued on.
	ErrUnresolvedReference = errors.New("unresolved code reference")
	// ErrNoPreviousRow is returned when the first row of a table says "See Key Above".
	ErrNoPreviousRow = errors.New("no previous row to copy code from")
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrMissingYear    = fmt.Errorf("%w: missing year", ErrInvalidDate)
	ErrMissingMonth   = fmt.Errorf("%w: missing month", ErrInvalidDate)
	ErrMissingDay     = fmt.Errorf("%w: missing day", ErrInvalidDate)
	ErrComponentRange = fmt.Errorf("%w: component out of range", ErrInvalidDate)
)

// InvalidTokenError is returned when an issue date contains text that is neither
// a month, a number nor known filler.
type InvalidTokenError struct {
	Token string
}

func (e InvalidTokenError) Error() string {
	return fmt.Sprintf("%s: unexpected token %q", ErrInvalidDate, e.Token)
}

func (e InvalidTokenError) Unwrap() error {
	return ErrInvalidDate
}

// StatusError is returned when orcz responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Url        string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.Url)
}
