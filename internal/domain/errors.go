package domain

import "errors"

// Sentinel errors shared across services. Callers match them with errors.Is.
var (
	// ErrNotFound indicates a required single-record lookup had no match.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation's precondition was violated,
	// e.g. submitting an application before its cover letter is approved.
	ErrInvalidState = errors.New("invalid state")
)
