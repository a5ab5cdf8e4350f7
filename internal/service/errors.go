package service

import "errors"

// Sentinel errors shared by all services. Handlers map these onto HTTP status
// codes in one place instead of string-matching messages.
var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput means the request is malformed or violates a business
	// rule (bad enum value, negative amount, illegal state transition).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means the operation raced with another writer, e.g. a
	// duplicate payslip period or exhausted reference retries.
	ErrConflict = errors.New("conflict")

	// ErrConfigurationMissing means a required tax configuration (active
	// brackets for the contract's country) is absent.
	ErrConfigurationMissing = errors.New("tax configuration missing")
)
