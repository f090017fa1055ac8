package domain

import "errors"

var (
	// Validation errors. Specific validation failures wrap ErrValidation so
	// callers can match the whole class with errors.Is.
	ErrValidation = errors.New("invalid input")

	// Persistence errors. Repositories wrap store failures with these so
	// callers can tell a rejected write from a failed read without string
	// matching.
	ErrLedgerWrite = errors.New("ledger write failed")
	ErrLedgerRead  = errors.New("ledger read failed")

	// Ledger lookup errors. ErrChargeConflict marks a stripe charge id that is
	// already booked under a different tenant; it is never served across the
	// tenant boundary.
	ErrEntryNotFound  = errors.New("ledger entry not found")
	ErrChargeConflict = errors.New("stripe charge recorded for another tenant")

	// Alert errors
	ErrAlertNotFound = errors.New("alert not found")

	// Dunning errors
	ErrDunningEventNotFound = errors.New("dunning event not found")
	ErrInvalidTransition    = errors.New("invalid dunning status transition")
)
