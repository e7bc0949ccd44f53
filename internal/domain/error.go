package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Payment lifecycle
	ErrInvalidStateTransition = errors.New("invalid payment state transition")

	// Promotion codes
	ErrPromotionInactive      = errors.New("promotion code is inactive")
	ErrPromotionOutOfWindow   = errors.New("promotion code is outside its validity window")
	ErrPromotionExhausted     = errors.New("promotion code has no uses left")
	ErrPromotionNotApplicable = errors.New("promotion code not applicable to this purchase")

	// Entitlements
	ErrAccessConflict = errors.New("concurrent access grant for the same user and course")

	// Storage-layer failures, surfaced as opaque internal errors
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
