package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionNotFound = errors.New("session not found")

	// Table errors
	ErrTableNotFound  = errors.New("table not found")
	ErrCodeNotFound   = errors.New("no table with that code")
	ErrTableFull      = errors.New("table is full")
	ErrNotSeated      = errors.New("player is not seated at this table")
	ErrCodeTaken      = errors.New("table code is already in use")
	ErrInvalidOptions = errors.New("invalid table options")

	// Intent errors
	ErrWrongPhase          = errors.New("action not allowed in current phase")
	ErrNotYourTurn         = errors.New("not this player's turn")
	ErrInsufficientChips   = errors.New("insufficient chips")
	ErrIllegalSplit        = errors.New("hand cannot be split")
	ErrIllegalDouble       = errors.New("hand cannot be doubled")
	ErrSurrenderNotAllowed = errors.New("surrender not allowed")
	ErrHandSettled         = errors.New("hand is already settled")
	ErrAlreadyBet          = errors.New("bet already placed this round")
	ErrUnknownAction       = errors.New("unknown action")

	// Concurrency errors
	ErrLockTimeout = errors.New("timed out waiting for table lock")
)

var validationErrors = []error{
	ErrWrongPhase,
	ErrNotYourTurn,
	ErrInsufficientChips,
	ErrIllegalSplit,
	ErrIllegalDouble,
	ErrSurrenderNotAllowed,
	ErrHandSettled,
	ErrAlreadyBet,
	ErrUnknownAction,
	ErrInvalidOptions,
	ErrTableFull,
	ErrNotSeated,
	ErrCodeTaken,
}

// IsValidation reports whether err rejects an intent without touching state
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
