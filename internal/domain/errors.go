package domain

import "errors"

var (
	// ErrPlacementRejected: target occupied or out of bounds. The caller may retry
	// with another origin or rotation.
	ErrPlacementRejected = errors.New("placement rejected")
	// ErrInvalidLevelDefinition aborts a level load.
	ErrInvalidLevelDefinition = errors.New("invalid level definition")
	// ErrNoPlacementAvailable is the reason attached to a Defeat outcome.
	ErrNoPlacementAvailable = errors.New("no placement available")
	ErrSessionOver          = errors.New("session is over")
	ErrCatalystUnavailable  = errors.New("catalyst unavailable")
	ErrLevelLocked          = errors.New("level is locked")
	ErrSessionNotFound      = errors.New("session not found")
	ErrLevelNotFound        = errors.New("level not found")
)
