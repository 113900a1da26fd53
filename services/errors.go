package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed        = errors.New("validation failed")
	ErrInvalidScore            = errors.New("scores must be non-negative")
	ErrMatchTied               = errors.New("a completed match cannot end in a tie")
	ErrMatchNotSeeded          = errors.New("match does not have both teams assigned yet")
	ErrMatchAlreadyCompleted   = errors.New("match has already been completed")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")

	// Bracket guards
	ErrBracketLocked            = errors.New("cannot reseed bracket: matches have already been completed")
	ErrInsufficientParticipants = errors.New("not enough participants to create bracket")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific lookups
	ErrEventNotFound       = errors.New("event not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrPlayerNotFound      = errors.New("player profile not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileExists       = errors.New("user already has a player profile")
)
