package booking

import "errors"

var (
	// ErrNotFound is returned when the booking does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrInvalidTransition is returned when the booking is not in a state
	// the requested progression can start from.
	ErrInvalidTransition = errors.New("invalid booking transition")
	// ErrNotAllowed is returned when the actor is not a party to the
	// booking, or the action belongs to the other party.
	ErrNotAllowed = errors.New("actor not allowed on this booking")
	// ErrValidation is returned for malformed lifecycle input.
	ErrValidation = errors.New("invalid booking input")
)
