package request

import "errors"

var (
	// ErrValidation signals malformed input: empty service list, bad
	// coordinates, non-positive amounts.
	ErrValidation = errors.New("validation error")
	// ErrNotFound signals an unknown request id.
	ErrNotFound = errors.New("service request not found")
	// ErrRequestClosed signals the request is no longer open for the
	// attempted operation (cancelled, confirmed or past its window).
	ErrRequestClosed = errors.New("service request is closed")
	// ErrInvalidTransition signals an operation attempted outside its
	// legal state.
	ErrInvalidTransition = errors.New("invalid request state transition")
	// ErrNotRequestOwner signals the actor does not own the request.
	ErrNotRequestOwner = errors.New("actor is not the request owner")
)
