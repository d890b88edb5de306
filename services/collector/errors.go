package collector

import "errors"

var (
	// ErrValidation signals a malformed bid (price <= 0, negative ETA).
	ErrValidation = errors.New("validation error")
	// ErrRequestClosed signals the request is not accepting responses.
	ErrRequestClosed = errors.New("service request is closed")
	// ErrDuplicateResponse signals the barber already has a live response
	// on this request.
	ErrDuplicateResponse = errors.New("barber already responded to this request")
	// ErrAlreadyResolved signals the response is past the point where the
	// attempted operation applies.
	ErrAlreadyResolved = errors.New("response already resolved")
	// ErrNotFound signals an unknown response id.
	ErrNotFound = errors.New("barber response not found")
)
