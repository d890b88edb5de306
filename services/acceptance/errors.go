package acceptance

import "errors"

var (
	// ErrRequestClosed signals the request is past the point of acceptance.
	ErrRequestClosed = errors.New("service request is closed")
	// ErrAlreadyResolved signals the accept lost a race: another accept,
	// a retraction or an expiry sweep got there first. Callers treat this
	// as non-fatal and re-fetch to learn the winning outcome.
	ErrAlreadyResolved = errors.New("request already resolved")
	// ErrNotRequestOwner signals the accepting actor does not own the request.
	ErrNotRequestOwner = errors.New("actor is not the request owner")
	// ErrNotFound signals an unknown request or response id.
	ErrNotFound = errors.New("acceptance target not found")
)
