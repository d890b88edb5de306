package negotiation

import "errors"

var (
	// ErrInvalidOffer signals a malformed offer (amount <= 0, missing pair).
	ErrInvalidOffer = errors.New("invalid offer")
	// ErrRequestClosed signals the request is not open for negotiation.
	ErrRequestClosed = errors.New("service request is closed")
	// ErrExpiredOffer signals the offer's TTL lapsed before the decision.
	ErrExpiredOffer = errors.New("offer has expired")
	// ErrNotOfferOwner signals the actor is not the counterpart of the
	// offer: a party cannot accept or reject its own proposal.
	ErrNotOfferOwner = errors.New("actor is not the offer counterpart")
	// ErrAlreadyResolved signals the offer was superseded or resolved
	// before the decision landed.
	ErrAlreadyResolved = errors.New("offer already resolved")
	// ErrNotFound signals an unknown message id.
	ErrNotFound = errors.New("negotiation message not found")
)
