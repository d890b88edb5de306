package models

import "time"

// ResponseStatus tracks a barber's bid against a request.
type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseAccepted ResponseStatus = "accepted"
	ResponseRejected ResponseStatus = "rejected"
	ResponseExpired  ResponseStatus = "expired"
)

// BarberResponse is one barber's bid (price, ETA) against a service request.
// At most one response per (request, barber) pair; at most one accepted
// response per request, ever.
type BarberResponse struct {
	ID            string         `bson:"id" json:"id"`
	RequestID     string         `bson:"request_id" json:"requestId"`
	BarberID      string         `bson:"barber_id" json:"barberId"`
	ProposedPrice float64        `bson:"proposed_price" json:"proposedPrice"`
	ETAMinutes    int            `bson:"eta_minutes" json:"etaMinutes"`
	Message       string         `bson:"message,omitempty" json:"message,omitempty"`
	Status        ResponseStatus `bson:"status" json:"status"`
	RespondedAt   time.Time      `bson:"responded_at" json:"respondedAt"`
}

// SubmitResponseInput is the payload for a barber bidding on a request.
type SubmitResponseInput struct {
	RequestID     string  `json:"requestId" binding:"required"`
	BarberID      string  `json:"-"`
	ProposedPrice float64 `json:"proposedPrice"`
	ETAMinutes    int     `json:"etaMinutes"`
	Message       string  `json:"message"`
}
