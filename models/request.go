package models

import "time"

// RequestStatus tracks a service request through matching and negotiation.
type RequestStatus string

const (
	RequestPending     RequestStatus = "pending"
	RequestMatching    RequestStatus = "matching"
	RequestNegotiating RequestStatus = "negotiating"
	RequestConfirmed   RequestStatus = "confirmed"
	RequestCompleted   RequestStatus = "completed"
	RequestCancelled   RequestStatus = "cancelled"
)

// Cancellation reasons recorded on a request.
const (
	CancelReasonNoResponse = "no_response"
)

// ServiceRequest is one customer's ask for a mobile barber visit,
// open for competing barber responses until it expires or is confirmed.
type ServiceRequest struct {
	ID            string        `bson:"id" json:"id"`
	CustomerID    string        `bson:"customer_id" json:"customerId"`
	Location      GeoPoint      `bson:"location" json:"location"`
	Address       string        `bson:"address" json:"address"`
	ServiceIDs    []string      `bson:"service_ids" json:"serviceIds"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	ScheduledTime *time.Time    `bson:"scheduled_time,omitempty" json:"scheduledTime,omitempty"` // nil means "now"
	Status        RequestStatus `bson:"status" json:"status"`
	CancelReason  string        `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	ExpiresAt     time.Time     `bson:"expires_at" json:"expiresAt"`
}

// Open reports whether the request can still take responses or offers.
func (r *ServiceRequest) Open() bool {
	switch r.Status {
	case RequestPending, RequestMatching, RequestNegotiating:
		return true
	}
	return false
}

// ExpiredAt reports whether the match window has lapsed at the given instant.
func (r *ServiceRequest) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// OpenRequestStatuses are the statuses from which a request may still move.
func OpenRequestStatuses() []RequestStatus {
	return []RequestStatus{RequestPending, RequestMatching, RequestNegotiating}
}

// CreateRequestInput is the payload for opening a new service request.
type CreateRequestInput struct {
	CustomerID    string     `json:"-"`
	ServiceIDs    []string   `json:"serviceIds" binding:"required"`
	Lat           float64    `json:"lat"`
	Lng           float64    `json:"lng"`
	Address       string     `json:"address" binding:"required"`
	Notes         string     `json:"notes"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}
