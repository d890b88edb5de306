package models

import "time"

// BookingStatus tracks a confirmed booking through fulfilment.
type BookingStatus string

const (
	BookingScheduled  BookingStatus = "scheduled"
	BookingEnRoute    BookingStatus = "barber_en_route"
	BookingArrived    BookingStatus = "arrived"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingDisputed   BookingStatus = "disputed"
)

// Booking is the single confirmed outcome of a request's negotiation,
// materialized exactly once by the acceptance transaction. FinalPrice is the
// accepted response's proposed price unless an accepted counter-offer in the
// negotiation overrode it.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	RequestID          string        `bson:"request_id" json:"requestId"`
	BarberID           string        `bson:"barber_id" json:"barberId"`
	CustomerID         string        `bson:"customer_id" json:"customerId"`
	FinalPrice         float64       `bson:"final_price" json:"finalPrice"`
	Address            string        `bson:"address" json:"address"`
	Location           GeoPoint      `bson:"location" json:"location"`
	ScheduledTime      *time.Time    `bson:"scheduled_time,omitempty" json:"scheduledTime,omitempty"`
	Status             BookingStatus `bson:"status" json:"status"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	EnRouteAt          *time.Time    `bson:"en_route_at,omitempty" json:"enRouteAt,omitempty"`
	BarberArrivedAt    *time.Time    `bson:"barber_arrived_at,omitempty" json:"barberArrivedAt,omitempty"`
	StartedAt          *time.Time    `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	CompletedAt        *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	DisputeReason      string        `bson:"dispute_reason,omitempty" json:"disputeReason,omitempty"`
}

// Active reports whether the booking has not yet reached a terminal state.
func (b *Booking) Active() bool {
	switch b.Status {
	case BookingCompleted, BookingCancelled, BookingDisputed:
		return false
	}
	return true
}
