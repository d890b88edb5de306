package notification

import (
	"context"

	"trimly/models"
)

// Dispatcher sends fire-and-forget pushes around the negotiation lifecycle.
// Failures here must never roll back a negotiation transaction: callers log
// returned errors and move on.
type Dispatcher interface {
	// NotifyNewRequest fans a fresh request out to the matched barbers.
	NotifyNewRequest(ctx context.Context, req *models.ServiceRequest, barbers []models.Barber) error
	// NotifyNewResponse tells the customer a barber has bid.
	NotifyNewResponse(ctx context.Context, req *models.ServiceRequest, resp *models.BarberResponse) error
	// NotifyOffer tells the counterpart a new offer landed.
	NotifyOffer(ctx context.Context, msg *models.NegotiationMessage, customerID string) error
	// NotifyBookingConfirmed tells both parties the negotiation resolved.
	NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) error
	// NotifyBookingCompleted tells the customer the job is done.
	NotifyBookingCompleted(ctx context.Context, booking *models.Booking) error
}
