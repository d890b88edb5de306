package notification

import (
	"context"

	"trimly/models"
)

// NopDispatcher discards every push. Used in tests and in environments
// without push delivery configured.
type NopDispatcher struct{}

var _ Dispatcher = (*NopDispatcher)(nil)

func (NopDispatcher) NotifyNewRequest(ctx context.Context, req *models.ServiceRequest, barbers []models.Barber) error {
	return nil
}

func (NopDispatcher) NotifyNewResponse(ctx context.Context, req *models.ServiceRequest, resp *models.BarberResponse) error {
	return nil
}

func (NopDispatcher) NotifyOffer(ctx context.Context, msg *models.NegotiationMessage, customerID string) error {
	return nil
}

func (NopDispatcher) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	return nil
}

func (NopDispatcher) NotifyBookingCompleted(ctx context.Context, booking *models.Booking) error {
	return nil
}
