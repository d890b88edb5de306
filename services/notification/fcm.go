package notification

import (
	"context"
	"fmt"

	"trimly/models"
	"trimly/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// FCMDispatcher sends pushes directly through Firebase Cloud Messaging.
type FCMDispatcher struct {
	Client *messaging.Client
}

// NewFCMDispatcher builds a dispatcher on the globally initialized client.
func NewFCMDispatcher() *FCMDispatcher {
	return &FCMDispatcher{Client: utils.FCMClient}
}

func (d *FCMDispatcher) send(ctx context.Context, payload models.PushPayload) error {
	msg := &messaging.Message{
		Topic: payload.Topic,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}
	if _, err := d.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to topic %s: %w", payload.Topic, err)
	}
	return nil
}

// Send delivers a single prepared push payload.
func (d *FCMDispatcher) Send(ctx context.Context, payload models.PushPayload) error {
	return d.send(ctx, payload)
}

func (d *FCMDispatcher) NotifyNewRequest(ctx context.Context, req *models.ServiceRequest, barbers []models.Barber) error {
	logger := utils.GetLogger()
	for _, p := range NewRequestPayloads(req, barbers) {
		if err := d.send(ctx, p); err != nil {
			// Fan-out is best-effort; one dead topic must not stop the rest.
			logger.Warn("new request push failed", zap.String("topic", p.Topic), zap.Error(err))
		}
	}
	return nil
}

func (d *FCMDispatcher) NotifyNewResponse(ctx context.Context, req *models.ServiceRequest, resp *models.BarberResponse) error {
	return d.send(ctx, NewResponsePayload(req, resp))
}

func (d *FCMDispatcher) NotifyOffer(ctx context.Context, msg *models.NegotiationMessage, customerID string) error {
	return d.send(ctx, OfferPayload(msg, customerID))
}

func (d *FCMDispatcher) NotifyBookingCompleted(ctx context.Context, booking *models.Booking) error {
	return d.send(ctx, BookingCompletedPayload(booking))
}

func (d *FCMDispatcher) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	logger := utils.GetLogger()
	for _, p := range BookingConfirmedPayloads(booking) {
		if err := d.send(ctx, p); err != nil {
			logger.Warn("booking confirmed push failed", zap.String("topic", p.Topic), zap.Error(err))
		}
	}
	return nil
}
