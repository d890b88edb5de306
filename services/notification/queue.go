package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"trimly/models"
	"trimly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotifyPush is the asynq task type for a single queued push.
const TypeNotifyPush = "notify:push"

// QueueDispatcher enqueues pushes on asynq instead of sending inline, so the
// HTTP path never blocks on FCM. The worker in cron/ drains the queue
// through an FCMDispatcher.
type QueueDispatcher struct {
	Client *asynq.Client
}

// NewQueueDispatcher wraps an asynq client as a Dispatcher.
func NewQueueDispatcher(client *asynq.Client) *QueueDispatcher {
	return &QueueDispatcher{Client: client}
}

func (d *QueueDispatcher) enqueue(payloads ...models.PushPayload) error {
	logger := utils.GetLogger()
	for _, p := range payloads {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal push payload: %w", err)
		}
		if _, err := d.Client.Enqueue(asynq.NewTask(TypeNotifyPush, raw)); err != nil {
			// Queue trouble must not surface into the negotiation path.
			logger.Warn("failed to enqueue push", zap.String("topic", p.Topic), zap.Error(err))
		}
	}
	return nil
}

func (d *QueueDispatcher) NotifyNewRequest(ctx context.Context, req *models.ServiceRequest, barbers []models.Barber) error {
	return d.enqueue(NewRequestPayloads(req, barbers)...)
}

func (d *QueueDispatcher) NotifyNewResponse(ctx context.Context, req *models.ServiceRequest, resp *models.BarberResponse) error {
	return d.enqueue(NewResponsePayload(req, resp))
}

func (d *QueueDispatcher) NotifyOffer(ctx context.Context, msg *models.NegotiationMessage, customerID string) error {
	return d.enqueue(OfferPayload(msg, customerID))
}

func (d *QueueDispatcher) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	return d.enqueue(BookingConfirmedPayloads(booking)...)
}

func (d *QueueDispatcher) NotifyBookingCompleted(ctx context.Context, booking *models.Booking) error {
	return d.enqueue(BookingCompletedPayload(booking))
}
