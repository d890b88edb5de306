package acceptance

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "trimly/database/repository/booking"
	requestRepo "trimly/database/repository/request"
	responseRepo "trimly/database/repository/response"
	"trimly/models"
	"trimly/services/expiry"
	"trimly/services/notification"
	"trimly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcceptCommand names the response being accepted and, when acceptance
// flows through a negotiated offer, the offer whose amount overrides the
// response's proposed price.
type AcceptCommand struct {
	RequestID       string
	ResponseID      string
	CustomerID      string
	NegotiatedPrice *float64
	AcceptedOfferID string
}

// Resolver converts exactly one accepted response into exactly one
// confirmed booking. The store-level transaction is the only
// mutual-exclusion boundary in the engine.
type Resolver interface {
	Accept(ctx context.Context, cmd AcceptCommand) (*models.Booking, error)
}

// DefaultResolver implements Resolver.
type DefaultResolver struct {
	Requests  requestRepo.RequestRepository
	Responses responseRepo.ResponseRepository
	Bookings  bookingRepo.BookingRepository
	Notifier  notification.Dispatcher
	Sweeper   expiry.Sweeper
	Now       func() time.Time
}

func (s *DefaultResolver) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Accept applies the five acceptance effects in one conditional
// transaction. The preconditions checked here are advisory; the
// transaction re-checks request and response status at commit time, so a
// racing accept, retraction or sweep makes the loser fail with
// ErrAlreadyResolved and apply nothing.
func (s *DefaultResolver) Accept(ctx context.Context, cmd AcceptCommand) (*models.Booking, error) {
	logger := utils.GetLogger()

	req, err := s.Requests.GetByID(ctx, cmd.RequestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.CustomerID != cmd.CustomerID {
		return nil, ErrNotRequestOwner
	}

	now := s.now()
	// Lazy expiry check: an accept after the window must never produce a
	// booking, even before the sweep has run.
	if req.Open() && req.ExpiredAt(now) {
		if err := s.Sweeper.ExpireRequest(ctx, cmd.RequestID); err != nil {
			return nil, fmt.Errorf("failed to expire request %s: %w", cmd.RequestID, err)
		}
		return nil, ErrRequestClosed
	}
	if req.Status != models.RequestMatching && req.Status != models.RequestNegotiating {
		if req.Status == models.RequestPending {
			return nil, fmt.Errorf("%w: no responses to accept yet", ErrRequestClosed)
		}
		return nil, ErrRequestClosed
	}

	resp, err := s.Responses.GetByID(ctx, cmd.ResponseID)
	if err != nil {
		if errors.Is(err, responseRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if resp.RequestID != cmd.RequestID {
		return nil, ErrNotFound
	}
	if resp.Status != models.ResponsePending {
		return nil, ErrAlreadyResolved
	}

	finalPrice := resp.ProposedPrice
	if cmd.NegotiatedPrice != nil {
		finalPrice = *cmd.NegotiatedPrice
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      resp.BarberID,
		CustomerID:    req.CustomerID,
		FinalPrice:    finalPrice,
		Address:       req.Address,
		Location:      req.Location,
		ScheduledTime: req.ScheduledTime,
		Status:        models.BookingScheduled,
		CreatedAt:     now,
	}

	err = s.Bookings.AcceptResponse(ctx, bookingRepo.AcceptParams{
		RequestID:       cmd.RequestID,
		ResponseID:      cmd.ResponseID,
		AcceptedOfferID: cmd.AcceptedOfferID,
		Booking:         booking,
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrTxnConflict) {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("acceptance failed for request %s: %w", cmd.RequestID, err)
	}

	if err := s.Notifier.NotifyBookingConfirmed(ctx, booking); err != nil {
		logger.Warn("booking confirmed push failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}

	logger.Info("response accepted",
		zap.String("requestId", cmd.RequestID),
		zap.String("responseId", cmd.ResponseID),
		zap.String("bookingId", booking.ID),
		zap.Float64("finalPrice", finalPrice),
	)
	return booking, nil
}
