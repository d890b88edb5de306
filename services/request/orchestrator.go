package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "trimly/database/repository/booking"
	messageRepo "trimly/database/repository/message"
	requestRepo "trimly/database/repository/request"
	responseRepo "trimly/database/repository/response"
	"trimly/models"
	"trimly/services/expiry"
	"trimly/services/matching"
	"trimly/services/notification"
	"trimly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRequestService implements RequestService.
type DefaultRequestService struct {
	Requests    requestRepo.RequestRepository
	Responses   responseRepo.ResponseRepository
	Messages    messageRepo.MessageRepository
	Bookings    bookingRepo.BookingRepository
	MatchingSvc matching.MatchingService
	Notifier    notification.Dispatcher
	Sweeper     expiry.Sweeper

	MatchWindow time.Duration
	RadiusKm    float64
	Now         func() time.Time
}

func (s *DefaultRequestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateRequest validates the ask, opens the request and fans it out to
// nearby barbers. The fan-out is best-effort: a push failure never fails
// the creation.
func (s *DefaultRequestService) CreateRequest(ctx context.Context, in models.CreateRequestInput) (*models.ServiceRequest, error) {
	logger := utils.GetLogger()

	if len(in.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrValidation)
	}
	location := models.NewGeoPoint(in.Lat, in.Lng)
	if !location.Valid() {
		return nil, fmt.Errorf("%w: malformed location", ErrValidation)
	}
	if in.Address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrValidation)
	}

	now := s.now()
	// An immediate request stays open for the match window. A scheduled
	// request stays open until its scheduled start.
	expiresAt := now.Add(s.MatchWindow)
	if in.ScheduledTime != nil {
		if in.ScheduledTime.Before(now) {
			return nil, fmt.Errorf("%w: scheduled time is in the past", ErrValidation)
		}
		expiresAt = *in.ScheduledTime
	}

	req := &models.ServiceRequest{
		ID:            uuid.New().String(),
		CustomerID:    in.CustomerID,
		Location:      location,
		Address:       in.Address,
		ServiceIDs:    in.ServiceIDs,
		Notes:         in.Notes,
		ScheduledTime: in.ScheduledTime,
		Status:        models.RequestPending,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	candidates, err := s.MatchingSvc.MatchBarbers(ctx, matching.MatchQuery{
		Location:   location,
		ServiceIDs: in.ServiceIDs,
		RadiusKm:   s.RadiusKm,
		Urgent:     in.ScheduledTime == nil,
	})
	if err != nil {
		// The request still stands; barbers can discover it through the
		// open-requests feed even when the geo match is unavailable.
		logger.Warn("barber matching failed", zap.String("requestId", req.ID), zap.Error(err))
	} else if len(candidates) > 0 {
		if err := s.Notifier.NotifyNewRequest(ctx, req, candidates); err != nil {
			logger.Warn("request fan-out failed", zap.String("requestId", req.ID), zap.Error(err))
		}
	}

	logger.Info("service request created",
		zap.String("requestId", req.ID),
		zap.String("customerId", req.CustomerID),
		zap.Int("candidates", len(candidates)),
	)
	return req, nil
}

// CancelRequest cancels an open request and cascades to its pending
// responses and offers. Confirmed requests can only move through the
// booking lifecycle.
func (s *DefaultRequestService) CancelRequest(ctx context.Context, requestID, actorID, reason string) error {
	req, err := s.getOpenAware(ctx, requestID)
	if err != nil {
		return err
	}
	if req.CustomerID != actorID {
		return ErrNotRequestOwner
	}
	if !req.Open() {
		return fmt.Errorf("%w: request is %s", ErrInvalidTransition, req.Status)
	}

	cancelled, err := s.Requests.CancelIf(ctx, requestID, models.OpenRequestStatuses(), reason)
	if err != nil {
		return fmt.Errorf("failed to cancel request %s: %w", requestID, err)
	}
	if !cancelled {
		// Lost a race against accept or the sweep.
		return fmt.Errorf("%w: request already resolved", ErrInvalidTransition)
	}

	if _, err := s.Responses.TransitionPendingByRequest(ctx, requestID, "", models.ResponseRejected); err != nil {
		return fmt.Errorf("failed to reject responses for cancelled request %s: %w", requestID, err)
	}
	if _, err := s.Messages.ExpirePendingByRequest(ctx, requestID, ""); err != nil {
		return fmt.Errorf("failed to expire offers for cancelled request %s: %w", requestID, err)
	}

	utils.GetLogger().Info("service request cancelled",
		zap.String("requestId", requestID),
		zap.String("reason", reason),
	)
	return nil
}

// getOpenAware loads a request and runs the lazy expiry check: a request
// past its window is cascaded to cancelled before the caller sees it.
func (s *DefaultRequestService) getOpenAware(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Open() && req.ExpiredAt(s.now()) {
		if err := s.Sweeper.ExpireRequest(ctx, requestID); err != nil {
			return nil, fmt.Errorf("failed to expire request %s: %w", requestID, err)
		}
		req.Status = models.RequestCancelled
		req.CancelReason = models.CancelReasonNoResponse
	}
	return req, nil
}

// GetRequest returns the request, applying the lazy expiry check first.
func (s *DefaultRequestService) GetRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	return s.getOpenAware(ctx, requestID)
}

// GetRequestDetail returns the request with responses, log and booking.
func (s *DefaultRequestService) GetRequestDetail(ctx context.Context, requestID string) (*RequestDetail, error) {
	req, err := s.getOpenAware(ctx, requestID)
	if err != nil {
		return nil, err
	}

	responses, err := s.Responses.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	messages, err := s.Messages.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	detail := &RequestDetail{Request: req, Responses: responses, Messages: messages}

	if req.Status == models.RequestConfirmed {
		booking, err := s.Bookings.GetByRequestID(ctx, requestID)
		if err != nil && !errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, err
		}
		detail.Booking = booking
	}
	return detail, nil
}

// ListCustomerRequests returns the customer's requests, newest first.
func (s *DefaultRequestService) ListCustomerRequests(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	return s.Requests.ListByCustomer(ctx, customerID)
}
