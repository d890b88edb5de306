package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	requestRepo "trimly/database/repository/request"
	responseRepo "trimly/database/repository/response"
	"trimly/models"
	"trimly/services/expiry"
	"trimly/services/notification"
	"trimly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseCollector accepts and validates barber responses to a request.
// Concurrent submissions from distinct barbers are safe: rows are
// independent and the (request, barber) uniqueness is enforced by the
// store, not by in-process coordination.
type ResponseCollector interface {
	SubmitResponse(ctx context.Context, in models.SubmitResponseInput) (*models.BarberResponse, error)
	RetractResponse(ctx context.Context, responseID, barberID string) error
}

// DefaultResponseCollector implements ResponseCollector.
type DefaultResponseCollector struct {
	Requests  requestRepo.RequestRepository
	Responses responseRepo.ResponseRepository
	Notifier  notification.Dispatcher
	Sweeper   expiry.Sweeper
	Now       func() time.Time
}

func (s *DefaultResponseCollector) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SubmitResponse records a barber's bid. First bid moves the request
// pending -> matching; offers, not bids, move it to negotiating.
func (s *DefaultResponseCollector) SubmitResponse(ctx context.Context, in models.SubmitResponseInput) (*models.BarberResponse, error) {
	logger := utils.GetLogger()

	if in.ProposedPrice <= 0 {
		return nil, fmt.Errorf("%w: proposed price must be positive", ErrValidation)
	}
	if in.ETAMinutes < 0 {
		return nil, fmt.Errorf("%w: eta cannot be negative", ErrValidation)
	}

	req, err := s.Requests.GetByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, ErrRequestClosed
		}
		return nil, err
	}

	now := s.now()
	// Lazy expiry check: never bid into a logically-expired request.
	if req.Open() && req.ExpiredAt(now) {
		if err := s.Sweeper.ExpireRequest(ctx, in.RequestID); err != nil {
			return nil, fmt.Errorf("failed to expire request %s: %w", in.RequestID, err)
		}
		return nil, ErrRequestClosed
	}
	if !req.Open() {
		return nil, ErrRequestClosed
	}

	resp := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     in.RequestID,
		BarberID:      in.BarberID,
		ProposedPrice: in.ProposedPrice,
		ETAMinutes:    in.ETAMinutes,
		Message:       in.Message,
		Status:        models.ResponsePending,
		RespondedAt:   now,
	}

	if err := s.Responses.Create(ctx, resp); err != nil {
		if !errors.Is(err, responseRepo.ErrDuplicate) {
			return nil, fmt.Errorf("failed to store response: %w", err)
		}
		// The pair already has a response. Only an expired one may be
		// replaced by a fresh bid.
		replaced, rebidErr := s.Responses.Rebid(ctx, resp)
		if rebidErr != nil {
			return nil, fmt.Errorf("failed to rebid: %w", rebidErr)
		}
		if !replaced {
			return nil, ErrDuplicateResponse
		}
	}

	// First response moves the request out of pending. The CAS makes the
	// advance idempotent under concurrent first bids.
	if _, err := s.Requests.UpdateStatusIf(ctx, in.RequestID,
		[]models.RequestStatus{models.RequestPending}, models.RequestMatching); err != nil {
		logger.Warn("failed to advance request to matching", zap.String("requestId", in.RequestID), zap.Error(err))
	}

	if err := s.Notifier.NotifyNewResponse(ctx, req, resp); err != nil {
		logger.Warn("new response push failed", zap.String("responseId", resp.ID), zap.Error(err))
	}

	logger.Info("barber response submitted",
		zap.String("requestId", in.RequestID),
		zap.String("barberId", in.BarberID),
		zap.Float64("price", in.ProposedPrice),
	)
	return resp, nil
}

// RetractResponse withdraws a pending bid. A resolved bid (accepted,
// rejected or expired) can no longer be retracted.
func (s *DefaultResponseCollector) RetractResponse(ctx context.Context, responseID, barberID string) error {
	resp, err := s.Responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, responseRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if resp.BarberID != barberID {
		return ErrNotFound
	}

	deleted, err := s.Responses.DeleteIfPending(ctx, responseID, barberID)
	if err != nil {
		return fmt.Errorf("failed to retract response %s: %w", responseID, err)
	}
	if !deleted {
		return ErrAlreadyResolved
	}

	utils.GetLogger().Info("barber response retracted",
		zap.String("responseId", responseID),
		zap.String("barberId", barberID),
	)
	return nil
}
