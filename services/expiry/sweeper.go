package expiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	messageRepo "trimly/database/repository/message"
	requestRepo "trimly/database/repository/request"
	responseRepo "trimly/database/repository/response"
	"trimly/models"
	"trimly/utils"

	"go.uber.org/zap"
)

// Stats summarizes one sweep pass.
type Stats struct {
	RequestsCancelled int64 `json:"requestsCancelled"`
	ResponsesRejected int64 `json:"responsesRejected"`
	ResponsesExpired  int64 `json:"responsesExpired"`
	OffersExpired     int64 `json:"offersExpired"`
}

// Sweeper moves stale requests, responses and offers to terminal states.
// Every method is idempotent: re-running on an already-terminal entity is a
// no-op, never an error. Correctness does not depend on the periodic sweep;
// mutating operations call ExpireRequest/ExpireOffer lazily before acting.
type Sweeper interface {
	Sweep(ctx context.Context) (Stats, error)
	// ExpireRequest cancels a timed-out request and cascades: pending
	// responses rejected, pending offers expired.
	ExpireRequest(ctx context.Context, requestID string) error
	// ExpireOffer marks a single lapsed pending offer expired. Returns
	// false when the offer was no longer pending.
	ExpireOffer(ctx context.Context, messageID string) (bool, error)
}

// DefaultSweeper implements Sweeper over the repositories.
type DefaultSweeper struct {
	Requests  requestRepo.RequestRepository
	Responses responseRepo.ResponseRepository
	Messages  messageRepo.MessageRepository

	// BidTTL bounds how long a bid may sit pending without the customer
	// engaging. Matters for scheduled requests, whose match window can be
	// hours out; expired bids free the barber to re-bid. Zero disables the
	// age check.
	BidTTL time.Duration

	Now func() time.Time
}

const sweepBatchSize = 200

func (s *DefaultSweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Sweep runs the three timeout classes: (a) requests past their match
// window, with cascade; (b) pending bids whose parent request has moved on
// or whose own age exceeds BidTTL; (c) pending offers past their TTL.
func (s *DefaultSweeper) Sweep(ctx context.Context) (Stats, error) {
	logger := utils.GetLogger()
	var stats Stats
	now := s.now()

	expired, err := s.Requests.ListExpired(ctx, now, sweepBatchSize)
	if err != nil {
		return stats, fmt.Errorf("sweep: failed to list expired requests: %w", err)
	}
	for _, req := range expired {
		cancelled, rejected, err := s.expireRequestCascade(ctx, req.ID)
		if err != nil {
			logger.Warn("sweep: request cascade failed", zap.String("requestId", req.ID), zap.Error(err))
			continue
		}
		if cancelled {
			stats.RequestsCancelled++
		}
		stats.ResponsesRejected += rejected
	}

	pending, err := s.Responses.ListPending(ctx, sweepBatchSize)
	if err != nil {
		return stats, fmt.Errorf("sweep: failed to list pending responses: %w", err)
	}
	parents := make(map[string]*models.ServiceRequest)
	for _, resp := range pending {
		req, cached := parents[resp.RequestID]
		if !cached {
			var lookupErr error
			req, lookupErr = s.Requests.GetByID(ctx, resp.RequestID)
			if lookupErr != nil && !errors.Is(lookupErr, requestRepo.ErrNotFound) {
				logger.Warn("sweep: parent lookup failed", zap.String("requestId", resp.RequestID), zap.Error(lookupErr))
				continue
			}
			parents[resp.RequestID] = req
		}
		stale := req == nil || !req.Open()
		if !stale && s.BidTTL > 0 && now.Sub(resp.RespondedAt) > s.BidTTL {
			stale = true
		}
		if !stale {
			continue
		}
		ok, err := s.Responses.UpdateStatusIf(ctx, resp.ID, models.ResponsePending, models.ResponseExpired)
		if err != nil {
			logger.Warn("sweep: bid expiry failed", zap.String("responseId", resp.ID), zap.Error(err))
			continue
		}
		if ok {
			stats.ResponsesExpired++
		}
	}

	lapsed, err := s.Messages.ListExpiredPending(ctx, now, sweepBatchSize)
	if err != nil {
		return stats, fmt.Errorf("sweep: failed to list lapsed offers: %w", err)
	}
	for _, msg := range lapsed {
		ok, err := s.Messages.UpdateOfferStatusIf(ctx, msg.ID, models.OfferPending, models.OfferExpired)
		if err != nil {
			logger.Warn("sweep: offer expiry failed", zap.String("messageId", msg.ID), zap.Error(err))
			continue
		}
		if ok {
			stats.OffersExpired++
		}
	}

	if stats.RequestsCancelled > 0 || stats.ResponsesExpired > 0 || stats.OffersExpired > 0 {
		logger.Info("expiry sweep finished",
			zap.Int64("requestsCancelled", stats.RequestsCancelled),
			zap.Int64("responsesRejected", stats.ResponsesRejected),
			zap.Int64("responsesExpired", stats.ResponsesExpired),
			zap.Int64("offersExpired", stats.OffersExpired),
		)
	}
	return stats, nil
}

func (s *DefaultSweeper) expireRequestCascade(ctx context.Context, requestID string) (bool, int64, error) {
	cancelled, err := s.Requests.CancelIf(ctx, requestID, models.OpenRequestStatuses(), models.CancelReasonNoResponse)
	if err != nil {
		return false, 0, err
	}
	// Cascade runs even when the cancel CAS lost: a previous cascade may
	// have been interrupted, and re-running it is a no-op on clean state.
	rejected, err := s.Responses.TransitionPendingByRequest(ctx, requestID, "", models.ResponseRejected)
	if err != nil {
		return cancelled, 0, err
	}
	if _, err := s.Messages.ExpirePendingByRequest(ctx, requestID, ""); err != nil {
		return cancelled, rejected, err
	}
	return cancelled, rejected, nil
}

// ExpireRequest is the lazy-path entry: any operation that reads a
// logically-expired request calls this before refusing to act on it.
func (s *DefaultSweeper) ExpireRequest(ctx context.Context, requestID string) error {
	_, _, err := s.expireRequestCascade(ctx, requestID)
	return err
}

// ExpireOffer is the lazy-path entry for a single lapsed offer.
func (s *DefaultSweeper) ExpireOffer(ctx context.Context, messageID string) (bool, error) {
	return s.Messages.UpdateOfferStatusIf(ctx, messageID, models.OfferPending, models.OfferExpired)
}
