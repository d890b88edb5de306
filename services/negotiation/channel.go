package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	messageRepo "trimly/database/repository/message"
	requestRepo "trimly/database/repository/request"
	responseRepo "trimly/database/repository/response"
	"trimly/models"
	"trimly/services/acceptance"
	"trimly/services/expiry"
	"trimly/services/notification"
	"trimly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NegotiationService manages the append-only message log of a request,
// including typed offer/counter-offer entries. Within one (request, barber)
// pair only the single most recent non-expired offer is actionable; posting
// a new offer supersedes the prior pending one.
type NegotiationService interface {
	PostMessage(ctx context.Context, in models.PostMessageInput) (*models.NegotiationMessage, error)
	// RespondToOffer applies the counterpart's decision. On accept the
	// returned booking is non-nil: acceptance is delegated to the
	// resolver with the agreed amount.
	RespondToOffer(ctx context.Context, messageID, actorID string, decision models.OfferDecision) (*models.NegotiationMessage, *models.Booking, error)
	ListMessages(ctx context.Context, requestID string) ([]models.NegotiationMessage, error)
}

// DefaultNegotiationService implements NegotiationService.
type DefaultNegotiationService struct {
	Requests  requestRepo.RequestRepository
	Responses responseRepo.ResponseRepository
	Messages  messageRepo.MessageRepository
	Resolver  acceptance.Resolver
	Notifier  notification.Dispatcher
	Sweeper   expiry.Sweeper

	OfferTTL time.Duration
	Now      func() time.Time
}

func (s *DefaultNegotiationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultNegotiationService) openRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, ErrRequestClosed
		}
		return nil, err
	}
	if req.Open() && req.ExpiredAt(s.now()) {
		if err := s.Sweeper.ExpireRequest(ctx, requestID); err != nil {
			return nil, fmt.Errorf("failed to expire request %s: %w", requestID, err)
		}
		return nil, ErrRequestClosed
	}
	if !req.Open() {
		return nil, ErrRequestClosed
	}
	return req, nil
}

// PostMessage appends to the log. Offer-kind messages carry a TTL,
// supersede the pair's prior pending offer and advance the request to
// negotiating.
func (s *DefaultNegotiationService) PostMessage(ctx context.Context, in models.PostMessageInput) (*models.NegotiationMessage, error) {
	logger := utils.GetLogger()

	req, err := s.openRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	barberID := in.BarberID
	if in.SenderRole == models.RoleBarber {
		barberID = in.SenderID
	}
	if barberID == "" {
		return nil, fmt.Errorf("%w: negotiation pair requires a barber", ErrInvalidOffer)
	}
	if in.SenderRole == models.RoleCustomer && req.CustomerID != in.SenderID {
		return nil, ErrNotOfferOwner
	}

	now := s.now()
	msg := &models.NegotiationMessage{
		ID:         uuid.New().String(),
		RequestID:  in.RequestID,
		BarberID:   barberID,
		SenderID:   in.SenderID,
		SenderRole: in.SenderRole,
		Type:       in.Type,
		Content:    in.Content,
		CreatedAt:  now,
	}

	if msg.IsOffer() {
		if in.OfferAmount <= 0 {
			return nil, fmt.Errorf("%w: offer amount must be positive", ErrInvalidOffer)
		}
		// Offers negotiate against an existing bid from this barber.
		resp, err := s.Responses.GetByRequestAndBarber(ctx, in.RequestID, barberID)
		if err != nil {
			if errors.Is(err, responseRepo.ErrNotFound) {
				return nil, fmt.Errorf("%w: barber has not responded to this request", ErrInvalidOffer)
			}
			return nil, err
		}
		if resp.Status != models.ResponsePending {
			return nil, fmt.Errorf("%w: barber's response is %s", ErrInvalidOffer, resp.Status)
		}

		expiresAt := now.Add(s.OfferTTL)
		msg.OfferAmount = in.OfferAmount
		msg.OfferStatus = models.OfferPending
		msg.OfferExpiresAt = &expiresAt

		// A new proposal from either side supersedes the pair's prior
		// pending offer; history stays in the log as countered.
		if _, err := s.Messages.SupersedePending(ctx, in.RequestID, barberID, ""); err != nil {
			return nil, fmt.Errorf("failed to supersede pending offers: %w", err)
		}
	}

	if err := s.Messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	if msg.IsOffer() {
		if _, err := s.Requests.UpdateStatusIf(ctx, in.RequestID,
			[]models.RequestStatus{models.RequestMatching}, models.RequestNegotiating); err != nil {
			logger.Warn("failed to advance request to negotiating", zap.String("requestId", in.RequestID), zap.Error(err))
		}
		if err := s.Notifier.NotifyOffer(ctx, msg, req.CustomerID); err != nil {
			logger.Warn("offer push failed", zap.String("messageId", msg.ID), zap.Error(err))
		}
	}

	return msg, nil
}

// counterpart returns the actor entitled to decide the offer: the customer
// for barber offers, the pair's barber for customer offers.
func (s *DefaultNegotiationService) counterpart(req *models.ServiceRequest, msg *models.NegotiationMessage) string {
	if msg.SenderRole == models.RoleBarber {
		return req.CustomerID
	}
	return msg.BarberID
}

// RespondToOffer applies an accept/reject decision to a pending offer.
func (s *DefaultNegotiationService) RespondToOffer(ctx context.Context, messageID, actorID string, decision models.OfferDecision) (*models.NegotiationMessage, *models.Booking, error) {
	msg, err := s.Messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, messageRepo.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !msg.IsOffer() {
		return nil, nil, fmt.Errorf("%w: message %s is not an offer", ErrInvalidOffer, messageID)
	}

	req, err := s.openRequest(ctx, msg.RequestID)
	if err != nil {
		return nil, nil, err
	}
	if s.counterpart(req, msg) != actorID {
		return nil, nil, ErrNotOfferOwner
	}

	now := s.now()
	// Lazy expiry check on the offer itself.
	if msg.OfferStatus == models.OfferPending && msg.OfferExpiredAt(now) {
		if _, err := s.Sweeper.ExpireOffer(ctx, messageID); err != nil {
			return nil, nil, fmt.Errorf("failed to expire offer %s: %w", messageID, err)
		}
		return nil, nil, ErrExpiredOffer
	}
	if msg.OfferStatus != models.OfferPending {
		if msg.OfferStatus == models.OfferExpired {
			return nil, nil, ErrExpiredOffer
		}
		return nil, nil, ErrAlreadyResolved
	}

	switch decision {
	case models.DecisionReject:
		ok, err := s.Messages.UpdateOfferStatusIf(ctx, messageID, models.OfferPending, models.OfferRejected)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to reject offer %s: %w", messageID, err)
		}
		if !ok {
			return nil, nil, ErrAlreadyResolved
		}
		msg.OfferStatus = models.OfferRejected
		// Negotiation stays open for further counter-offers.
		return msg, nil, nil

	case models.DecisionAccept:
		resp, err := s.Responses.GetByRequestAndBarber(ctx, msg.RequestID, msg.BarberID)
		if err != nil {
			if errors.Is(err, responseRepo.ErrNotFound) {
				return nil, nil, ErrAlreadyResolved
			}
			return nil, nil, err
		}

		amount := msg.OfferAmount
		booking, err := s.Resolver.Accept(ctx, acceptance.AcceptCommand{
			RequestID:       msg.RequestID,
			ResponseID:      resp.ID,
			CustomerID:      req.CustomerID,
			NegotiatedPrice: &amount,
			AcceptedOfferID: msg.ID,
		})
		if err != nil {
			switch {
			case errors.Is(err, acceptance.ErrAlreadyResolved):
				return nil, nil, ErrAlreadyResolved
			case errors.Is(err, acceptance.ErrRequestClosed):
				return nil, nil, ErrRequestClosed
			}
			return nil, nil, err
		}
		msg.OfferStatus = models.OfferAccepted
		return msg, booking, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidOffer, decision)
	}
}

// ListMessages returns the request's log in chronological order.
func (s *DefaultNegotiationService) ListMessages(ctx context.Context, requestID string) ([]models.NegotiationMessage, error) {
	return s.Messages.ListByRequest(ctx, requestID)
}
