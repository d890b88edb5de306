package memory

import (
	"context"
	"time"

	messageRepo "trimly/database/repository/message"
	"trimly/models"
)

// MessageRepo is the in-memory MessageRepository.
type MessageRepo struct {
	s *Store
}

var _ messageRepo.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Append(ctx context.Context, msg *models.NegotiationMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages = append(r.s.messages, *msg)
	r.s.msgIndex[msg.ID] = len(r.s.messages) - 1
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id string) (*models.NegotiationMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.msgIndex[id]
	if !ok {
		return nil, messageRepo.ErrNotFound
	}
	msg := r.s.messages[i]
	return &msg, nil
}

func (r *MessageRepo) ListByRequest(ctx context.Context, requestID string) ([]models.NegotiationMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.NegotiationMessage
	for _, msg := range r.s.messages {
		if msg.RequestID == requestID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *MessageRepo) SupersedePending(ctx context.Context, requestID, barberID, exceptID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i, msg := range r.s.messages {
		if msg.RequestID == requestID && msg.BarberID == barberID &&
			msg.IsOffer() && msg.OfferStatus == models.OfferPending && msg.ID != exceptID {
			r.s.messages[i].OfferStatus = models.OfferCountered
			n++
		}
	}
	return n, nil
}

func (r *MessageRepo) UpdateOfferStatusIf(ctx context.Context, id string, from, to models.OfferStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.msgIndex[id]
	if !ok || r.s.messages[i].OfferStatus != from {
		return false, nil
	}
	r.s.messages[i].OfferStatus = to
	return true, nil
}

func (r *MessageRepo) ExpirePendingByRequest(ctx context.Context, requestID, exceptID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i, msg := range r.s.messages {
		if msg.RequestID == requestID && msg.OfferStatus == models.OfferPending && msg.ID != exceptID {
			r.s.messages[i].OfferStatus = models.OfferExpired
			n++
		}
	}
	return n, nil
}

func (r *MessageRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.NegotiationMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.NegotiationMessage
	for _, msg := range r.s.messages {
		if msg.OfferStatus == models.OfferPending && msg.OfferExpiredAt(now) {
			out = append(out, msg)
			if int64(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}
