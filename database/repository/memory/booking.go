package memory

import (
	"context"
	"time"

	bookingRepo "trimly/database/repository/booking"
	"trimly/models"
)

// BookingRepo is the in-memory BookingRepository. AcceptResponse applies
// every effect under the store's single lock, mirroring the atomicity of
// the Mongo transaction.
type BookingRepo struct {
	s *Store
}

var _ bookingRepo.BookingRepository = (*BookingRepo)(nil)

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepo) GetByRequestID(ctx context.Context, requestID string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byRequest[requestID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	b := r.s.bookings[id]
	return &b, nil
}

func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookingRepo) ListByBarber(ctx context.Context, barberID string) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if b.BarberID == barberID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookingRepo) AcceptResponse(ctx context.Context, params bookingRepo.AcceptParams) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	resp, ok := r.s.responses[params.ResponseID]
	if !ok || resp.RequestID != params.RequestID || resp.Status != models.ResponsePending {
		return bookingRepo.ErrTxnConflict
	}
	req, ok := r.s.requests[params.RequestID]
	if !ok || (req.Status != models.RequestMatching && req.Status != models.RequestNegotiating) {
		return bookingRepo.ErrTxnConflict
	}
	if params.AcceptedOfferID != "" {
		i, ok := r.s.msgIndex[params.AcceptedOfferID]
		if !ok || r.s.messages[i].OfferStatus != models.OfferPending {
			return bookingRepo.ErrTxnConflict
		}
		r.s.messages[i].OfferStatus = models.OfferAccepted
	}
	if _, exists := r.s.byRequest[params.RequestID]; exists {
		return bookingRepo.ErrTxnConflict
	}

	resp.Status = models.ResponseAccepted
	r.s.responses[resp.ID] = resp

	for id, sibling := range r.s.responses {
		if sibling.RequestID == params.RequestID && sibling.Status == models.ResponsePending && id != params.ResponseID {
			sibling.Status = models.ResponseRejected
			r.s.responses[id] = sibling
		}
	}
	for i, msg := range r.s.messages {
		if msg.RequestID == params.RequestID && msg.OfferStatus == models.OfferPending && msg.ID != params.AcceptedOfferID {
			r.s.messages[i].OfferStatus = models.OfferExpired
		}
	}

	req.Status = models.RequestConfirmed
	r.s.requests[req.ID] = req

	r.s.bookings[params.Booking.ID] = *params.Booking
	r.s.byRequest[params.RequestID] = params.Booking.ID
	return nil
}

func bookingStatusIn(status models.BookingStatus, from []models.BookingStatus) bool {
	for _, f := range from {
		if status == f {
			return true
		}
	}
	return false
}

func (r *BookingRepo) Transition(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, at time.Time, reason string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || !bookingStatusIn(b.Status, from) {
		return false, nil
	}
	b.Status = to
	stamp := at
	switch to {
	case models.BookingEnRoute:
		b.EnRouteAt = &stamp
	case models.BookingArrived:
		b.BarberArrivedAt = &stamp
	case models.BookingInProgress:
		b.StartedAt = &stamp
	case models.BookingCompleted:
		b.CompletedAt = &stamp
	case models.BookingCancelled:
		b.CancelledAt = &stamp
		b.CancellationReason = reason
	case models.BookingDisputed:
		b.DisputeReason = reason
	}
	r.s.bookings[id] = b
	return true, nil
}
