package bookingRepo

import (
	"context"
	"errors"
	"time"

	"trimly/models"
)

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrTxnConflict is returned when the acceptance transaction loses a
	// race: the request or the target response was no longer in its
	// expected status at commit time.
	ErrTxnConflict = errors.New("acceptance transaction conflict")
)

// AcceptParams carries everything the acceptance transaction mutates.
// AcceptedOfferID is empty when acceptance targets the response directly
// rather than flowing through a negotiated offer.
type AcceptParams struct {
	RequestID       string
	ResponseID      string
	AcceptedOfferID string
	Booking         *models.Booking
}

// BookingRepository defines data access for bookings, including the single
// serializable acceptance transaction that converts one accepted response
// into one confirmed booking.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByRequestID(ctx context.Context, requestID string) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListByBarber(ctx context.Context, barberID string) ([]models.Booking, error)

	// AcceptResponse applies, atomically: response -> accepted, sibling
	// pending responses -> rejected, other pending offers -> expired,
	// request -> confirmed, booking inserted. Returns ErrTxnConflict when
	// the compare-and-swap guards on request or response status fail; no
	// partial effect survives.
	AcceptResponse(ctx context.Context, params AcceptParams) error

	// Transition moves the booking between lifecycle states, stamping the
	// timestamp field that corresponds to the target status. Returns false
	// when the booking was no longer in any of the from statuses.
	Transition(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, at time.Time, reason string) (bool, error)
}
