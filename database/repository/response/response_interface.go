package responseRepo

import (
	"context"
	"errors"

	"trimly/models"
)

var (
	// ErrNotFound is returned when no response matches the given id.
	ErrNotFound = errors.New("barber response not found")
	// ErrDuplicate is returned when the (request, barber) pair already has a response.
	ErrDuplicate = errors.New("barber already responded to this request")
)

// ResponseRepository defines data access for barber responses. A unique
// compound index on (request_id, barber_id) enforces one response per pair;
// all status moves are conditional.
type ResponseRepository interface {
	Create(ctx context.Context, resp *models.BarberResponse) error
	GetByID(ctx context.Context, id string) (*models.BarberResponse, error)
	GetByRequestAndBarber(ctx context.Context, requestID, barberID string) (*models.BarberResponse, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.BarberResponse, error)

	// ListPending returns up to limit pending responses, oldest first. Used
	// by the expiry sweep to find bids whose parent request has moved on.
	ListPending(ctx context.Context, limit int64) ([]models.BarberResponse, error)

	// UpdateStatusIf moves the response from the given status to the target
	// status. Returns false when the response was no longer in the from
	// status at update time.
	UpdateStatusIf(ctx context.Context, id string, from, to models.ResponseStatus) (bool, error)

	// Rebid replaces an expired response of the same pair with a fresh bid.
	// Returns false when the existing response is not expired.
	Rebid(ctx context.Context, resp *models.BarberResponse) (bool, error)

	// DeleteIfPending removes a pending response (barber retraction).
	// Returns false when the response was already resolved.
	DeleteIfPending(ctx context.Context, id, barberID string) (bool, error)

	// TransitionPendingByRequest moves every pending response of the request
	// to the target status, optionally sparing one response id.
	TransitionPendingByRequest(ctx context.Context, requestID, exceptID string, to models.ResponseStatus) (int64, error)
}
