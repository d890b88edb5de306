package requestRepo

import (
	"context"
	"errors"
	"time"

	"trimly/models"
)

// ErrNotFound is returned when no request matches the given id.
var ErrNotFound = errors.New("service request not found")

// RequestRepository defines data access for service requests. Status moves
// only through conditional updates so concurrent writers cannot skip the
// transition graph.
type RequestRepository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error)

	// UpdateStatusIf moves the request from one of the given statuses to the
	// target status. Returns false when the request was no longer in any of
	// the from statuses at update time.
	UpdateStatusIf(ctx context.Context, id string, from []models.RequestStatus, to models.RequestStatus) (bool, error)

	// CancelIf cancels the request with a reason, guarded the same way.
	CancelIf(ctx context.Context, id string, from []models.RequestStatus, reason string) (bool, error)

	// ListExpired returns open requests whose match window lapsed before now.
	ListExpired(ctx context.Context, now time.Time, limit int64) ([]models.ServiceRequest, error)
}
