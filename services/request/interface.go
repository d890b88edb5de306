package request

import (
	"context"

	"trimly/models"
)

// RequestDetail bundles a request with its responses and negotiation log
// for read surfaces.
type RequestDetail struct {
	Request   *models.ServiceRequest      `json:"request"`
	Responses []models.BarberResponse     `json:"responses"`
	Messages  []models.NegotiationMessage `json:"messages"`
	Booking   *models.Booking             `json:"booking,omitempty"`
}

// RequestService is the top-level facade the rest of the app calls to open
// and cancel service requests and to read negotiation state.
type RequestService interface {
	CreateRequest(ctx context.Context, in models.CreateRequestInput) (*models.ServiceRequest, error)
	CancelRequest(ctx context.Context, requestID, actorID, reason string) error
	GetRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error)
	GetRequestDetail(ctx context.Context, requestID string) (*RequestDetail, error)
	ListCustomerRequests(ctx context.Context, customerID string) ([]models.ServiceRequest, error)
}
