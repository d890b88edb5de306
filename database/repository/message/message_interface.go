package messageRepo

import (
	"context"
	"errors"
	"time"

	"trimly/models"
)

// ErrNotFound is returned when no message matches the given id.
var ErrNotFound = errors.New("negotiation message not found")

// MessageRepository defines data access for the append-only negotiation log.
// Messages are never deleted; only the offer_status field of offer-kind
// entries is ever mutated, and always conditionally.
type MessageRepository interface {
	Append(ctx context.Context, msg *models.NegotiationMessage) error
	GetByID(ctx context.Context, id string) (*models.NegotiationMessage, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.NegotiationMessage, error)

	// SupersedePending marks the pair's pending offers as countered,
	// sparing the given message id. Returns the number superseded.
	SupersedePending(ctx context.Context, requestID, barberID, exceptID string) (int64, error)

	// UpdateOfferStatusIf performs a compare-and-swap on the offer status.
	UpdateOfferStatusIf(ctx context.Context, id string, from, to models.OfferStatus) (bool, error)

	// ExpirePendingByRequest moves every pending offer of the request to
	// expired, optionally sparing one message id.
	ExpirePendingByRequest(ctx context.Context, requestID, exceptID string) (int64, error)

	// ListExpiredPending returns pending offers whose TTL lapsed before now.
	ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.NegotiationMessage, error)
}
