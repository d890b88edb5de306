package expiry

import (
	"context"
	"testing"
	"time"

	"trimly/database/repository/memory"
	"trimly/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newSweeper(store *memory.Store, now func() time.Time) *DefaultSweeper {
	return &DefaultSweeper{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Messages:  store.Messages(),
		Now:       now,
	}
}

func seedStaleNegotiation(t *testing.T, store *memory.Store) (requestID string, responseIDs, offerIDs []string) {
	t.Helper()
	ctx := context.Background()

	req := &models.ServiceRequest{
		ID:         uuid.New().String(),
		CustomerID: "cust-1",
		Location:   models.NewGeoPoint(-1.2921, 36.8219),
		Address:    "14 Kimathi St",
		ServiceIDs: []string{"haircut"},
		Status:     models.RequestNegotiating,
		CreatedAt:  fixedNow().Add(-20 * time.Minute),
		ExpiresAt:  fixedNow().Add(-5 * time.Minute),
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	for i := 0; i < 2; i++ {
		resp := &models.BarberResponse{
			ID:            uuid.New().String(),
			RequestID:     req.ID,
			BarberID:      "barber-" + string(rune('a'+i)),
			ProposedPrice: 30,
			Status:        models.ResponsePending,
			RespondedAt:   fixedNow().Add(-18 * time.Minute),
		}
		require.NoError(t, store.Responses().Create(ctx, resp))
		responseIDs = append(responseIDs, resp.ID)

		lapsed := fixedNow().Add(-6 * time.Minute)
		msg := &models.NegotiationMessage{
			ID:             uuid.New().String(),
			RequestID:      req.ID,
			BarberID:       resp.BarberID,
			SenderID:       resp.BarberID,
			SenderRole:     models.RoleBarber,
			Type:           models.MessageOffer,
			OfferAmount:    30,
			OfferStatus:    models.OfferPending,
			OfferExpiresAt: &lapsed,
			CreatedAt:      fixedNow().Add(-18 * time.Minute),
		}
		require.NoError(t, store.Messages().Append(ctx, msg))
		offerIDs = append(offerIDs, msg.ID)
	}
	return req.ID, responseIDs, offerIDs
}

func TestSweepCancelsStaleNegotiation(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	requestID, responseIDs, offerIDs := seedStaleNegotiation(t, store)
	ctx := context.Background()

	stats, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RequestsCancelled)
	assert.Equal(t, int64(2), stats.ResponsesRejected)

	req, err := store.Requests().GetByID(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, req.Status)
	assert.Equal(t, models.CancelReasonNoResponse, req.CancelReason)

	for _, id := range responseIDs {
		resp, err := store.Responses().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ResponseRejected, resp.Status)
	}
	for _, id := range offerIDs {
		msg, err := store.Messages().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.OfferExpired, msg.OfferStatus)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	seedStaleNegotiation(t, store)
	ctx := context.Background()

	_, err := sweeper.Sweep(ctx)
	require.NoError(t, err)

	again, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.RequestsCancelled)
	assert.Zero(t, again.ResponsesRejected)
	assert.Zero(t, again.ResponsesExpired)
	assert.Zero(t, again.OffersExpired)
}

func TestSweepExpiresBidOrphanedByClosedRequest(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	ctx := context.Background()

	// A bid that slipped in as its request was being cancelled and so
	// missed the cancellation cascade.
	req := &models.ServiceRequest{
		ID:         uuid.New().String(),
		CustomerID: "cust-1",
		Address:    "14 Kimathi St",
		ServiceIDs: []string{"haircut"},
		Status:     models.RequestCancelled,
		CreatedAt:  fixedNow().Add(-10 * time.Minute),
		ExpiresAt:  fixedNow().Add(5 * time.Minute),
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	resp := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      "barber-1",
		ProposedPrice: 30,
		Status:        models.ResponsePending,
		RespondedAt:   fixedNow().Add(-time.Minute),
	}
	require.NoError(t, store.Responses().Create(ctx, resp))

	stats, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ResponsesExpired)
	assert.Zero(t, stats.RequestsCancelled)

	got, err := store.Responses().GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseExpired, got.Status)
}

func TestSweepExpiresStaleBidOnScheduledRequest(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	sweeper.BidTTL = time.Hour
	ctx := context.Background()

	// Scheduled request: match window anchored hours out, so the request
	// itself is nowhere near expiry.
	scheduled := fixedNow().Add(6 * time.Hour)
	req := &models.ServiceRequest{
		ID:            uuid.New().String(),
		CustomerID:    "cust-1",
		Address:       "14 Kimathi St",
		ServiceIDs:    []string{"haircut"},
		ScheduledTime: &scheduled,
		Status:        models.RequestMatching,
		CreatedAt:     fixedNow().Add(-3 * time.Hour),
		ExpiresAt:     scheduled,
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	stale := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      "barber-1",
		ProposedPrice: 30,
		Status:        models.ResponsePending,
		RespondedAt:   fixedNow().Add(-2 * time.Hour),
	}
	require.NoError(t, store.Responses().Create(ctx, stale))
	fresh := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      "barber-2",
		ProposedPrice: 28,
		Status:        models.ResponsePending,
		RespondedAt:   fixedNow().Add(-10 * time.Minute),
	}
	require.NoError(t, store.Responses().Create(ctx, fresh))

	stats, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ResponsesExpired)

	got, err := store.Responses().GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseExpired, got.Status)

	got, err = store.Responses().GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponsePending, got.Status)

	gotReq, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestMatching, gotReq.Status)
}

func TestSweepLeavesConfirmedRequestsAlone(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	ctx := context.Background()

	req := &models.ServiceRequest{
		ID:         uuid.New().String(),
		CustomerID: "cust-1",
		Address:    "14 Kimathi St",
		ServiceIDs: []string{"haircut"},
		Status:     models.RequestConfirmed,
		CreatedAt:  fixedNow().Add(-30 * time.Minute),
		ExpiresAt:  fixedNow().Add(-15 * time.Minute),
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	stats, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.RequestsCancelled)

	got, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, got.Status)
}

func TestSweepExpiresLapsedOfferOnOpenRequest(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	ctx := context.Background()

	// Request still inside its window; only the offer lapsed.
	req := &models.ServiceRequest{
		ID:         uuid.New().String(),
		CustomerID: "cust-1",
		Address:    "14 Kimathi St",
		ServiceIDs: []string{"haircut"},
		Status:     models.RequestNegotiating,
		CreatedAt:  fixedNow().Add(-10 * time.Minute),
		ExpiresAt:  fixedNow().Add(20 * time.Minute),
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	lapsed := fixedNow().Add(-time.Minute)
	msg := &models.NegotiationMessage{
		ID:             uuid.New().String(),
		RequestID:      req.ID,
		BarberID:       "barber-1",
		SenderID:       "barber-1",
		SenderRole:     models.RoleBarber,
		Type:           models.MessageOffer,
		OfferAmount:    30,
		OfferStatus:    models.OfferPending,
		OfferExpiresAt: &lapsed,
		CreatedAt:      fixedNow().Add(-16 * time.Minute),
	}
	require.NoError(t, store.Messages().Append(ctx, msg))

	stats, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.OffersExpired)
	assert.Zero(t, stats.RequestsCancelled)

	got, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestNegotiating, got.Status)
}

func TestExpireOfferOnlyTouchesPending(t *testing.T) {
	store := memory.NewStore()
	sweeper := newSweeper(store, fixedNow)
	ctx := context.Background()

	msg := &models.NegotiationMessage{
		ID:          uuid.New().String(),
		RequestID:   uuid.New().String(),
		BarberID:    "barber-1",
		SenderID:    "barber-1",
		SenderRole:  models.RoleBarber,
		Type:        models.MessageOffer,
		OfferAmount: 30,
		OfferStatus: models.OfferAccepted,
		CreatedAt:   fixedNow(),
	}
	require.NoError(t, store.Messages().Append(ctx, msg))

	ok, err := sweeper.ExpireOffer(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Messages().GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, got.OfferStatus)
}
