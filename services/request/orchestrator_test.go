package request

import (
	"context"
	"testing"
	"time"

	"trimly/database/repository/memory"
	"trimly/models"
	"trimly/services/expiry"
	"trimly/services/matching"
	"trimly/services/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// stubMatcher returns a fixed candidate list and records the last query.
type stubMatcher struct {
	barbers []models.Barber
	last    matching.MatchQuery
}

func (m *stubMatcher) MatchBarbers(ctx context.Context, query matching.MatchQuery) ([]models.Barber, error) {
	m.last = query
	return m.barbers, nil
}

func newService(store *memory.Store, matcher matching.MatchingService) *DefaultRequestService {
	return &DefaultRequestService{
		Requests:    store.Requests(),
		Responses:   store.Responses(),
		Messages:    store.Messages(),
		Bookings:    store.Bookings(),
		MatchingSvc: matcher,
		Notifier:    notification.NopDispatcher{},
		Sweeper: &expiry.DefaultSweeper{
			Requests:  store.Requests(),
			Responses: store.Responses(),
			Messages:  store.Messages(),
			Now:       fixedNow,
		},
		MatchWindow: 15 * time.Minute,
		RadiusKm:    10,
		Now:         fixedNow,
	}
}

func validInput() models.CreateRequestInput {
	return models.CreateRequestInput{
		CustomerID: "cust-1",
		ServiceIDs: []string{"haircut"},
		Lat:        -1.2921,
		Lng:        36.8219,
		Address:    "14 Kimathi St",
	}
}

func TestCreateRequestValidation(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, &stubMatcher{})
	ctx := context.Background()

	in := validInput()
	in.ServiceIDs = nil
	_, err := svc.CreateRequest(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Lat = 120
	_, err = svc.CreateRequest(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Address = ""
	_, err = svc.CreateRequest(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	past := fixedNow().Add(-time.Hour)
	in.ScheduledTime = &past
	_, err = svc.CreateRequest(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateImmediateRequest(t *testing.T) {
	store := memory.NewStore()
	matcher := &stubMatcher{barbers: []models.Barber{{ID: "barber-1"}}}
	svc := newService(store, matcher)

	req, err := svc.CreateRequest(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, fixedNow().Add(15*time.Minute), req.ExpiresAt)
	assert.True(t, matcher.last.Urgent)
	assert.Equal(t, 10.0, matcher.last.RadiusKm)
}

func TestCreateScheduledRequestWindow(t *testing.T) {
	store := memory.NewStore()
	matcher := &stubMatcher{}
	svc := newService(store, matcher)

	scheduled := fixedNow().Add(3 * time.Hour)
	in := validInput()
	in.ScheduledTime = &scheduled

	req, err := svc.CreateRequest(context.Background(), in)
	require.NoError(t, err)
	// A scheduled request stays open for responses until its start time.
	assert.Equal(t, scheduled, req.ExpiresAt)
	assert.False(t, matcher.last.Urgent)
}

func TestCancelRequestCascades(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, &stubMatcher{})
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	resp := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      "barber-1",
		ProposedPrice: 30,
		Status:        models.ResponsePending,
		RespondedAt:   fixedNow(),
	}
	require.NoError(t, store.Responses().Create(ctx, resp))

	ttl := fixedNow().Add(15 * time.Minute)
	msg := &models.NegotiationMessage{
		ID:             uuid.New().String(),
		RequestID:      req.ID,
		BarberID:       "barber-1",
		SenderID:       "barber-1",
		SenderRole:     models.RoleBarber,
		Type:           models.MessageOffer,
		OfferAmount:    30,
		OfferStatus:    models.OfferPending,
		OfferExpiresAt: &ttl,
		CreatedAt:      fixedNow(),
	}
	require.NoError(t, store.Messages().Append(ctx, msg))

	require.NoError(t, svc.CancelRequest(ctx, req.ID, "cust-1", "changed my mind"))

	got, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)
	assert.Equal(t, "changed my mind", got.CancelReason)

	gotResp, err := store.Responses().GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseRejected, gotResp.Status)

	gotMsg, err := store.Messages().GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferExpired, gotMsg.OfferStatus)
}

func TestCancelRequestAuthorization(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, &stubMatcher{})
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	err = svc.CancelRequest(ctx, req.ID, "cust-2", "not mine")
	assert.ErrorIs(t, err, ErrNotRequestOwner)

	err = svc.CancelRequest(ctx, "no-such-request", "cust-1", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelConfirmedRequest(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, &stubMatcher{})
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	// Negotiation resolved while the cancel was in flight.
	ok, err := store.Requests().UpdateStatusIf(ctx, req.ID, models.OpenRequestStatuses(), models.RequestConfirmed)
	require.NoError(t, err)
	require.True(t, ok)

	err = svc.CancelRequest(ctx, req.ID, "cust-1", "too slow")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetRequestLazyExpiry(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, &stubMatcher{})
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	// Read after the window: the caller sees it cancelled immediately,
	// without waiting for the sweep.
	later := func() time.Time { return fixedNow().Add(16 * time.Minute) }
	svc.Now = later
	svc.Sweeper = &expiry.DefaultSweeper{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Messages:  store.Messages(),
		Now:       later,
	}

	got, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)
	assert.Equal(t, models.CancelReasonNoResponse, got.CancelReason)

	stored, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, stored.Status)
}

func TestGetRequestDetail(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, &stubMatcher{})
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	resp := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      "barber-1",
		ProposedPrice: 30,
		Status:        models.ResponsePending,
		RespondedAt:   fixedNow(),
	}
	require.NoError(t, store.Responses().Create(ctx, resp))

	detail, err := svc.GetRequestDetail(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, detail.Request.ID)
	assert.Len(t, detail.Responses, 1)
	assert.Empty(t, detail.Messages)
	assert.Nil(t, detail.Booking)
}
