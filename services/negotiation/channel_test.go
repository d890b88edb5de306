package negotiation

import (
	"context"
	"testing"
	"time"

	"trimly/database/repository/memory"
	"trimly/models"
	"trimly/services/acceptance"
	"trimly/services/expiry"
	"trimly/services/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	store *memory.Store
	svc   *DefaultNegotiationService
	req   *models.ServiceRequest
	resp  *models.BarberResponse
}

// newFixture builds a matching request with one pending bid from barber-1.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := fixedNow
	sweeper := &expiry.DefaultSweeper{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Messages:  store.Messages(),
		Now:       now,
	}
	resolver := &acceptance.DefaultResolver{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Bookings:  store.Bookings(),
		Notifier:  notification.NopDispatcher{},
		Sweeper:   sweeper,
		Now:       now,
	}
	svc := &DefaultNegotiationService{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Messages:  store.Messages(),
		Resolver:  resolver,
		Notifier:  notification.NopDispatcher{},
		Sweeper:   sweeper,
		OfferTTL:  15 * time.Minute,
		Now:       now,
	}

	ctx := context.Background()
	req := &models.ServiceRequest{
		ID:         uuid.New().String(),
		CustomerID: "cust-1",
		Location:   models.NewGeoPoint(-1.2921, 36.8219),
		Address:    "14 Kimathi St",
		ServiceIDs: []string{"haircut"},
		Status:     models.RequestMatching,
		CreatedAt:  fixedNow(),
		ExpiresAt:  fixedNow().Add(15 * time.Minute),
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	resp := &models.BarberResponse{
		ID:            uuid.New().String(),
		RequestID:     req.ID,
		BarberID:      "barber-1",
		ProposedPrice: 30,
		ETAMinutes:    12,
		Status:        models.ResponsePending,
		RespondedAt:   fixedNow(),
	}
	require.NoError(t, store.Responses().Create(ctx, resp))

	return &fixture{store: store, svc: svc, req: req, resp: resp}
}

func (f *fixture) postOffer(t *testing.T, senderID, senderRole string, kind models.MessageType, amount float64) *models.NegotiationMessage {
	t.Helper()
	msg, err := f.svc.PostMessage(context.Background(), models.PostMessageInput{
		RequestID:   f.req.ID,
		BarberID:    "barber-1",
		SenderID:    senderID,
		SenderRole:  senderRole,
		Type:        kind,
		OfferAmount: amount,
	})
	require.NoError(t, err)
	return msg
}

func TestPostOfferAdvancesRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.postOffer(t, "cust-1", models.RoleCustomer, models.MessageCounterOffer, 25)
	assert.Equal(t, models.OfferPending, msg.OfferStatus)
	require.NotNil(t, msg.OfferExpiresAt)
	assert.Equal(t, fixedNow().Add(15*time.Minute), *msg.OfferExpiresAt)

	got, err := f.store.Requests().GetByID(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestNegotiating, got.Status)
}

func TestPostOfferSupersedesPrior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.postOffer(t, "cust-1", models.RoleCustomer, models.MessageCounterOffer, 25)
	second := f.postOffer(t, "barber-1", models.RoleBarber, models.MessageCounterOffer, 28)

	gotFirst, err := f.store.Messages().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferCountered, gotFirst.OfferStatus)

	gotSecond, err := f.store.Messages().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferPending, gotSecond.OfferStatus)

	// The superseded offer is no longer actionable.
	_, _, err = f.svc.RespondToOffer(ctx, first.ID, "barber-1", models.DecisionAccept)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestPostOfferRequiresExistingBid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PostMessage(context.Background(), models.PostMessageInput{
		RequestID:   f.req.ID,
		BarberID:    "barber-9",
		SenderID:    "cust-1",
		SenderRole:  models.RoleCustomer,
		Type:        models.MessageOffer,
		OfferAmount: 20,
	})
	assert.ErrorIs(t, err, ErrInvalidOffer)

	_, err = f.svc.PostMessage(context.Background(), models.PostMessageInput{
		RequestID:   f.req.ID,
		SenderID:    "barber-1",
		SenderRole:  models.RoleBarber,
		Type:        models.MessageOffer,
		OfferAmount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidOffer)
}

func TestPlainMessageDoesNotNegotiate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.PostMessage(ctx, models.PostMessageInput{
		RequestID:  f.req.ID,
		SenderID:   "barber-1",
		SenderRole: models.RoleBarber,
		Type:       models.MessageText,
		Content:    "I can be there in ten",
	})
	require.NoError(t, err)
	assert.Nil(t, msg.OfferExpiresAt)

	got, err := f.store.Requests().GetByID(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestMatching, got.Status)
}

func TestRespondToOwnOffer(t *testing.T) {
	f := newFixture(t)

	msg := f.postOffer(t, "barber-1", models.RoleBarber, models.MessageOffer, 30)
	_, _, err := f.svc.RespondToOffer(context.Background(), msg.ID, "barber-1", models.DecisionAccept)
	assert.ErrorIs(t, err, ErrNotOfferOwner)
}

func TestRejectKeepsNegotiationOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.postOffer(t, "barber-1", models.RoleBarber, models.MessageOffer, 30)
	decided, booking, err := f.svc.RespondToOffer(ctx, msg.ID, "cust-1", models.DecisionReject)
	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.Equal(t, models.OfferRejected, decided.OfferStatus)

	// The pair can keep countering.
	next := f.postOffer(t, "cust-1", models.RoleCustomer, models.MessageCounterOffer, 24)
	assert.Equal(t, models.OfferPending, next.OfferStatus)
}

func TestExpiredOfferDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.postOffer(t, "barber-1", models.RoleBarber, models.MessageOffer, 30)

	// TTL lapsed before the customer decided; the request itself is still open.
	f.svc.Now = func() time.Time { return fixedNow().Add(16 * time.Minute) }
	f.req.ExpiresAt = fixedNow().Add(30 * time.Minute)
	require.NoError(t, f.store.Requests().Create(ctx, f.req))

	_, _, err := f.svc.RespondToOffer(ctx, msg.ID, "cust-1", models.DecisionAccept)
	assert.ErrorIs(t, err, ErrExpiredOffer)

	got, err := f.store.Messages().GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferExpired, got.OfferStatus)
}

// Full haggle: bid 30, customer counters 25, barber counters 28, customer
// accepts. The booking lands at 28 and every effect of acceptance applies.
func TestCounterOfferRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customerCounter := f.postOffer(t, "cust-1", models.RoleCustomer, models.MessageCounterOffer, 25)
	barberCounter := f.postOffer(t, "barber-1", models.RoleBarber, models.MessageCounterOffer, 28)

	decided, booking, err := f.svc.RespondToOffer(ctx, barberCounter.ID, "cust-1", models.DecisionAccept)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, models.OfferAccepted, decided.OfferStatus)
	assert.Equal(t, 28.0, booking.FinalPrice)
	assert.Equal(t, "barber-1", booking.BarberID)

	gotReq, err := f.store.Requests().GetByID(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, gotReq.Status)

	gotResp, err := f.store.Responses().GetByID(ctx, f.resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseAccepted, gotResp.Status)

	gotCounter, err := f.store.Messages().GetByID(ctx, customerCounter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferCountered, gotCounter.OfferStatus)

	gotAccepted, err := f.store.Messages().GetByID(ctx, barberCounter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, gotAccepted.OfferStatus)

	// The log keeps every entry in order.
	log, err := f.svc.ListMessages(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Len(t, log, 2)
}

func TestOfferOnClosedRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.store.Requests().CancelIf(ctx, f.req.ID, models.OpenRequestStatuses(), "changed my mind")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.PostMessage(ctx, models.PostMessageInput{
		RequestID:   f.req.ID,
		SenderID:    "barber-1",
		SenderRole:  models.RoleBarber,
		Type:        models.MessageOffer,
		OfferAmount: 30,
	})
	assert.ErrorIs(t, err, ErrRequestClosed)
}
