package acceptance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trimly/database/repository/memory"
	"trimly/models"
	"trimly/services/expiry"
	"trimly/services/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newResolver(store *memory.Store, now func() time.Time) *DefaultResolver {
	return &DefaultResolver{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Bookings:  store.Bookings(),
		Notifier:  notification.NopDispatcher{},
		Sweeper: &expiry.DefaultSweeper{
			Requests:  store.Requests(),
			Responses: store.Responses(),
			Messages:  store.Messages(),
			Now:       now,
		},
		Now: now,
	}
}

// seedNegotiation creates a matching request with n pending responses and
// returns the request plus the response ids in submission order.
func seedNegotiation(t *testing.T, store *memory.Store, n int) (*models.ServiceRequest, []string) {
	t.Helper()
	ctx := context.Background()
	req := &models.ServiceRequest{
		ID:         uuid.New().String(),
		CustomerID: "cust-1",
		Location:   models.NewGeoPoint(-1.2921, 36.8219),
		Address:    "14 Kimathi St",
		ServiceIDs: []string{"haircut", "beard_trim"},
		Status:     models.RequestMatching,
		CreatedAt:  fixedNow(),
		ExpiresAt:  fixedNow().Add(15 * time.Minute),
	}
	require.NoError(t, store.Requests().Create(ctx, req))

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		resp := &models.BarberResponse{
			ID:            uuid.New().String(),
			RequestID:     req.ID,
			BarberID:      "barber-" + string(rune('a'+i)),
			ProposedPrice: 30 + float64(i),
			ETAMinutes:    10 + i,
			Status:        models.ResponsePending,
			RespondedAt:   fixedNow().Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Responses().Create(ctx, resp))
		ids = append(ids, resp.ID)
	}
	return req, ids
}

func TestAcceptRoundTrip(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, respIDs := seedNegotiation(t, store, 3)
	ctx := context.Background()

	booking, err := svc.Accept(ctx, AcceptCommand{
		RequestID:  req.ID,
		ResponseID: respIDs[0],
		CustomerID: "cust-1",
	})
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, req.ID, booking.RequestID)
	assert.Equal(t, "barber-a", booking.BarberID)
	assert.Equal(t, 30.0, booking.FinalPrice)
	assert.Equal(t, models.BookingScheduled, booking.Status)
	assert.Equal(t, req.Address, booking.Address)

	// Winning response accepted, siblings rejected.
	winner, err := store.Responses().GetByID(ctx, respIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.ResponseAccepted, winner.Status)
	for _, id := range respIDs[1:] {
		sibling, err := store.Responses().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ResponseRejected, sibling.Status)
	}

	// Request confirmed, booking reachable by request id.
	got, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, got.Status)

	byReq, err := store.Bookings().GetByRequestID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, byReq.ID)
}

func TestAcceptNegotiatedPriceOverride(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, respIDs := seedNegotiation(t, store, 1)

	negotiated := 27.5
	booking, err := svc.Accept(context.Background(), AcceptCommand{
		RequestID:       req.ID,
		ResponseID:      respIDs[0],
		CustomerID:      "cust-1",
		NegotiatedPrice: &negotiated,
	})
	require.NoError(t, err)
	assert.Equal(t, 27.5, booking.FinalPrice)
}

func TestAcceptRaceProducesOneBooking(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, respIDs := seedNegotiation(t, store, 4)

	var wg sync.WaitGroup
	results := make([]error, len(respIDs))
	for i, id := range respIDs {
		wg.Add(1)
		go func(i int, responseID string) {
			defer wg.Done()
			_, results[i] = svc.Accept(context.Background(), AcceptCommand{
				RequestID:  req.ID,
				ResponseID: responseID,
				CustomerID: "cust-1",
			})
		}(i, id)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyResolved), errors.Is(err, ErrRequestClosed):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one accept must win")
	assert.Equal(t, len(respIDs)-1, losses)

	bookings, err := store.Bookings().ListByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestAcceptExpiredRequest(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, respIDs := seedNegotiation(t, store, 2)

	// Clock jumps past the window before the customer clicks accept.
	svc.Now = func() time.Time { return fixedNow().Add(16 * time.Minute) }
	svc.Sweeper = &expiry.DefaultSweeper{
		Requests:  store.Requests(),
		Responses: store.Responses(),
		Messages:  store.Messages(),
		Now:       svc.Now,
	}

	_, err := svc.Accept(context.Background(), AcceptCommand{
		RequestID:  req.ID,
		ResponseID: respIDs[0],
		CustomerID: "cust-1",
	})
	assert.ErrorIs(t, err, ErrRequestClosed)

	// No booking, request cancelled, responses rejected.
	_, err = store.Bookings().GetByRequestID(context.Background(), req.ID)
	assert.Error(t, err)
	got, err := store.Requests().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)
	for _, id := range respIDs {
		resp, err := store.Responses().GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.ResponseRejected, resp.Status)
	}
}

func TestAcceptAuthorization(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, respIDs := seedNegotiation(t, store, 1)

	_, err := svc.Accept(context.Background(), AcceptCommand{
		RequestID:  req.ID,
		ResponseID: respIDs[0],
		CustomerID: "cust-2",
	})
	assert.ErrorIs(t, err, ErrNotRequestOwner)
}

func TestAcceptCancelledRequest(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, respIDs := seedNegotiation(t, store, 1)

	ok, err := store.Requests().CancelIf(context.Background(), req.ID, models.OpenRequestStatuses(), "changed my mind")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Accept(context.Background(), AcceptCommand{
		RequestID:  req.ID,
		ResponseID: respIDs[0],
		CustomerID: "cust-1",
	})
	assert.ErrorIs(t, err, ErrRequestClosed)
}

func TestAcceptUnknownResponse(t *testing.T) {
	store := memory.NewStore()
	svc := newResolver(store, fixedNow)
	req, _ := seedNegotiation(t, store, 1)

	_, err := svc.Accept(context.Background(), AcceptCommand{
		RequestID:  req.ID,
		ResponseID: uuid.New().String(),
		CustomerID: "cust-1",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
