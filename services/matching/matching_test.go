package matching

import (
	"context"
	"testing"

	"trimly/database/repository/memory"
	"trimly/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nairobi CBD reference point.
var origin = models.NewGeoPoint(-1.2921, 36.8219)

func seedBarber(t *testing.T, store *memory.Store, id string, lat, lng, rating float64, jobs int, services ...string) {
	t.Helper()
	require.NoError(t, store.Barbers().Create(context.Background(), &models.Barber{
		ID:            id,
		Name:          id,
		Location:      models.NewGeoPoint(lat, lng),
		ServiceIDs:    services,
		Rating:        rating,
		CompletedJobs: jobs,
		Active:        true,
	}))
}

func newService(t *testing.T, store *memory.Store) (*DefaultMatchingService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &DefaultMatchingService{
		BarberRepo:  store.Barbers(),
		CacheClient: client,
	}, mr
}

func TestMatchBarbersFiltersAndRanks(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newService(t, store)

	// Close, strong record.
	seedBarber(t, store, "near-good", -1.2950, 36.8250, 4.8, 120, "haircut")
	// Close, weak record.
	seedBarber(t, store, "near-new", -1.2940, 36.8240, 0, 0, "haircut")
	// Outside the radius.
	seedBarber(t, store, "far", -2.5, 37.9, 5.0, 500, "haircut")
	// Inside but missing the service.
	seedBarber(t, store, "wrong-service", -1.2930, 36.8230, 5.0, 200, "beard_trim")

	matched, err := svc.MatchBarbers(context.Background(), MatchQuery{
		Location:   origin,
		ServiceIDs: []string{"haircut"},
		RadiusKm:   10,
		Urgent:     true,
	})
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "near-good", matched[0].ID)
	assert.Equal(t, "near-new", matched[1].ID)
}

func TestMatchBarbersEmptyRadius(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newService(t, store)
	seedBarber(t, store, "far", -2.5, 37.9, 4.0, 10, "haircut")

	matched, err := svc.MatchBarbers(context.Background(), MatchQuery{
		Location:   origin,
		ServiceIDs: []string{"haircut"},
		RadiusKm:   5,
	})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatchBarbersCachesResult(t *testing.T) {
	store := memory.NewStore()
	svc, mr := newService(t, store)
	ctx := context.Background()

	seedBarber(t, store, "barber-1", -1.2950, 36.8250, 4.5, 40, "haircut")

	query := MatchQuery{
		Location:   origin,
		ServiceIDs: []string{"haircut"},
		RadiusKm:   10,
	}
	first, err := svc.MatchBarbers(ctx, query)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, mr.Keys(), 1)

	// A barber appearing after the first match is invisible until the
	// cache entry expires.
	seedBarber(t, store, "barber-2", -1.2940, 36.8240, 4.9, 90, "haircut")

	cached, err := svc.MatchBarbers(ctx, query)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	mr.FastForward(matchCacheTTL)

	fresh, err := svc.MatchBarbers(ctx, query)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}
