package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	barberRepo "trimly/database/repository/barber"
	"trimly/models"
	"trimly/utils"

	"github.com/go-redis/redis/v8"
)

// MatchQuery describes what the customer is asking for and where.
type MatchQuery struct {
	Location   models.GeoPoint `json:"location"`
	ServiceIDs []string        `json:"serviceIds"`
	RadiusKm   float64         `json:"radiusKm"`
	Urgent     bool            `json:"urgent"` // immediate request (no scheduled time)
}

// MatchingService defines methods to find candidate barbers for a request.
type MatchingService interface {
	MatchBarbers(ctx context.Context, query MatchQuery) ([]models.Barber, error)
}

// DefaultMatchingService ranks nearby barbers by distance, rating and track
// record. Results are cached briefly so repeated fan-outs for the same ask
// do not hammer the geo index.
type DefaultMatchingService struct {
	BarberRepo  barberRepo.BarberRepository
	CacheClient *redis.Client
}

const matchCacheTTL = 5 * time.Minute

// MatchBarbers returns the ranked candidate list for the query, serving
// from the redis cache when a recent identical query already ran.
func (s *DefaultMatchingService) MatchBarbers(ctx context.Context, query MatchQuery) ([]models.Barber, error) {
	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match query: %w", err)
	}
	cacheKey := fmt.Sprintf("match:%x", queryBytes)

	if s.CacheClient != nil {
		cached, err := s.CacheClient.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			var barbers []models.Barber
			if err := json.Unmarshal([]byte(cached), &barbers); err == nil {
				return barbers, nil
			}
			// If unmarshal fails, we fall through to re-computation.
		}
	}

	candidates, err := s.BarberRepo.FindNearby(ctx, query.Location, query.RadiusKm, query.ServiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve nearby barbers: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Scoring constants.
	const (
		BaseLocationScore    = 100.0
		DistancePenalty      = 4.0
		UrgentNearbyBoost    = 1.3
		NearbyThresholdKm    = 3.0
		RatingWeight         = 10.0
		JobsWeight           = 5.0
		LocationWeight       = 0.5
		HistoryWeight        = 0.5
	)

	type scoredBarber struct {
		Barber models.Barber
		Score  float64
	}
	var scored []scoredBarber

	for _, b := range candidates {
		distanceKm := utils.Haversine(query.Location.Lat(), query.Location.Lng(), b.Location.Lat(), b.Location.Lng())
		locationScore := BaseLocationScore - (distanceKm * DistancePenalty)
		if locationScore < 0 {
			locationScore = 0
		}
		if query.Urgent && distanceKm <= NearbyThresholdKm {
			locationScore *= UrgentNearbyBoost
		}

		historyScore := (b.Rating * RatingWeight) + (math.Log(float64(b.CompletedJobs)+1) * JobsWeight)

		finalScore := (LocationWeight * locationScore) + (HistoryWeight * historyScore)
		scored = append(scored, scoredBarber{Barber: b, Score: finalScore})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var matched []models.Barber
	for _, sb := range scored {
		matched = append(matched, sb.Barber)
	}

	if s.CacheClient != nil {
		if matchedBytes, err := json.Marshal(matched); err == nil {
			s.CacheClient.Set(ctx, cacheKey, matchedBytes, matchCacheTTL)
		}
	}

	return matched, nil
}
