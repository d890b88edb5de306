package memory

import (
	"context"
	"sort"

	barberRepo "trimly/database/repository/barber"
	"trimly/models"
	"trimly/utils"
)

// BarberRepo is the in-memory BarberRepository.
type BarberRepo struct {
	s *Store
}

var _ barberRepo.BarberRepository = (*BarberRepo)(nil)

func (r *BarberRepo) Create(ctx context.Context, barber *models.Barber) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.barbers[barber.ID] = *barber
	return nil
}

func (r *BarberRepo) GetByID(ctx context.Context, id string) (*models.Barber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.barbers[id]
	if !ok {
		return nil, barberRepo.ErrNotFound
	}
	return &b, nil
}

func (r *BarberRepo) Update(ctx context.Context, barber *models.Barber) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.barbers[barber.ID]; !ok {
		return barberRepo.ErrNotFound
	}
	r.s.barbers[barber.ID] = *barber
	return nil
}

func (r *BarberRepo) FindNearby(ctx context.Context, location models.GeoPoint, radiusKm float64, serviceIDs []string) ([]models.Barber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Barber
	for _, b := range r.s.barbers {
		if !b.Active || !b.Offers(serviceIDs) {
			continue
		}
		if utils.Haversine(location.Lat(), location.Lng(), b.Location.Lat(), b.Location.Lng()) <= radiusKm {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di := utils.Haversine(location.Lat(), location.Lng(), out[i].Location.Lat(), out[i].Location.Lng())
		dj := utils.Haversine(location.Lat(), location.Lng(), out[j].Location.Lat(), out[j].Location.Lng())
		return di < dj
	})
	return out, nil
}
