package barberRepo

import (
	"context"
	"errors"

	"trimly/models"
)

// ErrNotFound is returned when no barber matches the given id.
var ErrNotFound = errors.New("barber not found")

// BarberRepository defines data access for the barber directory.
type BarberRepository interface {
	Create(ctx context.Context, barber *models.Barber) error
	GetByID(ctx context.Context, id string) (*models.Barber, error)
	Update(ctx context.Context, barber *models.Barber) error

	// FindNearby returns active barbers within radiusKm of the location,
	// nearest first, limited to those covering every requested service.
	FindNearby(ctx context.Context, location models.GeoPoint, radiusKm float64, serviceIDs []string) ([]models.Barber, error)
}
