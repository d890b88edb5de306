package barberRepo

import (
	"context"
	"fmt"
	"time"

	"trimly/database"
	"trimly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBarberRepo implements BarberRepository using MongoDB.
type MongoBarberRepo struct {
	coll *mongo.Collection
}

// NewMongoBarberRepo creates a new BarberRepository backed by MongoDB.
func NewMongoBarberRepo() BarberRepository {
	coll := database.DB().Collection("barbers")
	repo := &MongoBarberRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoBarberRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "service_ids", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new barber document.
func (r *MongoBarberRepo) Create(ctx context.Context, barber *models.Barber) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	barber.UpdatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, barber); err != nil {
		return fmt.Errorf("failed to create barber: %w", err)
	}
	return nil
}

// GetByID retrieves a barber by its unique ID.
func (r *MongoBarberRepo) GetByID(ctx context.Context, id string) (*models.Barber, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var barber models.Barber
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&barber); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch barber %s: %w", id, err)
	}
	return &barber, nil
}

// Update modifies an existing barber document.
func (r *MongoBarberRepo) Update(ctx context.Context, barber *models.Barber) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	barber.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": barber.ID}, bson.M{"$set": barber})
	if err != nil {
		return fmt.Errorf("failed to update barber %s: %w", barber.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindNearby runs a $nearSphere query against the 2dsphere index, filtered
// to active barbers covering every requested service.
func (r *MongoBarberRepo) FindNearby(ctx context.Context, location models.GeoPoint, radiusKm float64, serviceIDs []string) ([]models.Barber, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"active": true,
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    location,
				"$maxDistance": radiusKm * 1000,
			},
		},
	}
	if len(serviceIDs) > 0 {
		filter["service_ids"] = bson.M{"$all": serviceIDs}
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby barbers: %w", err)
	}
	defer cursor.Close(ctx)

	var barbers []models.Barber
	if err := cursor.All(ctx, &barbers); err != nil {
		return nil, fmt.Errorf("failed to decode barbers: %w", err)
	}
	return barbers, nil
}
