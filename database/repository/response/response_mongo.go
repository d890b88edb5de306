package responseRepo

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

// MongoResponseRepo implements ResponseRepository using MongoDB.
type MongoResponseRepo struct {
	coll *mongo.Collection
}

// NewMongoResponseRepo creates a new ResponseRepository backed by MongoDB.
func NewMongoResponseRepo() ResponseRepository {
	coll := database.DB().Collection("barber_responses")
	repo := &MongoResponseRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates the uniqueness guard for (request, barber) pairs.
func (r *MongoResponseRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}, {Key: "barber_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "responded_at", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new barber response. The unique compound index turns a
// second response from the same barber into ErrDuplicate.
func (r *MongoResponseRepo) Create(ctx context.Context, resp *models.BarberResponse) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, resp); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create barber response: %w", err)
	}
	return nil
}

// GetByID retrieves a response by its unique ID.
func (r *MongoResponseRepo) GetByID(ctx context.Context, id string) (*models.BarberResponse, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var resp models.BarberResponse
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&resp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch response %s: %w", id, err)
	}
	return &resp, nil
}

// GetByRequestAndBarber retrieves the pair's response, or ErrNotFound.
func (r *MongoResponseRepo) GetByRequestAndBarber(ctx context.Context, requestID, barberID string) (*models.BarberResponse, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"request_id": requestID, "barber_id": barberID}
	var resp models.BarberResponse
	if err := r.coll.FindOne(ctx, filter).Decode(&resp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch response for request %s barber %s: %w", requestID, barberID, err)
	}
	return &resp, nil
}

// ListByRequest retrieves all responses for a request, oldest first.
func (r *MongoResponseRepo) ListByRequest(ctx context.Context, requestID string) ([]models.BarberResponse, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "responded_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses for request %s: %w", requestID, err)
	}
	defer cursor.Close(ctx)

	var responses []models.BarberResponse
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses: %w", err)
	}
	return responses, nil
}

// ListPending retrieves pending responses across all requests, oldest first.
func (r *MongoResponseRepo) ListPending(ctx context.Context, limit int64) ([]models.BarberResponse, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "responded_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"status": models.ResponsePending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending responses: %w", err)
	}
	defer cursor.Close(ctx)

	var responses []models.BarberResponse
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode pending responses: %w", err)
	}
	return responses, nil
}

// UpdateStatusIf performs a compare-and-swap on the response status.
func (r *MongoResponseRepo) UpdateStatusIf(ctx context.Context, id string, from, to models.ResponseStatus) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update status for response %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// Rebid overwrites the pair's expired response with a fresh pending bid.
func (r *MongoResponseRepo) Rebid(ctx context.Context, resp *models.BarberResponse) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"request_id": resp.RequestID,
		"barber_id":  resp.BarberID,
		"status":     models.ResponseExpired,
	}
	update := bson.M{"$set": bson.M{
		"id":             resp.ID,
		"proposed_price": resp.ProposedPrice,
		"eta_minutes":    resp.ETAMinutes,
		"message":        resp.Message,
		"status":         models.ResponsePending,
		"responded_at":   resp.RespondedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to rebid for request %s: %w", resp.RequestID, err)
	}
	return res.MatchedCount > 0, nil
}

// DeleteIfPending removes a pending response owned by the barber.
func (r *MongoResponseRepo) DeleteIfPending(ctx context.Context, id, barberID string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "barber_id": barberID, "status": models.ResponsePending}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete response %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

// TransitionPendingByRequest bulk-moves the request's pending responses.
func (r *MongoResponseRepo) TransitionPendingByRequest(ctx context.Context, requestID, exceptID string, to models.ResponseStatus) (int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"request_id": requestID, "status": models.ResponsePending}
	if exceptID != "" {
		filter["id"] = bson.M{"$ne": exceptID}
	}
	update := bson.M{"$set": bson.M{"status": to}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to transition pending responses for request %s: %w", requestID, err)
	}
	return res.ModifiedCount, nil
}
