package messageRepo

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

// MongoMessageRepo implements MessageRepository using MongoDB.
type MongoMessageRepo struct {
	coll *mongo.Collection
}

// NewMongoMessageRepo creates a new MessageRepository backed by MongoDB.
func NewMongoMessageRepo() MessageRepository {
	coll := database.DB().Collection("negotiation_messages")
	repo := &MongoMessageRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoMessageRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "offer_status", Value: 1}, {Key: "offer_expires_at", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Append inserts a new message. The log is append-only.
func (r *MongoMessageRepo) Append(ctx context.Context, msg *models.NegotiationMessage) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to append negotiation message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by its unique ID.
func (r *MongoMessageRepo) GetByID(ctx context.Context, id string) (*models.NegotiationMessage, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var msg models.NegotiationMessage
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&msg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}
	return &msg, nil
}

// ListByRequest retrieves the request's log in chronological order.
func (r *MongoMessageRepo) ListByRequest(ctx context.Context, requestID string) ([]models.NegotiationMessage, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for request %s: %w", requestID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.NegotiationMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// SupersedePending marks the pair's pending offers as countered.
func (r *MongoMessageRepo) SupersedePending(ctx context.Context, requestID, barberID, exceptID string) (int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"request_id":   requestID,
		"barber_id":    barberID,
		"type":         bson.M{"$in": []models.MessageType{models.MessageOffer, models.MessageCounterOffer}},
		"offer_status": models.OfferPending,
	}
	if exceptID != "" {
		filter["id"] = bson.M{"$ne": exceptID}
	}
	update := bson.M{"$set": bson.M{"offer_status": models.OfferCountered}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to supersede pending offers for request %s: %w", requestID, err)
	}
	return res.ModifiedCount, nil
}

// UpdateOfferStatusIf performs a compare-and-swap on the offer status.
func (r *MongoMessageRepo) UpdateOfferStatusIf(ctx context.Context, id string, from, to models.OfferStatus) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "offer_status": from}
	update := bson.M{"$set": bson.M{"offer_status": to}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update offer status for message %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// ExpirePendingByRequest bulk-expires the request's pending offers.
func (r *MongoMessageRepo) ExpirePendingByRequest(ctx context.Context, requestID, exceptID string) (int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"request_id": requestID, "offer_status": models.OfferPending}
	if exceptID != "" {
		filter["id"] = bson.M{"$ne": exceptID}
	}
	update := bson.M{"$set": bson.M{"offer_status": models.OfferExpired}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending offers for request %s: %w", requestID, err)
	}
	return res.ModifiedCount, nil
}

// ListExpiredPending returns pending offers whose TTL lapsed before now.
func (r *MongoMessageRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.NegotiationMessage, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"offer_status":     models.OfferPending,
		"offer_expires_at": bson.M{"$lt": now},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "offer_expires_at", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired pending offers: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.NegotiationMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode expired offers: %w", err)
	}
	return messages, nil
}
