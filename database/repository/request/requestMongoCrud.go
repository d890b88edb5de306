// File: database/repository/request/requestMongoCrud.go
package requestRepo

import (
	"context"
	"fmt"
	"time"

	"trimly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new service request document.
func (r *MongoRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create service request: %w", err)
	}
	return nil
}

// GetByID retrieves a service request by its unique ID.
func (r *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch service request %s: %w", id, err)
	}
	return &req, nil
}

// ListByCustomer retrieves a customer's requests, newest first.
func (r *MongoRequestRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var requests []models.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return requests, nil
}

// UpdateStatusIf performs a compare-and-swap on the request status.
func (r *MongoRequestRepo) UpdateStatusIf(ctx context.Context, id string, from []models.RequestStatus, to models.RequestStatus) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update status for request %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// CancelIf cancels the request with a reason, guarded by the current status.
func (r *MongoRequestRepo) CancelIf(ctx context.Context, id string, from []models.RequestStatus, reason string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{
		"status":        models.RequestCancelled,
		"cancel_reason": reason,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel request %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// ListExpired returns open requests whose match window lapsed before now.
func (r *MongoRequestRepo) ListExpired(ctx context.Context, now time.Time, limit int64) ([]models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     bson.M{"$in": models.OpenRequestStatuses()},
		"expires_at": bson.M{"$lt": now},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "expires_at", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode expired requests: %w", err)
	}
	return requests, nil
}
