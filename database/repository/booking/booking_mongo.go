package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB. It holds
// handles to the request, response and message collections as well because
// the acceptance transaction spans all four.
type MongoBookingRepo struct {
	bookingColl  *mongo.Collection
	requestColl  *mongo.Collection
	responseColl *mongo.Collection
	messageColl  *mongo.Collection
}

// NewMongoBookingRepo creates a new BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	repo := &MongoBookingRepo{
		bookingColl:  db.Collection("bookings"),
		requestColl:  db.Collection("service_requests"),
		responseColl: db.Collection("barber_responses"),
		messageColl:  db.Collection("negotiation_messages"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "barber_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// GetByRequestID retrieves the booking materialized for a request.
func (r *MongoBookingRepo) GetByRequestID(ctx context.Context, requestID string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking for request %s: %w", requestID, err)
	}
	return &booking, nil
}

// ListByCustomer retrieves a customer's bookings, newest first.
func (r *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

// ListByBarber retrieves a barber's bookings, newest first.
func (r *MongoBookingRepo) ListByBarber(ctx context.Context, barberID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"barber_id": barberID})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// stampFieldFor maps a target lifecycle status to its timestamp field.
func stampFieldFor(to models.BookingStatus) string {
	switch to {
	case models.BookingEnRoute:
		return "en_route_at"
	case models.BookingArrived:
		return "barber_arrived_at"
	case models.BookingInProgress:
		return "started_at"
	case models.BookingCompleted:
		return "completed_at"
	case models.BookingCancelled:
		return "cancelled_at"
	}
	return ""
}

// Transition performs a compare-and-swap lifecycle move with its timestamp.
func (r *MongoBookingRepo) Transition(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, at time.Time, reason string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": to}
	if field := stampFieldFor(to); field != "" {
		set[field] = at
	}
	switch to {
	case models.BookingCancelled:
		set["cancellation_reason"] = reason
	case models.BookingDisputed:
		set["dispute_reason"] = reason
	}

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	res, err := r.bookingColl.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to transition booking %s to %s: %w", id, to, err)
	}
	return res.MatchedCount > 0, nil
}
