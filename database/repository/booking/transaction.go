package bookingRepo

import (
	"context"
	"fmt"

	"trimly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AcceptResponse runs the acceptance inside one multi-document transaction.
// The compare-and-swap filters on request.status and response.status are the
// at-most-once-acceptance guard: when either matches zero documents the
// transaction aborts with ErrTxnConflict and nothing is applied.
func (r *MongoBookingRepo) AcceptResponse(ctx context.Context, params AcceptParams) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// 1. Target response: pending -> accepted.
		res, err := r.responseColl.UpdateOne(sc,
			bson.M{"id": params.ResponseID, "request_id": params.RequestID, "status": models.ResponsePending},
			bson.M{"$set": bson.M{"status": models.ResponseAccepted}},
		)
		if err != nil {
			return fmt.Errorf("accept response failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrTxnConflict
		}

		// 2. Sibling pending responses -> rejected.
		if _, err := r.responseColl.UpdateMany(sc,
			bson.M{
				"request_id": params.RequestID,
				"status":     models.ResponsePending,
				"id":         bson.M{"$ne": params.ResponseID},
			},
			bson.M{"$set": bson.M{"status": models.ResponseRejected}},
		); err != nil {
			return fmt.Errorf("reject sibling responses failed: %w", err)
		}

		// 3. Accepted offer (if any) -> accepted; other pending offers -> expired.
		if params.AcceptedOfferID != "" {
			res, err := r.messageColl.UpdateOne(sc,
				bson.M{"id": params.AcceptedOfferID, "offer_status": models.OfferPending},
				bson.M{"$set": bson.M{"offer_status": models.OfferAccepted}},
			)
			if err != nil {
				return fmt.Errorf("accept offer failed: %w", err)
			}
			if res.MatchedCount == 0 {
				return ErrTxnConflict
			}
		}
		offerFilter := bson.M{"request_id": params.RequestID, "offer_status": models.OfferPending}
		if params.AcceptedOfferID != "" {
			offerFilter["id"] = bson.M{"$ne": params.AcceptedOfferID}
		}
		if _, err := r.messageColl.UpdateMany(sc,
			offerFilter,
			bson.M{"$set": bson.M{"offer_status": models.OfferExpired}},
		); err != nil {
			return fmt.Errorf("expire pending offers failed: %w", err)
		}

		// 4. Request must still be open: matching/negotiating -> confirmed.
		res, err = r.requestColl.UpdateOne(sc,
			bson.M{
				"id":     params.RequestID,
				"status": bson.M{"$in": []models.RequestStatus{models.RequestMatching, models.RequestNegotiating}},
			},
			bson.M{"$set": bson.M{"status": models.RequestConfirmed}},
		)
		if err != nil {
			return fmt.Errorf("confirm request failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrTxnConflict
		}

		// 5. Materialize the booking. The unique request_id index is a
		// second line of defence against double acceptance.
		if _, err := r.bookingColl.InsertOne(sc, params.Booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrTxnConflict
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}

		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrTxnConflict {
			return ErrTxnConflict
		}
		return fmt.Errorf("acceptance transaction failed: %w", err)
	}

	return nil
}
