package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busreserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// withTransaction runs fn inside a multi-document transaction. Write conflicts with a concurrent
// transaction on the same trip surface as ErrVersionConflict so callers re-read and retry.
func (repo *MongoReservationRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.tripColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err == nil {
		return nil
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel("TransientTransactionError") {
		return ErrVersionConflict
	}
	return err
}

// CommitBooking inserts the booking and applies its seat effects on the trip in one transaction.
func (repo *MongoReservationRepo) CommitBooking(ctx context.Context, booking *models.Booking, expectedVersion int64, holds []models.Hold) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if holds == nil {
		holds = []models.Hold{}
	}
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}

		filter := bson.M{"id": booking.TripID, "version": expectedVersion}
		update := bson.M{
			"$set":      bson.M{"holds": holds},
			"$addToSet": bson.M{"confirmed_seats": bson.M{"$each": booking.Seats}},
			"$inc":      bson.M{"version": 1},
		}
		res, err := repo.tripColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("update trip seats failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrVersionConflict
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

// CancelBooking moves a non-terminal booking to cancelled and releases its seats from the trip.
// The status precondition is part of the update filter, so a second cancel matches nothing and
// the seats are never released twice.
func (repo *MongoReservationRepo) CancelBooking(ctx context.Context, booking *models.Booking, reason string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":     booking.ID,
			"status": bson.M{"$in": bson.A{models.StatusPending, models.StatusConfirmed}},
		}
		update := bson.M{"$set": bson.M{
			"status":              models.StatusCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        at,
			"chat_enabled":        false,
			"updated_at":          at,
		}}
		res, err := repo.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("update booking status failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrStatusConflict
		}

		tripUpdate := bson.M{
			"$pullAll": bson.M{"confirmed_seats": booking.Seats},
			"$inc":     bson.M{"version": 1},
		}
		if _, err := repo.tripColl.UpdateOne(sc, bson.M{"id": booking.TripID}, tripUpdate); err != nil {
			return fmt.Errorf("release seats failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel transaction failed: %w", err)
	}
	return nil
}

// CompleteBooking moves a confirmed booking to completed and credits the driver's running total.
func (repo *MongoReservationRepo) CompleteBooking(ctx context.Context, bookingID, driverID string, completion models.Completion) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		filter := bson.M{"id": bookingID, "status": models.StatusConfirmed}
		update := bson.M{"$set": bson.M{
			"status":           models.StatusCompleted,
			"actual_departure": completion.ActualDeparture,
			"actual_arrival":   completion.ActualArrival,
			"driver_earnings":  completion.Earnings,
			"chat_enabled":     false,
			"updated_at":       completion.CompletedAt,
		}}
		res, err := repo.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("update booking status failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrStatusConflict
		}

		credit := bson.M{
			"$inc": bson.M{"total_earnings": completion.Earnings, "completed_trips": 1},
			"$set": bson.M{"updated_at": completion.CompletedAt},
		}
		opts := options.Update().SetUpsert(true)
		if _, err := repo.driverColl.UpdateOne(sc, bson.M{"driver_id": driverID}, credit, opts); err != nil {
			return fmt.Errorf("credit driver earnings failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete transaction failed: %w", err)
	}
	return nil
}

// DeleteTrip removes the trip and all of its bookings together.
func (repo *MongoReservationRepo) DeleteTrip(ctx context.Context, tripID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var removed int64
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := repo.tripColl.DeleteOne(sc, bson.M{"id": tripID})
		if err != nil {
			return fmt.Errorf("delete trip failed: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		bookings, err := repo.bookingColl.DeleteMany(sc, bson.M{"trip_id": tripID})
		if err != nil {
			return fmt.Errorf("delete trip bookings failed: %w", err)
		}
		removed = bookings.DeletedCount
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete trip transaction failed: %w", err)
	}
	return removed, nil
}
