package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the lookup indexes for trips, bookings and driver totals.
func (repo *MongoReservationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tripIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "driver_id", Value: 1}}},
		// Partial index: only trips currently carrying holds, for the expiry sweep.
		{
			Keys: bson.D{{Key: "holds.expires_at", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{
				"holds.0": bson.M{"$exists": true},
			}),
		},
	}
	if _, err := repo.tripColl.Indexes().CreateMany(ctx, tripIdx); err != nil {
		return fmt.Errorf("failed to create trip indexes: %w", err)
	}

	bookingIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "trip_id", Value: 1},
			{Key: "travel_date", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, bookingIdx); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	driverIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "driver_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.driverColl.Indexes().CreateOne(ctx, driverIdx); err != nil {
		return fmt.Errorf("failed to create driver indexes: %w", err)
	}
	return nil
}
