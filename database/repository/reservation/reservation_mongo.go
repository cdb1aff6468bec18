package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busreserve/database"
	"busreserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	tripColl    *mongo.Collection
	bookingColl *mongo.Collection
	driverColl  *mongo.Collection
}

// NewMongoReservationRepo constructs the repository on the configured database and ensures its indexes.
func NewMongoReservationRepo() (ReservationRepository, error) {
	db := database.Database()
	repo := &MongoReservationRepo{
		tripColl:    db.Collection("trips"),
		bookingColl: db.Collection("bookings"),
		driverColl:  db.Collection("drivers"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// CreateTrip inserts a new trip document.
func (repo *MongoReservationRepo) CreateTrip(ctx context.Context, trip *models.Trip) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if trip.ConfirmedSeats == nil {
		trip.ConfirmedSeats = []int{}
	}
	if trip.Holds == nil {
		trip.Holds = []models.Hold{}
	}
	if _, err := repo.tripColl.InsertOne(ctx, trip); err != nil {
		return fmt.Errorf("error creating trip: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by its ID.
func (repo *MongoReservationRepo) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var trip models.Trip
	err := repo.tripColl.FindOne(ctx, bson.M{"id": tripID}).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching trip %s: %w", tripID, err)
	}
	return &trip, nil
}

// ReplaceHolds swaps the hold list with a version-checked update.
func (repo *MongoReservationRepo) ReplaceHolds(ctx context.Context, tripID string, expectedVersion int64, holds []models.Hold) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if holds == nil {
		holds = []models.Hold{}
	}
	filter := bson.M{"id": tripID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"holds": holds},
		"$inc": bson.M{"version": 1},
	}
	res, err := repo.tripColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error replacing holds on trip %s: %w", tripID, err)
	}
	if res.MatchedCount == 0 {
		return repo.missOrConflict(ctx, tripID)
	}
	return nil
}

// SyncConfirmedSeats corrects the denormalized seat cache. The version is matched but not bumped:
// the cache is derived data and rewriting it does not change which seats are taken.
func (repo *MongoReservationRepo) SyncConfirmedSeats(ctx context.Context, tripID string, expectedVersion int64, seats []int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if seats == nil {
		seats = []int{}
	}
	filter := bson.M{"id": tripID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{"confirmed_seats": seats}}
	res, err := repo.tripColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error syncing confirmed seats on trip %s: %w", tripID, err)
	}
	if res.MatchedCount == 0 {
		return repo.missOrConflict(ctx, tripID)
	}
	return nil
}

// PurgeExpiredHolds pulls expired holds from every trip that carries one.
func (repo *MongoReservationRepo) PurgeExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{"holds.expires_at": bson.M{"$lte": now}}
	update := bson.M{"$pull": bson.M{"holds": bson.M{"expires_at": bson.M{"$lte": now}}}}
	res, err := repo.tripColl.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("error purging expired holds: %w", err)
	}
	return res.ModifiedCount, nil
}

// missOrConflict tells a missing trip apart from a stale version after a zero-match update.
func (repo *MongoReservationRepo) missOrConflict(ctx context.Context, tripID string) error {
	n, err := repo.tripColl.CountDocuments(ctx, bson.M{"id": tripID})
	if err != nil {
		return fmt.Errorf("error checking trip %s: %w", tripID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}
