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

// GetBooking retrieves a booking by its ID.
func (repo *MongoReservationRepo) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// ListBookingsByUser returns a requester's bookings, newest first.
func (repo *MongoReservationRepo) ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return repo.findBookings(ctx, bson.M{"user_id": userID}, opts)
}

// ListActiveBookings returns the non-cancelled bookings of a trip on one travel date.
func (repo *MongoReservationRepo) ListActiveBookings(ctx context.Context, tripID, travelDate string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"trip_id":     tripID,
		"travel_date": travelDate,
		"status":      bson.M{"$ne": models.StatusCancelled},
	}
	return repo.findBookings(ctx, filter, nil)
}

func (repo *MongoReservationRepo) findBookings(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// SetDelayNotice records a driver's delay annotation on a non-terminal booking.
func (repo *MongoReservationRepo) SetDelayNotice(ctx context.Context, bookingID, notice string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     bookingID,
		"status": bson.M{"$in": bson.A{models.StatusPending, models.StatusConfirmed}},
	}
	update := bson.M{"$set": bson.M{"delay_notice": notice, "updated_at": at}}
	res, err := repo.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error annotating booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repo.bookingMissOr(ctx, bookingID, ErrStatusConflict)
	}
	return nil
}

// ConfirmGroupMember flips the matching member's confirmation flag.
func (repo *MongoReservationRepo) ConfirmGroupMember(ctx context.Context, bookingID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "group.members.email": email}
	update := bson.M{"$set": bson.M{"group.members.$.is_confirmed": true}}
	res, err := repo.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error confirming group member on booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repo.bookingMissOr(ctx, bookingID, ErrMemberNotFound)
	}
	return nil
}

// GetDriverEarnings returns the driver's credited total; drivers with no completions have zero.
func (repo *MongoReservationRepo) GetDriverEarnings(ctx context.Context, driverID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.DriverEarnings
	err := repo.driverColl.FindOne(ctx, bson.M{"driver_id": driverID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error fetching earnings for driver %s: %w", driverID, err)
	}
	return doc.TotalEarnings, nil
}

func (repo *MongoReservationRepo) bookingMissOr(ctx context.Context, bookingID string, otherwise error) error {
	n, err := repo.bookingColl.CountDocuments(ctx, bson.M{"id": bookingID})
	if err != nil {
		return fmt.Errorf("error checking booking %s: %w", bookingID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return otherwise
}
