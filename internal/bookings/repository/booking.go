package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "renthub/internal/bookings/errors"
	"renthub/pkg/config"
	"renthub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByProperty(ctx context.Context, propertyID string) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error)
	FindApprovedByProperty(ctx context.Context, propertyID string) (*model.Booking, error)
	FindByPropertyAndUser(ctx context.Context, propertyID, userID string) (*model.Booking, error)

	// UpdateStatusFrom transitions the booking only when its current
	// status is one of from. A vanished match after a successful read
	// means a concurrent transition won; callers surface that as a
	// conflict, never as a silent overwrite.
	UpdateStatusFrom(ctx context.Context, id string, from []string, to string) (*model.Booking, error)

	// RejectOtherPending rejects every pending booking on the property
	// except winnerID and returns the bookings as they were before the
	// update, so the caller can notify each losing requester.
	RejectOtherPending(ctx context.Context, propertyID, winnerID string) ([]*model.Booking, error)

	UpdateOwner(ctx context.Context, id, ownerID string) error

	// FindOwnerOnProperty returns the owner reference recorded on any
	// other booking of the property, or "" when none carries one.
	// excludeUserID filters out bookings whose owner reference points
	// at the requester, so an unusable newest sibling never shadows an
	// older usable one.
	FindOwnerOnProperty(ctx context.Context, propertyID, excludeUserID string) (string, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) findMany(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) FindByProperty(ctx context.Context, propertyID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findMany(ctx, bson.M{"property_id": propertyID})
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findMany(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findMany(ctx, bson.M{"owner_id": ownerID})
}

func (r *mongoBookingRepository) FindApprovedByProperty(ctx context.Context, propertyID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{
		"property_id": propertyID,
		"status":      model.BookingStatusApproved,
	}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approved booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByPropertyAndUser(ctx context.Context, propertyID, userID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{
		"property_id": propertyID,
		"user_id":     userID,
	}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking for property and user: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) UpdateStatusFrom(ctx context.Context, id string, from []string, to string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": objectID}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}
	update := bson.M{
		"$set": bson.M{"status": to, "updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) RejectOtherPending(ctx context.Context, propertyID, winnerID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"property_id": propertyID,
		"status":      model.BookingStatusPending,
	}
	if winnerID != "" {
		winnerObjectID, err := parseObjectID(winnerID)
		if err != nil {
			return nil, err
		}
		filter["_id"] = bson.M{"$ne": winnerObjectID}
	}

	losers, err := r.findMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(losers) == 0 {
		return nil, nil
	}

	_, err = r.collection.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{
			"status":     model.BookingStatusRejected,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reject competing bookings: %w", err)
	}

	return losers, nil
}

func (r *mongoBookingRepository) UpdateOwner(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"owner_id": ownerID}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking owner: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindOwnerOnProperty(ctx context.Context, propertyID, excludeUserID string) (string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"property_id": propertyID,
		"owner_id":    bson.M{"$exists": true, "$nin": bson.A{"", excludeUserID}},
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"owner_id": 1})

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find owner on property bookings: %w", err)
	}

	return booking.OwnerID, nil
}
