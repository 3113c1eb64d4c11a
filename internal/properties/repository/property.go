package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	propertieserrors "renthub/internal/properties/errors"
	"renthub/pkg/config"
	"renthub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Properties"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error)
	Filter(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, id string, update model.PropertyUpdate) (*model.Property, error)
	Delete(ctx context.Context, id string) error

	// Reserve atomically claims the property for userID. The filter
	// requires a bookable status and no existing assignment, so at most
	// one concurrent caller can observe a match. Returns
	// ErrNotReservable when the conditional update matched nothing.
	Reserve(ctx context.Context, id, userID string) (*model.Property, error)
	// Release undoes a reservation after a downstream step failed,
	// restoring the pre-reservation status.
	Release(ctx context.Context, id, previousStatus string) error
	SetStatus(ctx context.Context, id, status string) (*model.Property, error)
	Assign(ctx context.Context, id, userID, status string) (*model.Property, error)
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPropertyRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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
		return primitive.NilObjectID, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

func (r *mongoPropertyRepository) Create(ctx context.Context, property *model.Property) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	property.CreatedAt = now
	property.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var property model.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) findPage(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Property, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []*model.Property
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, 0, fmt.Errorf("failed to decode properties: %w", err)
	}

	return properties, total, nil
}

func (r *mongoPropertyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findPage(ctx, bson.M{}, limit, offset)
}

func (r *mongoPropertyRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findPage(ctx, bson.M{"owner_id": ownerID}, limit, offset)
}

func (r *mongoPropertyRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: regexQuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": []bson.M{
			{"title": pattern},
			{"location": pattern},
			{"description": pattern},
		},
	}

	return r.findPage(ctx, filter, limit, offset)
}

func (r *mongoPropertyRepository) Filter(ctx context.Context, propertyFilter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	price := bson.M{}
	if propertyFilter.PriceMin != nil {
		price["$gte"] = *propertyFilter.PriceMin
	}
	if propertyFilter.PriceMax != nil {
		price["$lte"] = *propertyFilter.PriceMax
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if propertyFilter.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexQuoteMeta(propertyFilter.Location), Options: "i"}
	}
	if len(propertyFilter.Statuses) > 0 {
		filter["status"] = bson.M{"$in": propertyFilter.Statuses}
	}

	return r.findPage(ctx, filter, limit, offset)
}

func (r *mongoPropertyRepository) Update(ctx context.Context, id string, update model.PropertyUpdate) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Title != "" {
		set["title"] = update.Title
	}
	if update.Description != "" {
		set["description"] = update.Description
	}
	if update.Location != "" {
		set["location"] = update.Location
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Availability != nil {
		set["availability"] = update.Availability
	}
	if update.Images != nil {
		set["images"] = update.Images
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property model.Property
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		opts,
	).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if result.DeletedCount == 0 {
		return propertieserrors.ErrNotFound
	}
	return nil
}

func (r *mongoPropertyRepository) Reserve(ctx context.Context, id, userID string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":         objectID,
		"status":      bson.M{"$in": model.BookableStatuses},
		"assigned_to": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"status":      model.PropertyStatusBooked,
			"assigned_to": userID,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property model.Property
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotReservable
		}
		return nil, fmt.Errorf("failed to reserve property: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) Release(ctx context.Context, id, previousStatus string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":   bson.M{"status": previousStatus, "updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		"$unset": bson.M{"assigned_to": ""},
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to release property: %w", err)
	}
	return nil
}

func (r *mongoPropertyRepository) SetStatus(ctx context.Context, id, status string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	// Statuses outside assigned/booked must not carry a tenant.
	if !model.StatusCarriesAssignment(status) {
		update["$unset"] = bson.M{"assigned_to": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property model.Property
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set property status: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) Assign(ctx context.Context, id, userID, status string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"status":      status,
			"assigned_to": userID,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property model.Property
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to assign property: %w", err)
	}

	return &property, nil
}
