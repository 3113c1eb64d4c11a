package mongo

import (
	"context"
	"fmt"

	bookingsrepo "renthub/internal/bookings/repository"
	conversationsrepo "renthub/internal/conversations/repository"
	notificationsrepo "renthub/internal/notifications/repository"
	propertiesrepo "renthub/internal/properties/repository"
	"renthub/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run creates the indexes the booking engine's correctness depends on.
// It is idempotent; Mongo treats an existing identical index as a
// no-op.
func Run(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	steps := []struct {
		collection string
		indexes    []mongo.IndexModel
	}{
		{bookingsrepo.CollectionName, bookingIndexes()},
		{propertiesrepo.CollectionName, propertyIndexes()},
		{notificationsrepo.CollectionName, notificationIndexes()},
		{conversationsrepo.CollectionName, conversationIndexes()},
	}

	for _, step := range steps {
		if len(step.indexes) == 0 {
			continue
		}
		if _, err := db.Collection(step.collection).Indexes().CreateMany(ctx, step.indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", step.collection, err)
		}
		cfg.Log.Info("Indexes ensured", "collection", step.collection, "count", len(step.indexes))
	}

	return nil
}

func bookingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One live booking per (property, user); the engine's duplicate
		// precheck is advisory, this index is the guarantee.
		{
			Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_property_user"),
		},
		// At most one approved booking per property, enforced even if
		// two approvals race past the application checks.
		{
			Keys: bson.D{{Key: "property_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_property_approved").
				SetPartialFilterExpression(bson.M{"status": "approved"}),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("property_status"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
	}
}

func propertyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status"),
		},
		{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("price"),
		},
	}
}

func notificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
		// Backs the owner-hint lookup during owner recovery.
		{
			Keys:    bson.D{{Key: "related_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("related_created"),
		},
	}
}

func conversationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index().SetName("participants"),
		},
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_booking").
				SetPartialFilterExpression(bson.M{"booking_id": bson.M{"$exists": true}}),
		},
	}
}
