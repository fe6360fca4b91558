package outbox

import (
	"context"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	collectionName = "outbox"

	// Index names.
	idxEventIDUnique          = "outbox_eventId_unique"
	idxPublishedAtNextAttempt = "outbox_publishedAt_nextAttemptAt"
	idxAggregateIDCreatedAt   = "outbox_aggregateId_createdAt"
)

// EnsureIndexes creates required indexes for the outbox collection.
// This is idempotent - safe to call multiple times.
func EnsureIndexes(ctx context.Context, m mongo.Mongo) error {
	coll := m.GetCollection(collectionName)

	indexes := []mongodriver.IndexModel{
		{
			Keys: bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().
				SetName(idxEventIDUnique).
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "publishedAt", Value: 1},
				{Key: "nextAttemptAt", Value: 1},
			},
			Options: options.Index().
				SetName(idxPublishedAtNextAttempt),
		},
		{
			Keys: bson.D{
				{Key: "aggregateId", Value: 1},
				{Key: "createdAt", Value: 1},
			},
			Options: options.Index().
				SetName(idxAggregateIDCreatedAt),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
