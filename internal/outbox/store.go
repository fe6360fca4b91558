package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/persistence"
	"github.com/Sokol111/ecommerce-store-sync/internal/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// maxLastErrorLength bounds the stored diagnostic text per record.
const maxLastErrorLength = 1900

// truncateErrorText caps the text and drops any multi-byte rune the cut
// split, since the BSON encoder rejects invalid UTF-8.
func truncateErrorText(s string) string {
	if len(s) <= maxLastErrorLength {
		return s
	}
	return strings.ToValidUTF8(s[:maxLastErrorLength], "")
}

// Store is the durable query and mutation surface over outbox records.
type Store interface {

	// Append inserts a new record. Returns ErrDuplicateEventID when a record
	// with the same eventId already exists.
	Append(ctx context.Context, record *Record) error

	// ListDue returns records with publishedAt unset and nextAttemptAt <= now,
	// ordered by (createdAt, _id), at most limit of them.
	ListDue(ctx context.Context, limit int, now time.Time) ([]Record, error)

	// MarkPublished sets publishedAt and clears lastError. Safe to call twice.
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error

	// MarkFailed increments attempts, stores the (truncated) error text and
	// schedules the next attempt.
	MarkFailed(ctx context.Context, id string, errorText string, nextAttemptAt time.Time) error

	CountPending(ctx context.Context) (int64, error)
	CountFailed(ctx context.Context) (int64, error)
	CountPublished(ctx context.Context) (int64, error)

	// Replay resets every record of the aggregate with createdAt in the
	// inclusive [from, to] window back to pending and returns how many
	// records matched.
	Replay(ctx context.Context, aggregateID string, from, to, now time.Time) (int64, error)

	// FindByEventID returns the record with the given eventId.
	// Returns persistence.ErrEntityNotFound when absent.
	FindByEventID(ctx context.Context, eventID string) (*Record, error)

	// ClearAll removes every record. Test and bulk-reset utility.
	ClearAll(ctx context.Context) error
}

type mongoStore struct {
	coll mongo.Collection
}

func NewStore(m mongo.Mongo) Store {
	return &mongoStore{coll: m.GetCollection(collectionName)}
}

func (s *mongoStore) Append(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = bson.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEventID, record.EventID)
		}
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return nil
}

func (s *mongoStore) ListDue(ctx context.Context, limit int, now time.Time) ([]Record, error) {
	filter := bson.M{
		"publishedAt":   nil,
		"nextAttemptAt": bson.M{"$lte": now},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list due outbox records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode due outbox records: %w", err)
	}
	return records, nil
}

func (s *mongoStore) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	// The publishedAt filter makes a second call a no-op: a record published
	// by a concurrent run is terminal and stays untouched.
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "publishedAt": nil},
		bson.M{
			"$set":   bson.M{"publishedAt": publishedAt.UTC()},
			"$unset": bson.M{"lastError": ""},
		})
	if err != nil {
		return fmt.Errorf("failed to mark outbox record as published: %w", err)
	}
	return nil
}

func (s *mongoStore) MarkFailed(ctx context.Context, id string, errorText string, nextAttemptAt time.Time) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "publishedAt": nil},
		bson.M{
			"$inc": bson.M{"attempts": 1},
			"$set": bson.M{
				"lastError":     truncateErrorText(errorText),
				"nextAttemptAt": nextAttemptAt.UTC(),
			},
		})
	if err != nil {
		return fmt.Errorf("failed to mark outbox record as failed: %w", err)
	}
	return nil
}

func (s *mongoStore) CountPending(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{"publishedAt": nil})
}

func (s *mongoStore) CountFailed(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{"publishedAt": nil, "attempts": bson.M{"$gt": 0}})
}

func (s *mongoStore) CountPublished(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{"publishedAt": bson.M{"$ne": nil}})
}

func (s *mongoStore) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count outbox records: %w", err)
	}
	return n, nil
}

func (s *mongoStore) Replay(ctx context.Context, aggregateID string, from, to, now time.Time) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{
			"aggregateId": aggregateID,
			"createdAt":   bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
		},
		bson.M{
			"$set": bson.M{
				"attempts":      0,
				"nextAttemptAt": now.UTC(),
			},
			"$unset": bson.M{
				"publishedAt": "",
				"lastError":   "",
			},
		})
	if err != nil {
		return 0, fmt.Errorf("failed to replay outbox records: %w", err)
	}
	return res.MatchedCount, nil
}

func (s *mongoStore) FindByEventID(ctx context.Context, eventID string) (*Record, error) {
	var record Record
	err := s.coll.FindOne(ctx, bson.M{"eventId": eventID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to find outbox record: %w", persistence.ErrEntityNotFound)
		}
		return nil, fmt.Errorf("failed to find outbox record: %w", err)
	}
	return &record, nil
}

func (s *mongoStore) ClearAll(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear outbox records: %w", err)
	}
	return nil
}
