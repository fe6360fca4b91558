//go:build integration

package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/event"
	"github.com/Sokol111/ecommerce-store-sync/internal/persistence"
	"github.com/Sokol111/ecommerce-store-sync/internal/persistence/mongo"
	"github.com/Sokol111/ecommerce-store-sync/internal/testutil/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
)

type testMongo struct {
	db *mongodriver.Database
}

func (m *testMongo) GetCollection(collection string) mongo.Collection {
	return mongo.NewCollectionWrapper(m.db.Collection(collection), 10*time.Second)
}

func setupStore(t *testing.T) (Store, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	mc, err := container.StartMongoDBContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mc.Terminate(context.Background())
	})

	m := &testMongo{db: mc.Database("store_sync_test")}
	require.NoError(t, EnsureIndexes(ctx, m))
	return NewStore(m), ctx
}

func storeRecord(t *testing.T, eventID, aggregateID string, createdAt time.Time) *Record {
	t.Helper()
	payload, err := json.Marshal(event.StoreChangedPayload{StoreID: 42, Name: "Main Street", QuantityProductsInStock: 7})
	require.NoError(t, err)
	return &Record{
		EventID:       eventID,
		AggregateType: event.AggregateTypeStore,
		AggregateID:   aggregateID,
		EventType:     event.TypeStoreCreated,
		SchemaVersion: event.SchemaVersion,
		Payload:       payload,
		CreatedAt:     createdAt,
		NextAttemptAt: createdAt,
	}
}

func TestMongoStore(t *testing.T) {
	store, ctx := setupStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should reject duplicate eventId", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		require.NoError(t, store.Append(ctx, storeRecord(t, "dup-1", "42", base)))

		err := store.Append(ctx, storeRecord(t, "dup-1", "42", base.Add(time.Minute)))

		require.ErrorIs(t, err, ErrDuplicateEventID)
		pending, countErr := store.CountPending(ctx)
		require.NoError(t, countErr)
		assert.Equal(t, int64(1), pending)
	})

	t.Run("should list due records in FIFO order up to limit", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		require.NoError(t, store.Append(ctx, storeRecord(t, "e2", "42", base.Add(time.Minute))))
		require.NoError(t, store.Append(ctx, storeRecord(t, "e1", "42", base)))
		require.NoError(t, store.Append(ctx, storeRecord(t, "e3", "42", base.Add(2*time.Minute))))

		notYetDue := storeRecord(t, "e4", "42", base)
		notYetDue.NextAttemptAt = base.Add(time.Hour)
		require.NoError(t, store.Append(ctx, notYetDue))

		due, err := store.ListDue(ctx, 2, base.Add(5*time.Minute))

		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, "e1", due[0].EventID)
		assert.Equal(t, "e2", due[1].EventID)
	})

	t.Run("should mark published idempotently and clear lastError", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		rec := storeRecord(t, "e1", "42", base)
		require.NoError(t, store.Append(ctx, rec))
		require.NoError(t, store.MarkFailed(ctx, rec.ID, "boom", base.Add(time.Second)))

		publishedAt := base.Add(time.Minute)
		require.NoError(t, store.MarkPublished(ctx, rec.ID, publishedAt))
		require.NoError(t, store.MarkPublished(ctx, rec.ID, base.Add(time.Hour)))

		got, err := store.FindByEventID(ctx, "e1")
		require.NoError(t, err)
		require.NotNil(t, got.PublishedAt)
		assert.True(t, got.PublishedAt.Equal(publishedAt))
		assert.Empty(t, got.LastError)

		published, err := store.CountPublished(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), published)
	})

	t.Run("should never mutate terminal records", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		rec := storeRecord(t, "e1", "42", base)
		require.NoError(t, store.Append(ctx, rec))
		publishedAt := base.Add(time.Minute)
		require.NoError(t, store.MarkPublished(ctx, rec.ID, publishedAt))

		require.NoError(t, store.MarkFailed(ctx, rec.ID, "late failure from a concurrent run", base.Add(time.Hour)))

		got, err := store.FindByEventID(ctx, "e1")
		require.NoError(t, err)
		require.NotNil(t, got.PublishedAt)
		assert.True(t, got.PublishedAt.Equal(publishedAt))
		assert.Zero(t, got.Attempts)
		assert.Empty(t, got.LastError)
		assert.True(t, got.NextAttemptAt.Equal(rec.NextAttemptAt))
	})

	t.Run("should increment attempts and truncate error on markFailed", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		rec := storeRecord(t, "e1", "42", base)
		require.NoError(t, store.Append(ctx, rec))

		longErr := strings.Repeat("x", 5000)
		require.NoError(t, store.MarkFailed(ctx, rec.ID, longErr, base.Add(time.Second)))
		require.NoError(t, store.MarkFailed(ctx, rec.ID, "short", base.Add(2*time.Second)))

		got, err := store.FindByEventID(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Attempts)
		assert.Equal(t, "short", got.LastError)
		assert.True(t, got.NextAttemptAt.Equal(base.Add(2*time.Second)))

		failed, err := store.CountFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), failed)
	})

	t.Run("should replay only the targeted aggregate window", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))

		inside := storeRecord(t, "in-1", "42", base)
		outside := storeRecord(t, "out-1", "42", base.Add(2*time.Hour))
		other := storeRecord(t, "other-1", "99", base)
		for _, rec := range []*Record{inside, outside, other} {
			require.NoError(t, store.Append(ctx, rec))
			require.NoError(t, store.MarkFailed(ctx, rec.ID, "boom", base.Add(time.Second)))
			require.NoError(t, store.MarkPublished(ctx, rec.ID, base.Add(time.Minute)))
		}

		now := base.Add(3 * time.Hour)
		affected, err := store.Replay(ctx, "42", base.Add(-time.Hour), base.Add(time.Hour), now)

		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		got, err := store.FindByEventID(ctx, "in-1")
		require.NoError(t, err)
		assert.Nil(t, got.PublishedAt)
		assert.Zero(t, got.Attempts)
		assert.Empty(t, got.LastError)
		assert.True(t, got.NextAttemptAt.Equal(now))

		untouched, err := store.FindByEventID(ctx, "out-1")
		require.NoError(t, err)
		assert.NotNil(t, untouched.PublishedAt)
		untouched, err = store.FindByEventID(ctx, "other-1")
		require.NoError(t, err)
		assert.NotNil(t, untouched.PublishedAt)
	})

	t.Run("should include window bounds in replay", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		require.NoError(t, store.Append(ctx, storeRecord(t, "lo", "42", base)))
		require.NoError(t, store.Append(ctx, storeRecord(t, "hi", "42", base.Add(time.Hour))))

		affected, err := store.Replay(ctx, "42", base, base.Add(time.Hour), base.Add(2*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)
	})

	t.Run("should return not found for unknown eventId", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))

		_, err := store.FindByEventID(ctx, "missing")

		require.ErrorIs(t, err, persistence.ErrEntityNotFound)
	})

	t.Run("should count states independently", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, storeRecord(t, fmt.Sprintf("e%d", i), "42", base.Add(time.Duration(i)*time.Minute))))
		}
		due, err := store.ListDue(ctx, 100, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 3)
		require.NoError(t, store.MarkPublished(ctx, due[0].ID, base.Add(time.Hour)))
		require.NoError(t, store.MarkFailed(ctx, due[1].ID, "boom", base.Add(time.Hour)))

		pending, err := store.CountPending(ctx)
		require.NoError(t, err)
		failed, err := store.CountFailed(ctx)
		require.NoError(t, err)
		published, err := store.CountPublished(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(2), pending)
		assert.Equal(t, int64(1), failed)
		assert.Equal(t, int64(1), published)
	})
}
