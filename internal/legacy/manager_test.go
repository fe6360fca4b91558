package legacy

import (
	"context"
	"testing"

	"github.com/Sokol111/ecommerce-store-sync/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *StoreManager {
	t.Helper()
	return NewStoreManager(zap.NewNop(), Config{SyncDir: t.TempDir()})
}

func testPayload() event.StoreChangedPayload {
	return event.NewStoreChangedPayload(event.StoreSnapshot{
		ID:                      42,
		Name:                    "Main Street",
		QuantityProductsInStock: 7,
	})
}

func TestPublishStoreEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("should process new event", func(t *testing.T) {
		m := newTestManager(t)

		err := m.PublishStoreEvent(ctx, "e1", "Store:42:StoreCreated:e1", event.TypeStoreCreated, event.SchemaVersion, "corr-1", testPayload())

		require.NoError(t, err)
		assert.Equal(t, 1, m.ProcessedEventsCount())
	})

	t.Run("should ignore duplicate idempotency key", func(t *testing.T) {
		m := newTestManager(t)
		key := "Store:42:StoreCreated:e1"

		require.NoError(t, m.PublishStoreEvent(ctx, "e1", key, event.TypeStoreCreated, event.SchemaVersion, "corr-1", testPayload()))
		require.NoError(t, m.PublishStoreEvent(ctx, "e1", key, event.TypeStoreCreated, event.SchemaVersion, "corr-1", testPayload()))

		assert.Equal(t, 1, m.ProcessedEventsCount())
	})

	t.Run("should count distinct keys separately", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.PublishStoreEvent(ctx, "e1", "Store:42:StoreCreated:e1", event.TypeStoreCreated, event.SchemaVersion, "", testPayload()))
		require.NoError(t, m.PublishStoreEvent(ctx, "e2", "Store:42:StoreUpdated:e2", event.TypeStoreUpdated, event.SchemaVersion, "", testPayload()))

		assert.Equal(t, 2, m.ProcessedEventsCount())
	})

	t.Run("should fail once after FailNextPublication", func(t *testing.T) {
		m := newTestManager(t)
		key := "Store:42:StoreCreated:e1"
		m.FailNextPublication()

		err := m.PublishStoreEvent(ctx, "e1", key, event.TypeStoreCreated, event.SchemaVersion, "", testPayload())
		require.Error(t, err)
		assert.Equal(t, 0, m.ProcessedEventsCount())

		err = m.PublishStoreEvent(ctx, "e1", key, event.TypeStoreCreated, event.SchemaVersion, "", testPayload())
		require.NoError(t, err)
		assert.Equal(t, 1, m.ProcessedEventsCount())
	})

	t.Run("should keep failing with SetAlwaysFailPublications", func(t *testing.T) {
		m := newTestManager(t)
		m.SetAlwaysFailPublications(true)

		for i := 0; i < 3; i++ {
			err := m.PublishStoreEvent(ctx, "e1", "Store:42:StoreCreated:e1", event.TypeStoreCreated, event.SchemaVersion, "", testPayload())
			require.Error(t, err)
		}
		assert.Equal(t, 0, m.ProcessedEventsCount())

		m.SetAlwaysFailPublications(false)
		require.NoError(t, m.PublishStoreEvent(ctx, "e1", "Store:42:StoreCreated:e1", event.TypeStoreCreated, event.SchemaVersion, "", testPayload()))
		assert.Equal(t, 1, m.ProcessedEventsCount())
	})

	t.Run("should reset state with ClearTestState", func(t *testing.T) {
		m := newTestManager(t)
		key := "Store:42:StoreCreated:e1"
		m.SetAlwaysFailPublications(true)
		m.ClearTestState()

		require.NoError(t, m.PublishStoreEvent(ctx, "e1", key, event.TypeStoreCreated, event.SchemaVersion, "", testPayload()))
		m.ClearTestState()
		assert.Equal(t, 0, m.ProcessedEventsCount())

		require.NoError(t, m.PublishStoreEvent(ctx, "e1", key, event.TypeStoreCreated, event.SchemaVersion, "", testPayload()))
		assert.Equal(t, 1, m.ProcessedEventsCount())
	})
}
