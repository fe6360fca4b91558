package legacy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Sokol111/ecommerce-store-sync/internal/event"
	"go.uber.org/zap"
)

// StoreManager is the in-process adapter for the legacy store manager.
// It deduplicates by idempotency key and hands each new event over as a
// legacy sync file. Failure injection hooks exist for tests and chaos drills.
type StoreManager struct {
	log     *zap.Logger
	syncDir string

	mu            sync.Mutex
	processedKeys map[string]struct{}

	processedEvents     atomic.Int64
	failNextPublication atomic.Bool
	alwaysFail          atomic.Bool
}

func NewStoreManager(log *zap.Logger, conf Config) *StoreManager {
	return &StoreManager{
		log:           log.With(zap.String("component", "legacy-store-manager")),
		syncDir:       conf.SyncDir,
		processedKeys: make(map[string]struct{}),
	}
}

func (m *StoreManager) PublishStoreEvent(
	ctx context.Context,
	eventID string,
	idempotencyKey string,
	eventType string,
	schemaVersion int,
	correlationID string,
	payload event.StoreChangedPayload,
) error {
	if m.alwaysFail.Load() || m.failNextPublication.Swap(false) {
		return errors.New("legacy gateway simulated failure")
	}

	if !m.markProcessed(idempotencyKey) {
		m.log.Info("ignoring duplicated store sync event",
			zap.String("idempotencyKey", idempotencyKey))
		return nil
	}

	if err := m.writeSyncFile(eventID, idempotencyKey, eventType, schemaVersion, correlationID, payload); err != nil {
		// The key was never delivered; allow a retry to claim it again.
		m.unmarkProcessed(idempotencyKey)
		return err
	}

	m.processedEvents.Add(1)
	return nil
}

// ProcessedEventsCount reports how many distinct events reached the legacy system.
func (m *StoreManager) ProcessedEventsCount() int {
	return int(m.processedEvents.Load())
}

// FailNextPublication makes the next publish attempt fail once.
func (m *StoreManager) FailNextPublication() {
	m.failNextPublication.Store(true)
}

// SetAlwaysFailPublications toggles persistent publish failures.
func (m *StoreManager) SetAlwaysFailPublications(alwaysFail bool) {
	m.alwaysFail.Store(alwaysFail)
}

// ClearTestState resets counters, failure hooks and the idempotency key set.
func (m *StoreManager) ClearTestState() {
	m.mu.Lock()
	m.processedKeys = make(map[string]struct{})
	m.mu.Unlock()
	m.processedEvents.Store(0)
	m.failNextPublication.Store(false)
	m.alwaysFail.Store(false)
}

func (m *StoreManager) markProcessed(idempotencyKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.processedKeys[idempotencyKey]; exists {
		return false
	}
	m.processedKeys[idempotencyKey] = struct{}{}
	return true
}

func (m *StoreManager) unmarkProcessed(idempotencyKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.processedKeys, idempotencyKey)
}

// writeSyncFile emulates the legacy handoff: the event is written as a sync
// file which the legacy system consumes and removes.
func (m *StoreManager) writeSyncFile(
	eventID string,
	idempotencyKey string,
	eventType string,
	schemaVersion int,
	correlationID string,
	payload event.StoreChangedPayload,
) error {
	f, err := os.CreateTemp(m.syncDir, "legacy-store-sync-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create legacy sync file: %w", err)
	}

	content := fmt.Sprintf(
		"eventId=%s,idempotencyKey=%s,eventType=%s,schemaVersion=%d,correlationId=%s,storeId=%d,name=%s,itemsOnStock=%d",
		eventID, idempotencyKey, eventType, schemaVersion, correlationID,
		payload.StoreID, payload.Name, payload.QuantityProductsInStock,
	)

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("failed to write legacy sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("failed to close legacy sync file: %w", err)
	}
	_ = os.Remove(f.Name())

	return nil
}
