package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/core/logger"
	"github.com/Sokol111/ecommerce-store-sync/internal/event"
	"github.com/Sokol111/ecommerce-store-sync/internal/http/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Writer enqueues store change events. Enqueue must run inside the same
// transaction as the domain mutation it describes, so the record and the
// mutation commit or roll back together.
type Writer interface {
	Enqueue(ctx context.Context, eventType string, snapshot event.StoreSnapshot) (*Record, error)
}

type writer struct {
	store  Store
	now    func() time.Time
	encode func(v any) ([]byte, error)
}

func NewWriter(store Store) Writer {
	return &writer{
		store:  store,
		now:    time.Now,
		encode: json.Marshal,
	}
}

func (w *writer) Enqueue(ctx context.Context, eventType string, snapshot event.StoreSnapshot) (*Record, error) {
	payload, err := w.encode(event.NewStoreChangedPayload(snapshot))
	if err != nil {
		// Serialization failure aborts the enclosing transaction.
		return nil, fmt.Errorf("failed to serialize outbox payload: %w", err)
	}

	now := w.now().UTC()
	record := &Record{
		EventID:       uuid.NewString(),
		AggregateType: event.AggregateTypeStore,
		AggregateID:   strconv.FormatInt(snapshot.ID, 10),
		EventType:     eventType,
		SchemaVersion: event.SchemaVersion,
		CorrelationID: middleware.CorrelationID(ctx),
		Payload:       payload,
		CreatedAt:     now,
		Attempts:      0,
		NextAttemptAt: now,
	}

	if err := w.store.Append(ctx, record); err != nil {
		return nil, err
	}

	logger.Get(ctx).Debug("enqueued outbox record",
		zap.String("eventId", record.EventID),
		zap.String("eventType", record.EventType),
		zap.String("aggregateId", record.AggregateID))

	return record, nil
}
