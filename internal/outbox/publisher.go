package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/core/logger"
	"github.com/Sokol111/ecommerce-store-sync/internal/event"
	"github.com/Sokol111/ecommerce-store-sync/internal/legacy"
	"go.uber.org/zap"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 60 * time.Second
)

// Publisher drives delivery of due outbox records to the legacy gateway.
//
// Delivery is at-least-once: PublishPending may run concurrently with itself
// (scheduled tick vs admin publish-now) and two runs can both attempt the
// same record before either marks it published. The gateway absorbs the
// duplicate via the idempotency key.
type Publisher interface {

	// PublishPending processes at most one batch of due records and returns
	// how many records were attempted, successful or not.
	PublishPending(ctx context.Context) (int, error)
}

type publisher struct {
	store     Store
	gateway   legacy.Gateway
	metrics   *PublisherMetrics
	log       *zap.Logger
	throttler *logger.LogThrottler
	batchSize int
	now       func() time.Time
}

func NewPublisher(log *zap.Logger, store Store, gateway legacy.Gateway, metrics *PublisherMetrics, conf Config) Publisher {
	return &publisher{
		store:     store,
		gateway:   gateway,
		metrics:   metrics,
		log:       log.With(zap.String("component", "outbox-publisher")),
		throttler: logger.NewLogThrottler(log, time.Minute),
		batchSize: conf.BatchSize,
		now:       time.Now,
	}
}

func (p *publisher) PublishPending(ctx context.Context) (int, error) {
	records, err := p.store.ListDue(ctx, p.batchSize, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due outbox records: %w", err)
	}

	for i := range records {
		// One record's failure never aborts the batch.
		p.publishOne(ctx, &records[i])
	}
	return len(records), nil
}

func (p *publisher) publishOne(ctx context.Context, record *Record) {
	started := p.now()

	if err := p.deliver(ctx, record); err != nil {
		p.metrics.RecordFailure()
		nextAttemptAt := p.now().UTC().Add(backoffDelay(record.Attempts))
		p.throttler.Warn(record.EventID, "outbox delivery failed",
			zap.String("eventId", record.EventID),
			zap.String("aggregateId", record.AggregateID),
			zap.Int("attempts", record.Attempts+1),
			zap.Time("nextAttemptAt", nextAttemptAt),
			zap.Error(err))
		if markErr := p.store.MarkFailed(ctx, record.ID, err.Error(), nextAttemptAt); markErr != nil {
			p.log.Error("failed to record outbox delivery failure",
				zap.String("eventId", record.EventID), zap.Error(markErr))
		}
		return
	}

	if err := p.store.MarkPublished(ctx, record.ID, p.now().UTC()); err != nil {
		p.log.Error("failed to mark outbox record as published",
			zap.String("eventId", record.EventID), zap.Error(err))
		return
	}
	p.metrics.RecordPublished(p.now().Sub(started))
	p.log.Debug("published outbox record",
		zap.String("eventId", record.EventID),
		zap.String("eventType", record.EventType))
}

func (p *publisher) deliver(ctx context.Context, record *Record) error {
	var payload event.StoreChangedPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("failed to deserialize outbox payload: %w", err)
	}
	return p.gateway.PublishStoreEvent(ctx,
		record.EventID,
		record.IdempotencyKey(),
		record.EventType,
		record.SchemaVersion,
		record.CorrelationID,
		payload)
}

// backoffDelay returns min(2^attempts seconds, 60s), never below 1s.
// Attempts is the count before the failing attempt is recorded, so the
// first failure schedules a retry in 1s, the second in 2s, and so on.
func backoffDelay(attempts int) time.Duration {
	if attempts >= 6 {
		return maxBackoff
	}
	d := time.Duration(1<<attempts) * time.Second
	if d < minBackoff {
		return minBackoff
	}
	return d
}
