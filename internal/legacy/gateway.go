package legacy

import (
	"context"

	"github.com/Sokol111/ecommerce-store-sync/internal/event"
)

// Gateway is the boundary contract of the legacy store manager.
//
// Implementations must be idempotent per idempotency key: publishing the same
// key twice has the effect of exactly one delivery, the second call is a no-op
// success. The relay guarantees only at-least-once delivery, so duplicate
// publications are expected and must be absorbed here, not prevented upstream.
type Gateway interface {
	PublishStoreEvent(
		ctx context.Context,
		eventID string,
		idempotencyKey string,
		eventType string,
		schemaVersion int,
		correlationID string,
		payload event.StoreChangedPayload,
	) error
}
