package outbox

import (
	"context"
	"errors"
	"sync"

	"github.com/Sokol111/ecommerce-store-sync/internal/event"
)

type gatewayCall struct {
	eventID        string
	idempotencyKey string
	eventType      string
	payload        event.StoreChangedPayload
}

// gatewayMock records every publish invocation and can be told to fail.
type gatewayMock struct {
	mu       sync.Mutex
	calls    []gatewayCall
	failNext bool
	failErr  error
}

func (g *gatewayMock) PublishStoreEvent(
	ctx context.Context,
	eventID string,
	idempotencyKey string,
	eventType string,
	schemaVersion int,
	correlationID string,
	payload event.StoreChangedPayload,
) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, gatewayCall{
		eventID:        eventID,
		idempotencyKey: idempotencyKey,
		eventType:      eventType,
		payload:        payload,
	})
	if g.failNext {
		g.failNext = false
		if g.failErr != nil {
			return g.failErr
		}
		return errors.New("gateway unavailable")
	}
	return nil
}

func (g *gatewayMock) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *gatewayMock) callAt(i int) gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[i]
}
