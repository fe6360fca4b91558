package outbox

import (
	"fmt"

	"github.com/Sokol111/ecommerce-store-sync/internal/persistence"
)

// ErrDuplicateEventID is returned by Append when a record with the same
// eventId already exists. The existing record is never overwritten.
// It wraps persistence.ErrDuplicateKey.
var ErrDuplicateEventID = fmt.Errorf("outbox record with this eventId already exists: %w", persistence.ErrDuplicateKey)
