package outbox

import (
	"time"
)

// Record is an outbox entry awaiting delivery to the legacy store manager.
//
// A record is due when publishedAt is unset and nextAttemptAt has passed.
// A record with publishedAt set is terminal and is never redelivered unless
// an operator replays it.
type Record struct {
	ID               string     `bson:"_id"`
	EventID          string     `bson:"eventId"`
	AggregateType    string     `bson:"aggregateType"`
	AggregateID      string     `bson:"aggregateId"`
	AggregateVersion *int64     `bson:"aggregateVersion,omitempty"`
	EventType        string     `bson:"eventType"`
	SchemaVersion    int        `bson:"schemaVersion"`
	CorrelationID    string     `bson:"correlationId,omitempty"`
	Payload          []byte     `bson:"payload"`
	CreatedAt        time.Time  `bson:"createdAt"`
	PublishedAt      *time.Time `bson:"publishedAt,omitempty"`
	Attempts         int        `bson:"attempts"`
	LastError        string     `bson:"lastError,omitempty"`
	NextAttemptAt    time.Time  `bson:"nextAttemptAt"`
}

// IdempotencyKey derives the deterministic delivery deduplication key.
func (r *Record) IdempotencyKey() string {
	return r.AggregateType + ":" + r.AggregateID + ":" + r.EventType + ":" + r.EventID
}
