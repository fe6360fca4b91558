package outbox

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/persistence"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memStore is an in-memory Store with the same semantics as the mongo
// implementation, used to test the publisher and writer without a database.
type memStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*Record)}
}

func (s *memStore) Append(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.EventID == record.EventID {
			return fmt.Errorf("%w: %s", ErrDuplicateEventID, record.EventID)
		}
	}
	if record.ID == "" {
		record.ID = bson.NewObjectID().Hex()
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *memStore) ListDue(ctx context.Context, limit int, now time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []Record
	for _, r := range s.records {
		if r.PublishedAt == nil && !r.NextAttemptAt.After(now) {
			due = append(due, *r)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].CreatedAt.Equal(due[j].CreatedAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].ID < due[j].ID
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memStore) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok && r.PublishedAt == nil {
		at := publishedAt.UTC()
		r.PublishedAt = &at
		r.LastError = ""
	}
	return nil
}

func (s *memStore) MarkFailed(ctx context.Context, id string, errorText string, nextAttemptAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok && r.PublishedAt == nil {
		r.Attempts++
		r.LastError = truncateErrorText(errorText)
		r.NextAttemptAt = nextAttemptAt.UTC()
	}
	return nil
}

func (s *memStore) CountPending(ctx context.Context) (int64, error) {
	return s.count(func(r *Record) bool { return r.PublishedAt == nil }), nil
}

func (s *memStore) CountFailed(ctx context.Context) (int64, error) {
	return s.count(func(r *Record) bool { return r.PublishedAt == nil && r.Attempts > 0 }), nil
}

func (s *memStore) CountPublished(ctx context.Context) (int64, error) {
	return s.count(func(r *Record) bool { return r.PublishedAt != nil }), nil
}

func (s *memStore) count(match func(*Record) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.records {
		if match(r) {
			n++
		}
	}
	return n
}

func (s *memStore) Replay(ctx context.Context, aggregateID string, from, to, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for _, r := range s.records {
		if r.AggregateID != aggregateID {
			continue
		}
		if r.CreatedAt.Before(from) || r.CreatedAt.After(to) {
			continue
		}
		r.PublishedAt = nil
		r.Attempts = 0
		r.LastError = ""
		r.NextAttemptAt = now.UTC()
		affected++
	}
	return affected, nil
}

func (s *memStore) FindByEventID(ctx context.Context, eventID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.EventID == eventID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, persistence.ErrEntityNotFound
}

func (s *memStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*Record)
	return nil
}

func (s *memStore) get(id string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		clone := *r
		return &clone
	}
	return nil
}
