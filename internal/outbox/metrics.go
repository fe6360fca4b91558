package outbox

import (
	"sync/atomic"
	"time"
)

// PublisherMetrics holds process-wide relay counters. They are advisory,
// reset only by explicit operator action, and never gate relay behavior.
type PublisherMetrics struct {
	published      atomic.Int64
	failed         atomic.Int64
	totalLatencyMs atomic.Int64
}

func NewPublisherMetrics() *PublisherMetrics {
	return &PublisherMetrics{}
}

func (m *PublisherMetrics) RecordPublished(latency time.Duration) {
	m.published.Add(1)
	m.totalLatencyMs.Add(latency.Milliseconds())
}

func (m *PublisherMetrics) RecordFailure() {
	m.failed.Add(1)
}

func (m *PublisherMetrics) Published() int64 {
	return m.published.Load()
}

func (m *PublisherMetrics) Failed() int64 {
	return m.failed.Load()
}

// AveragePublishLatencyMs is 0 when nothing has been published yet.
func (m *PublisherMetrics) AveragePublishLatencyMs() int64 {
	published := m.published.Load()
	if published == 0 {
		return 0
	}
	return m.totalLatencyMs.Load() / published
}

func (m *PublisherMetrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.totalLatencyMs.Store(0)
}
