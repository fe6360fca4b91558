package logger

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LogThrottler suppresses repetitive warnings per key. A failing outbox
// record retried every relay tick would otherwise emit the same warning
// dozens of times per minute.
type LogThrottler struct {
	log      *zap.Logger
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLogThrottler allows one WARN per key per interval.
func NewLogThrottler(log *zap.Logger, interval time.Duration) *LogThrottler {
	return &LogThrottler{
		log:      log,
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Warn logs at WARN when the key's budget allows it, at DEBUG otherwise,
// so an ongoing failure stays visible without flooding the log.
func (t *LogThrottler) Warn(key string, msg string, fields ...zap.Field) {
	if t.limiterFor(key).Allow() {
		t.log.Warn(msg, fields...)
		return
	}
	t.log.Debug(msg, fields...)
}

func (t *LogThrottler) limiterFor(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	limiter, ok := t.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[key] = limiter
	}
	return limiter
}
