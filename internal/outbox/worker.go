package outbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// relayWorker runs the publisher on a fixed schedule.
type relayWorker struct {
	publisher  Publisher
	log        *zap.Logger
	conf       Config
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

func newRelayWorker(log *zap.Logger, publisher Publisher, conf Config) *relayWorker {
	return &relayWorker{
		publisher: publisher,
		log:       log.With(zap.String("component", "outbox-relay")),
		conf:      conf,
	}
}

// Start launches the relay loop. The first run happens after the configured
// initial delay, subsequent runs every interval.
func (w *relayWorker) Start() {
	if w.conf.Enabled != nil && !*w.conf.Enabled {
		w.log.Info("outbox relay is disabled")
		return
	}

	w.log.Info("starting outbox relay",
		zap.Duration("initialDelay", w.conf.InitialDelay),
		zap.Duration("interval", w.conf.Interval))

	var ctx context.Context
	ctx, w.cancelFunc = context.WithCancel(context.Background())
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *relayWorker) run(ctx context.Context) {
	timer := time.NewTimer(w.conf.InitialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	w.publishPending(ctx)

	ticker := time.NewTicker(w.conf.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.publishPending(ctx)
		}
	}
}

// publishPending shields the schedule: neither an error nor a panic from a
// single run stops the next tick from firing.
func (w *relayWorker) publishPending(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("outbox relay run panicked", zap.Any("panic", r))
		}
	}()

	processed, err := w.publisher.PublishPending(ctx)
	if err != nil {
		w.log.Error("outbox relay run failed", zap.Error(err))
		return
	}
	if processed > 0 {
		w.log.Info("outbox relay run finished", zap.Int("processed", processed))
	}
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (w *relayWorker) Stop() {
	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.wg.Wait()
}
