package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"mentorbook/internal/store"
)

const DefaultSchedule = "@every 5s"

// Relay publishes pending outbox events and marks the published ones.
// Delivery is at-least-once: a crash between publish and mark republishes
// the event on the next run, so consumers dedupe by event ID.
type Relay struct {
	outbox    store.OutboxStore
	publisher Publisher
	batchSize int
	log       *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewRelay(outbox store.OutboxStore, publisher Publisher, batchSize int, log *slog.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce publishes one batch in outbox order and stops at the first publish
// failure so later events are not delivered ahead of it.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.PendingEvents(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(pending))
	var publishErr error
	for _, ev := range pending {
		if err := r.publisher.Publish(ctx, ev); err != nil {
			publishErr = err
			break
		}
		published = append(published, ev.ID)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published, r.now()); err != nil {
			return 0, err
		}
	}
	return len(published), publishErr
}

// Start schedules RunOnce on schedule. An invalid schedule falls back to
// DefaultSchedule.
func (r *Relay) Start(ctx context.Context, schedule string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runCtx, r.cancel = context.WithCancel(ctx)
	c := newCron()
	if _, err := c.AddFunc(schedule, r.tick); err != nil {
		r.log.Warn("invalid outbox schedule; falling back to default", "schedule", schedule, "default", DefaultSchedule, "error", err)
		c = newCron()
		_, _ = c.AddFunc(DefaultSchedule, r.tick)
	}
	c.Start()
	r.cron = c
}

// Stop cancels an in-flight run and waits for it to return.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	if r.cron != nil {
		<-r.cron.Stop().Done()
		r.cron = nil
	}
}

// newCron skips a tick while the previous run is still going, keeping a
// single relay run per process.
func newCron() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
}

func (r *Relay) tick() {
	n, err := r.RunOnce(r.runCtx)
	if err != nil {
		r.log.Error("outbox relay failed", "published", n, "error", err)
		return
	}
	if n > 0 {
		r.log.Info("outbox relay published events", "published", n)
	}
}
