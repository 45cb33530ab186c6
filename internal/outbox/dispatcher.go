package outbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"
	"caisse/pkg/backoff"

	"go.uber.org/zap"
)

// Config controls polling and retries.
type Config struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	RetryBase   time.Duration
	RetryMax    time.Duration
	// Lease is how long a PROCESSING event may stay claimed before it is picked up again.
	Lease time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:    2 * time.Second,
		BatchSize:   50,
		MaxAttempts: 10,
		RetryBase:   time.Second,
		RetryMax:    5 * time.Minute,
		Lease:       10 * time.Minute,
	}
}

func (cfg *Config) normalize() {
	defaults := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaults.RetryBase
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = defaults.RetryMax
	}
	if cfg.Lease <= 0 {
		cfg.Lease = defaults.Lease
	}
}

// Result counts the outcomes of one dispatch cycle.
type Result struct {
	Processed int
	Published int
	Deferred  int
	Failed    int
	Invalid   int
}

// Dispatcher delivers committed outbox events to their topic handlers, at least once.
type Dispatcher struct {
	repo     repository.OutboxRepository
	handlers *HandlerRegistry
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time

	kick     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
	stopped  bool
	wg       sync.WaitGroup
}

func NewDispatcher(repo repository.OutboxRepository, handlers *HandlerRegistry, logger *zap.Logger, cfg Config) *Dispatcher {
	cfg.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		repo:     repo,
		handlers: handlers,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Kick requests a dispatch cycle without waiting for the next tick.
func (d *Dispatcher) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run dispatches until ctx is cancelled or Stop is called.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrDispatcherRunning
	}
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.running = true
	// Added under mu so Stop never waits on a counter that can still grow.
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	d.logger.Info("outbox dispatcher started", zap.Duration("interval", d.cfg.Interval))
	defer d.logger.Info("outbox dispatcher stopped")

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	d.cycle(ctx)
	for {
		select {
		case <-d.stop:
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.cycle(ctx)
		case <-d.kick:
			d.cycle(ctx)
		}
	}
}

func (d *Dispatcher) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("outbox dispatch panicked", zap.Any("panic", r))
		}
	}()

	// Drain full batches so a burst does not wait for several ticks.
	for ctx.Err() == nil {
		res := d.DispatchOnce(ctx)
		if res.Processed < d.cfg.BatchSize {
			return
		}
	}
}

// Stop ends Run and waits for it to return, including the cycle in flight.
// A Run started after Stop returns immediately.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

// DispatchOnce claims one batch of due events and hands each to its handler.
func (d *Dispatcher) DispatchOnce(ctx context.Context) Result {
	var res Result

	events, err := d.repo.ClaimDue(ctx, d.now(), d.cfg.BatchSize, d.cfg.MaxAttempts, d.cfg.Lease)
	if err != nil {
		d.logger.Error("failed to claim outbox events", zap.Error(err))
		return res
	}

	for i := range events {
		if ctx.Err() != nil {
			break
		}
		event := &events[i]
		res.Processed++

		err := d.handlers.Handle(ctx, event)
		if err == nil {
			res.Published++
			if markErr := d.repo.MarkPublished(ctx, event.ID, d.now()); markErr != nil {
				d.logger.Error("event handled but not marked published; it will be delivered again",
					zap.String("event_id", event.ID.String()), zap.Error(markErr))
			}
			continue
		}

		switch d.settleFailure(ctx, event, err) {
		case model.OutboxPending:
			res.Deferred++
		case model.OutboxInvalid:
			res.Invalid++
		default:
			res.Failed++
		}
	}

	return res
}

func (d *Dispatcher) settleFailure(ctx context.Context, event *model.OutboxEvent, err error) model.OutboxStatus {
	fields := []zap.Field{
		zap.String("event_id", event.ID.String()),
		zap.String("topic", event.Topic),
		zap.String("event_type", event.EventType),
		zap.String("aggregate_id", event.AggregateID),
	}

	var deferred *DeferredError
	var permanent *PermanentError

	switch {
	case errors.As(err, &deferred):
		if markErr := d.repo.Reschedule(ctx, event.ID, deferred.Until); markErr != nil {
			d.logger.Error("failed to reschedule outbox event", append(fields, zap.Error(markErr))...)
		}
		return model.OutboxPending

	case errors.Is(err, ErrInvalidEvent), errors.Is(err, ErrHandlerNotRegistered):
		d.logger.Error("outbox event cannot be handled", append(fields, zap.Error(err))...)
		if markErr := d.repo.MarkInvalid(ctx, event.ID, err.Error()); markErr != nil {
			d.logger.Error("failed to mark outbox event invalid", append(fields, zap.Error(markErr))...)
		}
		return model.OutboxInvalid

	case errors.As(err, &permanent):
		d.logger.Error("outbox event failed permanently", append(fields, zap.Error(err))...)
		if markErr := d.repo.MarkFailed(ctx, event.ID, d.cfg.MaxAttempts, d.now(), err.Error()); markErr != nil {
			d.logger.Error("failed to mark outbox event failed", append(fields, zap.Error(markErr))...)
		}
		return model.OutboxFailed
	}

	attempts := event.Attempts + 1
	retryAt := d.now().Add(backoff.Capped(d.cfg.RetryBase, d.cfg.RetryMax, attempts-1))
	level := d.logger.Warn
	if attempts >= d.cfg.MaxAttempts {
		level = d.logger.Error
	}
	level("outbox event failed", append(fields, zap.Int("attempts", attempts), zap.Time("retry_at", retryAt), zap.Error(err))...)

	if markErr := d.repo.MarkFailed(ctx, event.ID, attempts, retryAt, err.Error()); markErr != nil {
		d.logger.Error("failed to mark outbox event failed", append(fields, zap.Error(markErr))...)
	}
	return model.OutboxFailed
}
