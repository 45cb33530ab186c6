package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caisse/pkg/backoff"

	"go.uber.org/zap"
)

const latestCell = "latest"

type Config struct {
	Debounce    time.Duration
	Attempts    int
	BackoffBase time.Duration
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Debounce:    30 * time.Second,
		Attempts:    3,
		BackoffBase: 200 * time.Millisecond,
		Timeout:     5 * time.Second,
	}
}

// Syncer writes entity snapshots to the row store, at most once per debounce window.
type Syncer struct {
	store  RowStore
	source Source
	alerts Alerter
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewSyncer(store RowStore, source Source, alerts Alerter, cfg Config, logger *zap.Logger) *Syncer {
	defaults := DefaultConfig()
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaults.Attempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaults.BackoffBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &Syncer{
		store:  store,
		source: source,
		alerts: alerts,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Sync mirrors one request. It returns a *DebouncedError inside the debounce window
// and ErrSyncFailure when the store kept failing; domain state is never touched.
func (s *Syncer) Sync(ctx context.Context, kind, reference string) error {
	entity, err := s.source.Snapshot(ctx, kind, reference)
	if err != nil {
		return err
	}

	now := s.now()
	if entity.LastSyncedAt != nil && s.cfg.Debounce > 0 {
		if until := entity.LastSyncedAt.Add(s.cfg.Debounce); now.Before(until) {
			return &DebouncedError{Reference: reference, Until: until}
		}
	}

	written, err := s.write(ctx, entity.Row)
	if err != nil {
		return s.fail(ctx, reference, err)
	}
	if !written {
		s.logger.Debug("mirror row unchanged", zap.String("request_id", reference))
		return nil
	}

	if err := s.source.MarkSynced(ctx, kind, reference, now); err != nil {
		return fmt.Errorf("failed to stamp sync of %s: %w", reference, err)
	}
	s.logger.Info("mirror row written", zap.String("request_id", reference), zap.String("sheet", entity.Row.Sheet))
	return nil
}

// SyncLedgerSnapshot writes the balances row for reference and moves the latest flag onto it.
func (s *Syncer) SyncLedgerSnapshot(ctx context.Context, reference string) error {
	row, previous, err := s.source.LedgerSnapshot(ctx, reference)
	if err != nil {
		return err
	}
	if row.Cells == nil {
		row.Cells = map[string]string{}
	}
	row.Cells[latestCell] = "true"

	if _, err := s.write(ctx, row); err != nil {
		return s.fail(ctx, reference, err)
	}

	if previous != "" && previous != row.Key {
		if err := s.unflag(ctx, previous); err != nil {
			s.logger.Warn("failed to unflag previous ledger row",
				zap.String("request_id", previous), zap.Error(err))
		}
	}

	if err := s.source.SetLatestLedgerRow(ctx, row.Key, s.now()); err != nil {
		return fmt.Errorf("failed to record latest ledger row: %w", err)
	}
	return nil
}

func (s *Syncer) unflag(ctx context.Context, key string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prev, err := s.store.FindRow(callCtx, SheetLedger, key)
	if err != nil {
		return err
	}
	if prev.Cells == nil {
		prev.Cells = map[string]string{}
	} else if prev.Cells[latestCell] == "false" {
		return nil
	}
	prev.Cells[latestCell] = "false"
	return s.store.UpsertRow(callCtx, prev)
}

// write upserts row unless the stored content is identical. It retries with backoff.
func (s *Syncer) write(ctx context.Context, row Row) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.Attempts; attempt++ {
		if attempt > 0 {
			if err := backoff.SleepWithContext(ctx, backoff.ExponentialWithJitter(s.cfg.BackoffBase, attempt)); err != nil {
				return false, err
			}
		}

		written, err := s.writeOnce(ctx, row)
		if err == nil {
			return written, nil
		}
		lastErr = err
		s.logger.Warn("mirror write failed",
			zap.String("request_id", row.Key), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return false, lastErr
}

func (s *Syncer) writeOnce(ctx context.Context, row Row) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	existing, err := s.store.FindRow(callCtx, row.Sheet, row.Key)
	switch {
	case err == nil:
		if existing.Content() == row.Content() {
			return false, nil
		}
	case !errors.Is(err, ErrRowNotFound):
		return false, err
	}

	if err := s.store.UpsertRow(callCtx, row); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Syncer) fail(ctx context.Context, reference string, cause error) error {
	s.logger.Error("mirror sync failed", zap.String("request_id", reference), zap.Error(cause))
	if s.alerts != nil {
		if err := s.alerts.Alert(ctx, reference, cause.Error()); err != nil {
			s.logger.Warn("failed to alert operators", zap.String("request_id", reference), zap.Error(err))
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrSyncFailure, reference, cause)
}
