package service

import (
	"context"
	"errors"

	"caisse/internal/mirror"
	"caisse/internal/model"
	"caisse/internal/notify"
	"caisse/internal/outbox"
)

// RegisterSubscribers wires the notify and sync topics to their consumers.
func RegisterSubscribers(registry *outbox.HandlerRegistry, router *notify.Router, syncer *mirror.Syncer) error {
	if err := registry.Register(model.TopicNotify, router.Handle); err != nil {
		return err
	}
	return registry.Register(model.TopicSync, SyncHandler(syncer))
}

// SyncHandler mirrors the aggregate named by each sync event. Debounced syncs are
// deferred to the end of the window so the final state is always written.
func SyncHandler(syncer *mirror.Syncer) outbox.EventHandler {
	return func(ctx context.Context, row *model.OutboxEvent) error {
		var err error
		if row.Aggregate == model.AggregateLedger {
			err = syncer.SyncLedgerSnapshot(ctx, row.AggregateID)
		} else {
			err = syncer.Sync(ctx, row.Aggregate, row.AggregateID)
		}

		var debounced *mirror.DebouncedError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &debounced):
			return outbox.Defer(debounced.Until)
		case errors.Is(err, mirror.ErrSyncFailure):
			return outbox.Permanent(err)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation):
			return errors.Join(outbox.ErrInvalidEvent, err)
		}
		return err
	}
}
