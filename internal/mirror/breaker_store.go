package mirror

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerStore stops calling a failing row store for a while instead of piling up timeouts.
type BreakerStore struct {
	next    RowStore
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerStore(next RowStore, openFor time.Duration, logger *zap.Logger) *BreakerStore {
	settings := gobreaker.Settings{
		Name:    "mirror",
		Timeout: openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing row is an answer, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRowNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &BreakerStore{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerStore) FindRow(ctx context.Context, sheet, key string) (Row, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.FindRow(ctx, sheet, key)
	})
	if err != nil {
		return Row{}, err
	}
	return out.(Row), nil
}

func (b *BreakerStore) UpsertRow(ctx context.Context, row Row) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.UpsertRow(ctx, row)
	})
	return err
}
