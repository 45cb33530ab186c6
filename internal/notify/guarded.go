package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("notifier unavailable")

// BreakerConfig bounds calls to an external notifier.
type BreakerConfig struct {
	Name                string
	Timeout             time.Duration
	ConsecutiveFailures uint32
	OpenFor             time.Duration
}

type guarded struct {
	next    Notifier
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// Guarded gives each call a deadline and stops calling next after repeated failures.
func Guarded(next Notifier, cfg BreakerConfig, logger *zap.Logger) Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &guarded{next: next, breaker: gobreaker.NewCircuitBreaker(settings), timeout: cfg.Timeout}
}

func (g *guarded) Notify(ctx context.Context, n Notification) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return nil, g.next.Notify(callCtx, n)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrUnavailable, n.Channel)
	}
	return err
}
