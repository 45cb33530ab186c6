// Package notify routes workflow events to chat channels.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Notification is one message for one channel.
type Notification struct {
	Channel  string                 `json:"channel"`
	EntityID string                 `json:"entity_id"`
	Event    string                 `json:"event"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	At       time.Time              `json:"at"`
}

// Notifier delivers notifications. Implementations must honor ctx deadlines.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// LogNotifier writes notifications to the log; it is the fallback when no push channel is wired.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Logger.Info("notification",
		zap.String("channel", n.Channel),
		zap.String("entity_id", n.EntityID),
		zap.String("event", n.Event),
		zap.Any("payload", n.Payload),
	)
	return nil
}

// FanOut delivers to every notifier and joins their errors.
type FanOut []Notifier

func (f FanOut) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
