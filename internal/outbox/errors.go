package outbox

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrHandlerRegistryRequired  = errors.New("handler registry is required")
	ErrTopicRequired            = errors.New("topic is required")
	ErrEventHandlerRequired     = errors.New("event handler is required")
	ErrHandlerAlreadyRegistered = errors.New("event handler already registered")
	ErrHandlerNotRegistered     = errors.New("event handler is not registered")
	ErrDispatcherRunning        = errors.New("outbox dispatcher is already running")
	// ErrInvalidEvent marks events that can never be handled; they are set aside as INVALID.
	ErrInvalidEvent = errors.New("invalid outbox event")
)

// DeferredError asks the dispatcher to hand the event back after Until without
// counting a failed attempt.
type DeferredError struct {
	Until time.Time
}

func (e *DeferredError) Error() string {
	return fmt.Sprintf("deferred until %s", e.Until.Format(time.RFC3339))
}

func Defer(until time.Time) error {
	return &DeferredError{Until: until}
}

// PermanentError stops retries; the event stays FAILED until an operator resets it.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}
