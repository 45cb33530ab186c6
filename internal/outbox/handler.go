package outbox

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"caisse/internal/model"
)

// EventHandler handles one outbox event.
type EventHandler func(ctx context.Context, event *model.OutboxEvent) error

// HandlerRegistry routes events to the subscriber registered for their topic.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: map[string]EventHandler{}}
}

func (registry *HandlerRegistry) Register(topic string, handler EventHandler) error {
	if registry == nil {
		return ErrHandlerRegistryRequired
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrEventHandlerRequired
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.handlers[topic]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, topic)
	}
	registry.handlers[topic] = handler
	return nil
}

func (registry *HandlerRegistry) Handle(ctx context.Context, event *model.OutboxEvent) error {
	if registry == nil {
		return ErrHandlerRegistryRequired
	}
	if event == nil {
		return ErrInvalidEvent
	}

	registry.mu.RLock()
	handler, ok := registry.handlers[event.Topic]
	registry.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrHandlerNotRegistered, event.Topic)
	}
	return handler(ctx, event)
}
