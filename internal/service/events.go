package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caisse/internal/model"
	"caisse/internal/repository"
)

// Domain event types.
const (
	EventFundingCreated          = "funding.created"
	EventFundingPreApproved      = "funding.pre_approved"
	EventFundingDetailsSubmitted = "funding.details_submitted"
	EventFundingApproved         = "funding.approved"
	EventFundingRejected         = "funding.rejected"
	EventFundingIssueReported    = "funding.issue_reported"
	EventFundingCorrected        = "funding.corrected"

	EventPaymentRequestCreated   = "payment_request.created"
	EventPaymentRequestValidated = "payment_request.validated"
	EventPaymentRequestRejected  = "payment_request.rejected"
	EventPaymentRequestCancelled = "payment_request.cancelled"

	EventOrderCreated       = "order.created"
	EventOrderProformaAdded = "order.proforma_added"
	EventOrderValidated     = "order.validated"
	EventOrderRejected      = "order.rejected"
	EventOrderCancelled     = "order.cancelled"

	EventPaymentRecorded      = "payment.recorded"
	EventPaymentEdited        = "payment.edited"
	EventPaymentIssueReported = "payment.issue_reported"
	EventPaymentRefusedFunds  = "payment.refused_insufficient_funds"

	EventLedgerCredited = "ledger.credited"
	EventLedgerDebited  = "ledger.debited"
	EventLedgerAdjusted = "ledger.adjusted"
)

// DomainEvent is what happened to one aggregate, emitted after a state change.
type DomainEvent struct {
	Type      string                 `json:"type"`
	Aggregate string                 `json:"aggregate"`
	Reference string                 `json:"reference"`
	Actor     string                 `json:"actor,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	At        time.Time              `json:"occurred_at"`
}

// DecodeEvent reads the payload of an outbox row back into a DomainEvent.
func DecodeEvent(row *model.OutboxEvent) (DomainEvent, error) {
	var event DomainEvent
	if err := json.Unmarshal([]byte(row.Payload), &event); err != nil {
		return DomainEvent{}, fmt.Errorf("decode event %s: %w", row.ID, err)
	}
	return event, nil
}

// EventPublisher records domain events for the background subscribers.
type EventPublisher interface {
	// Publish must run inside the transaction of the change it describes.
	Publish(ctx context.Context, events ...DomainEvent) error
	// Flush tells the dispatcher that committed events are waiting.
	Flush()
}

type outboxPublisher struct {
	repo   repository.OutboxRepository
	topics []string
	kick   func()
}

// NewOutboxPublisher writes one outbox row per topic for every event.
func NewOutboxPublisher(repo repository.OutboxRepository, kick func()) EventPublisher {
	return &outboxPublisher{
		repo:   repo,
		topics: []string{model.TopicNotify, model.TopicSync},
		kick:   kick,
	}
}

func (p *outboxPublisher) Publish(ctx context.Context, events ...DomainEvent) error {
	if !repository.InTx(ctx) {
		return fmt.Errorf("events published outside a transaction")
	}

	rows := make([]*model.OutboxEvent, 0, len(events)*len(p.topics))
	for _, event := range events {
		if event.At.IsZero() {
			event.At = time.Now().UTC()
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
		}
		for _, topic := range p.topics {
			rows = append(rows, &model.OutboxEvent{
				Topic:       topic,
				EventType:   event.Type,
				Aggregate:   event.Aggregate,
				AggregateID: event.Reference,
				Payload:     string(payload),
				Status:      model.OutboxPending,
				AvailableAt: event.At,
			})
		}
	}

	if err := p.repo.Create(ctx, rows...); err != nil {
		return fmt.Errorf("failed to write outbox events: %w", err)
	}
	return nil
}

func (p *outboxPublisher) Flush() {
	if p.kick != nil {
		p.kick()
	}
}
