package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "PENDING"
	OutboxProcessing OutboxStatus = "PROCESSING"
	OutboxPublished  OutboxStatus = "PUBLISHED"
	OutboxFailed     OutboxStatus = "FAILED"
	OutboxInvalid    OutboxStatus = "INVALID"
)

// Outbox topics, one row per subscriber.
const (
	TopicNotify = "notify"
	TopicSync   = "sync"
)

// OutboxEvent is a domain event written in the same transaction as the change it describes.
type OutboxEvent struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Topic       string       `gorm:"type:varchar(20);not null;index:idx_outbox_due,priority:2" json:"topic"`
	EventType   string       `gorm:"type:varchar(60);not null" json:"event_type"`
	Aggregate   string       `gorm:"type:varchar(20);not null" json:"aggregate"`
	AggregateID string       `gorm:"type:varchar(32);not null;index" json:"aggregate_id"`
	Payload     string       `gorm:"type:text" json:"payload"`
	Status      OutboxStatus `gorm:"type:varchar(20);not null;index:idx_outbox_due,priority:1" json:"status"`
	Attempts    int          `gorm:"not null;default:0" json:"attempts"`
	AvailableAt time.Time    `gorm:"not null;index:idx_outbox_due,priority:3" json:"available_at"`
	LastError   string       `gorm:"type:text" json:"last_error,omitempty"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
