package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerEntryType string

const (
	LedgerCredit     LedgerEntryType = "credit"
	LedgerDebit      LedgerEntryType = "debit"
	LedgerAdjustment LedgerEntryType = "adjustment"
)

// LedgerBalance is the single shared cash balance of one currency.
type LedgerBalance struct {
	Currency  Currency        `gorm:"type:varchar(3);primaryKey" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LedgerTransaction is an append-only movement; debits carry a negative amount.
type LedgerTransaction struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Type             LedgerEntryType `gorm:"type:varchar(20);not null" json:"type"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Currency         Currency        `gorm:"type:varchar(3);not null;index" json:"currency"`
	BalanceAfter     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance_after"`
	RelatedRequestID string          `gorm:"type:varchar(32);index" json:"related_request_id"`
	Details          string          `gorm:"type:text" json:"details"`
	Actor            string          `gorm:"type:varchar(64)" json:"actor,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"timestamp"`
}

func (t *LedgerTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// LedgerStateID is the primary key of the single LedgerState row.
const LedgerStateID = 1

// LedgerState remembers which mirror row currently carries the "latest" flag.
type LedgerState struct {
	ID                    int        `gorm:"primaryKey;autoIncrement:false" json:"-"`
	LatestSyncedRequestID string     `gorm:"type:varchar(32)" json:"latest_synced_request_id"`
	LastSyncedAt          *time.Time `json:"last_synced_at,omitempty"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
