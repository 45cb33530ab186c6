package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMode string

const (
	ModeCash             PaymentMode = "cash"
	ModeCheque           PaymentMode = "cheque"
	ModeTransfer         PaymentMode = "transfer"
	ModeMobileMoney      PaymentMode = "mobile_money"
	ModeProviderTransfer PaymentMode = "provider_transfer"
)

// modeDetailKeys lists the detail fields each mode must carry.
var modeDetailKeys = map[PaymentMode][]string{
	ModeCash:             nil,
	ModeCheque:           {"cheque_number", "bank"},
	ModeTransfer:         {"bank", "account"},
	ModeMobileMoney:      {"operator", "phone"},
	ModeProviderTransfer: {"provider", "transaction_ref"},
}

func (m PaymentMode) Valid() bool {
	_, ok := modeDetailKeys[m]
	return ok
}

// Payment is one disbursement recorded against an order or payment request.
type Payment struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	RequestReference string            `gorm:"type:varchar(32);not null;uniqueIndex:idx_payment_position" json:"request_reference"`
	Position         int               `gorm:"not null;uniqueIndex:idx_payment_position" json:"index"`
	Mode             PaymentMode       `gorm:"type:varchar(30);not null" json:"mode"`
	Amount           decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"amount_paid"`
	Currency         Currency          `gorm:"type:varchar(3);not null" json:"currency"`
	Proofs           []string          `gorm:"serializer:json;type:text" json:"proofs"`
	ModeDetails      map[string]string `gorm:"serializer:json;type:text" json:"mode_details"`
	SubmittedBy      string            `gorm:"type:varchar(64)" json:"submitted_by"`
	SubmittedAt      time.Time         `gorm:"not null" json:"submitted_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CashAmount is the part of the payment drawn from the petty-cash ledger.
func (p Payment) CashAmount() decimal.Decimal {
	if p.Mode == ModeCash {
		return p.Amount
	}
	return decimal.Zero
}

// Validate checks the payment in isolation; amounts against the payable are checked by reconciliation.
func (p Payment) Validate() error {
	if !p.Mode.Valid() {
		return Invalid("mode", "unknown payment mode %q", p.Mode)
	}
	if !p.Amount.IsPositive() {
		return Invalid("amount_paid", "must be greater than zero")
	}
	if p.Mode != ModeCash && len(p.Proofs) == 0 {
		return Invalid("proofs", "at least one proof is required for %s payments", p.Mode)
	}
	var missing []string
	for _, key := range modeDetailKeys[p.Mode] {
		if strings.TrimSpace(p.ModeDetails[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Invalid("mode_details", "missing %s for %s payment", strings.Join(missing, ", "), p.Mode)
	}
	return nil
}

func (p Payment) String() string {
	return fmt.Sprintf("%s %s (%s)", p.Amount, p.Currency, p.Mode)
}
