package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestHeader holds the fields every request variant shares.
type RequestHeader struct {
	Reference    string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"reference"`
	Kind         RequestKind     `gorm:"type:varchar(20);not null;index" json:"kind"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency     Currency        `gorm:"type:varchar(3);not null" json:"currency"`
	ApprovedOnce bool            `gorm:"not null;default:false" json:"approved_once"`
	RequestedBy  string          `gorm:"type:varchar(64);index" json:"requested_by"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty"`
}

func (h RequestHeader) Requested() Money {
	return Money{Amount: h.Amount, Currency: h.Currency}
}

// PaymentState tracks money paid out against a validated payable.
type PaymentState struct {
	Status        PayableStatus   `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(32);not null" json:"payment_status"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	BlockPayment  bool            `gorm:"not null;default:false" json:"block_payment"`
	BlockReason   string          `gorm:"type:text" json:"block_reason,omitempty"`
}

// Payable is implemented by the request variants that receive payments.
type Payable interface {
	RowID() uuid.UUID
	Header() *RequestHeader
	Settlement() *PaymentState
	// TotalDue is the amount that fully settles the payable.
	TotalDue() (Money, error)
	PaymentList() []Payment
}

// Remaining returns due minus paid for a payable.
func Remaining(p Payable) (decimal.Decimal, error) {
	due, err := p.TotalDue()
	if err != nil {
		return decimal.Zero, err
	}
	return due.Amount.Sub(p.Settlement().AmountPaid), nil
}

// DerivePaymentStatus maps paid/due amounts onto the payment status.
func DerivePaymentStatus(paid, due decimal.Decimal) PaymentStatus {
	switch {
	case paid.IsZero():
		return PaymentPending
	case paid.GreaterThanOrEqual(due):
		return PaymentPaid
	default:
		return PaymentPartiallyPaid
	}
}

// WorkflowStatusFor keeps the payable workflow status in step with payments.
func WorkflowStatusFor(ps PaymentStatus) PayableStatus {
	switch ps {
	case PaymentPaid:
		return PayablePaid
	case PaymentPartiallyPaid:
		return PayablePartiallyPaid
	default:
		return PayableValidated
	}
}
