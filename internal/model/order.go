package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNoValidatedProforma = errors.New("order has no validated proforma")

// Order is a purchase order settled against one validated supplier proforma.
type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestHeader `gorm:"embedded"`
	PaymentState  `gorm:"embedded"`
	Title         string `gorm:"type:varchar(255);not null" json:"title"`
	Description   string `gorm:"type:text" json:"description"`

	ValidatedProformaID *uuid.UUID `gorm:"type:uuid" json:"validated_proforma_id,omitempty"`
	ValidatedBy         string     `gorm:"type:varchar(64)" json:"validated_by,omitempty"`
	ValidatedAt         *time.Time `json:"validated_at,omitempty"`
	RejectedBy          string     `gorm:"type:varchar(64)" json:"rejected_by,omitempty"`
	RejectedAt          *time.Time `json:"rejected_at,omitempty"`
	RejectionReason     string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancelledBy         string     `gorm:"type:varchar(64)" json:"cancelled_by,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CancelReason        string     `gorm:"type:text" json:"cancel_reason,omitempty"`

	Proformas []Proforma `gorm:"foreignKey:OrderReference;references:Reference" json:"proformas"`
	Payments  []Payment  `gorm:"foreignKey:RequestReference;references:Reference" json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Proforma is a supplier quote attached to an order.
type Proforma struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderReference string          `gorm:"type:varchar(32);not null;index" json:"order_reference"`
	Supplier       string          `gorm:"type:varchar(255);not null" json:"supplier"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency       Currency        `gorm:"type:varchar(3);not null" json:"currency"`
	FileURI        string          `gorm:"type:text" json:"file_uri,omitempty"`
	Validated      bool            `gorm:"not null;default:false" json:"validated"`
	AddedBy        string          `gorm:"type:varchar(64)" json:"added_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (p *Proforma) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (o *Order) RowID() uuid.UUID { return o.ID }
func (o *Order) Header() *RequestHeader { return &o.RequestHeader }
func (o *Order) Settlement() *PaymentState { return &o.PaymentState }
func (o *Order) PaymentList() []Payment { return o.Payments }

// TotalDue is the amount of the single validated proforma.
func (o *Order) TotalDue() (Money, error) {
	if o.ValidatedProformaID == nil {
		return Money{}, ErrNoValidatedProforma
	}
	for _, p := range o.Proformas {
		if p.ID == *o.ValidatedProformaID {
			return Money{Amount: p.Amount, Currency: p.Currency}, nil
		}
	}
	return Money{}, ErrNoValidatedProforma
}
