package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRequest asks for a known amount to be paid to a beneficiary.
type PaymentRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestHeader `gorm:"embedded"`
	PaymentState  `gorm:"embedded"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Beneficiary   string     `gorm:"type:varchar(255);not null" json:"beneficiary"`
	Description   string     `gorm:"type:text" json:"description"`
	DueDate       *time.Time `json:"due_date,omitempty"`

	ValidatedBy     string     `gorm:"type:varchar(64)" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time `json:"validated_at,omitempty"`
	RejectedBy      string     `gorm:"type:varchar(64)" json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancelledBy     string     `gorm:"type:varchar(64)" json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelReason    string     `gorm:"type:text" json:"cancel_reason,omitempty"`

	Payments []Payment `gorm:"foreignKey:RequestReference;references:Reference" json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PaymentRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *PaymentRequest) RowID() uuid.UUID { return p.ID }
func (p *PaymentRequest) Header() *RequestHeader { return &p.RequestHeader }
func (p *PaymentRequest) Settlement() *PaymentState { return &p.PaymentState }
func (p *PaymentRequest) PaymentList() []Payment { return p.Payments }

func (p *PaymentRequest) TotalDue() (Money, error) {
	return p.Requested(), nil
}
