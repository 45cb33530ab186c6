package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FundingRequest asks for cash to be added to the petty-cash ledger.
// Final approval is the only place money enters the ledger.
type FundingRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestHeader `gorm:"embedded"`
	Status        FundingStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	Reason        string        `gorm:"type:text" json:"reason"`

	DisbursementMethod  string `gorm:"type:varchar(50)" json:"disbursement_method,omitempty"`
	DisbursementDetails string `gorm:"type:text" json:"disbursement_details,omitempty"`

	IssueReported bool   `gorm:"not null;default:false" json:"issue_reported"`
	IssueReason   string `gorm:"type:text" json:"issue_reason,omitempty"`
	// LedgerCredited is flipped by a conditional update in the same transaction as the credit.
	LedgerCredited bool `gorm:"not null;default:false" json:"ledger_credited"`

	PreApprovedBy      string     `gorm:"type:varchar(64)" json:"pre_approved_by,omitempty"`
	PreApprovedAt      *time.Time `json:"pre_approved_at,omitempty"`
	DetailsSubmittedBy string     `gorm:"type:varchar(64)" json:"details_submitted_by,omitempty"`
	DetailsSubmittedAt *time.Time `json:"details_submitted_at,omitempty"`
	ApprovedBy         string     `gorm:"type:varchar(64)" json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	RejectedBy         string     `gorm:"type:varchar(64)" json:"rejected_by,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	RejectionReason    string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *FundingRequest) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
