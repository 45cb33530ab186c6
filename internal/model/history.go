package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workflow stages recorded in the history trail.
const (
	StageCreated          = "created"
	StagePreApproved      = "pre_approved"
	StageDetailsSubmitted = "details_submitted"
	StageApproved         = "approved"
	StageRejected         = "rejected"
	StageIssueReported    = "issue_reported"
	StageDetailsCorrected = "details_corrected"
	StageValidated        = "validated"
	StageCancelled        = "cancelled"
	StageProformaAdded    = "proforma_added"
	StagePaymentRecorded  = "payment_recorded"
	StagePaymentEdited    = "payment_edited"
	StagePaymentIssue     = "payment_issue_reported"
)

// WorkflowHistory is the append-only trail of a request: who did what, and when.
type WorkflowHistory struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RequestReference string      `gorm:"type:varchar(32);not null;index" json:"request_reference"`
	Kind             RequestKind `gorm:"type:varchar(20);not null" json:"kind"`
	Stage            string      `gorm:"type:varchar(50);not null;index" json:"stage"`
	Actor            string      `gorm:"type:varchar(64)" json:"actor"`
	Details          string      `gorm:"type:text" json:"details"` // serialized JSON payload of the step
	CreatedAt        time.Time   `gorm:"index" json:"timestamp"`
}

func (h *WorkflowHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
