package repository

import (
	"context"
	"time"

	"caisse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRequestRepository interface {
	Create(ctx context.Context, p *model.PaymentRequest) error
	FindByReference(ctx context.Context, reference string) (*model.PaymentRequest, error)
	FindByReferenceForUpdate(ctx context.Context, reference string) (*model.PaymentRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.PaymentRequest, int64, error)
	UpdateIf(ctx context.Context, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error)
	SaveState(ctx context.Context, id uuid.UUID, state model.PaymentState) error
	MarkSynced(ctx context.Context, reference string, at time.Time) error
}

type paymentRequestRepository struct {
	db *gorm.DB
}

func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

func orderedPayments(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *paymentRequestRepository) Create(ctx context.Context, p *model.PaymentRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(p).Error
}

func (r *paymentRequestRepository) FindByReference(ctx context.Context, reference string) (*model.PaymentRequest, error) {
	var p model.PaymentRequest
	if err := GetDB(ctx, r.db).
		Preload("Payments", orderedPayments).
		First(&p, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRequestRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*model.PaymentRequest, error) {
	var p model.PaymentRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Payments", orderedPayments).
		First(&p, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRequestRepository) List(ctx context.Context, filter RequestFilter) ([]model.PaymentRequest, int64, error) {
	var items []model.PaymentRequest
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.PaymentRequest{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Scopes(filter.scope, filter.paginate).
		Preload("Payments", orderedPayments).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *paymentRequestRepository) UpdateIf(ctx context.Context, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error) {
	return updateIf(GetDB(ctx, r.db).Model(&model.PaymentRequest{}), id, expect, updates)
}

func (r *paymentRequestRepository) SaveState(ctx context.Context, id uuid.UUID, state model.PaymentState) error {
	return GetDB(ctx, r.db).Model(&model.PaymentRequest{}).Where("id = ?", id).
		Updates(stateColumns(state)).Error
}

func (r *paymentRequestRepository) MarkSynced(ctx context.Context, reference string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.PaymentRequest{}).
		Where("reference = ?", reference).
		UpdateColumn("last_synced_at", at).Error
}

// stateColumns writes every PaymentState field, zero values included.
func stateColumns(state model.PaymentState) map[string]interface{} {
	return map[string]interface{}{
		"status":         state.Status,
		"payment_status": state.PaymentStatus,
		"amount_paid":    state.AmountPaid,
		"block_payment":  state.BlockPayment,
		"block_reason":   state.BlockReason,
	}
}
