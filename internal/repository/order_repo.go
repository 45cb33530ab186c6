package repository

import (
	"context"
	"time"

	"caisse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateProforma(ctx context.Context, proforma *model.Proforma) error
	MarkProformaValidated(ctx context.Context, id uuid.UUID) error
	FindByReference(ctx context.Context, reference string) (*model.Order, error)
	FindByReferenceForUpdate(ctx context.Context, reference string) (*model.Order, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Order, int64, error)
	UpdateIf(ctx context.Context, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error)
	SaveState(ctx context.Context, id uuid.UUID, state model.PaymentState) error
	MarkSynced(ctx context.Context, reference string, at time.Time) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) CreateProforma(ctx context.Context, proforma *model.Proforma) error {
	return GetDB(ctx, r.db).Create(proforma).Error
}

func (r *orderRepository) MarkProformaValidated(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Proforma{}).Where("id = ?", id).Update("validated", true).Error
}

func (r *orderRepository) FindByReference(ctx context.Context, reference string) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Proformas", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payments", orderedPayments).
		First(&order, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Proformas", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payments", orderedPayments).
		First(&order, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter RequestFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Order{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Scopes(filter.scope, filter.paginate).
		Preload("Proformas").
		Preload("Payments", orderedPayments).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateIf(ctx context.Context, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error) {
	return updateIf(GetDB(ctx, r.db).Model(&model.Order{}), id, expect, updates)
}

func (r *orderRepository) SaveState(ctx context.Context, id uuid.UUID, state model.PaymentState) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).
		Updates(stateColumns(state)).Error
}

func (r *orderRepository) MarkSynced(ctx context.Context, reference string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).
		Where("reference = ?", reference).
		UpdateColumn("last_synced_at", at).Error
}
