package repository

import (
	"context"

	"caisse/internal/model"

	"gorm.io/gorm"
)

// PaymentRepository stores payments of both orders and payment requests.
type PaymentRepository interface {
	Append(ctx context.Context, payment *model.Payment) error
	Replace(ctx context.Context, payment *model.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Append(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

// Replace overwrites a payment in place, keeping its ID and position.
func (r *paymentRepository) Replace(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Model(&model.Payment{}).Where("id = ?", payment.ID).
		Select("mode", "amount", "currency", "proofs", "mode_details", "submitted_by", "submitted_at", "updated_at").
		Updates(payment).Error
}
