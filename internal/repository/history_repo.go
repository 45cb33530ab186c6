package repository

import (
	"context"

	"caisse/internal/model"

	"gorm.io/gorm"
)

type HistoryRepository interface {
	Append(ctx context.Context, entry *model.WorkflowHistory) error
	ListByReference(ctx context.Context, reference string) ([]model.WorkflowHistory, error)
	List(ctx context.Context, page, limit int) ([]model.WorkflowHistory, int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *model.WorkflowHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *historyRepository) ListByReference(ctx context.Context, reference string) ([]model.WorkflowHistory, error) {
	var entries []model.WorkflowHistory
	if err := GetDB(ctx, r.db).
		Where("request_reference = ?", reference).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) List(ctx context.Context, page, limit int) ([]model.WorkflowHistory, int64, error) {
	var entries []model.WorkflowHistory
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.WorkflowHistory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
