package repository

import (
	"context"
	"time"

	"caisse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows list queries on any request table.
type RequestFilter struct {
	Status string
	Page   int
	Limit  int
}

func (f RequestFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		return db.Where("status = ?", f.Status)
	}
	return db
}

func (f RequestFilter) paginate(db *gorm.DB) *gorm.DB {
	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return db.Offset((page - 1) * limit).Limit(limit)
}

type FundingRepository interface {
	Create(ctx context.Context, f *model.FundingRequest) error
	FindByReference(ctx context.Context, reference string) (*model.FundingRequest, error)
	FindByReferenceForUpdate(ctx context.Context, reference string) (*model.FundingRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.FundingRequest, int64, error)
	// UpdateIf applies updates only while the row still matches expect and returns whether it did.
	UpdateIf(ctx context.Context, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error)
	MarkSynced(ctx context.Context, reference string, at time.Time) error
}

type fundingRepository struct {
	db *gorm.DB
}

func NewFundingRepository(db *gorm.DB) FundingRepository {
	return &fundingRepository{db: db}
}

func (r *fundingRepository) Create(ctx context.Context, f *model.FundingRequest) error {
	return GetDB(ctx, r.db).Create(f).Error
}

func (r *fundingRepository) FindByReference(ctx context.Context, reference string) (*model.FundingRequest, error) {
	var f model.FundingRequest
	if err := GetDB(ctx, r.db).First(&f, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fundingRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*model.FundingRequest, error) {
	var f model.FundingRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&f, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fundingRepository) List(ctx context.Context, filter RequestFilter) ([]model.FundingRequest, int64, error) {
	var items []model.FundingRequest
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.FundingRequest{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Scopes(filter.scope, filter.paginate).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *fundingRepository) UpdateIf(ctx context.Context, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error) {
	return updateIf(GetDB(ctx, r.db).Model(&model.FundingRequest{}), id, expect, updates)
}

func (r *fundingRepository) MarkSynced(ctx context.Context, reference string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.FundingRequest{}).
		Where("reference = ?", reference).
		UpdateColumn("last_synced_at", at).Error
}

// updateIf is a compare-and-set on one row.
func updateIf(db *gorm.DB, id uuid.UUID, expect map[string]interface{}, updates map[string]interface{}) (bool, error) {
	query := db.Where("id = ?", id)
	for column, value := range expect {
		query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
