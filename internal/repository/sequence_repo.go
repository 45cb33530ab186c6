package repository

import (
	"context"
	"fmt"

	"caisse/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository hands out identifier sequence numbers per (prefix, period).
type SequenceRepository interface {
	Next(ctx context.Context, prefix, period string) (int, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next must run inside a transaction: the upsert keeps the counter row locked until commit.
func (r *sequenceRepository) Next(ctx context.Context, prefix, period string) (int, error) {
	if !InTx(ctx) {
		return 0, fmt.Errorf("sequence for %s %s requested outside a transaction", prefix, period)
	}
	db := GetDB(ctx, r.db)

	counter := model.SequenceCounter{Prefix: prefix, Period: period, Value: 1}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "prefix"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value": gorm.Expr("sequence_counters.value + 1"),
		}),
	}).Create(&counter).Error; err != nil {
		return 0, err
	}

	var current model.SequenceCounter
	if err := db.Where("prefix = ? AND period = ?", prefix, period).First(&current).Error; err != nil {
		return 0, err
	}
	return current.Value, nil
}
