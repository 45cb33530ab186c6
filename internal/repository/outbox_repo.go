package repository

import (
	"context"
	"time"

	"caisse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository interface {
	Create(ctx context.Context, events ...*model.OutboxEvent) error
	// ClaimDue moves up to limit due events to PROCESSING and returns them.
	ClaimDue(ctx context.Context, now time.Time, limit, maxAttempts int, lease time.Duration) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, retryAt time.Time, reason string) error
	MarkInvalid(ctx context.Context, id uuid.UUID, reason string) error
	Reschedule(ctx context.Context, id uuid.UUID, at time.Time) error
	ResetFailed(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[model.OutboxStatus]int64, error)
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, events ...*model.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(events).Error
}

func (r *outboxRepository) ClaimDue(ctx context.Context, now time.Time, limit, maxAttempts int, lease time.Duration) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("(status IN ? AND available_at <= ? AND attempts < ?) OR (status = ? AND updated_at <= ?)",
				[]model.OutboxStatus{model.OutboxPending, model.OutboxFailed}, now, maxAttempts,
				model.OutboxProcessing, now.Add(-lease)).
			Order("available_at ASC").
			Limit(limit).
			Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(events))
		for i := range events {
			ids = append(ids, events[i].ID)
			events[i].Status = model.OutboxProcessing
		}
		return tx.Model(&model.OutboxEvent{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{"status": model.OutboxProcessing}).Error
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.OutboxPublished,
			"published_at": at,
			"last_error":   "",
		}).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, retryAt time.Time, reason string) error {
	return GetDB(ctx, r.db).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.OutboxFailed,
			"attempts":     attempts,
			"available_at": retryAt,
			"last_error":   reason,
		}).Error
}

func (r *outboxRepository) MarkInvalid(ctx context.Context, id uuid.UUID, reason string) error {
	return GetDB(ctx, r.db).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.OutboxInvalid,
			"last_error": reason,
		}).Error
}

func (r *outboxRepository) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.OutboxPending,
			"available_at": at,
		}).Error
}

// ResetFailed gives exhausted events a fresh set of attempts.
func (r *outboxRepository) ResetFailed(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.OutboxEvent{}).
		Where("status = ?", model.OutboxFailed).
		Updates(map[string]interface{}{
			"status":       model.OutboxPending,
			"attempts":     0,
			"available_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *outboxRepository) CountByStatus(ctx context.Context) (map[model.OutboxStatus]int64, error) {
	var rows []struct {
		Status model.OutboxStatus
		Total  int64
	}
	if err := GetDB(ctx, r.db).Model(&model.OutboxEvent{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
