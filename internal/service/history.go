package service

import (
	"context"
	"encoding/json"
	"fmt"

	"caisse/internal/model"
	"caisse/internal/repository"
)

type HistoryService interface {
	ForRequest(ctx context.Context, reference string) ([]model.WorkflowHistory, error)
	List(ctx context.Context, page, limit int) ([]model.WorkflowHistory, int64, error)
}

type historyService struct {
	repo repository.HistoryRepository
}

func NewHistoryService(repo repository.HistoryRepository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) ForRequest(ctx context.Context, reference string) ([]model.WorkflowHistory, error) {
	entries, err := s.repo.ListByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load history of %s: %w", reference, err)
	}
	return entries, nil
}

func (s *historyService) List(ctx context.Context, page, limit int) ([]model.WorkflowHistory, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

// appendHistory writes one trail entry in the caller's transaction.
func appendHistory(ctx context.Context, repo repository.HistoryRepository, kind model.RequestKind, reference, stage, actor string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode %s history for %s: %w", stage, reference, err)
	}
	entry := &model.WorkflowHistory{
		RequestReference: reference,
		Kind:             kind,
		Stage:            stage,
		Actor:            actor,
		Details:          string(payload),
	}
	if err := repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to write workflow history: %w", err)
	}
	return nil
}
