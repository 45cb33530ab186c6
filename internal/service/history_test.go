package service

import (
	"context"
	"testing"

	"caisse/internal/model"
	"caisse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendHistory_EncodesDetails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := repository.NewHistoryRepository(h.db)

	require.NoError(t, appendHistory(ctx, repo, model.KindOrder, "CMD/2025/02/0001", model.StageCreated, "alice",
		map[string]interface{}{"amount": "1000"}))

	entries, err := h.history.ForRequest(ctx, "CMD/2025/02/0001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `{"amount":"1000"}`, entries[0].Details)
}

func TestAppendHistory_RejectsUnencodableDetails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := repository.NewHistoryRepository(h.db)

	err := appendHistory(ctx, repo, model.KindOrder, "CMD/2025/02/0002", model.StageCreated, "alice",
		map[string]interface{}{"callback": func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CMD/2025/02/0002")

	entries, err := h.history.ForRequest(ctx, "CMD/2025/02/0002")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
