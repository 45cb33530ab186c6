package repository

import (
	"context"
	"time"

	"caisse/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerFilter narrows the transaction log.
type LedgerFilter struct {
	Currency         model.Currency
	RelatedRequestID string
	Page             int
	Limit            int
}

type LedgerRepository interface {
	EnsureBalances(ctx context.Context, currencies []model.Currency) error
	FindBalanceForUpdate(ctx context.Context, currency model.Currency) (*model.LedgerBalance, error)
	SaveBalance(ctx context.Context, balance *model.LedgerBalance) error
	ListBalances(ctx context.Context) ([]model.LedgerBalance, error)
	AppendTransaction(ctx context.Context, entry *model.LedgerTransaction) error
	ListTransactions(ctx context.Context, filter LedgerFilter) ([]model.LedgerTransaction, int64, error)
	TransactionsByCurrency(ctx context.Context, currency model.Currency) ([]model.LedgerTransaction, error)
	GetState(ctx context.Context) (*model.LedgerState, error)
	SetLatestSynced(ctx context.Context, reference string, at time.Time) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// EnsureBalances creates missing zero balances and the state row; existing rows are left alone.
func (r *ledgerRepository) EnsureBalances(ctx context.Context, currencies []model.Currency) error {
	db := GetDB(ctx, r.db)
	for _, c := range currencies {
		row := model.LedgerBalance{Currency: c}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	state := model.LedgerState{ID: model.LedgerStateID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error
}

func (r *ledgerRepository) FindBalanceForUpdate(ctx context.Context, currency model.Currency) (*model.LedgerBalance, error) {
	var balance model.LedgerBalance
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&balance, "currency = ?", currency).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *ledgerRepository) SaveBalance(ctx context.Context, balance *model.LedgerBalance) error {
	return GetDB(ctx, r.db).Save(balance).Error
}

func (r *ledgerRepository) ListBalances(ctx context.Context) ([]model.LedgerBalance, error) {
	var balances []model.LedgerBalance
	if err := GetDB(ctx, r.db).Order("currency ASC").Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (r *ledgerRepository) AppendTransaction(ctx context.Context, entry *model.LedgerTransaction) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, filter LedgerFilter) ([]model.LedgerTransaction, int64, error) {
	var entries []model.LedgerTransaction
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Currency != "" {
			db = db.Where("currency = ?", filter.Currency)
		}
		if filter.RelatedRequestID != "" {
			db = db.Where("related_request_id = ?", filter.RelatedRequestID)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.LedgerTransaction{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := RequestFilter{Page: filter.Page, Limit: filter.Limit}
	if err := db.Scopes(scope, page.paginate).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *ledgerRepository) TransactionsByCurrency(ctx context.Context, currency model.Currency) ([]model.LedgerTransaction, error) {
	var entries []model.LedgerTransaction
	if err := GetDB(ctx, r.db).Where("currency = ?", currency).Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) GetState(ctx context.Context) (*model.LedgerState, error) {
	var state model.LedgerState
	if err := GetDB(ctx, r.db).First(&state, "id = ?", model.LedgerStateID).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *ledgerRepository) SetLatestSynced(ctx context.Context, reference string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.LedgerState{}).
		Where("id = ?", model.LedgerStateID).
		Updates(map[string]interface{}{
			"latest_synced_request_id": reference,
			"last_synced_at":           at,
		}).Error
}
