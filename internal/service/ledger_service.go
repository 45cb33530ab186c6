package service

import (
	"context"
	"errors"
	"fmt"

	"caisse/internal/model"
	"caisse/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerMovement describes one change to a currency balance.
type LedgerMovement struct {
	Currency         model.Currency
	Amount           decimal.Decimal
	RelatedRequestID string
	Details          string
	Actor            string
}

type CurrencyCheck struct {
	Currency   model.Currency  `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Computed   decimal.Decimal `json:"computed"`
	Entries    int             `json:"entries"`
	Consistent bool            `json:"consistent"`
}

// VerifyReport compares each stored balance with the sum of its transaction log.
type VerifyReport struct {
	Consistent bool            `json:"consistent"`
	Currencies []CurrencyCheck `json:"currencies"`
}

type LedgerService interface {
	// Init creates the per-currency balances if they do not exist yet.
	Init(ctx context.Context) error
	Credit(ctx context.Context, m LedgerMovement) (*model.LedgerTransaction, error)
	Debit(ctx context.Context, m LedgerMovement) (*model.LedgerTransaction, error)
	// Adjust applies a signed delta; a zero delta records nothing.
	Adjust(ctx context.Context, m LedgerMovement) (*model.LedgerTransaction, error)
	Balances(ctx context.Context) ([]model.LedgerBalance, error)
	Balance(ctx context.Context, currency model.Currency) (decimal.Decimal, error)
	Transactions(ctx context.Context, filter repository.LedgerFilter) ([]model.LedgerTransaction, int64, error)
	Verify(ctx context.Context) (VerifyReport, error)
}

type ledgerService struct {
	txManager repository.TransactionManager
	repo      repository.LedgerRepository
	events    EventPublisher
	logger    *zap.Logger
}

func NewLedgerService(txManager repository.TransactionManager, repo repository.LedgerRepository, events EventPublisher, logger *zap.Logger) LedgerService {
	return &ledgerService{txManager: txManager, repo: repo, events: events, logger: logger}
}

func (s *ledgerService) Init(ctx context.Context) error {
	if err := s.repo.EnsureBalances(ctx, model.SupportedCurrencies); err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	return nil
}

func (s *ledgerService) Credit(ctx context.Context, m LedgerMovement) (*model.LedgerTransaction, error) {
	if !m.Amount.IsPositive() {
		return nil, model.Invalid("amount", "credit must be positive")
	}
	return s.apply(ctx, model.LedgerCredit, m, m.Amount)
}

func (s *ledgerService) Debit(ctx context.Context, m LedgerMovement) (*model.LedgerTransaction, error) {
	if !m.Amount.IsPositive() {
		return nil, model.Invalid("amount", "debit must be positive")
	}
	return s.apply(ctx, model.LedgerDebit, m, m.Amount.Neg())
}

func (s *ledgerService) Adjust(ctx context.Context, m LedgerMovement) (*model.LedgerTransaction, error) {
	if m.Amount.IsZero() {
		return nil, nil
	}
	return s.apply(ctx, model.LedgerAdjustment, m, m.Amount)
}

// apply locks the currency row, refuses a negative projection, then writes balance and log entry together.
func (s *ledgerService) apply(ctx context.Context, kind model.LedgerEntryType, m LedgerMovement, delta decimal.Decimal) (*model.LedgerTransaction, error) {
	if !m.Currency.Valid() {
		return nil, &model.ValidationError{Field: "currency", Err: fmt.Errorf("%w: %q", model.ErrUnsupportedCurrency, m.Currency)}
	}

	var entry *model.LedgerTransaction
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		balance, err := s.repo.FindBalanceForUpdate(txCtx, m.Currency)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ledger balance %s: %w", m.Currency, ErrNotFound)
			}
			return fmt.Errorf("failed to lock ledger balance: %w", err)
		}

		projected := balance.Balance.Add(delta)
		if projected.IsNegative() {
			return &FundsError{Currency: m.Currency, Balance: balance.Balance, Requested: delta.Neg()}
		}

		balance.Balance = projected
		if err := s.repo.SaveBalance(txCtx, balance); err != nil {
			return fmt.Errorf("failed to update ledger balance: %w", err)
		}

		entry = &model.LedgerTransaction{
			Type:             kind,
			Amount:           delta,
			Currency:         m.Currency,
			BalanceAfter:     projected,
			RelatedRequestID: m.RelatedRequestID,
			Details:          m.Details,
			Actor:            m.Actor,
		}
		if err := s.repo.AppendTransaction(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append ledger transaction: %w", err)
		}

		return s.events.Publish(txCtx, DomainEvent{
			Type:      ledgerEventType(kind),
			Aggregate: model.AggregateLedger,
			Reference: m.RelatedRequestID,
			Actor:     m.Actor,
			Data: map[string]interface{}{
				"currency":      m.Currency,
				"amount":        delta.String(),
				"balance_after": projected.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if !repository.InTx(ctx) {
		s.events.Flush()
	}
	s.logger.Info("ledger movement",
		zap.String("type", string(kind)),
		zap.String("currency", string(m.Currency)),
		zap.String("amount", delta.String()),
		zap.String("request_id", m.RelatedRequestID),
	)
	return entry, nil
}

func ledgerEventType(kind model.LedgerEntryType) string {
	switch kind {
	case model.LedgerCredit:
		return EventLedgerCredited
	case model.LedgerDebit:
		return EventLedgerDebited
	default:
		return EventLedgerAdjusted
	}
}

func (s *ledgerService) Balances(ctx context.Context) ([]model.LedgerBalance, error) {
	balances, err := s.repo.ListBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger balances: %w", err)
	}
	return balances, nil
}

func (s *ledgerService) Balance(ctx context.Context, currency model.Currency) (decimal.Decimal, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, b := range balances {
		if b.Currency == currency {
			return b.Balance, nil
		}
	}
	return decimal.Zero, fmt.Errorf("ledger balance %s: %w", currency, ErrNotFound)
}

func (s *ledgerService) Transactions(ctx context.Context, filter repository.LedgerFilter) ([]model.LedgerTransaction, int64, error) {
	if filter.Currency != "" && !filter.Currency.Valid() {
		return nil, 0, &model.ValidationError{Field: "currency", Err: fmt.Errorf("%w: %q", model.ErrUnsupportedCurrency, filter.Currency)}
	}
	entries, total, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	return entries, total, nil
}

func (s *ledgerService) Verify(ctx context.Context) (VerifyReport, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Consistent: true}
	for _, b := range balances {
		entries, err := s.repo.TransactionsByCurrency(ctx, b.Currency)
		if err != nil {
			return VerifyReport{}, fmt.Errorf("failed to load %s transactions: %w", b.Currency, err)
		}

		sum := decimal.Zero
		for _, e := range entries {
			sum = sum.Add(e.Amount)
		}

		check := CurrencyCheck{
			Currency:   b.Currency,
			Balance:    b.Balance,
			Computed:   sum,
			Entries:    len(entries),
			Consistent: sum.Equal(b.Balance),
		}
		if !check.Consistent {
			report.Consistent = false
			s.logger.Warn("ledger balance does not match its transactions",
				zap.String("currency", string(b.Currency)),
				zap.String("balance", b.Balance.String()),
				zap.String("computed", sum.String()),
			)
		}
		report.Currencies = append(report.Currencies, check)
	}
	return report, nil
}
