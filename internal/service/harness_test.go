package service

import (
	"context"
	"testing"

	"caisse/internal/model"
	"caisse/internal/repository"
	"caisse/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	db              *gorm.DB
	outbox          repository.OutboxRepository
	ledgerRepo      repository.LedgerRepository
	fundingRepo     repository.FundingRepository
	prRepo          repository.PaymentRequestRepository
	orderRepo       repository.OrderRepository
	ledger          LedgerService
	funding         FundingService
	paymentRequests PaymentRequestService
	orders          OrderService
	payments        PaymentService
	history         HistoryService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop()

	h := &harness{
		db:          db,
		outbox:      repository.NewOutboxRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
		fundingRepo: repository.NewFundingRepository(db),
		prRepo:      repository.NewPaymentRequestRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
	}
	tx := repository.NewTransactionManager(db)
	sequences := repository.NewSequenceRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	events := NewOutboxPublisher(h.outbox, nil)

	h.ledger = NewLedgerService(tx, h.ledgerRepo, events, log)
	require.NoError(t, h.ledger.Init(context.Background()))
	h.history = NewHistoryService(historyRepo)
	h.funding = NewFundingService(tx, h.fundingRepo, sequences, historyRepo, h.ledger, events, log)
	h.paymentRequests = NewPaymentRequestService(tx, h.prRepo, sequences, historyRepo, events, log)
	h.orders = NewOrderService(tx, h.orderRepo, sequences, historyRepo, events, log)
	h.payments = NewPaymentService(tx, repository.NewPaymentRepository(db), h.prRepo, h.orderRepo, historyRepo, h.ledger, events, log)
	return h
}

func (h *harness) balance(t *testing.T, c model.Currency) decimal.Decimal {
	t.Helper()
	b, err := h.ledger.Balance(context.Background(), c)
	require.NoError(t, err)
	return b
}

func (h *harness) credit(t *testing.T, c model.Currency, amount int64) {
	t.Helper()
	_, err := h.ledger.Credit(context.Background(), LedgerMovement{
		Currency: c, Amount: decimal.NewFromInt(amount), RelatedRequestID: "FUND/2025/01/0099", Actor: "seed",
	})
	require.NoError(t, err)
}

// validatedPaymentRequest creates and validates a payment request for amount.
func (h *harness) validatedPaymentRequest(t *testing.T, amount string) string {
	t.Helper()
	ctx := context.Background()
	pr, err := h.paymentRequests.Create(ctx, "alice", CreatePaymentRequestDTO{
		Title: "Office rent", Beneficiary: "SCI Plateau", Amount: amount,
	})
	require.NoError(t, err)
	_, err = h.paymentRequests.Validate(ctx, pr.Reference, "bob")
	require.NoError(t, err)
	return pr.Reference
}

func transfer(amount string) PaymentDTO {
	return PaymentDTO{
		Mode:        model.ModeTransfer,
		Amount:      amount,
		Proofs:      []string{"receipt.pdf"},
		ModeDetails: map[string]string{"bank": "BOA", "account": "CI001"},
	}
}

func cash(amount string) PaymentDTO {
	return PaymentDTO{Mode: model.ModeCash, Amount: amount}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
