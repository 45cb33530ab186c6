package service

import (
	"context"
	"errors"
	"testing"

	"caisse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayments_PartialThenFull(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	out, err := h.payments.RecordPayment(ctx, ref, "carol", transfer("20000"))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartiallyPaid, out.PaymentStatus)
	assert.Equal(t, model.PayablePartiallyPaid, out.Status)
	assert.True(t, out.Remaining.Equal(dec("30000")))
	assert.Equal(t, 0, out.Payment.Position)

	out, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("30000"))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, out.PaymentStatus)
	assert.Equal(t, model.PayablePaid, out.Status)
	assert.True(t, out.Remaining.IsZero())
	assert.Equal(t, 1, out.Payment.Position)

	_, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("1"))
	assert.ErrorIs(t, err, ErrExceedsRemaining)

	pr, err := h.paymentRequests.Get(ctx, ref)
	require.NoError(t, err)
	assert.Len(t, pr.Payments, 2)
	assert.True(t, pr.AmountPaid.Equal(dec("50000")))
	// transfers never touch the cash box
	assert.True(t, h.balance(t, model.CurrencyXOF).IsZero())
}

func TestPayments_ExceedsRemaining(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.RecordPayment(ctx, ref, "carol", transfer("20000"))
	require.NoError(t, err)

	_, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("30001"))
	require.ErrorIs(t, err, ErrExceedsRemaining)
	var remaining *RemainingError
	require.True(t, errors.As(err, &remaining))
	assert.True(t, remaining.Remaining.Equal(dec("30000")))
}

func TestPayments_CashWithoutFundsLeavesNothingBehind(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.credit(t, model.CurrencyXOF, 5000)
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.RecordPayment(ctx, ref, "carol", cash("20000"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	pr, err := h.paymentRequests.Get(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, pr.Payments)
	assert.True(t, pr.AmountPaid.IsZero())
	assert.Equal(t, model.PayableValidated, pr.Status)
	assert.True(t, h.balance(t, model.CurrencyXOF).Equal(dec("5000")))
}

func TestPayments_CashDebitsLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.credit(t, model.CurrencyXOF, 100000)
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.RecordPayment(ctx, ref, "carol", cash("20000"))
	require.NoError(t, err)
	assert.True(t, h.balance(t, model.CurrencyXOF).Equal(dec("80000")))
}

func TestPayments_EditAdjustsLedgerByCashDifference(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.credit(t, model.CurrencyXOF, 100000)
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.RecordPayment(ctx, ref, "carol", cash("20000"))
	require.NoError(t, err)

	out, err := h.payments.EditPayment(ctx, ref, 0, "carol", cash("15000"))
	require.NoError(t, err)
	assert.True(t, out.AmountPaid.Equal(dec("15000")))
	assert.True(t, out.Remaining.Equal(dec("35000")))
	assert.True(t, h.balance(t, model.CurrencyXOF).Equal(dec("85000")))

	// switching to a transfer hands the remaining cash back
	out, err = h.payments.EditPayment(ctx, ref, 0, "carol", transfer("50000"))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, out.PaymentStatus)
	assert.True(t, h.balance(t, model.CurrencyXOF).Equal(dec("100000")))

	pr, err := h.paymentRequests.Get(ctx, ref)
	require.NoError(t, err)
	require.Len(t, pr.Payments, 1)
	assert.Equal(t, model.ModeTransfer, pr.Payments[0].Mode)

	report, err := h.ledger.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestPayments_EditOverdrawIsRefused(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.credit(t, model.CurrencyXOF, 20000)
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.RecordPayment(ctx, ref, "carol", cash("20000"))
	require.NoError(t, err)
	require.True(t, h.balance(t, model.CurrencyXOF).IsZero())

	_, err = h.payments.EditPayment(ctx, ref, 0, "carol", cash("30000"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	var funds *FundsError
	require.True(t, errors.As(err, &funds))
	assert.True(t, funds.Requested.Equal(dec("10000")))

	assert.True(t, h.balance(t, model.CurrencyXOF).IsZero())
	pr, err := h.paymentRequests.Get(ctx, ref)
	require.NoError(t, err)
	require.Len(t, pr.Payments, 1)
	assert.True(t, pr.Payments[0].Amount.Equal(dec("20000")))
	assert.Equal(t, model.ModeCash, pr.Payments[0].Mode)
	assert.True(t, pr.AmountPaid.Equal(dec("20000")))
	assert.Equal(t, model.PaymentPartiallyPaid, pr.PaymentStatus)

	report, err := h.ledger.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestPayments_RefusedCashIsAnnounced(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.credit(t, model.CurrencyXOF, 5000)
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.RecordPayment(ctx, ref, "carol", cash("20000"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var rows []model.OutboxEvent
	require.NoError(t, h.db.Where("event_type = ?", EventPaymentRefusedFunds).Find(&rows).Error)
	require.Len(t, rows, 2)

	event, err := DecodeEvent(&rows[0])
	require.NoError(t, err)
	assert.Equal(t, ref, event.Reference)
	assert.Equal(t, "carol", event.Actor)
	assert.Equal(t, "alice", event.Data["requested_by"])
	assert.Equal(t, "5000", event.Data["balance"])
	assert.Equal(t, "20000", event.Data["requested"])

	// refusals other than funds are only answered to the caller
	_, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("60000"))
	require.ErrorIs(t, err, ErrExceedsRemaining)
	var count int64
	require.NoError(t, h.db.Model(&model.OutboxEvent{}).Where("event_type = ?", EventPaymentRefusedFunds).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPayments_EditOutOfRange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.validatedPaymentRequest(t, "50000 XOF")
	_, err := h.payments.RecordPayment(ctx, ref, "carol", transfer("1000"))
	require.NoError(t, err)

	_, err = h.payments.EditPayment(ctx, ref, 3, "carol", transfer("1000"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.payments.EditPayment(ctx, ref, -1, "carol", transfer("1000"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayments_IssueBlocksUntilCorrected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ref := h.validatedPaymentRequest(t, "50000 XOF")

	_, err := h.payments.ReportIssue(ctx, ref, "carol", "no payment yet")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("10000"))
	require.NoError(t, err)

	out, err := h.payments.ReportIssue(ctx, ref, "carol", "wrong beneficiary account")
	require.NoError(t, err)
	assert.True(t, out.BlockPayment)

	_, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("10000"))
	assert.ErrorIs(t, err, ErrPaymentBlocked)

	out, err = h.payments.EditPayment(ctx, ref, 0, "carol", transfer("10000"))
	require.NoError(t, err)
	assert.False(t, out.BlockPayment)

	_, err = h.payments.RecordPayment(ctx, ref, "carol", transfer("10000"))
	assert.NoError(t, err)
}

func TestPayments_RequireValidatedPayable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pr, err := h.paymentRequests.Create(ctx, "alice", CreatePaymentRequestDTO{Title: "Fuel", Beneficiary: "Total", Amount: "10000 XOF"})
	require.NoError(t, err)

	_, err = h.payments.RecordPayment(ctx, pr.Reference, "carol", transfer("1000"))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = h.payments.RecordPayment(ctx, "FUND/2025/01/0001", "carol", transfer("1000"))
	assert.ErrorIs(t, err, model.ErrValidation)

	ref := h.validatedPaymentRequest(t, "10000 XOF")
	_, err = h.payments.RecordPayment(ctx, ref, "carol", PaymentDTO{Mode: model.ModeCheque, Amount: "1000"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPayments_AgainstOrderProforma(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	order, err := h.orders.Create(ctx, "alice", CreateOrderDTO{
		Title:  "Laptops",
		Amount: "1000000 XOF",
		Proformas: []ProformaDTO{
			{Supplier: "Ivoire Info", Amount: "950000 XOF"},
			{Supplier: "Abidjan Tech", Amount: "900000 XOF"},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Proformas, 2)

	_, err = h.payments.RecordPayment(ctx, order.Reference, "carol", transfer("1000"))
	assert.ErrorIs(t, err, ErrInvalidState)

	var chosen model.Proforma
	for _, p := range order.Proformas {
		if p.Supplier == "Abidjan Tech" {
			chosen = p
		}
	}
	order, err = h.orders.Validate(ctx, order.Reference, "bob", chosen.ID.String())
	require.NoError(t, err)
	due, err := order.TotalDue()
	require.NoError(t, err)
	assert.True(t, due.Amount.Equal(dec("900000")))

	_, err = h.payments.RecordPayment(ctx, order.Reference, "carol", transfer("950000"))
	assert.ErrorIs(t, err, ErrExceedsRemaining)

	out, err := h.payments.RecordPayment(ctx, order.Reference, "carol", transfer("900000"))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, out.PaymentStatus)
	assert.Equal(t, model.KindOrder, out.Kind)
}
