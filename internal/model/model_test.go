package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_RoundTrip(t *testing.T) {
	id, err := ParseRequestID("FUND/2025/03/0007")
	require.NoError(t, err)

	assert.Equal(t, KindFunding, id.Kind)
	assert.Equal(t, 2025, id.Year)
	assert.Equal(t, 3, id.Month)
	assert.Equal(t, 7, id.Seq)
	assert.Equal(t, "FUND/2025/03/0007", id.String())
	assert.Equal(t, "2025-03", id.Period())
}

func TestNewRequestID_Format(t *testing.T) {
	at := time.Date(2024, time.November, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "CMD/2024/11/0042", NewRequestID(KindOrder, at, 42).String())
	assert.Equal(t, "PAY/2024/11/0001", NewRequestID(KindPaymentRequest, at, 1).String())
	assert.Equal(t, "FUND/2024/11/12345", NewRequestID(KindFunding, at, 12345).String())
}

func TestParseRequestID_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "unknown prefix", raw: "INV/2025/03/0001"},
		{name: "missing part", raw: "PAY/2025/0001"},
		{name: "bad month", raw: "PAY/2025/13/0001"},
		{name: "short year", raw: "PAY/25/03/0001"},
		{name: "zero sequence", raw: "PAY/2025/03/0000"},
		{name: "non numeric", raw: "PAY/2025/03/abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequestID(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   string
		currency Currency
		wantErr  bool
	}{
		{name: "plain", text: "15000 XOF", amount: "15000", currency: CurrencyXOF},
		{name: "grouped thousands", text: "1 500 000 XOF", amount: "1500000", currency: CurrencyXOF},
		{name: "comma decimal", text: "12,50 EUR", amount: "12.5", currency: CurrencyEUR},
		{name: "lower case code", text: "99.99 usd", amount: "99.99", currency: CurrencyUSD},
		{name: "unsupported currency", text: "100 GBP", wantErr: true},
		{name: "missing currency", text: "100", wantErr: true},
		{name: "not a number", text: "abc XOF", wantErr: true},
		{name: "zero", text: "0 XOF", wantErr: true},
		{name: "negative", text: "-5 XOF", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMoney(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation) || errors.Is(err, ErrUnsupportedCurrency))
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(m.Amount), "got %s", m.Amount)
			assert.Equal(t, tt.currency, m.Currency)
		})
	}
}

func TestPayment_Validate(t *testing.T) {
	amount := decimal.NewFromInt(1000)

	tests := []struct {
		name    string
		payment Payment
		wantErr bool
	}{
		{
			name:    "cash without proof",
			payment: Payment{Mode: ModeCash, Amount: amount},
		},
		{
			name: "transfer with proof and details",
			payment: Payment{
				Mode: ModeTransfer, Amount: amount, Proofs: []string{"receipt.pdf"},
				ModeDetails: map[string]string{"bank": "BOA", "account": "001"},
			},
		},
		{
			name:    "cheque without proof",
			payment: Payment{Mode: ModeCheque, Amount: amount, ModeDetails: map[string]string{"cheque_number": "1", "bank": "SGB"}},
			wantErr: true,
		},
		{
			name:    "mobile money missing phone",
			payment: Payment{Mode: ModeMobileMoney, Amount: amount, Proofs: []string{"sms.png"}, ModeDetails: map[string]string{"operator": "Orange"}},
			wantErr: true,
		},
		{
			name:    "zero amount",
			payment: Payment{Mode: ModeCash, Amount: decimal.Zero},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			payment: Payment{Mode: "barter", Amount: amount},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payment.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	due := decimal.NewFromInt(50000)

	assert.Equal(t, PaymentPending, DerivePaymentStatus(decimal.Zero, due))
	assert.Equal(t, PaymentPartiallyPaid, DerivePaymentStatus(decimal.NewFromInt(20000), due))
	assert.Equal(t, PaymentPaid, DerivePaymentStatus(due, due))

	assert.Equal(t, PayableValidated, WorkflowStatusFor(PaymentPending))
	assert.Equal(t, PayablePartiallyPaid, WorkflowStatusFor(PaymentPartiallyPaid))
	assert.Equal(t, PayablePaid, WorkflowStatusFor(PaymentPaid))
}

func TestOrder_TotalDue(t *testing.T) {
	order := &Order{}
	_, err := order.TotalDue()
	assert.ErrorIs(t, err, ErrNoValidatedProforma)

	p1 := Proforma{Supplier: "A", Amount: decimal.NewFromInt(100), Currency: CurrencyXOF}
	p2 := Proforma{Supplier: "B", Amount: decimal.NewFromInt(80), Currency: CurrencyXOF}
	require.NoError(t, p1.BeforeCreate(nil))
	require.NoError(t, p2.BeforeCreate(nil))
	order.Proformas = []Proforma{p1, p2}
	order.ValidatedProformaID = &p2.ID

	due, err := order.TotalDue()
	require.NoError(t, err)
	assert.True(t, due.Amount.Equal(decimal.NewFromInt(80)))
}

func TestFundingStatus_Rank(t *testing.T) {
	assert.Less(t, FundingPending.Rank(), FundingPreApproved.Rank())
	assert.Less(t, FundingPreApproved.Rank(), FundingDetailsSubmitted.Rank())
	assert.Less(t, FundingDetailsSubmitted.Rank(), FundingApproved.Rank())
	assert.True(t, FundingRejected.IsTerminal())
	assert.False(t, FundingDetailsSubmitted.IsTerminal())
	assert.Equal(t, -1, FundingStatus("bogus").Rank())
}
