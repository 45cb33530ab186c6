package service

import (
	"errors"
	"fmt"

	"caisse/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Errors returned synchronously by workflow operations; none of them leave a partial mutation behind.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrExceedsRemaining  = errors.New("amount exceeds remaining balance")
	ErrPaymentBlocked    = errors.New("payments are blocked until the reported issue is corrected")
	ErrValidation        = model.ErrValidation
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrConflict          = errors.New("already exists")
)

// TransitionError describes a refused workflow step.
type TransitionError struct {
	Reference string
	Action    string
	Status    string
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s while %q: %v", e.Action, e.Reference, e.Status, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// FundsError reports a ledger movement refused for lack of cash.
type FundsError struct {
	Currency  model.Currency
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("%v: %s balance is %s, %s requested", ErrInsufficientFunds, e.Currency, e.Balance, e.Requested)
}

func (e *FundsError) Unwrap() error { return ErrInsufficientFunds }

// RemainingError reports a payment larger than what is left to pay.
type RemainingError struct {
	Reference string
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *RemainingError) Error() string {
	return fmt.Sprintf("%v: %s has %s left to pay, %s submitted", ErrExceedsRemaining, e.Reference, e.Remaining, e.Requested)
}

func (e *RemainingError) Unwrap() error { return ErrExceedsRemaining }

func notFound(what, reference string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, reference, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %s: %w", what, reference, err)
}

func refused(reference, action, status string, err error) error {
	return &TransitionError{Reference: reference, Action: action, Status: status, Err: err}
}
