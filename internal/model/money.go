package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO code accepted by the cash ledger.
type Currency string

const (
	CurrencyXOF Currency = "XOF"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// SupportedCurrencies lists every currency the ledger keeps a balance for.
var SupportedCurrencies = []Currency{CurrencyXOF, CurrencyUSD, CurrencyEUR}

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// ValidationError carries the offending field alongside the sentinel it wraps.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError that matches ErrValidation.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{
		Field: field,
		Err:   fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...)),
	}
}

func (c Currency) Valid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// ParseCurrency normalizes and checks a currency code.
func ParseCurrency(raw string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", &ValidationError{Field: "currency", Err: fmt.Errorf("%w: %q", ErrUnsupportedCurrency, raw)}
	}
	return c, nil
}

// Money is a positive decimal amount in one currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, &ValidationError{Field: "currency", Err: fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)}
	}
	if !amount.IsPositive() {
		return Money{}, Invalid("amount", "must be greater than zero, got %s", amount)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// ParseMoney reads the "<number> <CCY>" form used by intake forms.
// Thousands may be separated by spaces and a comma is accepted as the decimal mark.
func ParseMoney(text string) (Money, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Money{}, Invalid("amount", "expected \"<number> <currency>\", got %q", text)
	}

	currency, err := ParseCurrency(fields[len(fields)-1])
	if err != nil {
		return Money{}, err
	}

	number := strings.Join(fields[:len(fields)-1], "")
	number = strings.ReplaceAll(number, ",", ".")
	amount, err := decimal.NewFromString(number)
	if err != nil {
		return Money{}, Invalid("amount", "%q is not a number", number)
	}

	return NewMoney(amount, currency)
}

func (m Money) String() string {
	return m.Amount.String() + " " + string(m.Currency)
}
