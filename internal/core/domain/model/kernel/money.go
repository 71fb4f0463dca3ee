package kernel

import (
	"errors"
	"fmt"
	"unicode"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	// CurrencyLength is the required length of an ISO 4217 currency code.
	CurrencyLength = 3

	// DefaultCurrency is the currency assumed when an order carries no explicit one.
	DefaultCurrency = "EUR"
)

// ErrMoneyIsNotConstructed is returned when attempting to use an improperly initialized Money.
// Money values must be created using the NewMoney constructor to ensure validity.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError(
	"money must be created via NewMoney constructor")

// Money represents a monetary amount in minor units (cents) with its currency code.
// Money is an immutable value object; arithmetic is performed in integer minor units
// to avoid floating-point rounding in order totals.
// The zero value of Money is invalid and will fail validation - use the constructor.
//
// Example:
//
//	total, err := kernel.NewMoney(12999, "EUR")
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(total) // Output: 129.99 EUR
type Money struct { //nolint:recvcheck //using for validation
	amount   int64
	currency string
	guard    guard.ConstructorGuard
}

// NewMoney creates a new Money value with the given amount in minor units and currency.
// The amount must not be negative and the currency must be a three-letter
// uppercase ISO 4217 code.
//
// Parameters:
//   - amount: The monetary amount in minor units (e.g. cents)
//   - currency: The ISO 4217 currency code (e.g. "EUR", "USD")
//
// Returns:
//   - Money: A valid money instance
//   - error: Validation error if the amount or currency is invalid
func NewMoney(amount int64, currency string) (Money, error) {
	m := Money{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(m.setAmount(amount), m.setCurrency(currency)); err != nil {
		return Money{}, err
	}

	return m, nil
}

// Validate ensures the Money value was created via its constructor and holds
// a valid amount and currency.
func (m Money) Validate() error {
	if err := m.guard.Validate(ErrMoneyIsNotConstructed); err != nil {
		return err
	}

	return errors.Join(
		validateAmount(m.amount),
		validateCurrency(m.currency),
	)
}

// Amount returns the monetary amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two Money values.
// Both values must share the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := errors.Join(m.Validate(), other.Validate()); err != nil {
		return Money{}, err
	}

	if m.currency != other.currency {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"currency",
			fmt.Errorf("cannot add %s to %s", other.currency, m.currency),
		)
	}

	return NewMoney(m.amount+other.amount, m.currency)
}

// IsEqual compares two Money values by amount and currency.
func (m Money) IsEqual(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// String returns the human-readable representation, e.g. "129.99 EUR".
// This method implements the fmt.Stringer interface.
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.amount/100, m.amount%100, m.currency)
}

func (m *Money) setAmount(amount int64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	m.amount = amount
	return nil
}

func (m *Money) setCurrency(currency string) error {
	if err := validateCurrency(currency); err != nil {
		return err
	}
	m.currency = currency
	return nil
}

func validateAmount(amount int64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"amount",
			fmt.Errorf("%d is negative", amount),
		)
	}
	return nil
}

func validateCurrency(currency string) error {
	if len(currency) != CurrencyLength {
		return errs.NewValueIsInvalidErrorWithCause(
			"currency",
			fmt.Errorf("%q is not a three-letter currency code", currency),
		)
	}
	for _, r := range currency {
		if !unicode.IsUpper(r) {
			return errs.NewValueIsInvalidErrorWithCause(
				"currency",
				fmt.Errorf("%q is not an uppercase currency code", currency),
			)
		}
	}
	return nil
}
