// Package validation holds request-level checks shared by handlers and
// services.
package validation

import (
	"errors"
	"regexp"
)

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountTooLarge    = errors.New("amount exceeds the per-session maximum")
	ErrInvalidCurrency   = errors.New("unsupported currency")
	ErrInvalidBin        = errors.New("card BIN must be 6 to 8 digits")
)

// MaxSessionAmount bounds a single QR session.
const MaxSessionAmount = 10000.0

var supportedCurrencies = map[string]bool{
	"JOD": true,
	"USD": true,
}

var binPattern = regexp.MustCompile(`^\d{6,8}$`)

// ValidateSessionAmount checks a retailer-requested amount.
func ValidateSessionAmount(amount float64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	if amount > MaxSessionAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// ValidateCurrency checks a currency code, empty meaning the default.
func ValidateCurrency(currency string) error {
	if currency == "" {
		return nil
	}
	if !supportedCurrencies[currency] {
		return ErrInvalidCurrency
	}
	return nil
}

// ValidateBin checks the shape of a card BIN before any lookup.
func ValidateBin(bin string) error {
	if !binPattern.MatchString(bin) {
		return ErrInvalidBin
	}
	return nil
}
