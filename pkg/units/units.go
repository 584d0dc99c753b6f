// Package units converts between display amounts (SOL) and base units (lamports).
package units

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of decimal places between SOL and lamports.
	Decimals = 9
	// LamportsPerSOL is 10^Decimals.
	LamportsPerSOL uint64 = 1_000_000_000
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

var (
	ErrInvalidAmount  = errors.New("amount is not a number")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrAmountOverflow = errors.New("amount exceeds the lamport range")
)

// ToDisplay converts lamports to SOL.
func ToDisplay(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-Decimals)
}

// ToBase converts a SOL amount to lamports. Digits below one lamport are
// truncated.
func ToBase(amount decimal.Decimal) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	lamports := amount.Shift(Decimals).Truncate(0).BigInt()
	if !lamports.IsUint64() {
		return 0, fmt.Errorf("%w: %s SOL", ErrAmountOverflow, amount.String())
	}
	return lamports.Uint64(), nil
}

// Format renders a SOL amount for display, e.g. "2.5 SOL".
func Format(amount decimal.Decimal) string {
	return amount.String() + " SOL"
}

// ParseLeading reads the number at the start of text, ignoring leading
// whitespace and anything after the number, so "1.5 SOL" parses as 1.5.
func ParseLeading(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	m := leadingNumber.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	num := strings.TrimSuffix(m[1], ".")
	if strings.HasPrefix(m[0], "-") {
		num = "-" + num
	}
	return decimal.NewFromString(num + m[2])
}
