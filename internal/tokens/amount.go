package tokens

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrAmountOverflow = errors.New("amount does not fit in 64 bits")

// ToBaseUnits converts a display amount into the integer smallest unit for a
// mint with the given number of decimals. Fractions below one base unit are
// truncated.
func ToBaseUnits(display decimal.Decimal, decimals uint8) (uint64, error) {
	scaled := display.Shift(int32(decimals)).Truncate(0)
	if scaled.IsNegative() {
		return 0, errors.New("negative amount")
	}
	if scaled.Cmp(decimal.NewFromUint64(math.MaxUint64)) > 0 {
		return 0, ErrAmountOverflow
	}
	return scaled.BigInt().Uint64(), nil
}

// FromBaseUnits converts an integer base-unit amount back to its display
// representation.
func FromBaseUnits(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(amount).Shift(-int32(decimals))
}

// FormatBaseUnits renders a base-unit amount as a display string trimmed of
// trailing zeros.
func FormatBaseUnits(amount uint64, decimals uint8) string {
	return FromBaseUnits(amount, decimals).String()
}
