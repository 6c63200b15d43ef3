package tokens

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		display  string
		decimals uint8
		expected uint64
	}{
		{name: "one sol", display: "1", decimals: 9, expected: 1_000_000_000},
		{name: "half usdc", display: "0.5", decimals: 6, expected: 500_000},
		{name: "sub unit truncates", display: "0.0000000001", decimals: 9, expected: 0},
		{name: "zero decimals", display: "42", decimals: 0, expected: 42},
		{name: "mixed", display: "12.345678912", decimals: 9, expected: 12_345_678_912},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.display), tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToBaseUnitsRejectsBadAmounts(t *testing.T) {
	_, err := ToBaseUnits(decimal.RequireFromString("-1"), 9)
	require.Error(t, err)

	_, err = ToBaseUnits(decimal.RequireFromString("20000000000"), 9)
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestFromBaseUnitsRoundTrip(t *testing.T) {
	assert.Equal(t, "1", FormatBaseUnits(1_000_000_000, 9))
	assert.Equal(t, "0.5", FormatBaseUnits(500_000, 6))
	assert.Equal(t, "0.000001", FormatBaseUnits(1, 6))
	assert.Equal(t, "42", FormatBaseUnits(42, 0))

	for _, amount := range []uint64{0, 1, 999, 1_000_000_000, 5_000_000_123} {
		back, err := ToBaseUnits(FromBaseUnits(amount, 9), 9)
		require.NoError(t, err)
		assert.Equal(t, amount, back)
	}
}
