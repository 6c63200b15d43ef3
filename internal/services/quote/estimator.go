package quote

import (
	"errors"

	"github.com/holiman/uint256"
)

const bpsDenominator = 10_000

// DefaultPoolFeeBps is the constant-product trade fee assumed when a venue
// does not advertise its own.
const DefaultPoolFeeBps = 30

var ErrEmptyReserves = errors.New("pool has empty reserves")

// EstimateConstantProduct computes the expected output of a constant-product
// pool for a given input, after the pool fee. Used to sanity check quotes
// coming back from the pricing service before they are executed.
//
// out = (in * (10000 - feeBps) * reserveOut) / (reserveIn * 10000 + in * (10000 - feeBps))
func EstimateConstantProduct(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrEmptyReserves
	}
	if amountIn == 0 || feeBps >= bpsDenominator {
		return 0, nil
	}

	inWithFee := new(uint256.Int).Mul(
		uint256.NewInt(amountIn),
		uint256.NewInt(uint64(bpsDenominator-feeBps)),
	)

	numerator := new(uint256.Int).Mul(inWithFee, uint256.NewInt(reserveOut))

	denominator := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(bpsDenominator))
	denominator.Add(denominator, inWithFee)

	out := new(uint256.Int).Div(numerator, denominator)
	return out.Uint64(), nil
}

// PriceImpactBps reports how far an executed quote deviates from the spot
// price implied by the reserves, in basis points. Zero when the quote is at
// or better than spot.
func PriceImpactBps(amountIn, amountOut, reserveIn, reserveOut uint64) uint64 {
	if reserveIn == 0 || reserveOut == 0 || amountIn == 0 {
		return 0
	}

	// spotOut = amountIn * reserveOut / reserveIn
	spotOut := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(reserveOut))
	spotOut.Div(spotOut, uint256.NewInt(reserveIn))

	actual := uint256.NewInt(amountOut)
	if actual.Cmp(spotOut) >= 0 || spotOut.IsZero() {
		return 0
	}

	diff := new(uint256.Int).Sub(spotOut, actual)
	diff.Mul(diff, uint256.NewInt(bpsDenominator))
	diff.Div(diff, spotOut)
	return diff.Uint64()
}
