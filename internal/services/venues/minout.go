package venues

import (
	"math/big"
)

const bpsDenominator = 10_000

// MinimumAmountOut applies a slippage tolerance in basis points to a quoted
// output. Intermediate math runs in big.Int so amount*(10000-bps) cannot
// overflow 64 bits.
func MinimumAmountOut(quoted uint64, slippageBps uint16) uint64 {
	if slippageBps >= bpsDenominator {
		return 0
	}
	amount := new(big.Int).SetUint64(quoted)
	amount.Mul(amount, big.NewInt(int64(bpsDenominator-slippageBps)))
	amount.Div(amount, big.NewInt(bpsDenominator))
	return amount.Uint64()
}
