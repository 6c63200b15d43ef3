package domain

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// VenueKind is the closed set of liquidity-venue kinds the engine can build
// swap instructions for. Adding a kind means adding an adapter, not touching
// the executor.
type VenueKind uint8

const (
	VenuePoolSwap VenueKind = iota
	VenueOrderBook
	VenueStableSwap
	VenueConstantFunctionAMM
)

func (k VenueKind) String() string {
	switch k {
	case VenuePoolSwap:
		return "pool-swap"
	case VenueOrderBook:
		return "serum-dex"
	case VenueStableSwap:
		return "stable-swap"
	case VenueConstantFunctionAMM:
		return "amm"
	default:
		return "unknown"
	}
}

// ParseVenueKind maps a pricing-service exchanger flag to a venue kind.
func ParseVenueKind(flag string) (VenueKind, error) {
	switch flag {
	case "token_swap_pool", "pool-swap":
		return VenuePoolSwap, nil
	case "serum_dex_market", "serum-dex":
		return VenueOrderBook, nil
	case "saber_stable_swap", "stable-swap":
		return VenueStableSwap, nil
	case "raydium_amm", "amm":
		return VenueConstantFunctionAMM, nil
	default:
		return 0, fmt.Errorf("unknown exchanger flag %q", flag)
	}
}

// Leg is a fill of part of a hop's volume at one specific venue. Immutable
// once quoted; amounts are integers in the smallest unit.
type Leg struct {
	Kind            VenueKind
	Venue           solana.PublicKey
	Program         solana.PublicKey
	SourceMint      solana.PublicKey
	DestinationMint solana.PublicKey
	AmountIn        uint64
	AmountOut       uint64
}

// Hop is one stage of a route: parallel legs consuming one asset and
// producing another, splitting the hop's declared input across venues.
type Hop struct {
	AmountIn  uint64
	AmountOut uint64
	Legs      []Leg
}

func (h *Hop) SourceMint() solana.PublicKey {
	if len(h.Legs) == 0 {
		return solana.PublicKey{}
	}
	return h.Legs[0].SourceMint
}

func (h *Hop) DestinationMint() solana.PublicKey {
	if len(h.Legs) == 0 {
		return solana.PublicKey{}
	}
	return h.Legs[0].DestinationMint
}

// Route is the full plan to convert the source asset into the destination,
// directly or via one intermediate asset.
type Route struct {
	Hops []Hop
}

var (
	ErrEmptyRoute     = errors.New("route has no hops")
	ErrTooManyHops    = errors.New("route has more than two hops")
	ErrLegAmountSum   = errors.New("leg input amounts do not sum to the hop input")
	ErrBrokenHopChain = errors.New("hop output mint does not match the next hop input mint")
	ErrMixedLegSource = errors.New("legs within a hop disagree on the source mint")
	ErrMixedLegDest   = errors.New("legs within a hop disagree on the destination mint")
)

func (r *Route) Direct() bool { return len(r.Hops) == 1 }

func (r *Route) SourceMint() solana.PublicKey { return r.Hops[0].SourceMint() }

func (r *Route) DestinationMint() solana.PublicKey {
	return r.Hops[len(r.Hops)-1].DestinationMint()
}

// IntermediateMint returns the shared asset between the two hops of an
// indirect route. Zero for direct routes.
func (r *Route) IntermediateMint() solana.PublicKey {
	if len(r.Hops) != 2 {
		return solana.PublicKey{}
	}
	return r.Hops[0].DestinationMint()
}

func (r *Route) AmountIn() uint64  { return r.Hops[0].AmountIn }
func (r *Route) AmountOut() uint64 { return r.Hops[len(r.Hops)-1].AmountOut }

// Validate checks the route invariants before any instruction is built:
// leg inputs sum to the hop input, legs agree on mints, and a two-hop route
// chains through exactly one intermediate asset.
func (r *Route) Validate() error {
	if len(r.Hops) == 0 {
		return ErrEmptyRoute
	}
	if len(r.Hops) > 2 {
		return ErrTooManyHops
	}
	for i := range r.Hops {
		h := &r.Hops[i]
		var sum uint64
		for _, leg := range h.Legs {
			sum += leg.AmountIn
			if !leg.SourceMint.Equals(h.SourceMint()) {
				return ErrMixedLegSource
			}
			if !leg.DestinationMint.Equals(h.DestinationMint()) {
				return ErrMixedLegDest
			}
		}
		if sum != h.AmountIn {
			return fmt.Errorf("hop %d: %w (declared %d, legs %d)", i, ErrLegAmountSum, h.AmountIn, sum)
		}
	}
	if len(r.Hops) == 2 && !r.Hops[0].DestinationMint().Equals(r.Hops[1].SourceMint()) {
		return ErrBrokenHopChain
	}
	return nil
}
