package domain

import (
	"github.com/gagliardetto/solana-go"
)

// VenueRecord is one liquidity venue known to the registry: where it lives,
// what kind it is, and the pair it trades.
type VenueRecord struct {
	Address solana.PublicKey
	Kind    VenueKind
	Program solana.PublicKey
	MintA   solana.PublicKey
	MintB   solana.PublicKey
	Active  bool
	// ReserveA and ReserveB are the pool balances as of the last scan, zero
	// for venue kinds that do not expose them. Stale between scans, so they
	// sanity-check quotes rather than price them.
	ReserveA     uint64
	ReserveB     uint64
	LastSeenSlot uint64
}

// TradesPair reports whether the venue trades the given pair in either
// direction.
func (v *VenueRecord) TradesPair(mintA, mintB solana.PublicKey) bool {
	return (v.MintA.Equals(mintA) && v.MintB.Equals(mintB)) ||
		(v.MintA.Equals(mintB) && v.MintB.Equals(mintA))
}
