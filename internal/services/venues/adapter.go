package venues

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

var (
	ErrVenueAccountEmpty = errors.New("venue account holds no data")
	ErrMintNotInVenue    = errors.New("venue does not trade the requested mint pair")
	ErrMissingOpenOrders = errors.New("order book leg requires an open orders account")
)

// venueReader is the slice of the RPC surface adapters need to load venue
// state.
type venueReader interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Descriptor is the decoded on-chain state of one venue, enough to emit the
// venue-specific tail of a swap instruction.
type Descriptor interface {
	Venue() solana.PublicKey
	Kind() domain.VenueKind
	// Metas returns the venue accounts appended after the common accounts,
	// oriented so the swap consumes sourceMint and produces destinationMint.
	Metas(sourceMint, destinationMint solana.PublicKey, p BuildParams) ([]*solana.AccountMeta, error)
}

// BuildParams names the per-user accounts a leg instruction touches.
type BuildParams struct {
	User               solana.PublicKey
	SourceAccount      solana.PublicKey
	DestinationAccount solana.PublicKey
	SourceMint         solana.PublicKey
	DestinationMint    solana.PublicKey
	// OpenOrders is required for order book venues, ignored elsewhere.
	OpenOrders solana.PublicKey
	FeeAccount solana.PublicKey
	AmountIn   uint64
	// MinimumAmountOut is zero for swap-in legs; the second hop enforces the
	// route-level bound.
	MinimumAmountOut uint64
}

// Adapter turns one kind of venue into swap instructions. BuildDirect covers
// single-hop routes; BuildSwapIn and BuildSwapOut cover the two stages of an
// indirect route, where the intermediate amount is carried by the aggregator
// program state between transactions.
type Adapter interface {
	Kind() domain.VenueKind
	Load(ctx context.Context, venue solana.PublicKey) (Descriptor, error)
	BuildDirect(desc Descriptor, p BuildParams) (solana.Instruction, error)
	BuildSwapIn(desc Descriptor, p BuildParams) (solana.Instruction, error)
	BuildSwapOut(desc Descriptor, p BuildParams) (solana.Instruction, error)
}
