package pricing

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

func legQuote(venue string, flag string, sourceMint, destMint string, amountIn, amountOut uint64) LegQuote {
	return LegQuote{
		Pubkey:               venue,
		AmountIn:             amountIn,
		AmountOut:            amountOut,
		ExchangerFlag:        flag,
		SourceTokenMint:      TokenMintInfo{Pubkey: sourceMint, Decimals: 9},
		DestinationTokenMint: TokenMintInfo{Pubkey: destMint, Decimals: 6},
	}
}

func TestToRouteDirect(t *testing.T) {
	sol := common.WrappedSolMint.String()
	usdc := common.USDCMint.String()
	venue := common.TokenSwapProgramID.String()

	resp := &QuoteResponse{Best: &BestQuote{
		AmountOut:     1_990_000,
		ExchangerFlag: "token_swap_pool",
		Routes: [][]LegQuote{
			{legQuote(venue, "token_swap_pool", sol, usdc, 1_000_000_000, 1_990_000)},
		},
	}}

	route, err := resp.ToRoute(nil)
	require.NoError(t, err)
	assert.True(t, route.Direct())
	assert.Equal(t, uint64(1_000_000_000), route.AmountIn())
	assert.Equal(t, uint64(1_990_000), route.AmountOut())
	assert.Equal(t, common.WrappedSolMint, route.SourceMint())
	assert.Equal(t, common.USDCMint, route.DestinationMint())
	assert.Equal(t, domain.VenuePoolSwap, route.Hops[0].Legs[0].Kind)
}

func TestToRouteIndirectSplit(t *testing.T) {
	sol := common.WrappedSolMint.String()
	usdc := common.USDCMint.String()
	usdt := common.USDTMint.String()
	poolVenue := common.TokenSwapProgramID.String()
	marketVenue := common.SerumDexProgramID.String()
	stableVenue := common.StableSwapProgramID.String()

	resp := &QuoteResponse{Best: &BestQuote{
		AmountOut: 898_000_000,
		Routes: [][]LegQuote{
			{
				legQuote(poolVenue, "token_swap_pool", sol, usdc, 3_000_000_000, 540_000_000),
				legQuote(marketVenue, "serum_dex_market", sol, usdc, 2_000_000_000, 360_000_000),
			},
			{
				legQuote(stableVenue, "saber_stable_swap", usdc, usdt, 900_000_000, 898_000_000),
			},
		},
	}}

	route, err := resp.ToRoute(nil)
	require.NoError(t, err)
	assert.False(t, route.Direct())
	assert.Equal(t, common.USDCMint, route.IntermediateMint())

	// Hop amounts are the leg sums.
	assert.Equal(t, uint64(5_000_000_000), route.Hops[0].AmountIn)
	assert.Equal(t, uint64(900_000_000), route.Hops[0].AmountOut)
	assert.Equal(t, domain.VenueOrderBook, route.Hops[0].Legs[1].Kind)
	assert.Equal(t, domain.VenueStableSwap, route.Hops[1].Legs[0].Kind)
}

func TestToRouteRejectsBrokenChain(t *testing.T) {
	sol := common.WrappedSolMint.String()
	usdc := common.USDCMint.String()
	usdt := common.USDTMint.String()
	venue := common.TokenSwapProgramID.String()

	// Second hop consumes a mint the first hop never produced.
	resp := &QuoteResponse{Best: &BestQuote{
		Routes: [][]LegQuote{
			{legQuote(venue, "token_swap_pool", sol, usdc, 100, 90)},
			{legQuote(venue, "token_swap_pool", sol, usdt, 90, 80)},
		},
	}}

	_, err := resp.ToRoute(nil)
	require.ErrorIs(t, err, domain.ErrBrokenHopChain)
}

func TestToRouteRejectsUnknownFlag(t *testing.T) {
	sol := common.WrappedSolMint.String()
	usdc := common.USDCMint.String()

	resp := &QuoteResponse{Best: &BestQuote{
		Routes: [][]LegQuote{
			{legQuote(common.TokenSwapProgramID.String(), "mystery_dex", sol, usdc, 100, 90)},
		},
	}}

	_, err := resp.ToRoute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_dex")
}

type stubVenueSource struct {
	records []*domain.VenueRecord
	calls   int
}

func (s *stubVenueSource) ForPair(kind domain.VenueKind, mintA, mintB solana.PublicKey) []*domain.VenueRecord {
	s.calls++
	return s.records
}

func TestToRouteFillsVenueFromRegistry(t *testing.T) {
	sol := common.WrappedSolMint.String()
	usdc := common.USDCMint.String()
	venue := solana.NewWallet().PublicKey()

	source := &stubVenueSource{records: []*domain.VenueRecord{{
		Address: venue,
		Kind:    domain.VenuePoolSwap,
		Program: common.TokenSwapProgramID,
	}}}

	// The leg names only the exchanger flag.
	resp := &QuoteResponse{Best: &BestQuote{
		Routes: [][]LegQuote{
			{legQuote("", "token_swap_pool", sol, usdc, 1_000_000_000, 1_990_000)},
		},
	}}

	route, err := resp.ToRoute(source)
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)
	assert.Equal(t, venue, route.Hops[0].Legs[0].Venue)
	assert.Equal(t, common.TokenSwapProgramID, route.Hops[0].Legs[0].Program)
}

func TestToRouteMissingVenue(t *testing.T) {
	sol := common.WrappedSolMint.String()
	usdc := common.USDCMint.String()
	leg := legQuote("", "token_swap_pool", sol, usdc, 100, 90)

	resp := &QuoteResponse{Best: &BestQuote{Routes: [][]LegQuote{{leg}}}}

	// No source at all: hard failure.
	_, err := resp.ToRoute(nil)
	require.Error(t, err)

	// A source that knows no venue for the pair: still a failure.
	_, err = resp.ToRoute(&stubVenueSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_swap_pool")
}

func TestToRouteEmpty(t *testing.T) {
	_, err := (&QuoteResponse{}).ToRoute(nil)
	require.Error(t, err)

	_, err = (&QuoteResponse{Best: &BestQuote{}}).ToRoute(nil)
	require.Error(t, err)
}
