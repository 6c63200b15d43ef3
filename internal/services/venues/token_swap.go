package venues

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

// tokenSwapLayout mirrors the on-chain SwapV1 account of the SPL token-swap
// program.
type tokenSwapLayout struct {
	Version        uint8
	IsInitialized  uint8
	BumpSeed       uint8
	TokenProgramID solana.PublicKey
	TokenAccountA  solana.PublicKey
	TokenAccountB  solana.PublicKey
	PoolMint       solana.PublicKey
	MintA          solana.PublicKey
	MintB          solana.PublicKey
	FeeAccount     solana.PublicKey

	TradeFeeNumerator        uint64
	TradeFeeDenominator      uint64
	OwnerTradeFeeNumerator   uint64
	OwnerTradeFeeDenominator uint64
	OwnerWithdrawNumerator   uint64
	OwnerWithdrawDenominator uint64
	HostFeeNumerator         uint64
	HostFeeDenominator       uint64

	CurveType       uint8
	CurveParameters [32]byte
}

type tokenSwapDescriptor struct {
	venue     solana.PublicKey
	authority solana.PublicKey
	state     tokenSwapLayout
}

func (d *tokenSwapDescriptor) Venue() solana.PublicKey { return d.venue }
func (d *tokenSwapDescriptor) Kind() domain.VenueKind  { return domain.VenuePoolSwap }

func (d *tokenSwapDescriptor) Metas(sourceMint, destinationMint solana.PublicKey, _ BuildParams) ([]*solana.AccountMeta, error) {
	sourceVault, destVault := d.state.TokenAccountA, d.state.TokenAccountB
	switch {
	case sourceMint.Equals(d.state.MintA) && destinationMint.Equals(d.state.MintB):
	case sourceMint.Equals(d.state.MintB) && destinationMint.Equals(d.state.MintA):
		sourceVault, destVault = destVault, sourceVault
	default:
		return nil, ErrMintNotInVenue
	}
	return []*solana.AccountMeta{
		{PublicKey: d.venue, IsSigner: false, IsWritable: false},
		{PublicKey: d.authority, IsSigner: false, IsWritable: false},
		{PublicKey: sourceVault, IsSigner: false, IsWritable: true},
		{PublicKey: destVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.FeeAccount, IsSigner: false, IsWritable: true},
		{PublicKey: common.TokenSwapProgramID, IsSigner: false, IsWritable: false},
	}, nil
}

// TokenSwapAdapter executes legs against SPL token-swap pools.
type TokenSwapAdapter struct {
	rpcClient venueReader
}

func NewTokenSwapAdapter(reader venueReader) *TokenSwapAdapter {
	return &TokenSwapAdapter{rpcClient: reader}
}

func (a *TokenSwapAdapter) Kind() domain.VenueKind { return domain.VenuePoolSwap }

func (a *TokenSwapAdapter) Load(ctx context.Context, venue solana.PublicKey) (Descriptor, error) {
	info, err := a.rpcClient.GetAccountInfo(ctx, venue)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: err}
	}
	if info == nil || info.Value == nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: ErrVenueAccountEmpty}
	}

	var state tokenSwapLayout
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&state); err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("decode swap state: %w", err)}
	}

	authority, err := solana.CreateProgramAddress(
		[][]byte{venue[:], {state.BumpSeed}},
		common.TokenSwapProgramID,
	)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("derive authority: %w", err)}
	}

	return &tokenSwapDescriptor{venue: venue, authority: authority, state: state}, nil
}

func (a *TokenSwapAdapter) BuildDirect(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legDirect, p)
}

func (a *TokenSwapAdapter) BuildSwapIn(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapIn, p)
}

func (a *TokenSwapAdapter) BuildSwapOut(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapOut, p)
}
