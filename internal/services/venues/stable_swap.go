package venues

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

// stableSwapLayout mirrors the saber stable-swap SwapInfo account. SwapA and
// SwapB are the vaults, TokenA and TokenB the mints.
type stableSwapLayout struct {
	IsInitialized       int8
	IsPaused            int8
	Nonce               int8
	InitialAmpFactor    uint64
	TargetAmpFactor     uint64
	StartRampTs         int64
	StopRampTs          int64
	FutureAdminDeadline int64
	FutureAdminKey      solana.PublicKey
	AdminKey            solana.PublicKey
	SwapA               solana.PublicKey
	SwapB               solana.PublicKey
	PoolMint            solana.PublicKey
	TokenA              solana.PublicKey
	TokenB              solana.PublicKey
	AdminFeeKeyA        solana.PublicKey
	AdminFeeKeyB        solana.PublicKey
	Fees                stableSwapFees
}

type stableSwapFees struct {
	AdminTradeFeeNumerator      uint64
	AdminTradeFeeDenominator    uint64
	AdminWithdrawFeeNumerator   uint64
	AdminWithdrawFeeDenominator uint64
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	WithdrawFeeNumerator        uint64
	WithdrawFeeDenominator      uint64
}

var ErrVenuePaused = fmt.Errorf("stable swap is paused")

type stableSwapDescriptor struct {
	venue     solana.PublicKey
	authority solana.PublicKey
	state     stableSwapLayout
}

func (d *stableSwapDescriptor) Venue() solana.PublicKey { return d.venue }
func (d *stableSwapDescriptor) Kind() domain.VenueKind  { return domain.VenueStableSwap }

func (d *stableSwapDescriptor) Metas(sourceMint, destinationMint solana.PublicKey, _ BuildParams) ([]*solana.AccountMeta, error) {
	sourceVault, destVault := d.state.SwapA, d.state.SwapB
	adminFeeDest := d.state.AdminFeeKeyB
	switch {
	case sourceMint.Equals(d.state.TokenA) && destinationMint.Equals(d.state.TokenB):
	case sourceMint.Equals(d.state.TokenB) && destinationMint.Equals(d.state.TokenA):
		sourceVault, destVault = destVault, sourceVault
		adminFeeDest = d.state.AdminFeeKeyA
	default:
		return nil, ErrMintNotInVenue
	}
	return []*solana.AccountMeta{
		{PublicKey: d.venue, IsSigner: false, IsWritable: false},
		{PublicKey: d.authority, IsSigner: false, IsWritable: false},
		{PublicKey: sourceVault, IsSigner: false, IsWritable: true},
		{PublicKey: destVault, IsSigner: false, IsWritable: true},
		{PublicKey: adminFeeDest, IsSigner: false, IsWritable: true},
		{PublicKey: common.SysvarClockID, IsSigner: false, IsWritable: false},
		{PublicKey: common.StableSwapProgramID, IsSigner: false, IsWritable: false},
	}, nil
}

// StableSwapAdapter executes legs against saber stable-swap pools.
type StableSwapAdapter struct {
	rpcClient venueReader
}

func NewStableSwapAdapter(reader venueReader) *StableSwapAdapter {
	return &StableSwapAdapter{rpcClient: reader}
}

func (a *StableSwapAdapter) Kind() domain.VenueKind { return domain.VenueStableSwap }

func (a *StableSwapAdapter) Load(ctx context.Context, venue solana.PublicKey) (Descriptor, error) {
	info, err := a.rpcClient.GetAccountInfo(ctx, venue)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: err}
	}
	if info == nil || info.Value == nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: ErrVenueAccountEmpty}
	}

	var state stableSwapLayout
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&state); err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("decode swap state: %w", err)}
	}
	if state.IsPaused != 0 {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: ErrVenuePaused}
	}

	authority, err := solana.CreateProgramAddress(
		[][]byte{venue[:], {uint8(state.Nonce)}},
		common.StableSwapProgramID,
	)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("derive authority: %w", err)}
	}

	return &stableSwapDescriptor{venue: venue, authority: authority, state: state}, nil
}

func (a *StableSwapAdapter) BuildDirect(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legDirect, p)
}

func (a *StableSwapAdapter) BuildSwapIn(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapIn, p)
}

func (a *StableSwapAdapter) BuildSwapOut(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapOut, p)
}
