package venues

import (
	"context"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

// raydiumAmmLayout mirrors the raydium liquidity state v4 account.
type raydiumAmmLayout struct {
	Status             uint64
	Nonce              uint64
	MaxOrder           uint64
	Depth              uint64
	BaseDecimal        uint64
	QuoteDecimal       uint64
	State              uint64
	ResetFlag          uint64
	MinSize            uint64
	VolMaxCutRatio     uint64
	AmountWaveRatio    uint64
	BaseLotSize        uint64
	QuoteLotSize       uint64
	MinPriceMultiplier uint64
	MaxPriceMultiplier uint64
	SystemDecimalValue uint64

	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64

	BaseNeedTakePnl     uint64
	QuoteNeedTakePnl    uint64
	QuoteTotalPnl       uint64
	BaseTotalPnl        uint64
	PoolOpenTime        uint64
	PunishPcAmount      uint64
	PunishCoinAmount    uint64
	OrderbookToInitTime uint64

	SwapBaseInAmount   bin.Uint128
	SwapQuoteOutAmount bin.Uint128
	SwapBase2QuoteFee  uint64
	SwapQuoteInAmount  bin.Uint128
	SwapBaseOutAmount  bin.Uint128
	SwapQuote2BaseFee  uint64

	BaseVault       solana.PublicKey
	QuoteVault      solana.PublicKey
	BaseMint        solana.PublicKey
	QuoteMint       solana.PublicKey
	LpMint          solana.PublicKey
	OpenOrders      solana.PublicKey
	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey
	TargetOrders    solana.PublicKey
	WithdrawQueue   solana.PublicKey
	LpVault         solana.PublicKey
	Owner           solana.PublicKey

	LpReserve uint64
	Padding   [3]uint64
}

type raydiumDescriptor struct {
	venue             solana.PublicKey
	state             raydiumAmmLayout
	market            serumMarketLayout
	marketVaultSigner solana.PublicKey
}

func (d *raydiumDescriptor) Venue() solana.PublicKey { return d.venue }
func (d *raydiumDescriptor) Kind() domain.VenueKind  { return domain.VenueConstantFunctionAMM }

func (d *raydiumDescriptor) Metas(sourceMint, destinationMint solana.PublicKey, _ BuildParams) ([]*solana.AccountMeta, error) {
	baseToQuote := sourceMint.Equals(d.state.BaseMint) && destinationMint.Equals(d.state.QuoteMint)
	quoteToBase := sourceMint.Equals(d.state.QuoteMint) && destinationMint.Equals(d.state.BaseMint)
	if !baseToQuote && !quoteToBase {
		return nil, ErrMintNotInVenue
	}
	// The amm swap instruction is direction agnostic: both vaults and the
	// full market account set are always passed.
	return []*solana.AccountMeta{
		{PublicKey: d.venue, IsSigner: false, IsWritable: true},
		{PublicKey: common.RaydiumAmmAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: d.state.OpenOrders, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.TargetOrders, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.MarketProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: d.state.MarketID, IsSigner: false, IsWritable: true},
		{PublicKey: d.market.Bids, IsSigner: false, IsWritable: true},
		{PublicKey: d.market.Asks, IsSigner: false, IsWritable: true},
		{PublicKey: d.market.EventQueue, IsSigner: false, IsWritable: true},
		{PublicKey: d.market.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.market.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.marketVaultSigner, IsSigner: false, IsWritable: false},
		{PublicKey: common.RaydiumAmmProgramID, IsSigner: false, IsWritable: false},
	}, nil
}

// RaydiumAdapter executes legs against raydium v4 amm pools. Loading a pool
// also loads the serum market the pool trades through.
type RaydiumAdapter struct {
	rpcClient venueReader
}

func NewRaydiumAdapter(reader venueReader) *RaydiumAdapter {
	return &RaydiumAdapter{rpcClient: reader}
}

func (a *RaydiumAdapter) Kind() domain.VenueKind { return domain.VenueConstantFunctionAMM }

func (a *RaydiumAdapter) Load(ctx context.Context, venue solana.PublicKey) (Descriptor, error) {
	info, err := a.rpcClient.GetAccountInfo(ctx, venue)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: err}
	}
	if info == nil || info.Value == nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: ErrVenueAccountEmpty}
	}

	var state raydiumAmmLayout
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&state); err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("decode amm state: %w", err)}
	}

	marketInfo, err := a.rpcClient.GetAccountInfo(ctx, state.MarketID)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("load market: %w", err)}
	}
	if marketInfo == nil || marketInfo.Value == nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: ErrVenueAccountEmpty}
	}

	var market serumMarketLayout
	if err := bin.NewBinDecoder(marketInfo.Value.Data.GetBinary()).Decode(&market); err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("decode market state: %w", err)}
	}

	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, market.VaultSignerNonce)
	vaultSigner, err := solana.CreateProgramAddress(
		[][]byte{state.MarketID[:], nonce},
		state.MarketProgramID,
	)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("derive vault signer: %w", err)}
	}

	return &raydiumDescriptor{
		venue:             venue,
		state:             state,
		market:            market,
		marketVaultSigner: vaultSigner,
	}, nil
}

func (a *RaydiumAdapter) BuildDirect(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legDirect, p)
}

func (a *RaydiumAdapter) BuildSwapIn(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapIn, p)
}

func (a *RaydiumAdapter) BuildSwapOut(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapOut, p)
}
