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

// serumMarketLayout mirrors the serum dex MarketState account, including the
// 5-byte "serum" prefix and 7-byte "padding" suffix.
type serumMarketLayout struct {
	Prefix       [5]byte
	AccountFlags uint64
	OwnAddress   solana.PublicKey

	VaultSignerNonce uint64

	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey

	BaseVault         solana.PublicKey
	BaseDepositsTotal uint64
	BaseFeesAccrued   uint64

	QuoteVault         solana.PublicKey
	QuoteDepositsTotal uint64
	QuoteFeesAccrued   uint64

	QuoteDustThreshold uint64

	RequestQueue solana.PublicKey
	EventQueue   solana.PublicKey

	Bids solana.PublicKey
	Asks solana.PublicKey

	BaseLotSize  uint64
	QuoteLotSize uint64

	FeeRateBps uint64

	ReferrerRebatesAccrued uint64

	Suffix [7]byte
}

type serumDescriptor struct {
	venue       solana.PublicKey
	vaultSigner solana.PublicKey
	state       serumMarketLayout
}

func (d *serumDescriptor) Venue() solana.PublicKey { return d.venue }
func (d *serumDescriptor) Kind() domain.VenueKind  { return domain.VenueOrderBook }

func (d *serumDescriptor) Metas(sourceMint, destinationMint solana.PublicKey, p BuildParams) ([]*solana.AccountMeta, error) {
	if p.OpenOrders.IsZero() {
		return nil, ErrMissingOpenOrders
	}
	baseToQuote := sourceMint.Equals(d.state.BaseMint) && destinationMint.Equals(d.state.QuoteMint)
	quoteToBase := sourceMint.Equals(d.state.QuoteMint) && destinationMint.Equals(d.state.BaseMint)
	if !baseToQuote && !quoteToBase {
		return nil, ErrMintNotInVenue
	}
	return []*solana.AccountMeta{
		{PublicKey: d.venue, IsSigner: false, IsWritable: true},
		{PublicKey: p.OpenOrders, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.RequestQueue, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.EventQueue, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.Bids, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.Asks, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.state.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: d.vaultSigner, IsSigner: false, IsWritable: false},
		{PublicKey: common.SerumDexProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: common.SysvarRentID, IsSigner: false, IsWritable: false},
	}, nil
}

// SerumAdapter executes legs as immediate-or-cancel orders on serum dex
// markets. Legs require the owner's open orders account on the market.
type SerumAdapter struct {
	rpcClient venueReader
}

func NewSerumAdapter(reader venueReader) *SerumAdapter {
	return &SerumAdapter{rpcClient: reader}
}

func (a *SerumAdapter) Kind() domain.VenueKind { return domain.VenueOrderBook }

func (a *SerumAdapter) Load(ctx context.Context, venue solana.PublicKey) (Descriptor, error) {
	info, err := a.rpcClient.GetAccountInfo(ctx, venue)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: err}
	}
	if info == nil || info.Value == nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: ErrVenueAccountEmpty}
	}

	var state serumMarketLayout
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&state); err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("decode market state: %w", err)}
	}

	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, state.VaultSignerNonce)
	vaultSigner, err := solana.CreateProgramAddress(
		[][]byte{venue[:], nonce},
		common.SerumDexProgramID,
	)
	if err != nil {
		return nil, &common.VenueUnavailableError{Venue: venue.String(), Kind: a.Kind().String(), Err: fmt.Errorf("derive vault signer: %w", err)}
	}

	return &serumDescriptor{venue: venue, vaultSigner: vaultSigner, state: state}, nil
}

func (a *SerumAdapter) BuildDirect(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legDirect, p)
}

func (a *SerumAdapter) BuildSwapIn(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapIn, p)
}

func (a *SerumAdapter) BuildSwapOut(desc Descriptor, p BuildParams) (solana.Instruction, error) {
	return newSwapInstruction(desc, legSwapOut, p)
}

// Market exposes the decoded market for open orders resolution.
func (d *serumDescriptor) Market() solana.PublicKey { return d.venue }
