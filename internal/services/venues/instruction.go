package venues

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

// legKind selects which stage of a route the aggregator program executes.
type legKind uint8

const (
	legDirect legKind = iota
	legSwapIn
	legSwapOut
)

func venueTag(k domain.VenueKind) uint8 {
	return uint8(k)
}

// SwapInfoAddress derives the per-user state account the aggregator program
// uses to carry the intermediate amount between the two hops of an indirect
// route.
func SwapInfoAddress(user solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("swap_info"), user[:]},
		common.AggregatorProgramID,
	)
	return addr, err
}

// aggregator opcodes outside the venue tag range.
const (
	opInitSwapInfo  uint8 = 0x10
	opCloseSwapInfo uint8 = 0x11
)

// swapInfoInstruction initializes or closes the bookkeeping account an
// indirect route threads its intermediate amount through.
type swapInfoInstruction struct {
	op       uint8
	swapInfo solana.PublicKey
	user     solana.PublicKey
}

// NewSwapInfoInitInstruction plans creation of the user's swap-info
// account. Belongs in the setup transaction of an indirect route; the
// program allocates the PDA and zeroes its expected balance.
func NewSwapInfoInitInstruction(user solana.PublicKey) (solana.Instruction, error) {
	swapInfo, err := SwapInfoAddress(user)
	if err != nil {
		return nil, err
	}
	return &swapInfoInstruction{op: opInitSwapInfo, swapInfo: swapInfo, user: user}, nil
}

// NewSwapInfoCloseInstruction closes the swap-info account and refunds its
// rent to the user once both hops have settled.
func NewSwapInfoCloseInstruction(user solana.PublicKey) (solana.Instruction, error) {
	swapInfo, err := SwapInfoAddress(user)
	if err != nil {
		return nil, err
	}
	return &swapInfoInstruction{op: opCloseSwapInfo, swapInfo: swapInfo, user: user}, nil
}

func (i *swapInfoInstruction) ProgramID() solana.PublicKey {
	return common.AggregatorProgramID
}

func (i *swapInfoInstruction) Accounts() []*solana.AccountMeta {
	metas := []*solana.AccountMeta{
		{PublicKey: i.swapInfo, IsSigner: false, IsWritable: true},
		{PublicKey: i.user, IsSigner: true, IsWritable: true},
	}
	if i.op == opInitSwapInfo {
		metas = append(metas,
			&solana.AccountMeta{PublicKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
			&solana.AccountMeta{PublicKey: common.SysvarRentID, IsSigner: false, IsWritable: false},
		)
	}
	return metas
}

func (i *swapInfoInstruction) Data() ([]byte, error) {
	return []byte{i.op}, nil
}

// swapInstruction is one leg executed through the aggregator program. The
// common account prefix is fixed; the venue tail comes from the descriptor.
type swapInstruction struct {
	kind      domain.VenueKind
	leg       legKind
	amountIn  uint64
	minOut    uint64
	swapInfo  solana.PublicKey
	params    BuildParams
	venueTail []*solana.AccountMeta
}

func newSwapInstruction(desc Descriptor, leg legKind, p BuildParams) (solana.Instruction, error) {
	swapInfo, err := SwapInfoAddress(p.User)
	if err != nil {
		return nil, err
	}
	tail, err := desc.Metas(p.SourceMint, p.DestinationMint, p)
	if err != nil {
		return nil, err
	}
	return &swapInstruction{
		kind:      desc.Kind(),
		leg:       leg,
		amountIn:  p.AmountIn,
		minOut:    p.MinimumAmountOut,
		swapInfo:  swapInfo,
		params:    p,
		venueTail: tail,
	}, nil
}

func (i *swapInstruction) ProgramID() solana.PublicKey {
	return common.AggregatorProgramID
}

func (i *swapInstruction) Accounts() []*solana.AccountMeta {
	metas := []*solana.AccountMeta{
		{PublicKey: i.swapInfo, IsSigner: false, IsWritable: true},
		{PublicKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: i.params.User, IsSigner: true, IsWritable: false},
		{PublicKey: i.params.SourceAccount, IsSigner: false, IsWritable: true},
		{PublicKey: i.params.DestinationAccount, IsSigner: false, IsWritable: true},
	}
	if !i.params.FeeAccount.IsZero() {
		metas = append(metas, &solana.AccountMeta{PublicKey: i.params.FeeAccount, IsSigner: false, IsWritable: true})
	}
	return append(metas, i.venueTail...)
}

func (i *swapInstruction) Data() ([]byte, error) {
	data := make([]byte, 18)
	data[0] = venueTag(i.kind)
	data[1] = uint8(i.leg)
	binary.LittleEndian.PutUint64(data[2:10], i.amountIn)
	binary.LittleEndian.PutUint64(data[10:18], i.minOut)
	return data, nil
}
