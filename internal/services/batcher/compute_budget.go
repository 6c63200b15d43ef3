package batcher

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
)

// SetComputeUnitPriceInstruction sets the priority fee in micro-lamports per
// compute unit.
func SetComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:9], microLamports)
	return &computeBudgetInstruction{data: data}
}

// SetComputeUnitLimitInstruction caps the compute units a transaction may
// consume.
func SetComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 2
	binary.LittleEndian.PutUint32(data[1:5], units)
	return &computeBudgetInstruction{data: data}
}

type computeBudgetInstruction struct {
	data []byte
}

func (i *computeBudgetInstruction) ProgramID() solana.PublicKey {
	return common.ComputeBudgetProgramID
}

func (i *computeBudgetInstruction) Accounts() []*solana.AccountMeta {
	return nil
}

func (i *computeBudgetInstruction) Data() ([]byte, error) {
	return i.data, nil
}
