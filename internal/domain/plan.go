package domain

import (
	"github.com/gagliardetto/solana-go"
)

// TransactionPlan is an ordered group of instructions that must land inside
// a single transaction. Plans later in a slice may only execute after the
// plans named in DependsOn have been confirmed on chain.
type TransactionPlan struct {
	Label        string
	Instructions []solana.Instruction
	// Cleanup instructions are appended after the main body inside the same
	// transaction (wrapped-SOL close, temp account close).
	Cleanup []solana.Instruction
	// Signers holds ephemeral keypairs created while planning (temp token
	// accounts, fresh open-orders accounts). The user wallet signs separately.
	Signers []solana.PrivateKey
	// DependsOn indexes earlier plans in the same slice.
	DependsOn []int
}

// All returns the main body followed by the cleanup tail.
func (p *TransactionPlan) All() []solana.Instruction {
	out := make([]solana.Instruction, 0, len(p.Instructions)+len(p.Cleanup))
	out = append(out, p.Instructions...)
	out = append(out, p.Cleanup...)
	return out
}

func (p *TransactionPlan) Empty() bool {
	return len(p.Instructions) == 0 && len(p.Cleanup) == 0
}
