package batcher

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

type stubBlockhash struct {
	hash solana.Hash
	err  error
}

func (s *stubBlockhash) GetBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	return s.hash, 100, s.err
}

type stubWallet struct {
	key       solana.PrivateKey
	signCalls int
	signErr   error
}

func newStubWallet(t *testing.T) *stubWallet {
	t.Helper()
	return &stubWallet{key: solana.NewWallet().PrivateKey}
}

func (w *stubWallet) PublicKey() solana.PublicKey { return w.key.PublicKey() }

func (w *stubWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	return w.SignAllTransactions(ctx, []*solana.Transaction{tx})
}

func (w *stubWallet) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error {
	w.signCalls++
	if w.signErr != nil {
		return w.signErr
	}
	for _, tx := range txs {
		if _, err := tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
			if pub.Equals(w.key.PublicKey()) {
				return &w.key
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// memoIx is a small placeholder instruction for packing tests.
func memoIx(size int) solana.Instruction {
	return solana.NewInstruction(
		solana.MemoProgramID,
		[]*solana.AccountMeta{},
		make([]byte, size),
	)
}

func transferIx(from, to solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		common.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: from, IsSigner: true, IsWritable: true},
			{PublicKey: to, IsSigner: false, IsWritable: true},
		},
		make([]byte, 12),
	)
}

func TestBatchMergesConsecutivePlans(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	plans := []domain.TransactionPlan{
		{Label: "create", Instructions: []solana.Instruction{memoIx(8)}},
		{Label: "swap", Instructions: []solana.Instruction{memoIx(18)}},
		{Label: "close", Cleanup: []solana.Instruction{memoIx(4)}},
	}

	batches, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1 merged transaction", len(batches))
	}
	if got := batches[0].Plans; len(got) != 3 || got[0] != "create" || got[1] != "swap" || got[2] != "close" {
		t.Errorf("plan order = %v, want [create swap close]", got)
	}
	if batches[0].Sequential {
		t.Errorf("independent plans must not be sequential")
	}
	if w.signCalls != 1 {
		t.Errorf("wallet sign calls = %d, want exactly 1", w.signCalls)
	}
}

func TestBatchDependentPlansStaySeparate(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	plans := []domain.TransactionPlan{
		{Label: "setup", Instructions: []solana.Instruction{memoIx(8)}},
		{Label: "swap", Instructions: []solana.Instruction{memoIx(18)}, DependsOn: []int{0}},
		{Label: "cleanup", Instructions: []solana.Instruction{memoIx(4)}, DependsOn: []int{1}},
	}

	batches, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3 ordered transactions", len(batches))
	}
	for i, label := range []string{"setup", "swap", "cleanup"} {
		if len(batches[i].Plans) != 1 || batches[i].Plans[0] != label {
			t.Errorf("batch %d carries %v, want [%s]", i, batches[i].Plans, label)
		}
	}
	if batches[0].Sequential {
		t.Errorf("first transaction has nothing to wait for")
	}
	if !batches[1].Sequential || !batches[2].Sequential {
		t.Errorf("dependent transactions must be sequential")
	}
	if w.signCalls != 1 {
		t.Errorf("wallet sign calls = %d, want exactly 1 for the whole set", w.signCalls)
	}
}

func TestBatchRejectionSignsNothing(t *testing.T) {
	w := newStubWallet(t)
	w.signErr = errors.New("user closed the approval dialog")
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	plans := []domain.TransactionPlan{
		{Label: "swap", Instructions: []solana.Instruction{memoIx(18)}},
	}

	batches, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if !errors.Is(err, common.ErrUserRejected) {
		t.Fatalf("error = %v, want ErrUserRejected", err)
	}
	if batches != nil {
		t.Errorf("a refusal must return no batches")
	}
}

func TestBatchOversizedPlan(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	plans := []domain.TransactionPlan{
		{Label: "swap", Instructions: []solana.Instruction{memoIx(common.MaxTransactionSize)}},
	}

	_, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if !errors.Is(err, ErrTransactionTooLarge) {
		t.Fatalf("error = %v, want ErrTransactionTooLarge", err)
	}
	if w.signCalls != 0 {
		t.Errorf("nothing may reach the wallet when packing fails")
	}
}

func TestBatchSplitsWhenFull(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	// Each plan is near half the packet budget; three of them cannot share
	// one transaction.
	plans := []domain.TransactionPlan{
		{Label: "a", Instructions: []solana.Instruction{memoIx(500)}},
		{Label: "b", Instructions: []solana.Instruction{memoIx(500)}},
		{Label: "c", Instructions: []solana.Instruction{memoIx(500)}},
	}

	batches, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(batches) < 2 {
		t.Fatalf("batches = %d, want a split", len(batches))
	}
	var labels []string
	for _, b := range batches {
		labels = append(labels, b.Plans...)
	}
	if len(labels) != 3 || labels[0] != "a" || labels[1] != "b" || labels[2] != "c" {
		t.Errorf("plan order across batches = %v, want [a b c]", labels)
	}
}

func TestBatchEmptyAndBlank(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	if _, err := svc.Batch(context.Background(), nil, w.PublicKey()); !errors.Is(err, ErrNoPlans) {
		t.Errorf("nil plans error = %v, want ErrNoPlans", err)
	}
	blank := []domain.TransactionPlan{{Label: "noop"}}
	if _, err := svc.Batch(context.Background(), blank, w.PublicKey()); !errors.Is(err, ErrNoPlans) {
		t.Errorf("blank plans error = %v, want ErrNoPlans", err)
	}
}

func TestBatchSignsEphemeralKeys(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 0)

	temp := solana.NewWallet()
	plans := []domain.TransactionPlan{
		{
			Label:        "setup",
			Instructions: []solana.Instruction{transferIx(temp.PublicKey(), w.PublicKey())},
			Signers:      []solana.PrivateKey{temp.PrivateKey},
		},
	}

	batches, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	tx := batches[0].Transaction
	if int(tx.Message.Header.NumRequiredSignatures) != 2 {
		t.Fatalf("required signatures = %d, want payer plus ephemeral key", tx.Message.Header.NumRequiredSignatures)
	}
	for i, sig := range tx.Signatures {
		if sig.IsZero() {
			t.Errorf("signature %d missing", i)
		}
	}
}

func TestBatchPriorityFeePrefix(t *testing.T) {
	w := newStubWallet(t)
	svc := NewBatcher(&stubBlockhash{}, w, 5_000)

	plans := []domain.TransactionPlan{
		{Label: "swap", Instructions: []solana.Instruction{memoIx(18)}},
	}

	batches, err := svc.Batch(context.Background(), plans, w.PublicKey())
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	msg := batches[0].Transaction.Message
	if len(msg.Instructions) != 2 {
		t.Fatalf("instructions = %d, want compute budget prefix plus swap", len(msg.Instructions))
	}
	program, err := msg.Program(msg.Instructions[0].ProgramIDIndex)
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	if !program.Equals(common.ComputeBudgetProgramID) {
		t.Errorf("first instruction targets %s, want compute budget program", program)
	}
}
