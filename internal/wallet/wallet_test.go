package wallet

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func testTransaction(t *testing.T, payer solana.PublicKey) *solana.Transaction {
	t.Helper()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.MemoProgramID, nil, []byte("x"))},
		solana.Hash{},
		solana.TransactionPayer(payer),
	)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	return tx
}

func TestLocalWalletSignsAll(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	w, err := NewLocalWallet(key.String())
	if err != nil {
		t.Fatalf("NewLocalWallet: %v", err)
	}
	if !w.PublicKey().Equals(key.PublicKey()) {
		t.Errorf("public key mismatch")
	}

	txs := []*solana.Transaction{
		testTransaction(t, w.PublicKey()),
		testTransaction(t, w.PublicKey()),
	}
	if err := w.SignAllTransactions(context.Background(), txs); err != nil {
		t.Fatalf("SignAllTransactions: %v", err)
	}
	for i, tx := range txs {
		if len(tx.Signatures) != 1 || tx.Signatures[0].IsZero() {
			t.Errorf("transaction %d not signed", i)
		}
	}
}

func TestNewLocalWalletRejectsBadKeys(t *testing.T) {
	if _, err := NewLocalWallet(""); err != ErrNoPrivateKey {
		t.Errorf("empty key error = %v, want ErrNoPrivateKey", err)
	}
	if _, err := NewLocalWallet("not-base58!"); err == nil {
		t.Errorf("garbage key must not load")
	}
}
