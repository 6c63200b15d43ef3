package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Wallet signs on behalf of the swap owner. Implementations may hold a local
// keypair or proxy to an external signer that can refuse.
type Wallet interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
	// SignAllTransactions signs every transaction in one call so an external
	// signer shows a single approval for the whole batch. Either all
	// transactions come back signed or none do.
	SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error
}

var ErrNoPrivateKey = errors.New("wallet has no private key loaded")

// LocalWallet holds a keypair in memory and signs without prompting.
type LocalWallet struct {
	key solana.PrivateKey
}

func NewLocalWallet(base58Key string) (*LocalWallet, error) {
	if base58Key == "" {
		return nil, ErrNoPrivateKey
	}
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("decode wallet key: %w", err)
	}
	return &LocalWallet{key: key}, nil
}

func NewLocalWalletFromKey(key solana.PrivateKey) *LocalWallet {
	return &LocalWallet{key: key}
}

func (w *LocalWallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

func (w *LocalWallet) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	return err
}

func (w *LocalWallet) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error {
	for _, tx := range txs {
		if err := w.SignTransaction(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
