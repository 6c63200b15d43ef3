// Package common contains common constants and variables used across services
package common

import "github.com/gagliardetto/solana-go"

var (
	TokenProgramID  = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	ATAProgramID    = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID = solana.SystemProgramID
	SysvarRentID    = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	SysvarClockID   = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

	ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)

// Venue programs the engine can route through.
var (
	TokenSwapProgramID  = solana.MustPublicKeyFromBase58("SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8")
	SerumDexProgramID   = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	StableSwapProgramID = solana.MustPublicKeyFromBase58("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ")
	RaydiumAmmProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	AggregatorProgramID = solana.MustPublicKeyFromBase58("1SoLTvbiicqXZ3MJmnTL2WYXKLYpuxwHpa4yYrVQaMZ")
	RaydiumAmmAuthority = solana.MustPublicKeyFromBase58("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")
)

var (
	// WrappedSolMint is the native-asset wrapper mint; swaps touching SOL go
	// through a temporary token account holding wrapped lamports.
	WrappedSolMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDCMint       = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDTMint       = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

const (
	// TokenAccountSize is the serialized size of an SPL token account.
	TokenAccountSize = 165

	// SerumOpenOrdersSize is the serialized size of a v3 open-orders account.
	SerumOpenOrdersSize = 3228

	// MaxTransactionSize is the network packet budget for a serialized
	// transaction, signatures included.
	MaxTransactionSize = 1232
)
