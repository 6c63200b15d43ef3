package domain

import (
	"github.com/gagliardetto/solana-go"
)

// AttemptState tracks one swap attempt through its lifecycle. Transitions
// only move forward; a failure at any stage jumps to SettledFailed.
type AttemptState uint8

const (
	StateIdle AttemptState = iota
	StateAccountsResolving
	StateInstructionsBuilding
	StateReady
	StateSubmitting
	StateSettledSuccess
	StateSettledFailed
)

func (s AttemptState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccountsResolving:
		return "accounts-resolving"
	case StateInstructionsBuilding:
		return "instructions-building"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSettledSuccess:
		return "settled-success"
	case StateSettledFailed:
		return "settled-failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt has finished, either way.
func (s AttemptState) Terminal() bool {
	return s == StateSettledSuccess || s == StateSettledFailed
}

// SwapRequest carries everything the executor needs to turn a quoted route
// into signed transactions.
type SwapRequest struct {
	User        solana.PublicKey
	Route       Route
	SlippageBps uint16
	// FeeAccount, when set, receives the aggregator protocol fee.
	FeeAccount solana.PublicKey
}

// SwapResult reports the outcome of a submitted attempt. Signatures lists
// every transaction that was sent, in submission order; Submitted and Total
// let a caller see how far a mid-sequence failure got.
type SwapResult struct {
	State      AttemptState
	Signatures []solana.Signature
	Submitted  int
	Total      int
	Err        error
}
