package common

import (
	"errors"
	"fmt"
)

// Terminal conditions for a swap attempt. None of these are retried by the
// engine; the only retry loop in the system is the background pricing refresh.
var (
	ErrQuoteUnavailable    = errors.New("no viable route for the requested pair")
	ErrUserRejected        = errors.New("wallet declined to sign")
	ErrSwapInProgress      = errors.New("another swap attempt is already submitting")
	ErrConfirmationTimeout = errors.New("confirmation not observed within the polling budget")
)

// VenueUnavailableError reports that a venue's on-chain state could not be
// decoded at build time. Raised before any signature request.
type VenueUnavailableError struct {
	Venue string
	Kind  string
	Err   error
}

func (e *VenueUnavailableError) Error() string {
	return fmt.Sprintf("venue %s (%s) unavailable: %v", e.Venue, e.Kind, e.Err)
}

func (e *VenueUnavailableError) Unwrap() error { return e.Err }

// AccountResolutionError reports that a required account could not be found
// or described. Raised before any signature request.
type AccountResolutionError struct {
	Owner string
	Mint  string
	Err   error
}

func (e *AccountResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve account for owner %s mint %s: %v", e.Owner, e.Mint, e.Err)
}

func (e *AccountResolutionError) Unwrap() error { return e.Err }

// SubmissionError is a network/RPC failure sending transaction Index of Total.
// Transactions before Index are already settled on-chain.
type SubmissionError struct {
	Index     int
	Total     int
	Succeeded int
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to send transaction %d of %d (%d succeeded): %v",
		e.Index+1, e.Total, e.Succeeded, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// OnChainError is a confirmed transaction whose program logged a failure.
// Messages are the program's own Error lines, surfaced verbatim.
type OnChainError struct {
	TxID      string
	Messages  []string
	Index     int
	Total     int
	Succeeded int
}

func (e *OnChainError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("transaction %d of %d failed on-chain (%d succeeded): %s [tx %s]",
			e.Index+1, e.Total, e.Succeeded, e.Messages[0], e.TxID)
	}
	return fmt.Sprintf("transaction %d of %d failed on-chain (%d succeeded) [tx %s]",
		e.Index+1, e.Total, e.Succeeded, e.TxID)
}

// ExplorerLink returns a link-style reference to the failed transaction.
func (e *OnChainError) ExplorerLink() string {
	return "https://explorer.solana.com/tx/" + e.TxID
}
