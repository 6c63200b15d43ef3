package submitter

import (
	"context"
	"regexp"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/metrics"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/batcher"
)

const SERVICE_NAME = "SubmitterService"

// logErrorPattern extracts the program's own failure messages from the
// transaction log.
var logErrorPattern = regexp.MustCompile(`Error: (.+)`)

// txSender is the slice of the RPC surface submission needs.
type txSender interface {
	SendRawTransactionWithOpts(ctx context.Context, payload []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

// Result reports how far a batch sequence got: every signature sent, how
// many of them confirmed, and how many the sequence held in total.
type Result struct {
	Signatures []solana.Signature
	Confirmed  int
	Total      int
}

// Service sends signed transactions and polls them to confirmation,
// strictly in order. Preflight simulation is skipped; the route was priced
// against current state already and the confirmation poll catches failures.
type Service struct {
	container.BaseDIInstance

	rpcClient      txSender
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *services.ServiceLogger
}

func (svc *Service) ID() string {
	return SERVICE_NAME
}

func (svc *Service) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	engineConfig := c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)

	svc.rpcClient = rpc.New(rpcConfig.RPCUrl)
	svc.confirmTimeout = time.Duration(engineConfig.ConfirmTimeoutSec) * time.Second
	svc.pollInterval = time.Duration(engineConfig.ConfirmPollMs) * time.Millisecond
	svc.logger = services.NewServiceLogger(svc)
	return nil
}

// NewSubmitter builds a submitter outside the container, mainly for tests.
func NewSubmitter(sender txSender, confirmTimeout, pollInterval time.Duration) *Service {
	svc := &Service{
		rpcClient:      sender,
		confirmTimeout: confirmTimeout,
		pollInterval:   pollInterval,
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

// SubmitAll sends each batch and waits for its confirmation before the next.
// On any failure the remaining batches are not attempted; the error carries
// how many transactions already settled so the caller can recover the
// intermediate asset instead of assuming rollback.
func (svc *Service) SubmitAll(ctx context.Context, batches []*batcher.Batch) (*Result, error) {
	total := len(batches)
	result := &Result{Total: total}

	for i, batch := range batches {
		raw, err := batch.Transaction.MarshalBinary()
		if err != nil {
			return result, &common.SubmissionError{Index: i, Total: total, Succeeded: result.Confirmed, Err: err}
		}

		sig, err := svc.rpcClient.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentProcessed,
		})
		if err != nil {
			metrics.SwapTransactions.WithLabelValues("send-failed").Inc()
			return result, &common.SubmissionError{Index: i, Total: total, Succeeded: result.Confirmed, Err: err}
		}
		result.Signatures = append(result.Signatures, sig)
		svc.logger.Info().Str("signature", sig.String()).Strs("plans", batch.Plans).Msg("transaction submitted")

		started := time.Now()
		if err := svc.confirm(ctx, sig, i, total, result.Confirmed); err != nil {
			metrics.SwapTransactions.WithLabelValues("failed").Inc()
			return result, err
		}
		metrics.SwapTransactions.WithLabelValues("confirmed").Inc()
		metrics.ConfirmationDuration.Observe(time.Since(started).Seconds())
		result.Confirmed++
	}

	return result, nil
}

// confirm polls the signature status until the transaction lands or the
// polling budget runs out. A timeout is reported distinctly from an on-chain
// failure so callers can message an infra problem differently from a program
// rejection.
func (svc *Service) confirm(ctx context.Context, sig solana.Signature, index, total, succeeded int) error {
	deadline := time.Now().Add(svc.confirmTimeout)

	for time.Now().Before(deadline) {
		res, err := svc.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err == nil && res != nil && len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return svc.onChainError(ctx, sig, index, total, succeeded)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(svc.pollInterval):
		}
	}

	return common.ErrConfirmationTimeout
}

// onChainError fetches the failed transaction's log and surfaces the
// program's own Error lines.
func (svc *Service) onChainError(ctx context.Context, sig solana.Signature, index, total, succeeded int) error {
	onchain := &common.OnChainError{
		TxID:      sig.String(),
		Index:     index,
		Total:     total,
		Succeeded: succeeded,
	}

	tx, err := svc.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil || tx == nil || tx.Meta == nil {
		return onchain
	}

	onchain.Messages = ParseLogErrors(tx.Meta.LogMessages)
	return onchain
}

// ParseLogErrors extracts every program Error message from a transaction
// log.
func ParseLogErrors(logs []string) []string {
	var messages []string
	for _, line := range logs {
		if m := logErrorPattern.FindStringSubmatch(line); m != nil {
			messages = append(messages, m[1])
		}
	}
	return messages
}
