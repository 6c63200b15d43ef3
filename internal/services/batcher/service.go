package batcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/blockchain"
	"github.com/1sol-io/1sol-interface-sub000/internal/wallet"
)

const SERVICE_NAME = "TransactionBatcherService"

var (
	ErrNoPlans             = errors.New("no transaction plans to batch")
	ErrTransactionTooLarge = errors.New("transaction plan exceeds the packet size limit")
)

// Batch is one signed transaction carrying one or more plans.
type Batch struct {
	Transaction *solana.Transaction
	// Plans lists the labels of the plans packed into this transaction.
	Plans []string
	// Sequential marks a batch that must only be submitted once every prior
	// batch has confirmed.
	Sequential bool
}

type blockhashSource interface {
	GetBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

// Service packs transaction plans into as few transactions as the packet
// budget allows, preserving plan order, and has the wallet sign them all in
// one batch call.
type Service struct {
	container.BaseDIInstance

	blockhash   blockhashSource
	wallet      wallet.Wallet
	priorityFee uint64
	logger      *services.ServiceLogger
}

func (svc *Service) ID() string {
	return SERVICE_NAME
}

func (svc *Service) Configure(c container.IContainer) error {
	engineConfig := c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	svc.blockhash = c.Instance(blockchain.BLOCKHASH_CACHE_SERVICE).(*blockchain.BlockhashCacheService)
	svc.wallet = c.Instance(wallet.SERVICE_NAME).(*wallet.Service).Wallet()
	svc.priorityFee = uint64(engineConfig.PriorityFeeMicroLamports)
	svc.logger = services.NewServiceLogger(svc)
	return nil
}

// NewBatcher builds a batcher outside the container, mainly for tests.
func NewBatcher(blockhash blockhashSource, w wallet.Wallet, priorityFee uint64) *Service {
	svc := &Service{
		blockhash:   blockhash,
		wallet:      w,
		priorityFee: priorityFee,
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

// Batch turns the ordered plans into signed transactions. The wallet is
// asked once for the whole set; a refusal surfaces as ErrUserRejected with
// nothing signed or submitted.
func (svc *Service) Batch(ctx context.Context, plans []domain.TransactionPlan, payer solana.PublicKey) ([]*Batch, error) {
	if len(plans) == 0 {
		return nil, ErrNoPlans
	}

	blockhash, _, err := svc.blockhash.GetBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := svc.packPlans(plans, payer, blockhash)
	if err != nil {
		return nil, err
	}

	batches := make([]*Batch, 0, len(groups))
	txs := make([]*solana.Transaction, 0, len(groups))
	for _, group := range groups {
		tx, err := svc.buildTransaction(group.plans, payer, blockhash)
		if err != nil {
			return nil, err
		}
		if err := signWithPlanKeys(tx, group.plans); err != nil {
			return nil, err
		}
		batches = append(batches, &Batch{
			Transaction: tx,
			Plans:       group.labels(),
			Sequential:  group.sequential,
		})
		txs = append(txs, tx)
	}

	if err := svc.wallet.SignAllTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUserRejected, err)
	}

	svc.logger.Info().Int("plans", len(plans)).Int("transactions", len(batches)).Msg("batched and signed swap plans")
	return batches, nil
}

type planGroup struct {
	plans      []domain.TransactionPlan
	sequential bool
}

func (g *planGroup) labels() []string {
	labels := make([]string, 0, len(g.plans))
	for _, p := range g.plans {
		labels = append(labels, p.Label)
	}
	return labels
}

// packPlans greedily merges consecutive plans into one transaction while the
// result still fits the packet budget. A plan that depends on an earlier one
// always starts a fresh transaction so its predecessors can confirm first.
func (svc *Service) packPlans(plans []domain.TransactionPlan, payer solana.PublicKey, blockhash solana.Hash) ([]*planGroup, error) {
	var groups []*planGroup
	var current *planGroup

	for _, plan := range plans {
		if plan.Empty() {
			continue
		}
		dependent := len(plan.DependsOn) > 0

		if current != nil && !dependent {
			candidate := append(append([]domain.TransactionPlan{}, current.plans...), plan)
			size, err := svc.transactionSize(candidate, payer, blockhash)
			if err == nil && size <= common.MaxTransactionSize {
				current.plans = candidate
				continue
			}
		}

		size, err := svc.transactionSize([]domain.TransactionPlan{plan}, payer, blockhash)
		if err != nil {
			return nil, err
		}
		if size > common.MaxTransactionSize {
			return nil, fmt.Errorf("%w: plan %q is %d bytes", ErrTransactionTooLarge, plan.Label, size)
		}
		current = &planGroup{plans: []domain.TransactionPlan{plan}, sequential: dependent}
		groups = append(groups, current)
	}

	if len(groups) == 0 {
		return nil, ErrNoPlans
	}
	return groups, nil
}

func (svc *Service) buildTransaction(plans []domain.TransactionPlan, payer solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	var instructions []solana.Instruction
	if svc.priorityFee > 0 {
		instructions = append(instructions, SetComputeUnitPriceInstruction(svc.priorityFee))
	}
	for _, plan := range plans {
		instructions = append(instructions, plan.All()...)
	}
	return solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer),
	)
}

// transactionSize measures the wire size of the plans as one transaction,
// counting the signatures the message will require.
func (svc *Service) transactionSize(plans []domain.TransactionPlan, payer solana.PublicKey, blockhash solana.Hash) (int, error) {
	tx, err := svc.buildTransaction(plans, payer, blockhash)
	if err != nil {
		return 0, err
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, err
	}
	numSigs := int(tx.Message.Header.NumRequiredSignatures)
	return 1 + numSigs*64 + len(msg), nil
}

func signWithPlanKeys(tx *solana.Transaction, plans []domain.TransactionPlan) error {
	keys := make(map[solana.PublicKey]solana.PrivateKey)
	for _, plan := range plans {
		for _, key := range plan.Signers {
			keys[key.PublicKey()] = key
		}
	}
	if len(keys) == 0 {
		return nil
	}
	_, err := tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
		if key, ok := keys[pub]; ok {
			return &key
		}
		return nil
	})
	return err
}
