package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/metrics"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
)

const RESOLVER_SERVICE_NAME = "AccountResolverService"

// serum open-orders layout offsets: 5 bytes padding, 8 bytes account flags,
// market at 13, owner at 45.
const (
	openOrdersMarketOffset = 13
	openOrdersOwnerOffset  = 45
)

// accountReader is the slice of the RPC surface the resolver needs. Narrow so
// tests can stub it.
type accountReader interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
}

// Resolution is the outcome of resolving one token account requirement.
// Create holds setup instructions to run before the swap, Cleanup holds
// instructions to run after it, Signers any ephemeral keypairs that must
// co-sign the transaction carrying Create.
type Resolution struct {
	Address solana.PublicKey
	Create  []solana.Instruction
	Cleanup []solana.Instruction
	Signers []solana.PrivateKey
	// NewlyFunded marks a temp account seeded with the swap input lamports.
	NewlyFunded bool
}

// Exists reports whether the account is already live on chain.
func (r *Resolution) Exists() bool { return len(r.Create) == 0 }

type ResolverService struct {
	container.BaseDIInstance

	rpcClient accountReader
	known     *ShardedAccountMap

	// wsolPending memoizes the planned wrapped account per owner so repeated
	// resolutions inside one attempt agree on the address. Cleared by Release
	// when the attempt settles.
	wsolMu      sync.Mutex
	wsolPending map[solana.PublicKey]*Resolution

	logger *services.ServiceLogger
}

func (svc *ResolverService) ID() string {
	return RESOLVER_SERVICE_NAME
}

func (svc *ResolverService) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	svc.rpcClient = rpc.New(rpcConfig.RPCUrl)
	svc.known = NewShardedAccountMap()
	svc.wsolPending = make(map[solana.PublicKey]*Resolution)
	svc.logger = services.NewServiceLogger(svc)
	return nil
}

// NewResolver builds a resolver outside the container, mainly for tests.
func NewResolver(reader accountReader) *ResolverService {
	svc := &ResolverService{
		rpcClient:   reader,
		known:       NewShardedAccountMap(),
		wsolPending: make(map[solana.PublicKey]*Resolution),
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

// Resolve finds or plans the token account holding mint for owner. When the
// mint is wrapped SOL and wrapLamports is nonzero, a throwaway account is
// planned instead so native SOL can fund the swap and be unwrapped after.
func (svc *ResolverService) Resolve(ctx context.Context, owner, mint solana.PublicKey, wrapLamports uint64) (*Resolution, error) {
	if mint.Equals(common.WrappedSolMint) && wrapLamports > 0 {
		return svc.resolveWrappedSol(ctx, owner, wrapLamports)
	}
	return svc.resolveATA(ctx, owner, mint)
}

func (svc *ResolverService) resolveATA(ctx context.Context, owner, mint solana.PublicKey) (*Resolution, error) {
	ata, _, err := GetATAAddress(owner, mint)
	if err != nil {
		return nil, &common.AccountResolutionError{Owner: owner.String(), Mint: mint.String(), Err: err}
	}

	if _, ok := svc.known.Get(ata); ok {
		metrics.AccountCacheHits.Inc()
		return &Resolution{Address: ata}, nil
	}
	metrics.AccountCacheMisses.Inc()

	info, err := svc.rpcClient.GetAccountInfo(ctx, ata)
	if err != nil && err != rpc.ErrNotFound {
		return nil, &common.AccountResolutionError{Owner: owner.String(), Mint: mint.String(), Err: err}
	}
	if err == nil && info != nil && info.Value != nil {
		svc.known.Set(ata, ata)
		return &Resolution{Address: ata}, nil
	}

	metrics.AccountsCreated.WithLabelValues("ata").Inc()
	return &Resolution{
		Address: ata,
		Create:  []solana.Instruction{CreateATAInstruction(owner, owner, mint)},
	}, nil
}

// resolveWrappedSol plans a fresh token account funded with the swap amount
// plus its own rent, closed back to the owner once the swap settles. Within
// one attempt repeated calls return the same planned account; Release starts
// the next attempt clean.
func (svc *ResolverService) resolveWrappedSol(ctx context.Context, owner solana.PublicKey, wrapLamports uint64) (*Resolution, error) {
	svc.wsolMu.Lock()
	defer svc.wsolMu.Unlock()
	if res, ok := svc.wsolPending[owner]; ok {
		return res, nil
	}

	rent, err := svc.rpcClient.GetMinimumBalanceForRentExemption(ctx, common.TokenAccountSize, rpc.CommitmentFinalized)
	if err != nil {
		return nil, &common.AccountResolutionError{Owner: owner.String(), Mint: common.WrappedSolMint.String(), Err: err}
	}

	tempAccount := solana.NewWallet()
	temp := tempAccount.PublicKey()

	metrics.AccountsCreated.WithLabelValues("wrapped-sol").Inc()
	res := &Resolution{
		Address: temp,
		Create: []solana.Instruction{
			CreateAccountInstruction(owner, temp, wrapLamports+rent, common.TokenAccountSize, common.TokenProgramID),
			InitializeTokenAccountInstruction(temp, common.WrappedSolMint, owner),
		},
		Cleanup: []solana.Instruction{
			CloseTokenAccountInstruction(temp, owner, owner),
		},
		Signers:     []solana.PrivateKey{tempAccount.PrivateKey},
		NewlyFunded: true,
	}
	svc.wsolPending[owner] = res
	return res, nil
}

// Release drops the attempt-scoped wrapped-account plan for owner so the
// next attempt funds a fresh account.
func (svc *ResolverService) Release(owner solana.PublicKey) {
	svc.wsolMu.Lock()
	delete(svc.wsolPending, owner)
	svc.wsolMu.Unlock()
}

// ResolveOpenOrders finds the owner's open-orders account on a serum market,
// planning creation and initialization when none exists yet.
func (svc *ResolverService) ResolveOpenOrders(ctx context.Context, owner, market, dexProgram solana.PublicKey) (*Resolution, error) {
	dataSize := uint64(common.SerumOpenOrdersSize)
	out, err := svc.rpcClient.GetProgramAccountsWithOpts(ctx, dexProgram, &rpc.GetProgramAccountsOpts{
		Filters: []rpc.RPCFilter{
			{DataSize: dataSize},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: openOrdersMarketOffset,
				Bytes:  market[:],
			}},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: openOrdersOwnerOffset,
				Bytes:  owner[:],
			}},
		},
	})
	if err != nil {
		return nil, &common.AccountResolutionError{Owner: owner.String(), Mint: market.String(), Err: fmt.Errorf("open orders lookup: %w", err)}
	}
	if len(out) > 0 {
		return &Resolution{Address: out[0].Pubkey}, nil
	}

	rent, err := svc.rpcClient.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentFinalized)
	if err != nil {
		return nil, &common.AccountResolutionError{Owner: owner.String(), Mint: market.String(), Err: err}
	}

	ooAccount := solana.NewWallet()
	oo := ooAccount.PublicKey()

	metrics.AccountsCreated.WithLabelValues("open-orders").Inc()
	return &Resolution{
		Address: oo,
		Create: []solana.Instruction{
			CreateAccountInstruction(owner, oo, rent, dataSize, dexProgram),
			InitOpenOrdersInstruction(oo, owner, market, dexProgram),
		},
		Signers: []solana.PrivateKey{ooAccount.PrivateKey},
	}, nil
}

// Forget drops a cached account, for use after a close instruction landed.
func (svc *ResolverService) Forget(address solana.PublicKey) {
	svc.known.Delete(address)
}
