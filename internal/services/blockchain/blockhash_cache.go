package blockchain

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/config"
)

const BLOCKHASH_CACHE_SERVICE = "cache-blockhash-svc"

const blockhashStaleness = 2 * time.Second

type CachedBlockhash struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
	Slot                 uint64
	UpdatedAt            time.Time
}

// blockhashFetcher is the slice of the RPC surface the cache needs.
type blockhashFetcher interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

type BlockhashCacheService struct {
	container.BaseDIInstance

	mu        sync.RWMutex
	current   *CachedBlockhash
	rpcClient blockhashFetcher
}

func (svc *BlockhashCacheService) ID() string {
	return BLOCKHASH_CACHE_SERVICE
}

func (svc *BlockhashCacheService) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	svc.rpcClient = rpc.New(rpcConfig.RPCUrl)
	return nil
}

// NewBlockhashCache builds a cache outside the container, mainly for tests.
func NewBlockhashCache(fetcher blockhashFetcher) *BlockhashCacheService {
	return &BlockhashCacheService{rpcClient: fetcher}
}

func (svc *BlockhashCacheService) Start() error {
	if err := svc.refresh(context.Background()); err != nil {
		log.Warn().Err(err).Msg("[BlockhashCacheService] failed to fetch initial blockhash, will retry on first request")
	}
	return nil
}

func (svc *BlockhashCacheService) refresh(ctx context.Context) error {
	res, err := svc.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return err
	}

	svc.mu.Lock()
	svc.current = &CachedBlockhash{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
		Slot:                 res.Context.Slot,
		UpdatedAt:            time.Now(),
	}
	svc.mu.Unlock()
	return nil
}

// GetBlockhash returns a recent blockhash, hitting RPC only when the cached
// one is older than the staleness window. A stale value is still returned
// when RPC is down, so an in-flight attempt can proceed.
func (svc *BlockhashCacheService) GetBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	svc.mu.RLock()
	cached := svc.current
	svc.mu.RUnlock()

	if cached != nil && time.Since(cached.UpdatedAt) < blockhashStaleness {
		return cached.Blockhash, cached.LastValidBlockHeight, nil
	}

	res, err := svc.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		if cached != nil {
			return cached.Blockhash, cached.LastValidBlockHeight, nil
		}
		return solana.Hash{}, 0, err
	}

	svc.mu.Lock()
	svc.current = &CachedBlockhash{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
		Slot:                 res.Context.Slot,
		UpdatedAt:            time.Now(),
	}
	svc.mu.Unlock()

	return res.Value.Blockhash, res.Value.LastValidBlockHeight, nil
}
