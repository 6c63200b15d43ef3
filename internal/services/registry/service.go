package registry

import (
	"bytes"
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/adapters/persistence"
	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/metrics"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
)

const SERVICE_NAME = "VenueRegistryService"

// venue account sizes used as discovery filters.
const (
	tokenSwapAccountSize  = 324
	stableSwapAccountSize = 395
	serumMarketSize       = 388
	raydiumAmmSize        = 752
)

// programScanner is the slice of the RPC surface discovery needs.
type programScanner interface {
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
}

type pairKey struct {
	Kind  domain.VenueKind
	MintA solana.PublicKey
	MintB solana.PublicKey
}

// normalizePair orders the mints so both directions hit the same index
// entry.
func normalizePair(kind domain.VenueKind, a, b solana.PublicKey) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{Kind: kind, MintA: a, MintB: b}
}

// Service discovers venues on chain, keeps them indexed by traded pair, and
// persists them so a restart does not rescan every program.
type Service struct {
	container.BaseDIInstance

	rpcClient programScanner
	storage   *persistence.Storage
	venues    *ShardedVenueMap

	pairMu    sync.RWMutex
	pairIndex map[pairKey][]solana.PublicKey

	persistEnabled bool
	logger         *services.ServiceLogger
}

func (svc *Service) ID() string {
	return SERVICE_NAME
}

func (svc *Service) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	engineConfig := c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)

	svc.rpcClient = rpc.New(rpcConfig.RPCUrl)
	svc.venues = NewShardedVenueMap()
	svc.pairIndex = make(map[pairKey][]solana.PublicKey)
	svc.persistEnabled = engineConfig.PersistenceEnabled
	svc.logger = services.NewServiceLogger(svc)

	if svc.persistEnabled {
		storage, err := persistence.NewStorage(engineConfig.DBPath)
		if err != nil {
			return err
		}
		svc.storage = storage
	}
	return nil
}

// NewRegistry builds a registry outside the container, mainly for tests.
func NewRegistry(scanner programScanner) *Service {
	svc := &Service{
		rpcClient: scanner,
		venues:    NewShardedVenueMap(),
		pairIndex: make(map[pairKey][]solana.PublicKey),
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

func (svc *Service) Start() error {
	if svc.storage == nil {
		return nil
	}
	venues, err := svc.storage.LoadVenues()
	if err != nil {
		svc.logger.Warn().Err(err).Msg("failed to load persisted venues")
		return nil
	}
	for _, venue := range venues {
		svc.Add(venue)
	}
	svc.logger.Info().Int("count", len(venues)).Msg("loaded persisted venues")
	return nil
}

func (svc *Service) Stop() error {
	if svc.storage == nil {
		return nil
	}
	if err := svc.Persist(); err != nil {
		svc.logger.Error().Err(err).Msg("failed to persist venues on shutdown")
	}
	return svc.storage.Close()
}

// Add registers a venue and indexes it by pair.
func (svc *Service) Add(venue *domain.VenueRecord) {
	if _, exists := svc.venues.Get(venue.Address); !exists {
		key := normalizePair(venue.Kind, venue.MintA, venue.MintB)
		svc.pairMu.Lock()
		svc.pairIndex[key] = append(svc.pairIndex[key], venue.Address)
		svc.pairMu.Unlock()
	}
	svc.venues.Set(venue.Address, venue)
	metrics.VenueCount.Set(float64(svc.venues.Len()))
}

// Count returns the number of venues currently known.
func (svc *Service) Count() int {
	return svc.venues.Len()
}

func (svc *Service) Get(address solana.PublicKey) (*domain.VenueRecord, bool) {
	return svc.venues.Get(address)
}

// ForPair returns every known venue of the given kind trading the pair, in
// either direction.
func (svc *Service) ForPair(kind domain.VenueKind, mintA, mintB solana.PublicKey) []*domain.VenueRecord {
	key := normalizePair(kind, mintA, mintB)
	svc.pairMu.RLock()
	addresses := svc.pairIndex[key]
	svc.pairMu.RUnlock()

	out := make([]*domain.VenueRecord, 0, len(addresses))
	for _, addr := range addresses {
		if venue, ok := svc.venues.Get(addr); ok && venue.Active {
			out = append(out, venue)
		}
	}
	return out
}

// Programs returns the executable program IDs behind every known venue kind,
// in the form the pricing service expects.
func (svc *Service) Programs() []string {
	return []string{
		common.TokenSwapProgramID.String(),
		common.SerumDexProgramID.String(),
		common.StableSwapProgramID.String(),
		common.RaydiumAmmProgramID.String(),
	}
}

// Persist batch-saves the current venue set.
func (svc *Service) Persist() error {
	if svc.storage == nil {
		return nil
	}
	all := make([]*domain.VenueRecord, 0, svc.venues.Len())
	svc.venues.Range(func(_ solana.PublicKey, venue *domain.VenueRecord) bool {
		all = append(all, venue)
		return true
	})
	return svc.storage.SaveVenueBatch(all)
}

// Discover scans the venue programs for accounts of the right size and
// registers everything it can parse. Each program failing individually does
// not abort the others.
func (svc *Service) Discover(ctx context.Context) error {
	scans := []struct {
		kind     domain.VenueKind
		program  solana.PublicKey
		dataSize uint64
		parse    func(addr solana.PublicKey, data []byte) (*domain.VenueRecord, error)
	}{
		{domain.VenuePoolSwap, common.TokenSwapProgramID, tokenSwapAccountSize, parseTokenSwapVenue},
		{domain.VenueOrderBook, common.SerumDexProgramID, serumMarketSize, parseSerumVenue},
		{domain.VenueStableSwap, common.StableSwapProgramID, stableSwapAccountSize, parseStableSwapVenue},
		{domain.VenueConstantFunctionAMM, common.RaydiumAmmProgramID, raydiumAmmSize, parseRaydiumVenue},
	}

	var lastErr error
	for _, scan := range scans {
		accounts, err := svc.rpcClient.GetProgramAccountsWithOpts(ctx, scan.program, &rpc.GetProgramAccountsOpts{
			Filters: []rpc.RPCFilter{{DataSize: scan.dataSize}},
		})
		if err != nil {
			svc.logger.Warn().Err(err).Str("kind", scan.kind.String()).Msg("venue scan failed")
			lastErr = err
			continue
		}
		added := 0
		for _, acc := range accounts {
			venue, err := scan.parse(acc.Pubkey, acc.Account.Data.GetBinary())
			if err != nil {
				continue
			}
			svc.Add(venue)
			added++
		}
		svc.logger.Info().Str("kind", scan.kind.String()).Int("count", added).Msg("venue scan complete")
	}
	return lastErr
}
