package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/metrics"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/accounts"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/batcher"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/pricing"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/submitter"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/venues"
)

const SERVICE_NAME = "RouteExecutorService"

const (
	planLabelSetup   = "setup"
	planLabelSwap    = "swap"
	planLabelCleanup = "cleanup"
)

type accountResolver interface {
	Resolve(ctx context.Context, owner, mint solana.PublicKey, wrapLamports uint64) (*accounts.Resolution, error)
	ResolveOpenOrders(ctx context.Context, owner, market, dexProgram solana.PublicKey) (*accounts.Resolution, error)
	Release(owner solana.PublicKey)
}

type adapterSource interface {
	ByKind(kind domain.VenueKind) (venues.Adapter, error)
}

type planBatcher interface {
	Batch(ctx context.Context, plans []domain.TransactionPlan, payer solana.PublicKey) ([]*batcher.Batch, error)
}

type batchSubmitter interface {
	SubmitAll(ctx context.Context, batches []*batcher.Batch) (*submitter.Result, error)
}

// refreshPauser is the quote refresher hook: suspended while the attempt is
// in flight so a confirmed route is not swapped out underneath the signer.
type refreshPauser interface {
	Pause()
	Resume()
}

// Service drives one swap attempt at a time through resolution, building,
// signing, and submission. Attempts never run concurrently; a second request
// while one is in flight is rejected.
type Service struct {
	container.BaseDIInstance

	resolver  accountResolver
	adapters  adapterSource
	batcher   planBatcher
	submitter batchSubmitter
	refresher refreshPauser

	mu    sync.Mutex
	state domain.AttemptState

	logger *services.ServiceLogger
}

func (svc *Service) ID() string {
	return SERVICE_NAME
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.resolver = c.Instance(accounts.RESOLVER_SERVICE_NAME).(*accounts.ResolverService)
	svc.adapters = c.Instance(venues.SERVICE_NAME).(*venues.Service)
	svc.batcher = c.Instance(batcher.SERVICE_NAME).(*batcher.Service)
	svc.submitter = c.Instance(submitter.SERVICE_NAME).(*submitter.Service)

	client := c.Instance(pricing.CLIENT_SERVICE_NAME).(*pricing.ClientService)
	svc.refresher = client.Refresher()

	svc.state = domain.StateIdle
	svc.logger = services.NewServiceLogger(svc)
	return nil
}

// NewExecutor builds an executor outside the container, mainly for tests.
func NewExecutor(resolver accountResolver, adapters adapterSource, b planBatcher, s batchSubmitter) *Service {
	svc := &Service{
		resolver:  resolver,
		adapters:  adapters,
		batcher:   b,
		submitter: s,
		state:     domain.StateIdle,
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

// SetRefresher attaches the pricing refresher to pause during submission.
func (svc *Service) SetRefresher(r refreshPauser) {
	svc.refresher = r
}

func (svc *Service) State() domain.AttemptState {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.state
}

func (svc *Service) begin() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.state != domain.StateIdle && !svc.state.Terminal() {
		return common.ErrSwapInProgress
	}
	svc.state = domain.StateAccountsResolving
	return nil
}

func (svc *Service) setState(s domain.AttemptState) {
	svc.mu.Lock()
	svc.state = s
	svc.mu.Unlock()
}

// Execute runs the full attempt. Failures before any transaction is
// submitted return the attempt to Idle; once submission has begun, the
// attempt settles either way and partial progress is reported through the
// error.
func (svc *Service) Execute(ctx context.Context, req *domain.SwapRequest) (*domain.SwapResult, error) {
	if err := svc.begin(); err != nil {
		return nil, err
	}
	defer svc.resolver.Release(req.User)

	if svc.refresher != nil {
		svc.refresher.Pause()
		defer svc.refresher.Resume()
	}

	plans, err := svc.BuildPlans(ctx, req)
	if err != nil {
		svc.setState(domain.StateIdle)
		metrics.SwapAttempts.WithLabelValues("build-failed").Inc()
		return &domain.SwapResult{State: domain.StateIdle, Err: err}, err
	}
	svc.setState(domain.StateReady)

	batches, err := svc.batcher.Batch(ctx, plans, req.User)
	if err != nil {
		svc.setState(domain.StateIdle)
		if errors.Is(err, common.ErrUserRejected) {
			metrics.SwapAttempts.WithLabelValues("rejected").Inc()
		} else {
			metrics.SwapAttempts.WithLabelValues("batch-failed").Inc()
		}
		return &domain.SwapResult{State: domain.StateIdle, Err: err}, err
	}

	svc.setState(domain.StateSubmitting)
	res, err := svc.submitter.SubmitAll(ctx, batches)
	if res == nil {
		res = &submitter.Result{Total: len(batches)}
	}

	result := &domain.SwapResult{
		Signatures: res.Signatures,
		Submitted:  res.Confirmed,
		Total:      res.Total,
		Err:        err,
	}
	if err != nil {
		svc.setState(domain.StateSettledFailed)
		result.State = domain.StateSettledFailed
		metrics.SwapAttempts.WithLabelValues("failed").Inc()
		svc.logger.Error().Err(err).Int("confirmed", res.Confirmed).Int("total", res.Total).Msg("swap attempt failed")
		return result, err
	}

	svc.setState(domain.StateSettledSuccess)
	result.State = domain.StateSettledSuccess
	metrics.SwapAttempts.WithLabelValues("success").Inc()
	svc.logger.Info().Int("transactions", len(batches)).Msg("swap attempt settled")
	return result, nil
}

// BuildPlans resolves every account the route needs and turns the route into
// ordered transaction plans. No side effects on chain; everything here can
// be thrown away if the wallet declines.
func (svc *Service) BuildPlans(ctx context.Context, req *domain.SwapRequest) ([]domain.TransactionPlan, error) {
	route := &req.Route
	if err := route.Validate(); err != nil {
		return nil, err
	}

	svc.setState(domain.StateAccountsResolving)
	resolved, err := svc.resolveAccounts(ctx, req)
	if err != nil {
		return nil, err
	}

	svc.setState(domain.StateInstructionsBuilding)
	descriptors, err := svc.loadDescriptors(ctx, route)
	if err != nil {
		return nil, err
	}

	if route.Direct() {
		plan, err := svc.buildDirectPlan(req, resolved, descriptors)
		if err != nil {
			return nil, err
		}
		return []domain.TransactionPlan{*plan}, nil
	}
	return svc.buildIndirectPlans(req, resolved, descriptors)
}

// resolvedAccounts collects every resolution one attempt needs, memoized so
// repeated (owner, mint) pairs resolve once.
type resolvedAccounts struct {
	source       *accounts.Resolution
	destination  *accounts.Resolution
	intermediate *accounts.Resolution
	openOrders   map[solana.PublicKey]*accounts.Resolution
}

func (svc *Service) resolveAccounts(ctx context.Context, req *domain.SwapRequest) (*resolvedAccounts, error) {
	route := &req.Route

	var wrapLamports uint64
	if route.SourceMint().Equals(common.WrappedSolMint) {
		wrapLamports = route.AmountIn()
	}

	source, err := svc.resolver.Resolve(ctx, req.User, route.SourceMint(), wrapLamports)
	if err != nil {
		return nil, err
	}
	destination, err := svc.resolver.Resolve(ctx, req.User, route.DestinationMint(), 0)
	if err != nil {
		return nil, err
	}

	resolved := &resolvedAccounts{
		source:      source,
		destination: destination,
		openOrders:  make(map[solana.PublicKey]*accounts.Resolution),
	}

	if !route.Direct() {
		intermediate, err := svc.resolver.Resolve(ctx, req.User, route.IntermediateMint(), 0)
		if err != nil {
			return nil, err
		}
		resolved.intermediate = intermediate
	}

	for _, hop := range route.Hops {
		for _, leg := range hop.Legs {
			if leg.Kind != domain.VenueOrderBook {
				continue
			}
			if _, done := resolved.openOrders[leg.Venue]; done {
				continue
			}
			dexProgram := leg.Program
			if dexProgram.IsZero() {
				dexProgram = common.SerumDexProgramID
			}
			oo, err := svc.resolver.ResolveOpenOrders(ctx, req.User, leg.Venue, dexProgram)
			if err != nil {
				return nil, err
			}
			resolved.openOrders[leg.Venue] = oo
		}
	}

	return resolved, nil
}

func (svc *Service) loadDescriptors(ctx context.Context, route *domain.Route) (map[solana.PublicKey]venues.Descriptor, error) {
	descriptors := make(map[solana.PublicKey]venues.Descriptor)
	for _, hop := range route.Hops {
		for _, leg := range hop.Legs {
			if _, done := descriptors[leg.Venue]; done {
				continue
			}
			adapter, err := svc.adapters.ByKind(leg.Kind)
			if err != nil {
				return nil, err
			}
			desc, err := adapter.Load(ctx, leg.Venue)
			if err != nil {
				metrics.VenueBuildFailures.WithLabelValues(leg.Kind.String()).Inc()
				return nil, err
			}
			descriptors[leg.Venue] = desc
		}
	}
	return descriptors, nil
}

// buildDirectPlan packs account creation, every leg's swap instruction, and
// cleanup into one plan. Each leg carries its own proportional minimum
// output.
func (svc *Service) buildDirectPlan(req *domain.SwapRequest, resolved *resolvedAccounts, descriptors map[solana.PublicKey]venues.Descriptor) (*domain.TransactionPlan, error) {
	route := &req.Route
	hop := &route.Hops[0]

	plan := &domain.TransactionPlan{Label: planLabelSwap}
	plan.Instructions = append(plan.Instructions, resolved.source.Create...)
	plan.Instructions = append(plan.Instructions, resolved.destination.Create...)
	plan.Signers = append(plan.Signers, resolved.source.Signers...)
	plan.Signers = append(plan.Signers, resolved.destination.Signers...)

	for _, oo := range resolved.openOrders {
		plan.Instructions = append(plan.Instructions, oo.Create...)
		plan.Signers = append(plan.Signers, oo.Signers...)
	}

	for i := range hop.Legs {
		leg := &hop.Legs[i]
		adapter, err := svc.adapters.ByKind(leg.Kind)
		if err != nil {
			return nil, err
		}
		params := svc.legParams(req, resolved, leg)
		params.SourceAccount = resolved.source.Address
		params.DestinationAccount = resolved.destination.Address
		params.MinimumAmountOut = venues.MinimumAmountOut(leg.AmountOut, req.SlippageBps)

		ix, err := adapter.BuildDirect(descriptors[leg.Venue], params)
		if err != nil {
			metrics.VenueBuildFailures.WithLabelValues(leg.Kind.String()).Inc()
			return nil, err
		}
		plan.Instructions = append(plan.Instructions, ix)
	}

	plan.Cleanup = append(plan.Cleanup, resolved.source.Cleanup...)
	plan.Cleanup = append(plan.Cleanup, resolved.destination.Cleanup...)
	return plan, nil
}

// buildIndirectPlans emits the strict three-plan order for a two-hop route:
// setup creates every account the swaps will reference, swap runs every
// swap-in before every swap-out, cleanup closes the temporary accounts. The
// route's overall minimum output is enforced on the final swap-out leg only.
func (svc *Service) buildIndirectPlans(req *domain.SwapRequest, resolved *resolvedAccounts, descriptors map[solana.PublicKey]venues.Descriptor) ([]domain.TransactionPlan, error) {
	route := &req.Route

	setup := domain.TransactionPlan{Label: planLabelSetup}
	setup.Instructions = append(setup.Instructions, resolved.source.Create...)
	setup.Instructions = append(setup.Instructions, resolved.intermediate.Create...)
	setup.Instructions = append(setup.Instructions, resolved.destination.Create...)
	setup.Signers = append(setup.Signers, resolved.source.Signers...)
	setup.Signers = append(setup.Signers, resolved.intermediate.Signers...)
	setup.Signers = append(setup.Signers, resolved.destination.Signers...)
	for _, oo := range resolved.openOrders {
		setup.Instructions = append(setup.Instructions, oo.Create...)
		setup.Signers = append(setup.Signers, oo.Signers...)
	}

	// The bookkeeping account tracks the expected intermediate balance
	// across the two hops; the swap instructions reference it writable.
	initInfo, err := venues.NewSwapInfoInitInstruction(req.User)
	if err != nil {
		return nil, err
	}
	setup.Instructions = append(setup.Instructions, initInfo)

	swap := domain.TransactionPlan{Label: planLabelSwap, DependsOn: []int{0}}

	hopIn := &route.Hops[0]
	for i := range hopIn.Legs {
		leg := &hopIn.Legs[i]
		adapter, err := svc.adapters.ByKind(leg.Kind)
		if err != nil {
			return nil, err
		}
		params := svc.legParams(req, resolved, leg)
		params.SourceAccount = resolved.source.Address
		params.DestinationAccount = resolved.intermediate.Address

		ix, err := adapter.BuildSwapIn(descriptors[leg.Venue], params)
		if err != nil {
			metrics.VenueBuildFailures.WithLabelValues(leg.Kind.String()).Inc()
			return nil, err
		}
		swap.Instructions = append(swap.Instructions, ix)
	}

	hopOut := &route.Hops[1]
	for i := range hopOut.Legs {
		leg := &hopOut.Legs[i]
		adapter, err := svc.adapters.ByKind(leg.Kind)
		if err != nil {
			return nil, err
		}
		params := svc.legParams(req, resolved, leg)
		params.SourceAccount = resolved.intermediate.Address
		params.DestinationAccount = resolved.destination.Address
		if i == len(hopOut.Legs)-1 {
			params.MinimumAmountOut = venues.MinimumAmountOut(route.AmountOut(), req.SlippageBps)
		}

		ix, err := adapter.BuildSwapOut(descriptors[leg.Venue], params)
		if err != nil {
			metrics.VenueBuildFailures.WithLabelValues(leg.Kind.String()).Inc()
			return nil, err
		}
		swap.Instructions = append(swap.Instructions, ix)
	}

	cleanup := domain.TransactionPlan{Label: planLabelCleanup, DependsOn: []int{1}}
	cleanup.Instructions = append(cleanup.Instructions, resolved.source.Cleanup...)
	cleanup.Instructions = append(cleanup.Instructions, resolved.intermediate.Cleanup...)
	cleanup.Instructions = append(cleanup.Instructions, resolved.destination.Cleanup...)

	closeInfo, err := venues.NewSwapInfoCloseInstruction(req.User)
	if err != nil {
		return nil, err
	}
	cleanup.Instructions = append(cleanup.Instructions, closeInfo)

	return []domain.TransactionPlan{setup, swap, cleanup}, nil
}

func (svc *Service) legParams(req *domain.SwapRequest, resolved *resolvedAccounts, leg *domain.Leg) venues.BuildParams {
	params := venues.BuildParams{
		User:            req.User,
		SourceMint:      leg.SourceMint,
		DestinationMint: leg.DestinationMint,
		FeeAccount:      req.FeeAccount,
		AmountIn:        leg.AmountIn,
	}
	if oo, ok := resolved.openOrders[leg.Venue]; ok {
		params.OpenOrders = oo.Address
	}
	return params
}
