package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/accounts"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/batcher"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/submitter"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/venues"
)

// stubResolver hands out canned resolutions keyed by mint and records what
// the executor asked for.
type stubResolver struct {
	byMint     map[solana.PublicKey]*accounts.Resolution
	openOrders map[solana.PublicKey]*accounts.Resolution

	wrapLamports    map[solana.PublicKey]uint64
	openOrdersCalls int
	releaseCalls    int
	resolveErr      error
}

func (s *stubResolver) Release(owner solana.PublicKey) {
	s.releaseCalls++
}

func (s *stubResolver) Resolve(ctx context.Context, owner, mint solana.PublicKey, wrapLamports uint64) (*accounts.Resolution, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	if s.wrapLamports == nil {
		s.wrapLamports = make(map[solana.PublicKey]uint64)
	}
	s.wrapLamports[mint] = wrapLamports
	if res, ok := s.byMint[mint]; ok {
		return res, nil
	}
	return &accounts.Resolution{Address: mint}, nil
}

func (s *stubResolver) ResolveOpenOrders(ctx context.Context, owner, market, dexProgram solana.PublicKey) (*accounts.Resolution, error) {
	s.openOrdersCalls++
	if res, ok := s.openOrders[market]; ok {
		return res, nil
	}
	return &accounts.Resolution{Address: market}, nil
}

// legCall records one instruction build with the mode it was built for.
type legCall struct {
	mode   string
	venue  solana.PublicKey
	params venues.BuildParams
}

type stubDescriptor struct {
	venue solana.PublicKey
	kind  domain.VenueKind
}

func (d *stubDescriptor) Venue() solana.PublicKey { return d.venue }
func (d *stubDescriptor) Kind() domain.VenueKind  { return d.kind }
func (d *stubDescriptor) Metas(_, _ solana.PublicKey, _ venues.BuildParams) ([]*solana.AccountMeta, error) {
	return nil, nil
}

type stubAdapters struct {
	calls   *[]legCall
	loadErr error
}

func (s *stubAdapters) ByKind(kind domain.VenueKind) (venues.Adapter, error) {
	return &stubAdapter{kind: kind, calls: s.calls, loadErr: s.loadErr}, nil
}

type stubAdapter struct {
	kind    domain.VenueKind
	calls   *[]legCall
	loadErr error
}

func (a *stubAdapter) Kind() domain.VenueKind { return a.kind }

func (a *stubAdapter) Load(ctx context.Context, venue solana.PublicKey) (venues.Descriptor, error) {
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	return &stubDescriptor{venue: venue, kind: a.kind}, nil
}

func (a *stubAdapter) build(mode string, desc venues.Descriptor, p venues.BuildParams) (solana.Instruction, error) {
	*a.calls = append(*a.calls, legCall{mode: mode, venue: desc.Venue(), params: p})
	return solana.NewInstruction(common.AggregatorProgramID, nil, []byte(mode)), nil
}

func (a *stubAdapter) BuildDirect(desc venues.Descriptor, p venues.BuildParams) (solana.Instruction, error) {
	return a.build("direct", desc, p)
}

func (a *stubAdapter) BuildSwapIn(desc venues.Descriptor, p venues.BuildParams) (solana.Instruction, error) {
	return a.build("swap-in", desc, p)
}

func (a *stubAdapter) BuildSwapOut(desc venues.Descriptor, p venues.BuildParams) (solana.Instruction, error) {
	return a.build("swap-out", desc, p)
}

type stubBatcher struct {
	plans   []domain.TransactionPlan
	err     error
	entered chan struct{}
	release chan struct{}
}

func (b *stubBatcher) Batch(ctx context.Context, plans []domain.TransactionPlan, payer solana.PublicKey) ([]*batcher.Batch, error) {
	b.plans = plans
	if b.entered != nil {
		close(b.entered)
		<-b.release
	}
	if b.err != nil {
		return nil, b.err
	}
	batches := make([]*batcher.Batch, 0, len(plans))
	for _, p := range plans {
		batches = append(batches, &batcher.Batch{Plans: []string{p.Label}})
	}
	return batches, nil
}

type stubSubmitter struct {
	result *submitter.Result
	err    error
	calls  int
}

func (s *stubSubmitter) SubmitAll(ctx context.Context, batches []*batcher.Batch) (*submitter.Result, error) {
	s.calls++
	if s.result == nil {
		s.result = &submitter.Result{Confirmed: len(batches), Total: len(batches)}
		for range batches {
			s.result.Signatures = append(s.result.Signatures, solana.Signature{})
		}
	}
	return s.result, s.err
}

type stubPauser struct {
	paused  bool
	pauses  int
	resumes int
}

func (p *stubPauser) Pause()  { p.paused = true; p.pauses++ }
func (p *stubPauser) Resume() { p.paused = false; p.resumes++ }

func mintKey(seed byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = seed
	k[31] = 0xff
	return k
}

func directRoute() domain.Route {
	return domain.Route{Hops: []domain.Hop{{
		AmountIn:  1_000_000_000,
		AmountOut: 1_990_000,
		Legs: []domain.Leg{{
			Kind:            domain.VenuePoolSwap,
			Venue:           mintKey(0x10),
			SourceMint:      mintKey(1),
			DestinationMint: mintKey(2),
			AmountIn:        1_000_000_000,
			AmountOut:       1_990_000,
		}},
	}}}
}

func indirectRoute(sourceMint solana.PublicKey) domain.Route {
	inter := mintKey(2)
	dest := mintKey(3)
	return domain.Route{Hops: []domain.Hop{
		{
			AmountIn:  5_000_000_000,
			AmountOut: 900_000_000,
			Legs: []domain.Leg{
				{
					Kind:            domain.VenuePoolSwap,
					Venue:           mintKey(0x10),
					SourceMint:      sourceMint,
					DestinationMint: inter,
					AmountIn:        3_000_000_000,
					AmountOut:       540_000_000,
				},
				{
					Kind:            domain.VenueOrderBook,
					Venue:           mintKey(0x11),
					SourceMint:      sourceMint,
					DestinationMint: inter,
					AmountIn:        2_000_000_000,
					AmountOut:       360_000_000,
				},
			},
		},
		{
			AmountIn:  900_000_000,
			AmountOut: 898_000_000,
			Legs: []domain.Leg{{
				Kind:            domain.VenueStableSwap,
				Venue:           mintKey(0x12),
				SourceMint:      inter,
				DestinationMint: dest,
				AmountIn:        900_000_000,
				AmountOut:       898_000_000,
			}},
		},
	}}
}

func noopIx() solana.Instruction {
	return solana.NewInstruction(common.SystemProgramID, nil, nil)
}

func newTestExecutor(resolver *stubResolver, calls *[]legCall, b *stubBatcher, s *stubSubmitter) *Service {
	return NewExecutor(resolver, &stubAdapters{calls: calls}, b, s)
}

func TestExecuteDirectRoute(t *testing.T) {
	destCreate := noopIx()
	resolver := &stubResolver{
		byMint: map[solana.PublicKey]*accounts.Resolution{
			mintKey(2): {Address: mintKey(0x20), Create: []solana.Instruction{destCreate}},
		},
	}
	var calls []legCall
	b := &stubBatcher{}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	req := &domain.SwapRequest{
		User:        solana.NewWallet().PublicKey(),
		Route:       directRoute(),
		SlippageBps: 50,
	}

	res, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.State != domain.StateSettledSuccess {
		t.Errorf("state = %s, want settled-success", res.State)
	}
	if svc.State() != domain.StateSettledSuccess {
		t.Errorf("service state = %s, want settled-success", svc.State())
	}

	// One combined plan: destination creation then the single leg.
	if len(b.plans) != 1 {
		t.Fatalf("plans = %d, want 1 for a direct route", len(b.plans))
	}
	plan := b.plans[0]
	if len(plan.DependsOn) != 0 {
		t.Errorf("a direct plan depends on nothing")
	}
	if len(plan.Instructions) != 2 {
		t.Fatalf("instructions = %d, want create plus swap", len(plan.Instructions))
	}
	if plan.Instructions[0] != destCreate {
		t.Errorf("account creation must precede the swap")
	}

	if len(calls) != 1 || calls[0].mode != "direct" {
		t.Fatalf("adapter calls = %v, want one direct build", calls)
	}
	// 1_990_000 quoted at 50 bps tolerance.
	if got := calls[0].params.MinimumAmountOut; got != 1_980_050 {
		t.Errorf("minimum out = %d, want 1980050", got)
	}
	if got := calls[0].params.AmountIn; got != 1_000_000_000 {
		t.Errorf("amount in = %d, want the leg amount", got)
	}
	if res.Submitted != 1 || res.Total != 1 {
		t.Errorf("submitted/total = %d/%d, want 1/1", res.Submitted, res.Total)
	}
}

func TestExecuteIndirectRouteThreePlans(t *testing.T) {
	wrapCreate := noopIx()
	wrapClose := noopIx()
	ooCreate := noopIx()
	tempKey := solana.NewWallet().PrivateKey
	ooKey := solana.NewWallet().PrivateKey

	resolver := &stubResolver{
		byMint: map[solana.PublicKey]*accounts.Resolution{
			common.WrappedSolMint: {
				Address:     mintKey(0x30),
				Create:      []solana.Instruction{wrapCreate},
				Cleanup:     []solana.Instruction{wrapClose},
				Signers:     []solana.PrivateKey{tempKey},
				NewlyFunded: true,
			},
		},
		openOrders: map[solana.PublicKey]*accounts.Resolution{
			mintKey(0x11): {
				Address: mintKey(0x31),
				Create:  []solana.Instruction{ooCreate},
				Signers: []solana.PrivateKey{ooKey},
			},
		},
	}
	var calls []legCall
	b := &stubBatcher{}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	route := indirectRoute(common.WrappedSolMint)
	req := &domain.SwapRequest{
		User:        solana.NewWallet().PublicKey(),
		Route:       route,
		SlippageBps: 50,
	}

	res, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.State != domain.StateSettledSuccess {
		t.Errorf("state = %s, want settled-success", res.State)
	}

	// The wrapped source is funded with the full route input.
	if got := resolver.wrapLamports[common.WrappedSolMint]; got != 5_000_000_000 {
		t.Errorf("wrap lamports = %d, want the route input", got)
	}

	if len(b.plans) != 3 {
		t.Fatalf("plans = %d, want setup, swap, cleanup", len(b.plans))
	}
	setup, swap, cleanup := b.plans[0], b.plans[1], b.plans[2]

	if setup.Label != "setup" || swap.Label != "swap" || cleanup.Label != "cleanup" {
		t.Errorf("plan labels = %s/%s/%s", setup.Label, swap.Label, cleanup.Label)
	}
	if len(setup.DependsOn) != 0 {
		t.Errorf("setup depends on nothing")
	}
	if len(swap.DependsOn) != 1 || swap.DependsOn[0] != 0 {
		t.Errorf("swap must depend on setup, got %v", swap.DependsOn)
	}
	if len(cleanup.DependsOn) != 1 || cleanup.DependsOn[0] != 1 {
		t.Errorf("cleanup must depend on swap, got %v", cleanup.DependsOn)
	}

	// Account creation, open-orders included, lives in setup so the swap
	// can reference live accounts.
	foundWrap, foundOO := false, false
	for _, ix := range setup.Instructions {
		if ix == wrapCreate {
			foundWrap = true
		}
		if ix == ooCreate {
			foundOO = true
		}
	}
	if !foundWrap || !foundOO {
		t.Errorf("setup must create the wrapped account and the open orders account")
	}
	if len(setup.Signers) != 2 {
		t.Errorf("setup signers = %d, want temp account and open orders keys", len(setup.Signers))
	}

	// Setup ends by initializing the bookkeeping account the swap
	// instructions reference.
	swapInfo, _ := venues.SwapInfoAddress(req.User)
	last := setup.Instructions[len(setup.Instructions)-1]
	if !last.ProgramID().Equals(common.AggregatorProgramID) {
		t.Fatalf("setup must end with the bookkeeping init instruction")
	}
	if !last.Accounts()[0].PublicKey.Equals(swapInfo) {
		t.Errorf("bookkeeping init must target the user's swap info account")
	}

	// Swap plan holds only swap instructions: both swap-ins, then the
	// swap-out.
	if len(swap.Instructions) != 3 {
		t.Fatalf("swap instructions = %d, want 3 legs", len(swap.Instructions))
	}
	if len(calls) != 3 || calls[0].mode != "swap-in" || calls[1].mode != "swap-in" || calls[2].mode != "swap-out" {
		t.Fatalf("leg order = %v, want both swap-ins before the swap-out", calls)
	}

	// Only the final swap-out carries the route-level minimum.
	if calls[0].params.MinimumAmountOut != 0 || calls[1].params.MinimumAmountOut != 0 {
		t.Errorf("swap-in legs must not enforce a minimum")
	}
	want := venues.MinimumAmountOut(route.AmountOut(), 50)
	if got := calls[2].params.MinimumAmountOut; got != want {
		t.Errorf("final leg minimum = %d, want %d", got, want)
	}

	// The serum leg gets its open orders account.
	if !calls[1].params.OpenOrders.Equals(mintKey(0x31)) {
		t.Errorf("order book leg must carry the resolved open orders account")
	}
	if !calls[0].params.OpenOrders.IsZero() {
		t.Errorf("pool leg must not carry open orders")
	}

	// Cleanup closes the wrapped account, then the bookkeeping account.
	if len(cleanup.Instructions) != 2 || cleanup.Instructions[0] != wrapClose {
		t.Fatalf("cleanup = %d instructions, want the wrapped close then the bookkeeping close", len(cleanup.Instructions))
	}
	if !cleanup.Instructions[1].ProgramID().Equals(common.AggregatorProgramID) {
		t.Errorf("cleanup must close the swap info account")
	}

	if res.Submitted != 3 || res.Total != 3 {
		t.Errorf("submitted/total = %d/%d, want 3/3", res.Submitted, res.Total)
	}
}

func TestExecuteIndirectNonNativePlansNeverEmpty(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	// No wrapped source: every resolution is an existing account, so the
	// bookkeeping instructions alone must keep setup and cleanup alive.
	route := indirectRoute(mintKey(1))
	req := &domain.SwapRequest{
		User:        solana.NewWallet().PublicKey(),
		Route:       route,
		SlippageBps: 50,
	}

	res, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(b.plans) != 3 {
		t.Fatalf("plans = %d, want setup, swap, cleanup", len(b.plans))
	}
	for _, plan := range b.plans {
		if plan.Empty() {
			t.Errorf("plan %q must not be empty", plan.Label)
		}
	}

	swapInfo, _ := venues.SwapInfoAddress(req.User)
	setupLast := b.plans[0].Instructions[len(b.plans[0].Instructions)-1]
	if !setupLast.ProgramID().Equals(common.AggregatorProgramID) || !setupLast.Accounts()[0].PublicKey.Equals(swapInfo) {
		t.Errorf("setup must initialize the swap info account")
	}
	cleanupLast := b.plans[2].Instructions[len(b.plans[2].Instructions)-1]
	if !cleanupLast.ProgramID().Equals(common.AggregatorProgramID) || !cleanupLast.Accounts()[0].PublicKey.Equals(swapInfo) {
		t.Errorf("cleanup must close the swap info account")
	}

	if res.Submitted != 3 || res.Total != 3 {
		t.Errorf("submitted/total = %d/%d, want all three transactions", res.Submitted, res.Total)
	}
	if res.State != domain.StateSettledSuccess {
		t.Errorf("state = %s, want settled-success", res.State)
	}
}

func TestExecuteInvalidRouteReturnsIdle(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	route := directRoute()
	route.Hops[0].Legs[0].AmountIn = 1 // breaks the leg sum invariant
	req := &domain.SwapRequest{User: solana.NewWallet().PublicKey(), Route: route}

	_, err := svc.Execute(context.Background(), req)
	if !errors.Is(err, domain.ErrLegAmountSum) {
		t.Fatalf("error = %v, want ErrLegAmountSum", err)
	}
	if svc.State() != domain.StateIdle {
		t.Errorf("state = %s, want idle after a build failure", svc.State())
	}
	if b.plans != nil || sub.calls != 0 {
		t.Errorf("nothing may be batched or submitted for an invalid route")
	}
}

func TestExecuteUserRejectionReturnsIdle(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{err: fmt.Errorf("%w: user closed the dialog", common.ErrUserRejected)}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	req := &domain.SwapRequest{User: solana.NewWallet().PublicKey(), Route: directRoute()}

	res, err := svc.Execute(context.Background(), req)
	if !errors.Is(err, common.ErrUserRejected) {
		t.Fatalf("error = %v, want ErrUserRejected", err)
	}
	if res.State != domain.StateIdle || svc.State() != domain.StateIdle {
		t.Errorf("a rejection must return the attempt to idle")
	}
	if sub.calls != 0 {
		t.Errorf("nothing may be submitted after a rejection")
	}

	// The attempt slot is free again.
	if _, err := svc.Execute(context.Background(), req); errors.Is(err, common.ErrSwapInProgress) {
		t.Errorf("a fresh attempt must be allowed after a rejection")
	}
}

func TestExecuteSubmissionFailureSettles(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{}
	sub := &stubSubmitter{
		result: &submitter.Result{Signatures: []solana.Signature{{}}, Confirmed: 1, Total: 2},
		err:    &common.OnChainError{Index: 1, Total: 2, Succeeded: 1},
	}
	svc := newTestExecutor(resolver, &calls, b, sub)

	req := &domain.SwapRequest{User: solana.NewWallet().PublicKey(), Route: directRoute()}

	res, err := svc.Execute(context.Background(), req)
	var onchain *common.OnChainError
	if !errors.As(err, &onchain) {
		t.Fatalf("error = %v, want the submitter's OnChainError", err)
	}
	if res.State != domain.StateSettledFailed || svc.State() != domain.StateSettledFailed {
		t.Errorf("a submission failure must settle the attempt as failed")
	}
	if res.Submitted != 1 {
		t.Errorf("submitted = %d, want the partial progress", res.Submitted)
	}
	// The denominator comes from the submitter, matching the error text.
	if res.Total != 2 {
		t.Errorf("total = %d, want the submitter's sequence length 2", res.Total)
	}
}

func TestExecuteRejectsConcurrentAttempts(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{entered: make(chan struct{}), release: make(chan struct{})}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	req := &domain.SwapRequest{User: solana.NewWallet().PublicKey(), Route: directRoute()}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Execute(context.Background(), req)
		done <- err
	}()

	<-b.entered
	if _, err := svc.Execute(context.Background(), req); !errors.Is(err, common.ErrSwapInProgress) {
		t.Errorf("concurrent attempt error = %v, want ErrSwapInProgress", err)
	}
	close(b.release)

	if err := <-done; err != nil {
		t.Fatalf("first attempt: %v", err)
	}
}

func TestExecutePausesRefresherForWholeAttempt(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{err: fmt.Errorf("%w: declined", common.ErrUserRejected)}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	pauser := &stubPauser{}
	svc.SetRefresher(pauser)

	req := &domain.SwapRequest{User: solana.NewWallet().PublicKey(), Route: directRoute()}
	if _, err := svc.Execute(context.Background(), req); !errors.Is(err, common.ErrUserRejected) {
		t.Fatalf("error = %v, want ErrUserRejected", err)
	}

	// Paused before signing, resumed after, even on the rejection path.
	if pauser.pauses != 1 || pauser.resumes != 1 {
		t.Errorf("pause/resume = %d/%d, want 1/1", pauser.pauses, pauser.resumes)
	}
	if pauser.paused {
		t.Errorf("refresher must be running again after the attempt")
	}
}

func TestExecuteOpenOrdersResolvedOncePerVenue(t *testing.T) {
	resolver := &stubResolver{}
	var calls []legCall
	b := &stubBatcher{}
	sub := &stubSubmitter{}
	svc := newTestExecutor(resolver, &calls, b, sub)

	// Two hops both filled on the same serum market.
	inter := mintKey(2)
	market := mintKey(0x11)
	route := domain.Route{Hops: []domain.Hop{
		{
			AmountIn: 100, AmountOut: 90,
			Legs: []domain.Leg{{
				Kind: domain.VenueOrderBook, Venue: market,
				SourceMint: mintKey(1), DestinationMint: inter,
				AmountIn: 100, AmountOut: 90,
			}},
		},
		{
			AmountIn: 90, AmountOut: 80,
			Legs: []domain.Leg{{
				Kind: domain.VenueOrderBook, Venue: market,
				SourceMint: inter, DestinationMint: mintKey(3),
				AmountIn: 90, AmountOut: 80,
			}},
		},
	}}

	req := &domain.SwapRequest{User: solana.NewWallet().PublicKey(), Route: route}
	if _, err := svc.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resolver.openOrdersCalls != 1 {
		t.Errorf("open orders resolutions = %d, want 1 for a repeated venue", resolver.openOrdersCalls)
	}
}
