package pricing

import (
	"context"
	"sync"
	"time"
)

// quoter lets tests drive the refresher with a stub instead of the HTTP
// client.
type quoter interface {
	Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error)
}

// Refresher re-fetches an active quote on an interval while the user reviews
// it, and pauses while the attempt is submitting so a confirmed route is not
// swapped out underneath the signer.
type Refresher struct {
	client   quoter
	interval time.Duration

	mu      sync.Mutex
	paused  bool
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewRefresher(client quoter, interval time.Duration) *Refresher {
	return &Refresher{client: client, interval: interval}
}

// Start begins refreshing req, invoking onUpdate with each fresh quote.
// Failed fetches keep the last quote; onUpdate is only called on success.
func (r *Refresher) Start(ctx context.Context, req *QuoteRequest, onUpdate func(*QuoteResponse)) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.loop(ctx, req, onUpdate)
}

func (r *Refresher) loop(ctx context.Context, req *QuoteRequest, onUpdate func(*QuoteResponse)) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			paused := r.paused
			r.mu.Unlock()
			if paused {
				continue
			}
			resp, err := r.client.Quote(ctx, req)
			if err != nil {
				continue
			}
			onUpdate(resp)
		}
	}
}

// Pause keeps the loop alive but skips refreshes until Resume.
func (r *Refresher) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

func (r *Refresher) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
}

// Paused reports whether refreshes are currently suppressed.
func (r *Refresher) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Stop cancels the loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
}
