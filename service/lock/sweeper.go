package lock

import (
	"context"
	"sync"
	"time"
)

// Sweeper periodically reclaims expired leases. It is a liveness
// optimisation, not a correctness dependency: acquire/heartbeat/release
// already honour expiry lazily at the moment they inspect a lease.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	onEvict  func(evicted []LeaseView)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper builds a sweeper over registry, running every interval.
// onEvict, if non-nil, is called after each pass that evicted at least one
// lease, with every lease evicted that pass (used to feed the audit publisher one EventExpired per lease).
func NewSweeper(registry *Registry, interval time.Duration, onEvict func(evicted []LeaseView)) *Sweeper {
	return &Sweeper{registry: registry, interval: interval, onEvict: onEvict}
}

// Start launches the background sweep loop. Stop must be called to release
// its goroutine.
func (sw *Sweeper) Start(ctx context.Context) {
	sw.ctx, sw.cancel = context.WithCancel(ctx)

	sw.wg.Add(1)
	go sw.runLoop()
}

// Stop cancels the sweep loop and waits for it to exit.
func (sw *Sweeper) Stop() {
	if sw.cancel != nil {
		sw.cancel()
	}
	sw.wg.Wait()
}

func (sw *Sweeper) runLoop() {
	defer sw.wg.Done()

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.ctx.Done():
			return
		case <-ticker.C:
			sw.sweepOnce()
		}
	}
}

// sweepOnce sweeps every shard in turn, releasing each shard's lock between
// batches so a long sweep never holds up acquire/heartbeat/release traffic
// on unrelated keys.
func (sw *Sweeper) sweepOnce() {
	sw.sweepOnceAt(time.Now())
}

// sweepOnceAt runs a single sweep pass as of now, exposed for tests that
// need deterministic expiry timing.
func (sw *Sweeper) sweepOnceAt(now time.Time) {
	var evicted []LeaseView
	for _, s := range sw.registry.shards {
		evicted = append(evicted, s.sweepOnce(now)...)
	}
	if len(evicted) > 0 {
		sw.registry.evictions.Add(int64(len(evicted)))
		if sw.onEvict != nil {
			sw.onEvict(evicted)
		}
	}
}
