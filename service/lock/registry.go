package lock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// shard is one independently-locked stripe of the registry. It owns both
// its slice of the primary (namespace, business_id) -> Lease map and its
// slice of the lock_id -> Key reverse index, so the two always move
// together under the same critical section.
type shard struct {
	mu      sync.Mutex
	leases  map[Key]*Lease
	reverse map[string]Key
}

// Registry is the concurrent (namespace, business_id) -> Lease map described
// by the core: acquire/heartbeat/release plus the counters the metrics
// package scrapes.
type Registry struct {
	shards                []*shard
	defaultTimeoutSeconds int
	maxTimeoutSeconds     int

	acquiresGranted    atomic.Int64
	acquiresDenied     atomic.Int64
	heartbeatsAccepted atomic.Int64
	heartbeatsRejected atomic.Int64
	releases           atomic.Int64
	evictions          atomic.Int64
}

// NewRegistry builds a registry with shardCount stripes. defaultTimeout is
// used when an acquire omits timeout_seconds; maxTimeout clamps requests
// above the configured cap rather than rejecting them.
func NewRegistry(shardCount, defaultTimeoutSeconds, maxTimeoutSeconds int) *Registry {
	if shardCount < 1 {
		shardCount = 1
	}
	r := &Registry{
		shards:                make([]*shard, shardCount),
		defaultTimeoutSeconds: defaultTimeoutSeconds,
		maxTimeoutSeconds:     maxTimeoutSeconds,
	}
	for i := range r.shards {
		r.shards[i] = &shard{
			leases:  make(map[Key]*Lease),
			reverse: make(map[string]Key),
		}
	}
	return r
}

func (r *Registry) shardFor(namespace, businessID string) (int, *shard) {
	idx := shardIndex(namespace, businessID, len(r.shards))
	return idx, r.shards[idx]
}

func (r *Registry) mintLockID(shardIdx int) string {
	return fmt.Sprintf("%x-%s", shardIdx, uuid.New().String())
}

// shardOfLockID recovers the shard a lock_id was minted from, from the
// prefix embedded by mintLockID. An unparseable or out-of-range prefix means
// the id was never issued by this registry.
func (r *Registry) shardOfLockID(lockID string) (*shard, bool) {
	prefix, _, ok := strings.Cut(lockID, "-")
	if !ok {
		return nil, false
	}
	idx, err := strconv.ParseInt(prefix, 16, 64)
	if err != nil || idx < 0 || int(idx) >= len(r.shards) {
		return nil, false
	}
	return r.shards[idx], true
}

// AcquireInput bundles an acquire request after request-level validation.
type AcquireInput struct {
	Namespace      string
	BusinessID     string
	UserID         string
	UserName       string
	TimeoutSeconds int
}

// Acquire implements spec §4.2.1: reentrant hit on same-owner re-acquire,
// LockHeld on a different live owner, otherwise a fresh grant. Returns the
// lock_id on success, along with whether the grant was a reentrant hit on
// an existing lease (as opposed to a fresh one) so callers can tell the two
// apart for auditing.
func (r *Registry) Acquire(in AcquireInput, now time.Time) (lockID string, reentrant bool, err error) {
	namespace := in.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if in.UserID == "" || in.BusinessID == "" {
		return "", false, ErrInvalidRequest
	}

	timeout := in.TimeoutSeconds
	if timeout == 0 {
		timeout = r.defaultTimeoutSeconds
	}
	if timeout <= 0 {
		return "", false, ErrInvalidRequest
	}
	if r.maxTimeoutSeconds > 0 && timeout > r.maxTimeoutSeconds {
		timeout = r.maxTimeoutSeconds
	}

	key := Key{Namespace: namespace, BusinessID: in.BusinessID}
	idx, s := r.shardFor(namespace, in.BusinessID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.leases[key]; ok {
		if existing.IsExpired(now) {
			delete(s.leases, key)
			delete(s.reverse, existing.LockID)
			r.evictions.Add(1)
			existing = nil
			ok = false
		}

		if ok {
			if existing.UserID == in.UserID {
				existing.Deadline = now.Add(time.Duration(timeout) * time.Second)
				existing.TimeoutSeconds = timeout
				r.acquiresGranted.Add(1)
				return existing.LockID, true, nil
			}
			r.acquiresDenied.Add(1)
			return "", false, ErrLockHeld
		}
	}

	lockID = r.mintLockID(idx)
	lease := &Lease{
		LockID:         lockID,
		Namespace:      namespace,
		BusinessID:     in.BusinessID,
		UserID:         in.UserID,
		UserName:       in.UserName,
		TimeoutSeconds: timeout,
		Deadline:       now.Add(time.Duration(timeout) * time.Second),
		CreatedAt:      now,
	}
	s.leases[key] = lease
	s.reverse[lockID] = key
	r.acquiresGranted.Add(1)
	return lockID, false, nil
}

// Heartbeat implements spec §4.2.2. Possession of lock_id is the sole
// capability; no user_id is required.
func (r *Registry) Heartbeat(lockID string, now time.Time) error {
	if lockID == "" {
		return ErrInvalidRequest
	}

	s, ok := r.shardOfLockID(lockID)
	if !ok {
		r.heartbeatsRejected.Add(1)
		return ErrLockNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.reverse[lockID]
	if !ok {
		r.heartbeatsRejected.Add(1)
		return ErrLockNotFound
	}
	lease, ok := s.leases[key]
	if !ok || lease.LockID != lockID {
		delete(s.reverse, lockID)
		r.heartbeatsRejected.Add(1)
		return ErrLockNotFound
	}
	if lease.IsExpired(now) {
		delete(s.leases, key)
		delete(s.reverse, lockID)
		r.evictions.Add(1)
		r.heartbeatsRejected.Add(1)
		return ErrLockNotFound
	}

	lease.Deadline = now.Add(time.Duration(lease.TimeoutSeconds) * time.Second)
	r.heartbeatsAccepted.Add(1)
	return nil
}

// Release implements spec §4.2.3: strict, non-idempotent removal. A second
// release of the same lock_id fails with LockNotFound.
func (r *Registry) Release(lockID string, now time.Time) error {
	if lockID == "" {
		return ErrInvalidRequest
	}

	s, ok := r.shardOfLockID(lockID)
	if !ok {
		return ErrLockNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.reverse[lockID]
	if !ok {
		return ErrLockNotFound
	}
	lease, ok := s.leases[key]
	if !ok || lease.LockID != lockID {
		delete(s.reverse, lockID)
		return ErrLockNotFound
	}
	if lease.IsExpired(now) {
		delete(s.leases, key)
		delete(s.reverse, lockID)
		r.evictions.Add(1)
		return ErrLockNotFound
	}

	delete(s.leases, key)
	delete(s.reverse, lockID)
	r.releases.Add(1)
	return nil
}

// LeaseView is a read-only snapshot of a live lease, used by admin
// introspection and tests. It carries no mutation capability.
type LeaseView struct {
	LockID     string
	Namespace  string
	BusinessID string
	UserID     string
	UserName   string
	Deadline   time.Time
	CreatedAt  time.Time
}

// Snapshot returns every lease not yet expired at now, across all shards.
func (r *Registry) Snapshot(now time.Time) []LeaseView {
	out := make([]LeaseView, 0)
	for _, s := range r.shards {
		s.mu.Lock()
		for _, l := range s.leases {
			if l.IsExpired(now) {
				continue
			}
			out = append(out, LeaseView{
				LockID:     l.LockID,
				Namespace:  l.Namespace,
				BusinessID: l.BusinessID,
				UserID:     l.UserID,
				UserName:   l.UserName,
				Deadline:   l.Deadline,
				CreatedAt:  l.CreatedAt,
			})
		}
		s.mu.Unlock()
	}
	return out
}

// Counters is the point-in-time set of throughput counters the metrics
// package syncs into its gauges.
type Counters struct {
	LiveCount          int64
	AcquiresGranted    int64
	AcquiresDenied     int64
	HeartbeatsAccepted int64
	HeartbeatsRejected int64
	Releases           int64
	Evictions          int64
}

// Stats returns the current counters, including a fresh live-lease count.
func (r *Registry) Stats(now time.Time) Counters {
	var live int64
	for _, s := range r.shards {
		s.mu.Lock()
		for _, l := range s.leases {
			if !l.IsExpired(now) {
				live++
			}
		}
		s.mu.Unlock()
	}
	return Counters{
		LiveCount:          live,
		AcquiresGranted:    r.acquiresGranted.Load(),
		AcquiresDenied:     r.acquiresDenied.Load(),
		HeartbeatsAccepted: r.heartbeatsAccepted.Load(),
		HeartbeatsRejected: r.heartbeatsRejected.Load(),
		Releases:           r.releases.Load(),
		Evictions:          r.evictions.Load(),
	}
}

// sweepOnce removes every expired lease from shard s, returning the leases
// evicted. Called by the sweeper in bounded per-shard batches.
func (s *shard) sweepOnce(now time.Time) []LeaseView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []LeaseView
	for key, l := range s.leases {
		if l.IsExpired(now) {
			delete(s.leases, key)
			delete(s.reverse, l.LockID)
			evicted = append(evicted, LeaseView{
				LockID:     l.LockID,
				Namespace:  l.Namespace,
				BusinessID: l.BusinessID,
				UserID:     l.UserID,
				UserName:   l.UserName,
				Deadline:   l.Deadline,
				CreatedAt:  l.CreatedAt,
			})
		}
	}
	return evicted
}
