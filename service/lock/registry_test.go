package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(8, 60, 3600)
}

func TestAcquireRelease(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockID, reentrant, err := r.Acquire(AcquireInput{UserID: "test_user", BusinessID: "test_1"}, now)
	require.NoError(t, err)
	require.NotEmpty(t, lockID)
	assert.False(t, reentrant)

	require.NoError(t, r.Release(lockID, now))
}

func TestCrossUserConflict(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockA, _, err := r.Acquire(AcquireInput{UserID: "user_a", BusinessID: "t2"}, now)
	require.NoError(t, err)

	_, _, err = r.Acquire(AcquireInput{UserID: "user_b", BusinessID: "t2"}, now)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, r.Release(lockA, now))
}

func TestReentrancyIdentity(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	first, reentrant, err := r.Acquire(AcquireInput{UserID: "user_reentrant", BusinessID: "t11", TimeoutSeconds: 60}, now)
	require.NoError(t, err)
	assert.False(t, reentrant)

	second, reentrant, err := r.Acquire(AcquireInput{UserID: "user_reentrant", BusinessID: "t11", TimeoutSeconds: 60}, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, reentrant)

	third, reentrant, err := r.Acquire(AcquireInput{UserID: "user_reentrant", BusinessID: "t11", TimeoutSeconds: 60}, now.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.True(t, reentrant)

	require.NoError(t, r.Release(first, now.Add(3*time.Second)))
}

func TestExpiryReacquisition(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	_, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "t4", TimeoutSeconds: 3}, now)
	require.NoError(t, err)

	later := now.Add(4 * time.Second)
	lockB, reentrant, err := r.Acquire(AcquireInput{UserID: "B", BusinessID: "t4"}, later)
	require.NoError(t, err)
	assert.NotEmpty(t, lockB)
	assert.False(t, reentrant)
}

func TestHeartbeatAfterReleaseFails(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockID, _, err := r.Acquire(AcquireInput{UserID: "test_user", BusinessID: "biz"}, now)
	require.NoError(t, err)

	require.NoError(t, r.Release(lockID, now))

	err = r.Heartbeat(lockID, now)
	assert.ErrorIs(t, err, ErrLockNotFound)
}

func TestNamespaceIsolation(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockA, _, err := r.Acquire(AcquireInput{Namespace: "a", UserID: "A", BusinessID: "t7"}, now)
	require.NoError(t, err)

	lockB, _, err := r.Acquire(AcquireInput{Namespace: "b", UserID: "B", BusinessID: "t7"}, now)
	require.NoError(t, err)

	assert.NotEqual(t, lockA, lockB)
}

func TestDefaultNamespaceMatchesLiteral(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockID, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "t9"}, now)
	require.NoError(t, err)

	_, _, err = r.Acquire(AcquireInput{Namespace: "default", UserID: "B", BusinessID: "t9"}, now)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, r.Release(lockID, now))
}

func TestReleaseInvalidLockFails(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	err := r.Release("9-00000000-0000-0000-0000-000000000000", now)
	assert.ErrorIs(t, err, ErrLockNotFound)

	err = r.Release("not-a-real-id", now)
	assert.ErrorIs(t, err, ErrLockNotFound)
}

func TestHeartbeatInvalidLockFails(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	err := r.Heartbeat("bogus", now)
	assert.ErrorIs(t, err, ErrLockNotFound)
}

func TestHeartbeatRenewsDeadline(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockID, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "t10", TimeoutSeconds: 5}, now)
	require.NoError(t, err)

	later := now.Add(4 * time.Second)
	require.NoError(t, r.Heartbeat(lockID, later))

	// Without the heartbeat the lease would have expired by now+6s; it must
	// still be live because heartbeat refreshed the deadline relative to
	// `later`, not `now`.
	stillAlive := later.Add(4 * time.Second)
	err = r.Heartbeat(lockID, stillAlive)
	require.NoError(t, err)

	require.NoError(t, r.Release(lockID, stillAlive))
}

func TestConcurrentLocksAcrossBusinesses(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockA, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "biz_a"}, now)
	require.NoError(t, err)
	lockB, _, err := r.Acquire(AcquireInput{UserID: "B", BusinessID: "biz_b"}, now)
	require.NoError(t, err)

	assert.NotEqual(t, lockA, lockB)
	require.NoError(t, r.Release(lockA, now))
	require.NoError(t, r.Release(lockB, now))
}

func TestReentrantLockBlocksDifferentUser(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	lockID, _, err := r.Acquire(AcquireInput{UserID: "owner", BusinessID: "t12"}, now)
	require.NoError(t, err)

	_, reentrant, err := r.Acquire(AcquireInput{UserID: "owner", BusinessID: "t12"}, now)
	require.NoError(t, err)
	assert.True(t, reentrant)

	_, _, err = r.Acquire(AcquireInput{UserID: "intruder", BusinessID: "t12"}, now)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, r.Release(lockID, now))
}

func TestAcquireMissingFieldsInvalid(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	_, _, err := r.Acquire(AcquireInput{BusinessID: "x"}, now)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, _, err = r.Acquire(AcquireInput{UserID: "x"}, now)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAcquireClampsTimeoutToMax(t *testing.T) {
	r := NewRegistry(4, 60, 120)
	now := time.Now()

	lockID, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "t13", TimeoutSeconds: 10_000}, now)
	require.NoError(t, err)

	snapshot := r.Snapshot(now)
	require.Len(t, snapshot, 1)
	assert.Equal(t, now.Add(120*time.Second), snapshot[0].Deadline)
	require.NoError(t, r.Release(lockID, now))
}

func TestAcquireNegativeTimeoutInvalid(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	_, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "t14", TimeoutSeconds: -1}, now)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSweeperEvictsExpiredLeases(t *testing.T) {
	r := NewRegistry(4, 1, 3600)
	now := time.Now()

	_, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "swept", TimeoutSeconds: 1}, now)
	require.NoError(t, err)

	later := now.Add(2 * time.Second)
	var evicted []LeaseView
	sw := NewSweeper(r, time.Hour, func(lv []LeaseView) { evicted = lv })
	sw.sweepOnceAt(later)

	assert.Len(t, evicted, 1)
	assert.Equal(t, "swept", evicted[0].BusinessID)
	assert.Empty(t, r.Snapshot(later))
}

func TestRoundTripLeavesNoTrace(t *testing.T) {
	r := newTestRegistry()
	now := time.Now()

	before := len(r.Snapshot(now))

	lockID, _, err := r.Acquire(AcquireInput{UserID: "A", BusinessID: "roundtrip"}, now)
	require.NoError(t, err)
	require.NoError(t, r.Release(lockID, now))

	after := len(r.Snapshot(now))
	assert.Equal(t, before, after)
}
