// Package lock implements the in-memory, sharded lock registry: the
// concurrent state machine that grants mutually exclusive, time-bounded,
// reentrant leases over (namespace, business_id) keys.
package lock

import "time"

// Lease is a granted lock. It is immutable except for Deadline and
// TimeoutSeconds, which heartbeat and reentrant acquire update in place.
type Lease struct {
	LockID         string
	Namespace      string
	BusinessID     string
	UserID         string
	UserName       string
	TimeoutSeconds int
	Deadline       time.Time
	CreatedAt      time.Time
}

// IsExpired reports whether the lease is no longer live at now. The
// deadline is a strict lower exclusive bound on liveness: a lease observed
// exactly at its deadline is already expired.
func (l *Lease) IsExpired(now time.Time) bool {
	return !now.Before(l.Deadline)
}

// Key identifies a lease's slot in the registry.
type Key struct {
	Namespace  string
	BusinessID string
}

// DefaultNamespace is substituted when a caller omits namespace.
const DefaultNamespace = "default"
