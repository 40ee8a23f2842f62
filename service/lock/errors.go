package lock

import "errors"

// Error kinds returned by registry operations. Handlers translate these
// into the response envelope; they are never surfaced as Go panics.
var (
	// ErrLockHeld is returned by Acquire when the key is live-owned by a
	// different user_id.
	ErrLockHeld = errors.New("lock held by another owner")
	// ErrLockNotFound is returned by Heartbeat/Release when lock_id is
	// unknown, stale, or has expired.
	ErrLockNotFound = errors.New("lock not found")
	// ErrInvalidRequest is returned for missing/empty required fields or a
	// non-positive timeout.
	ErrInvalidRequest = errors.New("invalid request")
)
