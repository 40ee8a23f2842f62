package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"lockd/models"
	"lockd/service/adminauth"
	"lockd/service/audit"
	"lockd/service/lock"
	"lockd/service/ratelimit"
)

// Registry, Limiter, Auditor and AdminAuth are the long-lived singletons
// the v1 handlers and middleware operate on. Set once by Init at process
// bootstrap, mirroring the teacher's package-level service wiring.
var (
	Registry  *lock.Registry
	Limiter   *ratelimit.Limiter
	Auditor   *audit.Publisher
	AdminAuth *adminauth.Service
)

// Init wires the handlers to their backing services. Must be called before
// the router starts serving traffic.
func Init(registry *lock.Registry, limiter *ratelimit.Limiter, auditor *audit.Publisher, adminAuth *adminauth.Service) {
	Registry = registry
	Limiter = limiter
	Auditor = auditor
	AdminAuth = adminAuth
}

// Acquire handles POST /api/lock/acquire.
func Acquire(ginContext *gin.Context) {
	requestContext := NewRequestContext(ginContext)

	var req models.AcquireRequest
	if err := ginContext.ShouldBindJSON(&req); err != nil {
		requestContext.BadRequest(fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	if Limiter != nil && !Limiter.Allow(req.UserID) {
		requestContext.TooManyRequests("acquire rate limit exceeded for this user_id")
		return
	}

	now := time.Now()
	namespace := req.Namespace
	if namespace == "" {
		namespace = lock.DefaultNamespace
	}

	lockID, reentrant, err := Registry.Acquire(lock.AcquireInput{
		Namespace:      req.Namespace,
		UserID:         req.UserID,
		UserName:       req.UserName,
		BusinessID:     req.BusinessID,
		TimeoutSeconds: req.TimeoutSeconds,
	}, now)

	switch err {
	case nil:
		requestContext.Ok(models.AcquireData{LockID: lockID})
		publishAcquireEvent(ginContext, namespace, req.BusinessID, req.UserID, lockID, reentrant)
	case lock.ErrInvalidRequest:
		requestContext.BadRequest("user_id and business_id are required, timeout must be positive")
	case lock.ErrLockHeld:
		requestContext.Fail(fmt.Sprintf("lock on %q in namespace %q is held by another user", req.BusinessID, namespace))
		Auditor.Publish(ginContext.Request.Context(), audit.Event{
			Type: audit.EventAcquireFailed, Namespace: namespace, BusinessID: req.BusinessID,
			UserID: req.UserID, At: now,
		})
	default:
		requestContext.ServerError(err, err)
	}
}

// Heartbeat handles POST /api/lock/heartbeat.
func Heartbeat(ginContext *gin.Context) {
	requestContext := NewRequestContext(ginContext)

	var req models.HeartbeatRequest
	if err := ginContext.ShouldBindJSON(&req); err != nil {
		requestContext.BadRequest(fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	now := time.Now()
	err := Registry.Heartbeat(req.LockID, now)
	switch err {
	case nil:
		requestContext.Ok(nil)
		Auditor.Publish(ginContext.Request.Context(), audit.Event{
			Type: audit.EventRenewed, LockID: req.LockID, At: now,
		})
	case lock.ErrLockNotFound:
		requestContext.Fail("lock_id is unknown, expired, or already released")
		Auditor.Publish(ginContext.Request.Context(), audit.Event{
			Type: audit.EventRenewFailed, LockID: req.LockID, At: now,
		})
	case lock.ErrInvalidRequest:
		requestContext.BadRequest("lock_id is required")
	default:
		requestContext.ServerError(err, err)
	}
}

// Release handles POST /api/lock/release.
func Release(ginContext *gin.Context) {
	requestContext := NewRequestContext(ginContext)

	var req models.ReleaseRequest
	if err := ginContext.ShouldBindJSON(&req); err != nil {
		requestContext.BadRequest(fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	now := time.Now()
	err := Registry.Release(req.LockID, now)
	switch err {
	case nil:
		requestContext.Ok(nil)
		Auditor.Publish(ginContext.Request.Context(), audit.Event{
			Type: audit.EventReleased, LockID: req.LockID, At: now,
		})
	case lock.ErrLockNotFound:
		requestContext.Fail("lock_id is unknown, expired, or already released")
	case lock.ErrInvalidRequest:
		requestContext.BadRequest("lock_id is required")
	default:
		requestContext.ServerError(err, err)
	}
}

func publishAcquireEvent(ctx *gin.Context, namespace, businessID, userID, lockID string, reentrant bool) {
	eventType := audit.EventAcquired
	if reentrant {
		eventType = audit.EventReentered
	}
	Auditor.Publish(context.WithoutCancel(ctx.Request.Context()), audit.Event{
		Type: eventType, Namespace: namespace, BusinessID: businessID,
		UserID: userID, LockID: lockID, At: time.Now(),
	})
}
