package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lockd/models"
	logger "lockd/pkg/log"
)

// RequestContext is a wrapper for the gin context exposing the envelope
// response helpers every handler uses.
type RequestContext struct {
	GinContext *gin.Context
}

// NewRequestContext creates a new client context.
func NewRequestContext(ginContext *gin.Context) RequestContext {
	return RequestContext{GinContext: ginContext}
}

// Ok returns a success envelope with HTTP 200.
func (context *RequestContext) Ok(data interface{}) {
	context.GinContext.JSON(http.StatusOK, models.Ok(data))
}

// Fail returns a success:false envelope, still with HTTP 200, for
// well-formed requests that the registry rejected (LockHeld, LockNotFound).
func (context *RequestContext) Fail(message string) {
	context.GinContext.JSON(http.StatusOK, models.Fail(message))
}

// BadRequest returns a success:false envelope with HTTP 400 for malformed
// or incomplete requests.
func (context *RequestContext) BadRequest(message string) {
	context.GinContext.JSON(http.StatusBadRequest, models.Fail(message))
}

// TooManyRequests returns a success:false envelope with HTTP 429 for a
// rate-limited acquire.
func (context *RequestContext) TooManyRequests(message string) {
	context.GinContext.JSON(http.StatusTooManyRequests, models.Fail(message))
}

// Unauthorized returns a success:false envelope with HTTP 401.
func (context *RequestContext) Unauthorized(message string) {
	context.GinContext.JSON(http.StatusUnauthorized, models.Fail(message))
}

// ServerError logs the real error and returns a generic 500 envelope.
func (context *RequestContext) ServerError(log, display error) {
	logger.PrettyError(log)
	context.GinContext.JSON(http.StatusInternalServerError, models.Fail(display.Error()))
}
