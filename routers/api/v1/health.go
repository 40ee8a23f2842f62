package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz handles GET /healthz, an unauthenticated liveness probe.
func Healthz(ginContext *gin.Context) {
	ginContext.JSON(http.StatusOK, gin.H{"status": "ok"})
}
