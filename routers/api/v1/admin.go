package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"lockd/models"
)

// Inspect handles GET /api/lock/inspect, returning every currently live
// lease. Mounted behind the admin bearer-token middleware.
func Inspect(ginContext *gin.Context) {
	requestContext := NewRequestContext(ginContext)

	now := time.Now()
	snapshot := Registry.Snapshot(now)

	leases := make([]models.LeaseData, 0, len(snapshot))
	for _, l := range snapshot {
		leases = append(leases, models.LeaseData{
			LockID:     l.LockID,
			Namespace:  l.Namespace,
			BusinessID: l.BusinessID,
			UserID:     l.UserID,
			UserName:   l.UserName,
			Deadline:   l.Deadline.Format(time.RFC3339),
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}

	requestContext.Ok(models.InspectData{Leases: leases})
}
