package routes

import (
	"github.com/gin-gonic/gin"

	v1 "lockd/routers/api/v1"
	"lockd/routers/api/v1/middleware"
)

const InspectPath = "/api/lock/inspect"

type AdminRoutingGroup struct{ RoutingGroupBase }

func AdminRoutes() *AdminRoutingGroup { return &AdminRoutingGroup{} }

func (group *AdminRoutingGroup) PrivateRoutes() []Route {
	adminOnly := []gin.HandlerFunc{middleware.RequireAdminToken(v1.AdminAuth)}
	return []Route{
		{Method: "GET", Pattern: InspectPath, HandlerFunc: v1.Inspect, Middleware: adminOnly},
	}
}
