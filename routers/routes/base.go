// Package routes declares the routing groups the server mounts: each group
// names the routes it contributes to the public, private (authenticated),
// or hook routing surfaces.
package routes

import "github.com/gin-gonic/gin"

// Route is one HTTP route: method, pattern, handler, and any
// route-specific middleware layered in front of the handler.
type Route struct {
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
	Middleware  []gin.HandlerFunc
}

// RoutingGroup is implemented by every route group registered in
// RoutingGroups. Embedding RoutingGroupBase gives a group empty defaults
// for whichever surfaces it doesn't contribute to.
type RoutingGroup interface {
	PublicRoutes() []Route
	PrivateRoutes() []Route
	HookRoutes() []Route
}

// RoutingGroupBase supplies no-op defaults; concrete groups override only
// the methods relevant to them.
type RoutingGroupBase struct{}

func (RoutingGroupBase) PublicRoutes() []Route  { return nil }
func (RoutingGroupBase) PrivateRoutes() []Route { return nil }
func (RoutingGroupBase) HookRoutes() []Route    { return nil }

// RoutingGroups returns every routing group the server mounts.
func RoutingGroups() []RoutingGroup {
	return []RoutingGroup{
		LockRoutes(),
		AdminRoutes(),
	}
}
