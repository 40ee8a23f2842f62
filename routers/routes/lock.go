package routes

import (
	v1 "lockd/routers/api/v1"
)

const (
	AcquirePath  = "/api/lock/acquire"
	HeartbeatPath = "/api/lock/heartbeat"
	ReleasePath  = "/api/lock/release"
	HealthzPath  = "/healthz"
)

type LockRoutingGroup struct{ RoutingGroupBase }

func LockRoutes() *LockRoutingGroup { return &LockRoutingGroup{} }

func (group *LockRoutingGroup) PublicRoutes() []Route {
	return []Route{
		{Method: "POST", Pattern: AcquirePath, HandlerFunc: v1.Acquire},
		{Method: "POST", Pattern: HeartbeatPath, HandlerFunc: v1.Heartbeat},
		{Method: "POST", Pattern: ReleasePath, HandlerFunc: v1.Release},
		{Method: "GET", Pattern: HealthzPath, HandlerFunc: v1.Healthz},
	}
}
