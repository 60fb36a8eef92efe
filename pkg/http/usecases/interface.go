package usecases

import (
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/operations"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
)

type RoutingEngine interface {
	GetGraph() *da.Graph
	ComputeRoute(req routing.RouteRequest, rerouting *routing.ReroutingState) (routing.Route, error)
	AdjustEdges(name string, req costfunction.AdjustEdgesRequest) (costfunction.AdjustEdgesResponse, error)
	PublishCostmap(topic string, cm *costmap.Costmap)
	CheckCollision(currEdgeId da.Index, routeEdgeIds []da.Index, pose da.Coordinates) (operations.OperationResult, error)
}
