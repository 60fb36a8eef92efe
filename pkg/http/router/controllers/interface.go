package controllers

import (
	"context"

	"github.com/lintang-b-s/navroute/pkg/costfunction"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/operations"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/lintang-b-s/navroute/pkg/http/usecases"
)

type RoutingService interface {
	ComputeRoute(ctx context.Context, req routing.RouteRequest) (usecases.RouteResult, error)
	AdjustEdges(ctx context.Context, name string, req costfunction.AdjustEdgesRequest) (costfunction.AdjustEdgesResponse, error)
	PublishCostmap(ctx context.Context, topic string, sizeX, sizeY uint32, resolution, originX, originY float64, data []uint8) error
	CheckCollision(ctx context.Context, currEdgeId da.Index, routeEdgeIds []da.Index, pose da.Coordinates) (operations.OperationResult, error)
}
