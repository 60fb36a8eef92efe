package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine"
	"github.com/lintang-b-s/navroute/pkg/engine/operations"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/lintang-b-s/navroute/pkg/geo"
	"github.com/lintang-b-s/navroute/pkg/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/lintang-b-s/navroute/pkg/http/usecases")

// RouteResult route with external node and edge ids
type RouteResult struct {
	RouteId   string
	Cost      float64
	StartNode da.Index
	EdgeIds   []da.Index
	NodeIds   []da.Index
	Path      string
}

type RoutingService struct {
	log    *zap.Logger
	engine RoutingEngine
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine) *RoutingService {
	return &RoutingService{
		log:    log,
		engine: engine,
	}
}

func (rs *RoutingService) ComputeRoute(ctx context.Context, req routing.RouteRequest) (RouteResult, error) {
	_, span := tracer.Start(ctx, "RoutingService.ComputeRoute", trace.WithAttributes(
		attribute.Bool("route.use_poses", req.UsePoses),
		attribute.Int64("route.start_id", int64(req.StartID)),
		attribute.Int64("route.goal_id", int64(req.GoalID)),
		attribute.Int("route.blocked_ids", len(req.BlockedIDs)),
	))
	defer span.End()

	graph := rs.engine.GetGraph()
	if !req.UsePoses {
		if _, ok := graph.IndexOf(req.StartID); !ok {
			err := util.WrapErrorf(routing.ErrInvalidGraph, util.ErrNotFound, "start node %d not found", req.StartID)
			recordError(span, err)
			return RouteResult{}, err
		}
		if _, ok := graph.IndexOf(req.GoalID); !ok {
			err := util.WrapErrorf(routing.ErrInvalidGraph, util.ErrNotFound, "goal node %d not found", req.GoalID)
			recordError(span, err)
			return RouteResult{}, err
		}
	}

	route, err := rs.engine.ComputeRoute(req, nil)
	if err != nil {
		err = wrapRoutingError(err, req)
		recordError(span, err)
		return RouteResult{}, err
	}

	nodes := route.Nodes(graph)
	result := RouteResult{
		RouteId:   uuid.NewString(),
		Cost:      route.Cost,
		StartNode: graph.GetNode(route.StartNode).GetNodeId(),
		EdgeIds:   make([]da.Index, 0, len(route.Edges)),
		NodeIds:   make([]da.Index, 0, len(nodes)),
		Path:      geo.PolylineFromCoords(route.Coordinates(graph)),
	}
	for _, e := range route.Edges {
		result.EdgeIds = append(result.EdgeIds, graph.GetEdge(e).GetEdgeId())
	}
	for _, n := range nodes {
		result.NodeIds = append(result.NodeIds, graph.GetNode(n).GetNodeId())
	}

	span.SetAttributes(attribute.String("route.id", result.RouteId), attribute.Float64("route.cost", result.Cost),
		attribute.Int("route.edges", len(result.EdgeIds)))
	rs.log.Debug("route computed", zap.String("route_id", result.RouteId), zap.Float64("cost", result.Cost),
		zap.Int("edges", len(result.EdgeIds)))
	return result, nil
}

func wrapRoutingError(err error, req routing.RouteRequest) error {
	switch {
	case errors.Is(err, routing.ErrNoRouteFound):
		return util.WrapErrorf(err, util.ErrNotFound, "no route found from %s to %s", describeStart(req), describeGoal(req))
	case errors.Is(err, routing.ErrSearchTimedOut):
		return util.WrapErrorf(err, util.ErrTimeout, "route search exceeded the maximum number of iterations")
	case errors.Is(err, routing.ErrIndeterminateNodes):
		return util.WrapErrorf(err, util.ErrBadParamInput, "could not determine node closest to start or goal pose requested")
	default:
		return util.WrapErrorf(err, util.ErrInternalServerError, "route search failed: %v", err)
	}
}

func describeStart(req routing.RouteRequest) string {
	if req.UsePoses {
		return fmt.Sprintf("(%f, %f)", req.Start.X, req.Start.Y)
	}
	return fmt.Sprintf("node %d", req.StartID)
}

func describeGoal(req routing.RouteRequest) string {
	if req.UsePoses {
		return fmt.Sprintf("(%f, %f)", req.Goal.X, req.Goal.Y)
	}
	return fmt.Sprintf("node %d", req.GoalID)
}

func (rs *RoutingService) AdjustEdges(ctx context.Context, name string,
	req costfunction.AdjustEdgesRequest) (costfunction.AdjustEdgesResponse, error) {
	_, span := tracer.Start(ctx, "RoutingService.AdjustEdges", trace.WithAttributes(
		attribute.String("scorer.name", name),
		attribute.Int("edges.closed", len(req.ClosedEdges)),
		attribute.Int("edges.opened", len(req.OpenedEdges)),
		attribute.Int("edges.adjusted", len(req.AdjustEdges)),
	))
	defer span.End()

	resp, err := rs.engine.AdjustEdges(name, req)
	if err != nil {
		err = util.WrapErrorf(err, util.ErrNotFound, "edge cost function %q does not accept edge adjustments", name)
		recordError(span, err)
		return costfunction.AdjustEdgesResponse{}, err
	}
	return resp, nil
}

func (rs *RoutingService) PublishCostmap(ctx context.Context, topic string, sizeX, sizeY uint32, resolution,
	originX, originY float64, data []uint8) error {
	_, span := tracer.Start(ctx, "RoutingService.PublishCostmap", trace.WithAttributes(
		attribute.String("costmap.topic", topic),
	))
	defer span.End()

	cm, err := costmap.NewCostmap(sizeX, sizeY, resolution, originX, originY, data)
	if err != nil {
		err = util.WrapErrorf(err, util.ErrBadParamInput, "invalid costmap: %v", err)
		recordError(span, err)
		return err
	}
	rs.engine.PublishCostmap(topic, cm)
	return nil
}

func (rs *RoutingService) CheckCollision(ctx context.Context, currEdgeId da.Index, routeEdgeIds []da.Index,
	pose da.Coordinates) (operations.OperationResult, error) {
	_, span := tracer.Start(ctx, "RoutingService.CheckCollision", trace.WithAttributes(
		attribute.Int64("route.curr_edge", int64(currEdgeId)),
		attribute.Int("route.edges", len(routeEdgeIds)),
	))
	defer span.End()

	res, err := rs.engine.CheckCollision(currEdgeId, routeEdgeIds, pose)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownEdge):
			err = util.WrapErrorf(err, util.ErrBadParamInput, "%v", err)
		case errors.Is(err, operations.ErrOperationFailed):
			err = util.WrapErrorf(err, util.ErrConflict, "%v", err)
		default:
			err = util.WrapErrorf(err, util.ErrInternalServerError, "%v", err)
		}
		recordError(span, err)
		return operations.OperationResult{}, err
	}
	span.SetAttributes(attribute.Bool("route.reroute", res.Reroute))
	return res, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
