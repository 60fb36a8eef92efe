package routing

import (
	"fmt"
	"math"

	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/geo"
	"go.uber.org/zap"
)

const EPSILON = 1e-6

// RouteRequest either a pair of node ids or a pair of poses to snap onto the graph
type RouteRequest struct {
	UsePoses   bool
	StartID    da.Index
	GoalID     da.Index
	Start      da.Coordinates
	Goal       da.Coordinates
	BlockedIDs []da.Index
}

// NodeExtents start and goal node indices plus the poses the route is pruned against
type NodeExtents struct {
	Start     da.Index
	Goal      da.Index
	StartPose da.Coordinates
	GoalPose  da.Coordinates
}

// ReroutingState carried between consecutive requests of the same task
type ReroutingState struct {
	CurrEdge        da.Index
	ClosestPtOnEdge da.Coordinates
	FirstTime       bool
}

func NewReroutingState() *ReroutingState {
	return &ReroutingState{CurrEdge: da.INVALID_EDGE_ID, FirstTime: true}
}

type NodeLocator interface {
	Nearest(x, y float64) (da.Index, float64, bool)
}

type GoalIntentConfig struct {
	PruneGoal        bool
	MaxDistFromEdge  float64
	MinDistFromGoal  float64
	MinDistFromStart float64
}

func DefaultGoalIntentConfig() GoalIntentConfig {
	return GoalIntentConfig{
		PruneGoal:        true,
		MaxDistFromEdge:  8.0,
		MinDistFromGoal:  0.15,
		MinDistFromStart: 0.10,
	}
}

// GoalIntentExtractor resolves the start and goal of a request and trims the route ends the requested poses are already past.
type GoalIntentExtractor struct {
	graph   *da.Graph
	locator NodeLocator
	cfg     GoalIntentConfig
	logger  *zap.Logger
}

func NewGoalIntentExtractor(graph *da.Graph, locator NodeLocator, cfg GoalIntentConfig, logger *zap.Logger) *GoalIntentExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalIntentExtractor{graph: graph, locator: locator, cfg: cfg, logger: logger}
}

func (gi *GoalIntentExtractor) FindStartAndGoal(req RouteRequest) (NodeExtents, error) {
	if !req.UsePoses {
		start, ok := gi.graph.IndexOf(req.StartID)
		if !ok {
			return NodeExtents{}, fmt.Errorf("%w: unknown start node id %d", ErrInvalidGraph, req.StartID)
		}
		goal, ok := gi.graph.IndexOf(req.GoalID)
		if !ok {
			return NodeExtents{}, fmt.Errorf("%w: unknown goal node id %d", ErrInvalidGraph, req.GoalID)
		}
		return NodeExtents{
			Start:     start,
			Goal:      goal,
			StartPose: gi.graph.GetNode(start).GetCoords(),
			GoalPose:  gi.graph.GetNode(goal).GetCoords(),
		}, nil
	}

	if gi.locator == nil || !finite(req.Start) || !finite(req.Goal) {
		return NodeExtents{}, ErrIndeterminateNodes
	}
	start, _, okStart := gi.locator.Nearest(req.Start.X, req.Start.Y)
	goal, _, okGoal := gi.locator.Nearest(req.Goal.X, req.Goal.Y)
	if !okStart || !okGoal {
		return NodeExtents{}, ErrIndeterminateNodes
	}
	gi.logger.Debug("snapped poses to graph nodes",
		zap.Uint32("start", uint32(gi.graph.GetNode(start).GetNodeId())),
		zap.Uint32("goal", uint32(gi.graph.GetNode(goal).GetNodeId())))

	return NodeExtents{Start: start, Goal: goal, StartPose: req.Start, GoalPose: req.Goal}, nil
}

// PruneStartAndGoal drops the first edge when the start pose already lies along it, and the last edge when the
// goal pose lies before its end node. must run before the next search on the graph, it reads the search state.
func (gi *GoalIntentExtractor) PruneStartAndGoal(input Route, req RouteRequest, extents NodeExtents,
	rerouting *ReroutingState) Route {

	pruned := Route{
		Edges:     append([]da.Index(nil), input.Edges...),
		StartNode: input.StartNode,
		Cost:      input.Cost,
	}

	if rerouting == nil {
		rerouting = NewReroutingState()
	}
	lastCurrEdge := rerouting.CurrEdge
	rerouting.CurrEdge = da.INVALID_EDGE_ID
	firstTime := rerouting.FirstTime
	rerouting.FirstTime = false

	// node id requests have nothing to prune, except when rerouting from a live pose
	if len(pruned.Edges) == 0 || (!req.UsePoses && firstTime) {
		return pruned
	}

	firstEdge := gi.graph.GetEdge(pruned.Edges[0])
	first := gi.graph.GetNode(pruned.StartNode).GetCoords()
	next := gi.graph.GetNode(firstEdge.GetEnd()).GetCoords()
	startPose := extents.StartPose

	vrx, vry := next.X-first.X, next.Y-first.Y
	vpx, vpy := startPose.X-first.X, startPose.Y-first.Y
	dot := geo.NormalizedDot(vrx, vry, vpx, vpy)
	closest := geo.FindClosestPoint(startPose, first, next)

	if dot > EPSILON &&
		math.Hypot(vpx, vpy) > gi.cfg.MinDistFromStart &&
		geo.Distance(closest, startPose) <= gi.cfg.MaxDistFromEdge {

		if lastCurrEdge != da.INVALID_EDGE_ID && lastCurrEdge == pruned.Edges[0] {
			rerouting.ClosestPtOnEdge = closest
			rerouting.CurrEdge = pruned.Edges[0]
		}

		pruned.StartNode = firstEdge.GetEnd()
		pruned.Cost -= gi.graph.GetSearchState(firstEdge.GetEnd()).GetTraversalCost()
		pruned.Edges = pruned.Edges[1:]
	}

	if !gi.cfg.PruneGoal || !req.UsePoses || len(pruned.Edges) == 0 {
		return pruned
	}

	lastEdge := gi.graph.GetEdge(pruned.Edges[len(pruned.Edges)-1])
	prev := gi.graph.GetNode(lastEdge.GetStart()).GetCoords()
	last := gi.graph.GetNode(lastEdge.GetEnd()).GetCoords()
	goalPose := extents.GoalPose

	vrx, vry = last.X-prev.X, last.Y-prev.Y
	vpx, vpy = goalPose.X-last.X, goalPose.Y-last.Y
	dot = geo.NormalizedDot(vrx, vry, vpx, vpy)
	closest = geo.FindClosestPoint(goalPose, prev, last)

	if dot < -EPSILON &&
		math.Hypot(vpx, vpy) > gi.cfg.MinDistFromGoal &&
		geo.Distance(closest, goalPose) <= gi.cfg.MaxDistFromEdge {
		pruned.Cost -= gi.graph.GetSearchState(lastEdge.GetEnd()).GetTraversalCost()
		pruned.Edges = pruned.Edges[:len(pruned.Edges)-1]
	}

	return pruned
}

func finite(c da.Coordinates) bool {
	return !math.IsNaN(c.X) && !math.IsNaN(c.Y) && !math.IsInf(c.X, 0) && !math.IsInf(c.Y, 0)
}
