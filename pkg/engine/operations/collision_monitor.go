// Package operations holds route operations, checks run against a route while it is being followed.
package operations

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lintang-b-s/navroute/pkg"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/lintang-b-s/navroute/pkg/geo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrOperationFailed = errors.New("route operation failed")
)

// OperationResult Reroute is set when the route ahead is blocked, BlockedIDs holds the edge ids to avoid.
type OperationResult struct {
	Reroute    bool
	BlockedIDs []da.Index
}

type CollisionMonitorConfig struct {
	CostmapTopic     string
	Rate             float64 // checks per second, <= 0 checks on every call
	MaxCost          float64
	MaxCollisionDist float64 // negative checks the full route
}

func DefaultCollisionMonitorConfig() CollisionMonitorConfig {
	return CollisionMonitorConfig{
		CostmapTopic:     pkg.DEFAULT_LOCAL_COSTMAP_TOPIC,
		Rate:             1.0,
		MaxCost:          pkg.DEFAULT_MAX_COST,
		MaxCollisionDist: 5.0,
	}
}

// CollisionMonitor checks the route ahead of the current pose against the latest costmap.
type CollisionMonitor struct {
	graph    *da.Graph
	provider costmap.Provider
	limiter  *rate.Limiter
	logger   *zap.Logger

	topic            string
	maxCost          float64
	maxCollisionDist float64
}

type lineSegment struct {
	x0, y0, x1, y1 int
}

func NewCollisionMonitor(graph *da.Graph, provider costmap.Provider, cfg CollisionMonitorConfig,
	logger *zap.Logger) *CollisionMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CollisionMonitor{
		graph:            graph,
		provider:         provider,
		logger:           logger,
		topic:            cfg.CostmapTopic,
		maxCost:          cfg.MaxCost,
		maxCollisionDist: cfg.MaxCollisionDist,
	}
	if cfg.Rate > 0 {
		cm.limiter = rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/cfg.Rate)), 1)
	}
	if cm.maxCollisionDist < 0 {
		logger.Info("max collision distance to evaluate is negative, checking the full route")
		cm.maxCollisionDist = math.MaxFloat64
	}
	return cm
}

// Perform checks the route from the projection of pose on currEdge (graph edge index) up to max collision distance.
// returns an empty result when it is not time to check yet or the vehicle is not on the route.
func (cm *CollisionMonitor) Perform(currEdge da.Index, route routing.Route, pose da.Coordinates) (OperationResult, error) {
	if currEdge == da.INVALID_EDGE_ID || int(currEdge) >= cm.graph.NumberOfEdges() {
		return OperationResult{}, nil
	}
	if cm.limiter != nil && !cm.limiter.Allow() {
		return OperationResult{}, nil
	}

	grid, err := cm.provider.GetCostmap()
	if err != nil {
		return OperationResult{}, fmt.Errorf("%w: collision monitor could not obtain a costmap from topic %s: %v",
			ErrOperationFailed, cm.topic, err)
	}

	view := cm.graph.GetEdgeView(currEdge)
	start := geo.FindClosestPoint(pose, view.GetStartCoords(), view.GetEndCoords())
	end := view.GetEndCoords()
	curr := currEdge
	distChecked := 0.0

	finalEdge := false
	for !finalEdge {
		edgeDist := geo.Distance(start, end)
		if distChecked+edgeDist > cm.maxCollisionDist {
			end = geo.BackoutPoint(start, end, cm.maxCollisionDist-distChecked)
			finalEdge = true
		}
		distChecked += edgeDist

		// edge partially off the grid, check up to the grid border
		line, ok := lineToMap(grid, start, end)
		if !ok {
			finalEdge = true
			line, ok = backoutValidLine(grid, start, end)
			if !ok {
				break
			}
		}

		if cm.isInCollision(grid, line) {
			blockedId := cm.graph.GetEdge(curr).GetEdgeId()
			cm.logger.Info("collision has been detected ahead of the robot pose",
				zap.Float64("max_collision_dist", cm.maxCollisionDist),
				zap.Uint32("edge_id", uint32(blockedId)))
			return OperationResult{
				Reroute:    true,
				BlockedIDs: []da.Index{blockedId},
			}, nil
		}

		start = end
		if !finalEdge {
			next, ok := nextRouteEdge(route, curr)
			if !ok {
				break
			}
			curr = next
			end = cm.graph.GetNode(cm.graph.GetEdge(next).GetEnd()).GetCoords()
		}
	}

	return OperationResult{}, nil
}

func nextRouteEdge(route routing.Route, curr da.Index) (da.Index, bool) {
	for i, e := range route.Edges {
		if e == curr && i+1 < len(route.Edges) {
			return route.Edges[i+1], true
		}
	}
	return da.INVALID_EDGE_ID, false
}

func lineToMap(grid *costmap.Costmap, start, end da.Coordinates) (lineSegment, bool) {
	x0, y0, ok0 := grid.WorldToMap(start.X, start.Y)
	x1, y1, ok1 := grid.WorldToMap(end.X, end.Y)
	if !ok0 || !ok1 {
		return lineSegment{}, false
	}
	return lineSegment{int(x0), int(y0), int(x1), int(y1)}, true
}

// backoutValidLine part of start-end on the grid, walking from start until the first off grid cell
func backoutValidLine(grid *costmap.Costmap, start, end da.Coordinates) (lineSegment, bool) {
	x0, y0, ok := grid.WorldToMap(start.X, start.Y)
	if !ok {
		return lineSegment{}, false
	}
	x1, y1 := grid.WorldToMapNoBounds(end.X, end.Y)

	line := lineSegment{x0: int(x0), y0: int(y0), x1: int(x0), y1: int(y0)}
	for it := costmap.NewLineIterator(int(x0), int(y0), x1, y1); it.IsValid(); it.Advance() {
		if !grid.InBounds(it.GetX(), it.GetY()) {
			return line, true
		}
		line.x1, line.y1 = it.GetX(), it.GetY()
	}
	return line, true
}

func (cm *CollisionMonitor) isInCollision(grid *costmap.Costmap, line lineSegment) bool {
	for it := costmap.NewLineIterator(line.x0, line.y0, line.x1, line.y1); it.IsValid(); it.Advance() {
		cell := grid.GetCost(uint32(it.GetX()), uint32(it.GetY()))
		if cell != pkg.NO_INFORMATION && float64(cell) >= cm.maxCost {
			return true
		}
	}
	return false
}
