package routing

import (
	"fmt"

	"github.com/lintang-b-s/navroute/pkg"
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/util"
	"go.uber.org/zap"
)

// EdgeScorer dynamic edge scoring used for overridable edges
type EdgeScorer interface {
	Prepare()
	Score(e costfunction.EdgeAttributes) (float64, bool)
	PluginCount() int
}

// RoutePlanner dijkstra search with early goal termination and lazy deletion over a Graph.
// search state lives in the graph, so only one FindRoute may run on a graph at a time.
type RoutePlanner struct {
	maxIterations int
	scorer        EdgeScorer
	logger        *zap.Logger

	pq *da.MinHeap[da.Index]

	goal          da.Index
	numIterations int
}

// NewRoutePlanner maxIterations 0 means unlimited. a nil scorer behaves like a scorer with no plugins
func NewRoutePlanner(maxIterations int, scorer EdgeScorer, logger *zap.Logger) *RoutePlanner {
	if maxIterations <= 0 {
		maxIterations = pkg.MAX_ITERATIONS
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutePlanner{
		maxIterations: maxIterations,
		scorer:        scorer,
		logger:        logger,
		pq:            da.NewFourAryHeap[da.Index](),
		goal:          da.INVALID_NODE_ID,
	}
}

func (rp *RoutePlanner) GetMaxIterations() int {
	return rp.maxIterations
}

// GetNumIterations queue pops of the last search
func (rp *RoutePlanner) GetNumIterations() int {
	return rp.numIterations
}

// FindRoute shortest route from node index start to node index goal. blockedIds holds node and edge ids that must
// not be expanded. the goal node id is exempt, edges into the goal are not.
func (rp *RoutePlanner) FindRoute(graph *da.Graph, start, goal da.Index, blockedIds []da.Index) (Route, error) {
	if graph.Empty() {
		return Route{}, fmt.Errorf("%w: graph is empty", ErrInvalidGraph)
	}

	if _, err := graph.At(start); err != nil {
		return Route{}, fmt.Errorf("start node: %w", err)
	}
	if _, err := graph.At(goal); err != nil {
		return Route{}, fmt.Errorf("goal node: %w", err)
	}

	if rp.scorer != nil && rp.scorer.PluginCount() > 0 {
		rp.scorer.Prepare()
	}

	if err := rp.findShortestGraphTraversal(graph, start, goal, blockedIds); err != nil {
		return Route{}, err
	}

	goalState := graph.GetSearchState(goal)
	if !goalState.HasParentEdge() {
		return Route{}, ErrNoRouteFound
	}

	// walk back with a local cursor, the persisted parent edges stay untouched
	edges := make([]da.Index, 0)
	for cursor := goalState.GetParentEdge(); cursor != da.INVALID_EDGE_ID; {
		edges = append(edges, cursor)
		cursor = graph.GetSearchState(graph.GetEdge(cursor).GetStart()).GetParentEdge()
	}
	edges = util.ReverseG(edges)

	return NewRoute(edges, start, goalState.GetIntegratedCost()), nil
}

func (rp *RoutePlanner) findShortestGraphTraversal(graph *da.Graph, start, goal da.Index, blockedIds []da.Index) error {
	graph.ResetSearchStates()
	rp.goal = goal
	defer rp.pq.Clear()

	blocked := make(map[da.Index]struct{}, len(blockedIds))
	for _, id := range blockedIds {
		blocked[id] = struct{}{}
	}

	graph.GetSearchState(start).SetIntegratedCost(0)
	rp.pq.Insert(da.NewPriorityQueueNode(0, start))

	iterations := 0
	found := false
	for !rp.pq.IsEmpty() && iterations < rp.maxIterations {
		iterations++

		minNode, _ := rp.pq.ExtractMin()
		u := minNode.GetItem()
		currCost := minNode.GetRank()
		uState := graph.GetSearchState(u)

		// stale entry, u was already settled with a lower cost
		if currCost != uState.GetIntegratedCost() {
			continue
		}

		if u == goal {
			found = true
			break
		}

		var err error
		graph.ForOutEdgesOf(u, func(eIdx da.Index, e *da.Edge) {
			if err != nil {
				return
			}
			traversalCost, ok, tErr := rp.getTraversalCost(graph, eIdx, e, blocked)
			if tErr != nil {
				err = tErr
				return
			}
			if !ok {
				return
			}

			v := e.GetEnd()
			vState := graph.GetSearchState(v)
			potential := currCost + traversalCost
			if potential < vState.GetIntegratedCost() {
				vState.Relax(potential, traversalCost, eIdx)
				rp.pq.Insert(da.NewPriorityQueueNode(potential, v))
			}
		})
		if err != nil {
			rp.numIterations = iterations
			return err
		}
	}
	rp.numIterations = iterations

	if !found && iterations >= rp.maxIterations {
		return ErrSearchTimedOut
	}
	return nil
}

func (rp *RoutePlanner) getTraversalCost(graph *da.Graph, eIdx da.Index, e *da.Edge,
	blocked map[da.Index]struct{}) (float64, bool, error) {

	if _, ok := blocked[e.GetEdgeId()]; ok {
		return 0, false, nil
	}
	// a blocked goal node stays reachable
	if e.GetEnd() != rp.goal {
		if _, ok := blocked[graph.GetNode(e.GetEnd()).GetNodeId()]; ok {
			return 0, false, nil
		}
	}

	edgeCost := e.GetEdgeCost()
	if !edgeCost.Overridable || rp.scorer == nil || rp.scorer.PluginCount() == 0 {
		if edgeCost.Cost == 0.0 {
			return 0, false, fmt.Errorf("%w: edge %d doesn't contain and cannot compute a valid edge cost",
				ErrInvalidGraph, e.GetEdgeId())
		}
		return edgeCost.Cost, true, nil
	}

	cost, ok := rp.scorer.Score(graph.GetEdgeView(eIdx))
	return cost, ok, nil
}
