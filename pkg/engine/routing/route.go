package routing

import (
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
)

// Route edges from start to goal (graph edge indices), the start node index and the total cost.
type Route struct {
	Edges     []da.Index
	StartNode da.Index
	Cost      float64
}

func NewRoute(edges []da.Index, startNode da.Index, cost float64) Route {
	return Route{Edges: edges, StartNode: startNode, Cost: cost}
}

func (r Route) Empty() bool {
	return len(r.Edges) == 0
}

// Nodes node indices visited by the route, start node first
func (r Route) Nodes(graph *da.Graph) []da.Index {
	nodes := make([]da.Index, 0, len(r.Edges)+1)
	nodes = append(nodes, r.StartNode)
	for _, e := range r.Edges {
		nodes = append(nodes, graph.GetEdge(e).GetEnd())
	}
	return nodes
}

// Coordinates coords of the visited nodes, start node first
func (r Route) Coordinates(graph *da.Graph) []da.Coordinates {
	nodes := r.Nodes(graph)
	coords := make([]da.Coordinates, len(nodes))
	for i, n := range nodes {
		coords[i] = graph.GetNode(n).GetCoords()
	}
	return coords
}
