package datastructure

import "github.com/lintang-b-s/navroute/pkg"

// SearchState per node scratch space of a single search. not part of graph identity.
type SearchState struct {
	integratedCost float64 // best known cost from search start
	traversalCost  float64 // cost of parentEdge
	parentEdge     Index
}

func NewSearchState() SearchState {
	return SearchState{
		integratedCost: pkg.INF_WEIGHT,
		traversalCost:  0,
		parentEdge:     INVALID_EDGE_ID,
	}
}

func (s *SearchState) GetIntegratedCost() float64 {
	return s.integratedCost
}

func (s *SearchState) GetTraversalCost() float64 {
	return s.traversalCost
}

func (s *SearchState) GetParentEdge() Index {
	return s.parentEdge
}

func (s *SearchState) HasParentEdge() bool {
	return s.parentEdge != INVALID_EDGE_ID
}

func (s *SearchState) SetIntegratedCost(cost float64) {
	s.integratedCost = cost
}

// Relax records a cheaper way to reach the node through parentEdge.
func (s *SearchState) Relax(integratedCost, traversalCost float64, parentEdge Index) {
	s.integratedCost = integratedCost
	s.traversalCost = traversalCost
	s.parentEdge = parentEdge
}

func (s *SearchState) Reset() {
	*s = NewSearchState()
}

// GetSearchState search state of node at index i
func (g *Graph) GetSearchState(i Index) *SearchState {
	return &g.searchStates[i]
}

// ResetSearchStates bulk resets the search state of every node. O(|V|).
// For graphs with tens of thousands of nodes, one linear pass is negligibly
// different from tracking touched nodes.
func (g *Graph) ResetSearchStates() {
	if len(g.searchStates) == 0 {
		return
	}
	g.searchStates[0] = NewSearchState()
	for filled := 1; filled < len(g.searchStates); filled *= 2 {
		copy(g.searchStates[filled:], g.searchStates[:filled])
	}
}
