package datastructure

import (
	"errors"
	"fmt"
	"math"
)

type Index uint32

const (
	INVALID_EDGE_ID Index = math.MaxUint32
	INVALID_NODE_ID Index = math.MaxUint32
)

var (
	ErrInvalidGraph = errors.New("graph is invalid for routing")
)

// Metadata arbitrary user tags (action, region, speed limits, ...). opaque to the planner
type Metadata map[string]any

func (m Metadata) GetFloat64(key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func (m Metadata) GetString(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewCoordinates(x, y float64) Coordinates {
	return Coordinates{X: x, Y: y}
}

type EdgeCost struct {
	Cost        float64
	Overridable bool
}

func NewEdgeCost(cost float64, overridable bool) EdgeCost {
	return EdgeCost{Cost: cost, Overridable: overridable}
}

// Edge directed edge start -> end. start & end are indices of nodes in the same graph.
type Edge struct {
	edgeId   Index
	start    Index
	end      Index
	edgeCost EdgeCost
	metadata Metadata
}

func (e *Edge) GetEdgeId() Index {
	return e.edgeId
}

func (e *Edge) GetStart() Index {
	return e.start
}

func (e *Edge) GetEnd() Index {
	return e.end
}

func (e *Edge) GetEdgeCost() EdgeCost {
	return e.edgeCost
}

func (e *Edge) GetMetadata() Metadata {
	return e.metadata
}

type Node struct {
	nodeId    Index
	coords    Coordinates
	neighbors []Index // outgoing edges, index to graph.edges
	metadata  Metadata
}

func (n *Node) GetNodeId() Index {
	return n.nodeId
}

func (n *Node) GetCoords() Coordinates {
	return n.coords
}

func (n *Node) GetNeighbors() []Index {
	return n.neighbors
}

func (n *Node) GetMetadata() Metadata {
	return n.metadata
}

// Graph arena of nodes & edges addressed by stable indices.
// append only: AddNode/AddEdge must not be called while a search is running.
type Graph struct {
	nodes        []Node
	edges        []Edge
	searchStates []SearchState // parallel to nodes

	nodeIdToIndex map[Index]Index
	edgeIdToIndex map[Index]Index
}

func NewGraph() *Graph {
	return &Graph{
		nodes:         make([]Node, 0),
		edges:         make([]Edge, 0),
		searchStates:  make([]SearchState, 0),
		nodeIdToIndex: make(map[Index]Index),
		edgeIdToIndex: make(map[Index]Index),
	}
}

func NewGraphWithSize(numberOfNodes, numberOfEdges int) *Graph {
	return &Graph{
		nodes:         make([]Node, 0, numberOfNodes),
		edges:         make([]Edge, 0, numberOfEdges),
		searchStates:  make([]SearchState, 0, numberOfNodes),
		nodeIdToIndex: make(map[Index]Index, numberOfNodes),
		edgeIdToIndex: make(map[Index]Index, numberOfEdges),
	}
}

// AddNode appends a node and returns its index.
func (g *Graph) AddNode(nodeId Index, coords Coordinates, metadata Metadata) (Index, error) {
	if _, ok := g.nodeIdToIndex[nodeId]; ok {
		return INVALID_NODE_ID, fmt.Errorf("%w: duplicate node id %d", ErrInvalidGraph, nodeId)
	}
	if metadata == nil {
		metadata = Metadata{}
	}
	idx := Index(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		nodeId:    nodeId,
		coords:    coords,
		neighbors: make([]Index, 0),
		metadata:  metadata,
	})
	g.searchStates = append(g.searchStates, NewSearchState())
	g.nodeIdToIndex[nodeId] = idx
	return idx, nil
}

// AddEdge appends edge start -> end (node indices) and returns the edge index.
func (g *Graph) AddEdge(edgeId, start, end Index, edgeCost EdgeCost, metadata Metadata) (Index, error) {
	if int(start) >= len(g.nodes) || int(end) >= len(g.nodes) {
		return INVALID_EDGE_ID, fmt.Errorf("%w: edge %d references node index out of range (%d -> %d)",
			ErrInvalidGraph, edgeId, start, end)
	}
	if _, ok := g.edgeIdToIndex[edgeId]; ok {
		return INVALID_EDGE_ID, fmt.Errorf("%w: duplicate edge id %d", ErrInvalidGraph, edgeId)
	}
	if edgeCost.Cost < 0 {
		return INVALID_EDGE_ID, fmt.Errorf("%w: edge %d has negative cost %f", ErrInvalidGraph, edgeId, edgeCost.Cost)
	}
	if metadata == nil {
		metadata = Metadata{}
	}
	idx := Index(len(g.edges))
	g.edges = append(g.edges, Edge{
		edgeId:   edgeId,
		start:    start,
		end:      end,
		edgeCost: edgeCost,
		metadata: metadata,
	})
	g.nodes[start].neighbors = append(g.nodes[start].neighbors, idx)
	g.edgeIdToIndex[edgeId] = idx
	return idx, nil
}

func (g *Graph) Size() int {
	return len(g.nodes)
}

func (g *Graph) Empty() bool {
	return len(g.nodes) == 0
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

// At returns node at index i. the pointer stays valid as long as no node is appended.
func (g *Graph) At(i Index) (*Node, error) {
	if int(i) >= len(g.nodes) {
		return nil, fmt.Errorf("%w: node index %d out of range [0, %d)", ErrInvalidGraph, i, len(g.nodes))
	}
	return &g.nodes[i], nil
}

// GetNode unchecked version of At
func (g *Graph) GetNode(i Index) *Node {
	return &g.nodes[i]
}

func (g *Graph) GetEdge(e Index) *Edge {
	return &g.edges[e]
}

// IndexOf resolves external node id to node index
func (g *Graph) IndexOf(nodeId Index) (Index, bool) {
	idx, ok := g.nodeIdToIndex[nodeId]
	return idx, ok
}

// EdgeIndexOf resolves external edge id to edge index
func (g *Graph) EdgeIndexOf(edgeId Index) (Index, bool) {
	idx, ok := g.edgeIdToIndex[edgeId]
	return idx, ok
}

func (g *Graph) ForNodes(handle func(idx Index, n *Node)) {
	for i := range g.nodes {
		handle(Index(i), &g.nodes[i])
	}
}

func (g *Graph) ForOutEdgesOf(u Index, handle func(eIdx Index, e *Edge)) {
	for _, eIdx := range g.nodes[u].neighbors {
		handle(eIdx, &g.edges[eIdx])
	}
}

// GetEdgeView bundles edge eIdx with its endpoint nodes for scoring.
func (g *Graph) GetEdgeView(eIdx Index) EdgeView {
	e := &g.edges[eIdx]
	return EdgeView{
		edge:  e,
		start: &g.nodes[e.start],
		end:   &g.nodes[e.end],
	}
}

// Clone deep copies topology. the clone has its own fresh search states, so it can be searched concurrently with g.
func (g *Graph) Clone() *Graph {
	c := NewGraphWithSize(len(g.nodes), len(g.edges))
	for i := range g.nodes {
		n := g.nodes[i]
		neighbors := make([]Index, len(n.neighbors))
		copy(neighbors, n.neighbors)
		c.nodes = append(c.nodes, Node{
			nodeId:    n.nodeId,
			coords:    n.coords,
			neighbors: neighbors,
			metadata:  n.metadata,
		})
		c.searchStates = append(c.searchStates, NewSearchState())
	}
	c.edges = append(c.edges, g.edges...)
	for k, v := range g.nodeIdToIndex {
		c.nodeIdToIndex[k] = v
	}
	for k, v := range g.edgeIdToIndex {
		c.edgeIdToIndex[k] = v
	}
	return c
}

// EdgeView read only view of an edge and its endpoints, consumed by edge cost functions.
type EdgeView struct {
	edge  *Edge
	start *Node
	end   *Node
}

func NewEdgeView(edge *Edge, start, end *Node) EdgeView {
	return EdgeView{edge: edge, start: start, end: end}
}

func (ev EdgeView) GetEdgeId() Index {
	return ev.edge.edgeId
}

func (ev EdgeView) GetEdgeCost() EdgeCost {
	return ev.edge.edgeCost
}

func (ev EdgeView) GetMetadata() Metadata {
	return ev.edge.metadata
}

func (ev EdgeView) GetStartNode() *Node {
	return ev.start
}

func (ev EdgeView) GetEndNode() *Node {
	return ev.end
}

func (ev EdgeView) GetStartCoords() Coordinates {
	return ev.start.coords
}

func (ev EdgeView) GetEndCoords() Coordinates {
	return ev.end.coords
}
