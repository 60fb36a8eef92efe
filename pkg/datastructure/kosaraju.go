package datastructure

import (
	"github.com/lintang-b-s/navroute/pkg/util"
)

// StronglyConnectedComponents runs kosaraju's algorithm over the directed node graph.
// returns the component id of every node index and the number of components. ids follow the reverse finishing order
// of the first pass, so component 0 is a source of the condensation graph.
func (g *Graph) StronglyConnectedComponents() ([]Index, int) {
	n := Index(len(g.nodes))

	// reversed adjacency, the arena only stores outgoing edges
	inAdj := make([][]Index, n)
	for i := range g.edges {
		e := &g.edges[i]
		inAdj[e.end] = append(inAdj[e.end], e.start)
	}

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := Index(0); v < n; v++ {
		if !visited[v] {
			g.dfs(v, &order, visited, func(u Index, visit func(Index)) {
				for _, eIdx := range g.nodes[u].neighbors {
					visit(g.edges[eIdx].end)
				}
			})
		}
	}

	order = util.ReverseG[Index](order)

	// reset visited
	visited = make([]bool, n)
	sccs := make([]Index, n)
	numComponents := 0

	for _, v := range order {
		if !visited[v] {
			component := make([]Index, 0, 10)
			g.dfs(v, &component, visited, func(u Index, visit func(Index)) {
				for _, w := range inAdj[u] {
					visit(w)
				}
			})
			for _, node := range component {
				sccs[node] = Index(numComponents)
			}
			numComponents++
		}
	}

	return sccs, numComponents
}

// dfs iterative post order traversal. neighbors calls visit for every successor of u.
func (g *Graph) dfs(root Index, output *[]Index, visited []bool, neighbors func(u Index, visit func(Index))) {
	type frame struct {
		v    Index
		next []Index
	}

	successors := func(u Index) []Index {
		out := make([]Index, 0, 4)
		neighbors(u, func(w Index) {
			out = append(out, w)
		})
		return out
	}

	visited[root] = true
	stack := []frame{{v: root, next: successors(root)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.next) == 0 {
			*output = append(*output, top.v)
			stack = stack[:len(stack)-1]
			continue
		}
		w := top.next[0]
		top.next = top.next[1:]
		if !visited[w] {
			visited[w] = true
			stack = append(stack, frame{v: w, next: successors(w)})
		}
	}
}
