package spatialindex

import (
	"math"

	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree spatial index of graph nodes, used to snap poses to the nearest node
type Rtree struct {
	tr *rtree.RTreeG[da.Index]
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[da.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. one point leaf per graph node
func (rt *Rtree) Build(graph *da.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("nodes", graph.Size()))
	graph.ForNodes(func(idx da.Index, n *da.Node) {
		c := n.GetCoords()
		rt.tr.Insert([2]float64{c.X, c.Y}, [2]float64{c.X, c.Y}, idx)
	})
	log.Info("R-tree spatial index built.")
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// Nearest graph node index closest to (x, y), and its distance. false if the index is empty
func (rt *Rtree) Nearest(x, y float64) (da.Index, float64, bool) {
	best, dist, found := da.INVALID_NODE_ID, math.Inf(1), false
	rt.tr.Nearby(boxDist(x, y),
		func(min, max [2]float64, data da.Index, d float64) bool {
			best = data
			dist = math.Sqrt(d)
			found = true
			return false
		})
	return best, dist, found
}

// SearchWithinRadius node indices within radius of (x, y), nearest first
func (rt *Rtree) SearchWithinRadius(x, y, radius float64) []da.Index {
	results := make([]da.Index, 0, 10)
	r2 := radius * radius
	rt.tr.Nearby(boxDist(x, y),
		func(min, max [2]float64, data da.Index, d float64) bool {
			if d > r2 {
				return false
			}
			results = append(results, data)
			return true
		})
	return results
}

// boxDist squared distance from (x, y) to a box. a lower bound for every item inside it, which is what Nearby needs
func boxDist(x, y float64) func(min, max [2]float64, data da.Index, item bool) float64 {
	return func(min, max [2]float64, data da.Index, item bool) float64 {
		dx := 0.0
		if x < min[0] {
			dx = min[0] - x
		} else if x > max[0] {
			dx = x - max[0]
		}
		dy := 0.0
		if y < min[1] {
			dy = min[1] - y
		} else if y > max[1] {
			dy = y - max[1]
		}
		return dx*dx + dy*dy
	}
}
