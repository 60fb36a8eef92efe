package costfunction

import (
	"fmt"

	"github.com/lintang-b-s/navroute/pkg"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	"go.uber.org/zap"
)

const CostmapScorerType = "CostmapScorer"

// CostmapScorer scores an edge by the grid cells its straight line crosses (max or mean cost, normalized by
// max_cost and scaled by weight). unknown cells never count as collision and are left out of the aggregate.
type CostmapScorer struct {
	name   string
	logger *zap.Logger

	useMax             bool
	invalidOnCollision bool
	invalidOffMap      bool
	maxCost            float64
	weight             float64
	topic              string

	provider costmap.Provider
	costmap  *costmap.Costmap
}

func NewCostmapScorer() *CostmapScorer {
	return &CostmapScorer{
		logger:             zap.NewNop(),
		useMax:             true,
		invalidOnCollision: true,
		invalidOffMap:      true,
		maxCost:            pkg.DEFAULT_MAX_COST,
		weight:             1.0,
		topic:              pkg.DEFAULT_COSTMAP_TOPIC,
	}
}

func (s *CostmapScorer) Configure(pc PluginContext, name string) error {
	s.name = name
	s.logger = pc.logger()
	s.logger.Info("configuring costmap scorer")

	s.useMax = pc.getBool(name+".use_maximum", true)
	s.invalidOnCollision = pc.getBool(name+".invalid_on_collision", true)
	s.invalidOffMap = pc.getBool(name+".invalid_off_map", true)
	s.maxCost = pc.getFloat64(name+".max_cost", pkg.DEFAULT_MAX_COST)
	s.topic = pc.getString(name+".costmap_topic", pkg.DEFAULT_COSTMAP_TOPIC)
	s.weight = pc.getFloat64(name+".weight", 1.0)

	if s.maxCost <= 0 {
		return fmt.Errorf("%s.max_cost must be positive, got %f", name, s.maxCost)
	}
	if pc.Costmaps == nil {
		return fmt.Errorf("no costmap source for topic %q", s.topic)
	}
	s.provider = pc.Costmaps.Subscribe(s.topic)
	return nil
}

// SetProvider replaces the costmap source, used when the scorer is built without a PluginContext.
func (s *CostmapScorer) SetProvider(p costmap.Provider) {
	s.provider = p
}

func (s *CostmapScorer) Prepare() {
	if s.provider == nil {
		s.costmap = nil
		return
	}
	cm, err := s.provider.GetCostmap()
	if err != nil {
		s.costmap = nil
		return
	}
	s.costmap = cm
}

func (s *CostmapScorer) Score(e EdgeAttributes, cost float64) (float64, bool) {
	if s.costmap == nil {
		s.logger.Warn("no costmap yet received", zap.String("topic", s.topic))
		return cost, false
	}

	start, end := e.GetStartCoords(), e.GetEndCoords()
	x0, y0, ok0 := s.costmap.WorldToMap(start.X, start.Y)
	x1, y1, ok1 := s.costmap.WorldToMap(end.X, end.Y)
	if !ok0 || !ok1 {
		if s.invalidOffMap {
			return cost, false
		}
		return cost, true
	}

	largest, running := 0.0, 0.0
	n := 0
	for it := costmap.NewLineIterator(int(x0), int(y0), int(x1), int(y1)); it.IsValid(); it.Advance() {
		cell := s.costmap.GetCost(uint32(it.GetX()), uint32(it.GetY()))
		if cell == pkg.NO_INFORMATION {
			continue
		}
		pointCost := float64(cell)
		if pointCost >= s.maxCost && s.invalidOnCollision {
			return cost, false
		}

		n++
		running += pointCost
		if pointCost > largest {
			largest = pointCost
		}
	}

	if n == 0 {
		return 0, true
	}
	if s.useMax {
		return s.weight * largest / s.maxCost, true
	}
	return s.weight * running / (float64(n) * s.maxCost), true
}

func (s *CostmapScorer) Name() string {
	return s.name
}
