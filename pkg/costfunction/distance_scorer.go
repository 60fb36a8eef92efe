package costfunction

import (
	"github.com/lintang-b-s/navroute/pkg/geo"
	"go.uber.org/zap"
)

const DistanceScorerType = "DistanceScorer"

// DistanceScorer cost = weight * edge length, divided by the edge speed when its metadata carries one.
type DistanceScorer struct {
	name     string
	logger   *zap.Logger
	weight   float64
	speedTag string
}

func NewDistanceScorer() *DistanceScorer {
	return &DistanceScorer{logger: zap.NewNop(), weight: 1.0, speedTag: "speed_limit"}
}

func (s *DistanceScorer) Configure(pc PluginContext, name string) error {
	s.name = name
	s.logger = pc.logger()
	s.weight = pc.getFloat64(name+".weight", 1.0)
	s.speedTag = pc.getString(name+".speed_tag", "speed_limit")
	s.logger.Info("configuring distance scorer", zap.Float64("weight", s.weight), zap.String("speed_tag", s.speedTag))
	return nil
}

func (s *DistanceScorer) Prepare() {}

func (s *DistanceScorer) Score(e EdgeAttributes, cost float64) (float64, bool) {
	length := geo.Distance(e.GetStartCoords(), e.GetEndCoords())
	if speed, ok := e.GetMetadata().GetFloat64(s.speedTag); ok && speed > 0 {
		return s.weight * length / speed, true
	}
	return s.weight * length, true
}

func (s *DistanceScorer) Name() string {
	return s.name
}
