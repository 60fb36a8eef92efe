package costfunction

import (
	"go.uber.org/zap"
)

const PenaltyScorerType = "PenaltyScorer"

// PenaltyScorer cost = weight * the penalty stored in the edge metadata, 0 without one.
type PenaltyScorer struct {
	name       string
	logger     *zap.Logger
	weight     float64
	penaltyTag string
}

func NewPenaltyScorer() *PenaltyScorer {
	return &PenaltyScorer{logger: zap.NewNop(), weight: 1.0, penaltyTag: "penalty"}
}

func (s *PenaltyScorer) Configure(pc PluginContext, name string) error {
	s.name = name
	s.logger = pc.logger()
	s.weight = pc.getFloat64(name+".weight", 1.0)
	s.penaltyTag = pc.getString(name+".penalty_tag", "penalty")
	s.logger.Info("configuring penalty scorer", zap.Float64("weight", s.weight), zap.String("penalty_tag", s.penaltyTag))
	return nil
}

func (s *PenaltyScorer) Prepare() {}

func (s *PenaltyScorer) Score(e EdgeAttributes, cost float64) (float64, bool) {
	penalty, ok := e.GetMetadata().GetFloat64(s.penaltyTag)
	if !ok {
		return 0, true
	}
	return s.weight * penalty, true
}

func (s *PenaltyScorer) Name() string {
	return s.name
}
