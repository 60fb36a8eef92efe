package costfunction

import (
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"go.uber.org/zap"
)

const SemanticScorerType = "SemanticScorer"

// SemanticScorer adds a per class cost for every configured class tagged on the edge or on its end points.
//
//	semantic:
//	  plugin: SemanticScorer
//	  semantic_key: class
//	  semantic_classes: [door, elevator]
//	  door: 2.5
//	  elevator: 10.0
type SemanticScorer struct {
	name        string
	logger      *zap.Logger
	weight      float64
	semanticKey string
	classCosts  map[string]float64
}

func NewSemanticScorer() *SemanticScorer {
	return &SemanticScorer{
		logger:      zap.NewNop(),
		weight:      1.0,
		semanticKey: "class",
		classCosts:  make(map[string]float64),
	}
}

func (s *SemanticScorer) Configure(pc PluginContext, name string) error {
	s.name = name
	s.logger = pc.logger()
	s.weight = pc.getFloat64(name+".weight", 1.0)
	s.semanticKey = pc.getString(name+".semantic_key", "class")

	s.classCosts = make(map[string]float64)
	for _, class := range pc.getStringSlice(name + ".semantic_classes") {
		s.classCosts[class] = pc.getFloat64(name+"."+class, 0.0)
	}
	s.logger.Info("configuring semantic scorer", zap.String("semantic_key", s.semanticKey),
		zap.Int("classes", len(s.classCosts)))
	return nil
}

// SetClassCost sets the cost of one class.
func (s *SemanticScorer) SetClassCost(class string, cost float64) {
	s.classCosts[class] = cost
}

func (s *SemanticScorer) Prepare() {}

func (s *SemanticScorer) Score(e EdgeAttributes, cost float64) (float64, bool) {
	score := 0.0
	score += s.classCost(e.GetMetadata())
	if n := e.GetStartNode(); n != nil {
		score += s.classCost(n.GetMetadata())
	}
	if n := e.GetEndNode(); n != nil {
		score += s.classCost(n.GetMetadata())
	}
	return s.weight * score, true
}

func (s *SemanticScorer) classCost(md da.Metadata) float64 {
	class, ok := md.GetString(s.semanticKey)
	if !ok {
		return 0
	}
	return s.classCosts[class]
}

func (s *SemanticScorer) Name() string {
	return s.name
}
