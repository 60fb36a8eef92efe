package costfunction

import (
	"fmt"
	"sort"
)

type Constructor func() EdgeCostFunction

// Registry plugin type name -> constructor
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// NewDefaultRegistry registry with every built in scorer
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(AdjustEdgesScorerType, func() EdgeCostFunction { return NewAdjustEdgesScorer() })
	r.Register(CostmapScorerType, func() EdgeCostFunction { return NewCostmapScorer() })
	r.Register(DistanceScorerType, func() EdgeCostFunction { return NewDistanceScorer() })
	r.Register(PenaltyScorerType, func() EdgeCostFunction { return NewPenaltyScorer() })
	r.Register(SemanticScorerType, func() EdgeCostFunction { return NewSemanticScorer() })
	return r
}

// Register panics if typeName is already registered.
func (r *Registry) Register(typeName string, ctor Constructor) {
	if _, ok := r.constructors[typeName]; ok {
		panic(fmt.Sprintf("costfunction: plugin type %q registered twice", typeName))
	}
	r.constructors[typeName] = ctor
}

func (r *Registry) New(typeName string) (EdgeCostFunction, error) {
	ctor, ok := r.constructors[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown plugin type %q", ErrConfiguration, typeName)
	}
	return ctor(), nil
}

func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.constructors))
	for t := range r.constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
