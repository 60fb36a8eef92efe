package costfunction

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type Aggregation int

const (
	// AggregateAdditive each plugin scores from zero, accepted costs are summed
	AggregateAdditive Aggregation = iota
	// AggregateMax each plugin scores from zero, the largest cost wins
	AggregateMax
	// AggregateOverride the running cost starts at the static edge cost and is passed through every plugin in order
	AggregateOverride
)

func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "additive", "sum":
		return AggregateAdditive, nil
	case "max", "maximum":
		return AggregateMax, nil
	case "override", "last":
		return AggregateOverride, nil
	default:
		return AggregateAdditive, fmt.Errorf("%w: unknown edge scorer aggregation %q", ErrConfiguration, s)
	}
}

func (a Aggregation) String() string {
	switch a {
	case AggregateMax:
		return "max"
	case AggregateOverride:
		return "override"
	default:
		return "additive"
	}
}

// EdgeScorer ordered list of configured edge cost functions.
// not safe for concurrent searches, every searcher owns its own scorer (plugin state updates are synchronized by the plugins).
type EdgeScorer struct {
	plugins     []EdgeCostFunction
	aggregation Aggregation
}

// NewEdgeScorer loads the plugins named by edge_cost_functions, in order. every instance name needs a
// <name>.plugin key with a type registered in registry.
func NewEdgeScorer(pc PluginContext, registry *Registry) (*EdgeScorer, error) {
	aggregation, err := ParseAggregation(pc.getString("edge_scorer.aggregation", ""))
	if err != nil {
		return nil, err
	}

	logger := pc.logger()
	names := pc.getStringSlice("edge_cost_functions")
	plugins := make([]EdgeCostFunction, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: edge cost function %q listed twice", ErrConfiguration, name)
		}
		seen[name] = struct{}{}

		typeName := pc.getString(name+".plugin", "")
		if typeName == "" {
			return nil, fmt.Errorf("%w: edge cost function %q has no %s.plugin", ErrConfiguration, name, name)
		}
		plugin, err := registry.New(typeName)
		if err != nil {
			return nil, err
		}
		if err := plugin.Configure(pc.withLogger(logger.Named(name)), name); err != nil {
			return nil, fmt.Errorf("%w: configuring %q (%s): %v", ErrConfiguration, name, typeName, err)
		}
		logger.Info("edge cost function loaded", zap.String("name", name), zap.String("type", typeName))
		plugins = append(plugins, plugin)
	}

	return &EdgeScorer{plugins: plugins, aggregation: aggregation}, nil
}

// NewEdgeScorerWithPlugins scorer over already configured plugins
func NewEdgeScorerWithPlugins(aggregation Aggregation, plugins ...EdgeCostFunction) *EdgeScorer {
	return &EdgeScorer{plugins: plugins, aggregation: aggregation}
}

func (es *EdgeScorer) Prepare() {
	for _, p := range es.plugins {
		p.Prepare()
	}
}

// Score runs e through every plugin, stopping at the first rejection.
func (es *EdgeScorer) Score(e EdgeAttributes) (float64, bool) {
	switch es.aggregation {
	case AggregateOverride:
		cost := e.GetEdgeCost().Cost
		for _, p := range es.plugins {
			c, ok := p.Score(e, cost)
			if !ok {
				return 0, false
			}
			cost = c
		}
		return cost, true
	case AggregateMax:
		total := 0.0
		for _, p := range es.plugins {
			c, ok := p.Score(e, 0)
			if !ok {
				return 0, false
			}
			if c > total {
				total = c
			}
		}
		return total, true
	default:
		total := 0.0
		for _, p := range es.plugins {
			c, ok := p.Score(e, 0)
			if !ok {
				return 0, false
			}
			total += c
		}
		return total, true
	}
}

func (es *EdgeScorer) PluginCount() int {
	return len(es.plugins)
}

func (es *EdgeScorer) Aggregation() Aggregation {
	return es.aggregation
}

func (es *EdgeScorer) Plugins() []EdgeCostFunction {
	return es.plugins
}
