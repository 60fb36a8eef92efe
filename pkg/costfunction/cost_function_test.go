package costfunction

import (
	"math"
	"strings"
	"testing"

	"github.com/lintang-b-s/navroute/pkg"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// edgeBetween graph with a single edge (x0,y0)->(x1,y1), returns its view
func edgeBetween(t *testing.T, x0, y0, x1, y1 float64, md da.Metadata) da.EdgeView {
	t.Helper()
	g := da.NewGraph()
	u, err := g.AddNode(1, da.NewCoordinates(x0, y0), da.Metadata{"class": "dock"})
	require.NoError(t, err)
	v, err := g.AddNode(2, da.NewCoordinates(x1, y1), nil)
	require.NoError(t, err)
	e, err := g.AddEdge(7, u, v, da.NewEdgeCost(3, true), md)
	require.NoError(t, err)
	return g.GetEdgeView(e)
}

func readConfig(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

type fixedScorer struct {
	name     string
	cost     float64
	reject   bool
	calls    int
	prepared int
	lastIn   float64
}

func (f *fixedScorer) Configure(pc PluginContext, name string) error {
	f.name = name
	return nil
}

func (f *fixedScorer) Prepare() { f.prepared++ }

func (f *fixedScorer) Score(e EdgeAttributes, cost float64) (float64, bool) {
	f.calls++
	f.lastIn = cost
	if f.reject {
		return cost, false
	}
	return f.cost, true
}

func (f *fixedScorer) Name() string { return f.name }

func TestEdgeScorerAggregation(t *testing.T) {
	e := edgeBetween(t, 0, 0, 1, 0, nil)

	tests := []struct {
		name        string
		aggregation Aggregation
		want        float64
	}{
		{"additive", AggregateAdditive, 5},
		{"max", AggregateMax, 4},
		{"override", AggregateOverride, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fixedScorer{cost: 4}
			b := &fixedScorer{cost: 1}
			es := NewEdgeScorerWithPlugins(tt.aggregation, a, b)

			cost, ok := es.Score(e)
			require.True(t, ok)
			assert.InDelta(t, tt.want, cost, 1e-9)
			assert.Equal(t, 2, es.PluginCount())
		})
	}

	a := &fixedScorer{cost: 4}
	b := &fixedScorer{cost: 1}
	NewEdgeScorerWithPlugins(AggregateOverride, a, b).Score(e)
	assert.Equal(t, 3.0, a.lastIn, "override starts from the static cost")
	assert.Equal(t, 4.0, b.lastIn, "override passes the running cost along")
}

func TestEdgeScorerShortCircuit(t *testing.T) {
	e := edgeBetween(t, 0, 0, 1, 0, nil)
	a := &fixedScorer{reject: true}
	b := &fixedScorer{cost: 1}
	es := NewEdgeScorerWithPlugins(AggregateAdditive, a, b)

	_, ok := es.Score(e)
	assert.False(t, ok)
	assert.Equal(t, 0, b.calls)

	es.Prepare()
	assert.Equal(t, 1, a.prepared)
	assert.Equal(t, 1, b.prepared)
}

func TestNewEdgeScorerFromConfig(t *testing.T) {
	cfg := readConfig(t, `
edge_cost_functions: [closures, dist]
edge_scorer:
  aggregation: additive
closures:
  plugin: AdjustEdgesScorer
dist:
  plugin: DistanceScorer
  weight: 2.0
`)
	services := NewServiceRegistry()
	es, err := NewEdgeScorer(PluginContext{Config: cfg, Logger: zaptest.NewLogger(t), Services: services}, NewDefaultRegistry())
	require.NoError(t, err)
	require.Equal(t, 2, es.PluginCount())
	assert.Equal(t, "closures", es.Plugins()[0].Name())
	assert.Equal(t, "dist", es.Plugins()[1].Name())
	assert.Equal(t, []string{"closures"}, services.Names())

	e := edgeBetween(t, 0, 0, 3, 4, nil)
	cost, ok := es.Score(e)
	require.True(t, ok)
	assert.InDelta(t, 10.0, cost, 1e-9)
}

func TestNewEdgeScorerErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown type", "edge_cost_functions: [a]\na:\n  plugin: Teleporter\n"},
		{"missing plugin key", "edge_cost_functions: [a]\n"},
		{"listed twice", "edge_cost_functions: [a, a]\na:\n  plugin: PenaltyScorer\n"},
		{"bad aggregation", "edge_scorer:\n  aggregation: product\n"},
		{"costmap scorer without costmaps", "edge_cost_functions: [c]\nc:\n  plugin: CostmapScorer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEdgeScorer(PluginContext{Config: readConfig(t, tt.yaml)}, NewDefaultRegistry())
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestNoPluginsConfigured(t *testing.T) {
	es, err := NewEdgeScorer(PluginContext{Config: viper.New()}, NewDefaultRegistry())
	require.NoError(t, err)
	assert.Equal(t, 0, es.PluginCount())
	assert.Equal(t, AggregateAdditive, es.Aggregation())
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Len(t, r.Types(), 5)
	assert.Panics(t, func() {
		r.Register(PenaltyScorerType, func() EdgeCostFunction { return NewPenaltyScorer() })
	})
}

func TestAdjustEdgesScorer(t *testing.T) {
	services := NewServiceRegistry()
	s := NewAdjustEdgesScorer()
	require.NoError(t, s.Configure(PluginContext{Services: services}, "closures"))

	adjuster, ok := services.GetEdgeAdjuster("closures")
	require.True(t, ok)

	e := edgeBetween(t, 0, 0, 1, 0, nil)
	cost, ok := s.Score(e, 3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, cost, "unchanged without overrides")

	resp := adjuster.AdjustEdges(AdjustEdgesRequest{ClosedEdges: []da.Index{7}})
	assert.True(t, resp.Success)
	s.Prepare()
	_, ok = s.Score(e, 3)
	assert.False(t, ok)
	assert.True(t, s.IsClosed(7))

	resp = adjuster.AdjustEdges(AdjustEdgesRequest{
		OpenedEdges: []da.Index{7, 99},
		AdjustEdges: []EdgeCostAdjustment{{EdgeId: 7, Cost: 42.5}},
	})
	assert.True(t, resp.Success)

	// pinned snapshot until the next Prepare
	_, ok = s.Score(e, 3)
	assert.False(t, ok)

	s.Prepare()
	cost, ok = s.Score(e, 3)
	assert.True(t, ok)
	assert.Equal(t, 42.5, cost)

	assert.Error(t, s.Configure(PluginContext{Services: services}, "closures"), "name already registered")
}

func costmapProvider(t *testing.T, cells uint8) (*costmap.Subscriber, *costmap.Costmap) {
	t.Helper()
	cm, err := costmap.NewUniformCostmap(20, 20, 0.5, 0, 0, cells)
	require.NoError(t, err)
	sub := costmap.NewSubscriber(pkg.DEFAULT_COSTMAP_TOPIC)
	sub.Publish(cm)
	return sub, cm
}

func TestCostmapScorerUniformLowCost(t *testing.T) {
	sub, _ := costmapProvider(t, 1)
	s := NewCostmapScorer()
	s.SetProvider(sub)
	s.Prepare()

	cost, ok := s.Score(edgeBetween(t, 1, 1, 8, 6, nil), 0)
	require.True(t, ok)
	assert.InDelta(t, 0.0, cost, 0.005)
	assert.InDelta(t, 1.0/253.0, cost, 1e-9)
}

func TestCostmapScorerCollision(t *testing.T) {
	hub := costmap.NewHub()
	cm, err := costmap.NewUniformCostmap(20, 20, 0.5, 0, 0, 10)
	require.NoError(t, err)
	cm.SetCost(8, 2, pkg.LETHAL_OBSTACLE)
	hub.Publish(pkg.DEFAULT_COSTMAP_TOPIC, cm)

	e := edgeBetween(t, 1.1, 1.1, 8.1, 1.1, nil) // row 2, columns 2..16

	rejecting := NewCostmapScorer()
	require.NoError(t, rejecting.Configure(PluginContext{Config: viper.New(), Costmaps: hub}, "costmap"))
	rejecting.Prepare()
	_, ok := rejecting.Score(e, 0)
	assert.False(t, ok)

	cfg := readConfig(t, "costmap:\n  invalid_on_collision: false\n  weight: 2.0\n")
	accepting := NewCostmapScorer()
	require.NoError(t, accepting.Configure(PluginContext{Config: cfg, Costmaps: hub}, "costmap"))
	accepting.Prepare()
	cost, ok := accepting.Score(e, 0)
	require.True(t, ok)
	assert.InDelta(t, 2.0*254.0/253.0, cost, 1e-9, "max aggregation")

	cfg = readConfig(t, "costmap:\n  invalid_on_collision: false\n  use_maximum: false\n")
	mean := NewCostmapScorer()
	require.NoError(t, mean.Configure(PluginContext{Config: cfg, Costmaps: hub}, "costmap"))
	mean.Prepare()
	cost, ok = mean.Score(e, 0)
	require.True(t, ok)
	assert.InDelta(t, (14*10.0+254.0)/(15*253.0), cost, 1e-9)
}

func TestCostmapScorerUnknownCells(t *testing.T) {
	sub, cm := costmapProvider(t, pkg.NO_INFORMATION)
	cm.SetCost(3, 3, 50)
	s := NewCostmapScorer()
	s.SetProvider(sub)
	s.Prepare()

	cost, ok := s.Score(edgeBetween(t, 0.1, 1.1, 4.9, 1.1, nil), 0)
	require.True(t, ok, "unknown cells are not a collision")
	assert.Equal(t, 0.0, cost)

	cost, ok = s.Score(edgeBetween(t, 0.1, 0.1, 4.9, 4.9, nil), 0)
	require.True(t, ok)
	assert.InDelta(t, 50.0/253.0, cost, 1e-9)
}

func TestCostmapScorerOffMapAndNoData(t *testing.T) {
	sub, _ := costmapProvider(t, 0)
	e := edgeBetween(t, 1, 1, 50, 1, nil)

	s := NewCostmapScorer()
	s.SetProvider(sub)
	s.Prepare()
	_, ok := s.Score(e, 0)
	assert.False(t, ok)

	s.invalidOffMap = false
	cost, ok := s.Score(e, 1.5)
	assert.True(t, ok)
	assert.Equal(t, 1.5, cost)

	empty := NewCostmapScorer()
	empty.SetProvider(costmap.NewSubscriber("nothing"))
	empty.Prepare()
	_, ok = empty.Score(edgeBetween(t, 1, 1, 2, 2, nil), 0)
	assert.False(t, ok, "no data rejects every edge")
}

func TestDistanceScorer(t *testing.T) {
	s := NewDistanceScorer()
	require.NoError(t, s.Configure(PluginContext{Config: readConfig(t, "d:\n  weight: 0.5\n")}, "d"))

	cost, ok := s.Score(edgeBetween(t, 0, 0, 6, 8, nil), 0)
	require.True(t, ok)
	assert.InDelta(t, 5.0, cost, 1e-9)

	cost, ok = s.Score(edgeBetween(t, 0, 0, 6, 8, da.Metadata{"speed_limit": 2.0}), 0)
	require.True(t, ok)
	assert.InDelta(t, 2.5, cost, 1e-9)

	cost, _ = s.Score(edgeBetween(t, 0, 0, 6, 8, da.Metadata{"speed_limit": 0.0}), 0)
	assert.InDelta(t, 5.0, cost, 1e-9, "non positive speed is ignored")
}

func TestPenaltyScorer(t *testing.T) {
	s := NewPenaltyScorer()
	require.NoError(t, s.Configure(PluginContext{Config: readConfig(t, "p:\n  weight: 3\n  penalty_tag: toll\n")}, "p"))

	cost, ok := s.Score(edgeBetween(t, 0, 0, 1, 0, da.Metadata{"toll": 1.5}), 0)
	require.True(t, ok)
	assert.Equal(t, 4.5, cost)

	cost, ok = s.Score(edgeBetween(t, 0, 0, 1, 0, da.Metadata{"penalty": 1.5}), 9)
	require.True(t, ok)
	assert.Equal(t, 0.0, cost)
}

func TestSemanticScorer(t *testing.T) {
	s := NewSemanticScorer()
	cfg := readConfig(t, `
sem:
  weight: 2
  semantic_classes: [door, dock]
  door: 1.5
  dock: 4
`)
	require.NoError(t, s.Configure(PluginContext{Config: cfg}, "sem"))

	// edge tagged door, start node tagged dock
	cost, ok := s.Score(edgeBetween(t, 0, 0, 1, 0, da.Metadata{"class": "door"}), 0)
	require.True(t, ok)
	assert.InDelta(t, 2*(1.5+4), cost, 1e-9)

	cost, ok = s.Score(edgeBetween(t, 0, 0, 1, 0, da.Metadata{"class": "hallway"}), 0)
	require.True(t, ok)
	assert.InDelta(t, 8.0, cost, 1e-9)

	s.SetClassCost("hallway", 1)
	cost, _ = s.Score(edgeBetween(t, 0, 0, 1, 0, da.Metadata{"class": "hallway"}), 0)
	assert.InDelta(t, 10.0, cost, 1e-9)
	assert.False(t, math.IsNaN(cost))
}

func TestParseAggregation(t *testing.T) {
	for in, want := range map[string]Aggregation{"": AggregateAdditive, "MAX": AggregateMax, " override ": AggregateOverride} {
		got, err := ParseAggregation(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEmpty(t, got.String())
	}
}
