// Package costfunction scores graph edges at query time. An EdgeScorer runs every edge through an
// ordered list of EdgeCostFunction plugins; any plugin can reject the edge or contribute a cost.
package costfunction

import (
	"errors"

	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrConfiguration = errors.New("edge cost function configuration error")
)

// EdgeAttributes read only view of an edge and its endpoints, implemented by datastructure.EdgeView
type EdgeAttributes interface {
	GetEdgeId() da.Index
	GetEdgeCost() da.EdgeCost
	GetMetadata() da.Metadata
	GetStartNode() *da.Node
	GetEndNode() *da.Node
	GetStartCoords() da.Coordinates
	GetEndCoords() da.Coordinates
}

// EdgeCostFunction an edge scoring plugin.
//
// Configure is called once per instance with the instance name, which is also the prefix of its config keys.
// Prepare is called once per route request before the first Score.
// Score returns the cost contribution for e and false if e is not traversable. cost is the running cost of the edge.
type EdgeCostFunction interface {
	Configure(pc PluginContext, name string) error
	Prepare()
	Score(e EdgeAttributes, cost float64) (float64, bool)
	Name() string
}

// CostmapSource gives plugins access to costmap topics
type CostmapSource interface {
	Subscribe(topic string) *costmap.Subscriber
}

// PluginContext hosting environment handed to plugins at configure time
type PluginContext struct {
	Config   *viper.Viper
	Logger   *zap.Logger
	Services ServiceRegistrar
	Costmaps CostmapSource
}

func (pc PluginContext) withLogger(logger *zap.Logger) PluginContext {
	pc.Logger = logger
	return pc
}

func (pc PluginContext) getBool(key string, def bool) bool {
	if pc.Config == nil || !pc.Config.IsSet(key) {
		return def
	}
	return pc.Config.GetBool(key)
}

func (pc PluginContext) getFloat64(key string, def float64) float64 {
	if pc.Config == nil || !pc.Config.IsSet(key) {
		return def
	}
	return pc.Config.GetFloat64(key)
}

func (pc PluginContext) getString(key string, def string) string {
	if pc.Config == nil || !pc.Config.IsSet(key) {
		return def
	}
	return pc.Config.GetString(key)
}

func (pc PluginContext) getStringSlice(key string) []string {
	if pc.Config == nil {
		return nil
	}
	return pc.Config.GetStringSlice(key)
}

func (pc PluginContext) logger() *zap.Logger {
	if pc.Logger == nil {
		return zap.NewNop()
	}
	return pc.Logger
}
