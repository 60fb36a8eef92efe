package operations

import (
	"testing"

	"github.com/lintang-b-s/navroute/pkg"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// nodes at x = 0, 2, 4, ..., 12 on y = 1, edge ids 50.. between consecutive nodes.
// the 10m x 5m costmap ends before the last node.
func buildFixture(t *testing.T) (*da.Graph, routing.Route, *costmap.Costmap, *costmap.Subscriber) {
	t.Helper()
	g := da.NewGraph()
	for i := 0; i < 7; i++ {
		_, err := g.AddNode(da.Index(i), da.NewCoordinates(float64(2*i), 1), nil)
		require.NoError(t, err)
	}
	edges := []da.Index{}
	for i := 0; i < 6; i++ {
		e, err := g.AddEdge(da.Index(50+i), da.Index(i), da.Index(i+1), da.NewEdgeCost(2, false), nil)
		require.NoError(t, err)
		edges = append(edges, e)
	}

	grid, err := costmap.NewUniformCostmap(20, 10, 0.5, 0, 0, pkg.FREE_SPACE)
	require.NoError(t, err)
	sub := costmap.NewSubscriber(pkg.DEFAULT_LOCAL_COSTMAP_TOPIC)
	sub.Publish(grid)
	return g, routing.NewRoute(edges, 0, 12), grid, sub
}

func monitorConfig(maxDist float64) CollisionMonitorConfig {
	cfg := DefaultCollisionMonitorConfig()
	cfg.Rate = 0
	cfg.MaxCollisionDist = maxDist
	return cfg
}

func TestCollisionMonitorDetects(t *testing.T) {
	g, route, grid, sub := buildFixture(t)
	grid.SetCost(10, 2, pkg.LETHAL_OBSTACLE) // world (5.25, 1.25)

	cm := NewCollisionMonitor(g, sub, monitorConfig(5.0), zaptest.NewLogger(t))
	res, err := cm.Perform(route.Edges[0], route, da.NewCoordinates(0.5, 1.2))
	require.NoError(t, err)
	assert.True(t, res.Reroute)
	assert.Equal(t, []da.Index{52}, res.BlockedIDs)
}

func TestCollisionMonitorLogsBlockedEdge(t *testing.T) {
	g, route, grid, sub := buildFixture(t)
	grid.SetCost(10, 2, pkg.LETHAL_OBSTACLE) // on edge 52, two edges ahead of the vehicle

	core, logs := observer.New(zapcore.InfoLevel)
	cm := NewCollisionMonitor(g, sub, monitorConfig(5.0), zap.New(core))
	res, err := cm.Perform(route.Edges[0], route, da.NewCoordinates(0.5, 1.2))
	require.NoError(t, err)
	require.Equal(t, []da.Index{52}, res.BlockedIDs)

	entries := logs.FilterMessage("collision has been detected ahead of the robot pose").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(52), entries[0].ContextMap()["edge_id"])
}

func TestCollisionMonitorDistanceLimit(t *testing.T) {
	g, route, grid, sub := buildFixture(t)
	grid.SetCost(10, 2, pkg.LETHAL_OBSTACLE)

	cm := NewCollisionMonitor(g, sub, monitorConfig(3.0), nil)
	res, err := cm.Perform(route.Edges[0], route, da.NewCoordinates(0.5, 1.2))
	require.NoError(t, err)
	assert.False(t, res.Reroute, "obstacle beyond the checked distance")
	assert.Empty(t, res.BlockedIDs)
}

func TestCollisionMonitorFullRouteOffGrid(t *testing.T) {
	g, route, grid, sub := buildFixture(t)

	cm := NewCollisionMonitor(g, sub, monitorConfig(-1), nil)
	res, err := cm.Perform(route.Edges[0], route, da.NewCoordinates(0.5, 1))
	require.NoError(t, err)
	assert.False(t, res.Reroute)

	grid.SetCost(19, 2, pkg.LETHAL_OBSTACLE) // last column, on the partially off grid edge 8 -> 10
	res, err = cm.Perform(route.Edges[0], route, da.NewCoordinates(0.5, 1))
	require.NoError(t, err)
	assert.True(t, res.Reroute)
	assert.Equal(t, []da.Index{54}, res.BlockedIDs)
}

func TestCollisionMonitorUnknownIsNotCollision(t *testing.T) {
	g, route, grid, sub := buildFixture(t)
	grid.SetCost(3, 2, pkg.NO_INFORMATION)

	cm := NewCollisionMonitor(g, sub, monitorConfig(-1), nil)
	res, err := cm.Perform(route.Edges[0], route, da.NewCoordinates(0, 1))
	require.NoError(t, err)
	assert.False(t, res.Reroute)
}

func TestCollisionMonitorRateAndErrors(t *testing.T) {
	g, route, grid, sub := buildFixture(t)
	grid.SetCost(2, 2, pkg.LETHAL_OBSTACLE)

	cfg := monitorConfig(5.0)
	cfg.Rate = 0.001
	cm := NewCollisionMonitor(g, sub, cfg, nil)

	res, err := cm.Perform(route.Edges[0], route, da.NewCoordinates(0, 1))
	require.NoError(t, err)
	assert.True(t, res.Reroute)

	res, err = cm.Perform(route.Edges[0], route, da.NewCoordinates(0, 1))
	require.NoError(t, err)
	assert.False(t, res.Reroute, "rate limited")

	res, err = NewCollisionMonitor(g, sub, monitorConfig(5), nil).Perform(da.INVALID_EDGE_ID, route, da.NewCoordinates(0, 1))
	require.NoError(t, err)
	assert.False(t, res.Reroute, "not on the route yet")

	noData := NewCollisionMonitor(g, costmap.NewSubscriber("empty"), monitorConfig(5), nil)
	_, err = noData.Perform(route.Edges[0], route, da.NewCoordinates(0, 1))
	assert.ErrorIs(t, err, ErrOperationFailed)
}
