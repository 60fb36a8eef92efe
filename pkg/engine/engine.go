package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lintang-b-s/navroute/pkg"
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	"github.com/lintang-b-s/navroute/pkg/costmap"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/operations"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/lintang-b-s/navroute/pkg/metrics"
	"github.com/lintang-b-s/navroute/pkg/spatialindex"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrUnknownAdjuster = errors.New("no edge adjuster registered with that name")
	ErrUnknownEdge     = errors.New("unknown edge id")
)

type costmapSource struct {
	Topic string `mapstructure:"topic"`
	File  string `mapstructure:"file"`
}

// Engine owns the graph and everything searching it. searches on the shared graph are serialized.
type Engine struct {
	mu sync.Mutex

	graph            *da.Graph
	costmaps         *costmap.Hub
	services         *costfunction.ServiceRegistry
	scorer           *costfunction.EdgeScorer
	planner          *routing.RoutePlanner
	rtree            *spatialindex.Rtree
	goalIntent       *routing.GoalIntentExtractor
	collisionMonitor *operations.CollisionMonitor
	logger           *zap.Logger
}

func (e *Engine) GetGraph() *da.Graph {
	return e.graph
}

func (e *Engine) GetCostmaps() *costmap.Hub {
	return e.costmaps
}

func (e *Engine) GetScorer() *costfunction.EdgeScorer {
	return e.scorer
}

func (e *Engine) GetRtree() *spatialindex.Rtree {
	return e.rtree
}

// NewEngine reads graph_filepath and the costmap files listed under costmaps, then configures the engine.
// costmap files are watched until ctx is done.
func NewEngine(ctx context.Context, cfg *viper.Viper, logger *zap.Logger) (*Engine, error) {
	logger.Info("Starting route engine...")

	cfg.SetDefault("graph_filepath", "./data/graph.geojson")
	graphFilePath := cfg.GetString("graph_filepath")
	logger.Info("Reading graph from ", zap.String("graphFilePath", graphFilePath))
	graph, err := da.ReadGeoJSONGraph(graphFilePath)
	if err != nil {
		return nil, err
	}
	logger.Info("Graph loaded", zap.Int("nodes", graph.Size()), zap.Int("edges", graph.NumberOfEdges()))

	hub := costmap.NewHub()
	hub.OnPublish(func(topic string) {
		metrics.CostmapUpdates.WithLabelValues(topic).Inc()
	})

	var sources []costmapSource
	if err := cfg.UnmarshalKey("costmaps", &sources); err != nil {
		return nil, fmt.Errorf("reading costmaps config: %w", err)
	}
	for _, src := range sources {
		topic := src.Topic
		if topic == "" {
			topic = pkg.DEFAULT_COSTMAP_TOPIC
		}
		if err := costmap.WatchFile(ctx, hub, src.File, topic, logger.Named("costmap")); err != nil {
			return nil, fmt.Errorf("loading costmap %s: %w", src.File, err)
		}
	}

	return NewEngineWithGraph(graph, hub, cfg, logger)
}

// NewEngineWithGraph configures the engine over an already loaded graph and costmap hub.
func NewEngineWithGraph(graph *da.Graph, hub *costmap.Hub, cfg *viper.Viper, logger *zap.Logger) (*Engine, error) {
	services := costfunction.NewServiceRegistry()
	scorer, err := costfunction.NewEdgeScorer(costfunction.PluginContext{
		Config:   cfg,
		Logger:   logger.Named("edge_scorer"),
		Services: services,
		Costmaps: hub,
	}, costfunction.NewDefaultRegistry())
	if err != nil {
		return nil, err
	}
	logger.Info("Edge scorer configured", zap.Int("plugins", scorer.PluginCount()),
		zap.String("aggregation", scorer.Aggregation().String()))

	planner := routing.NewRoutePlanner(cfg.GetInt("max_iterations"), scorer, logger.Named("route_planner"))

	_, numComponents := graph.StronglyConnectedComponents()
	if numComponents > 1 {
		logger.Warn("graph is not strongly connected, some node pairs have no route",
			zap.Int("components", numComponents))
	}

	rtree := spatialindex.NewRtree()
	rtree.Build(graph, logger)

	goalIntent := routing.NewGoalIntentExtractor(graph, rtree, goalIntentConfig(cfg), logger.Named("goal_intent"))

	monitorCfg := collisionMonitorConfig(cfg)
	collisionMonitor := operations.NewCollisionMonitor(graph, hub.Subscribe(monitorCfg.CostmapTopic), monitorCfg,
		logger.Named("collision_monitor"))

	return &Engine{
		graph:            graph,
		costmaps:         hub,
		services:         services,
		scorer:           scorer,
		planner:          planner,
		rtree:            rtree,
		goalIntent:       goalIntent,
		collisionMonitor: collisionMonitor,
		logger:           logger,
	}, nil
}

func goalIntentConfig(cfg *viper.Viper) routing.GoalIntentConfig {
	def := routing.DefaultGoalIntentConfig()
	cfg.SetDefault("prune_goal", def.PruneGoal)
	cfg.SetDefault("max_dist_from_edge", def.MaxDistFromEdge)
	cfg.SetDefault("min_dist_from_goal", def.MinDistFromGoal)
	cfg.SetDefault("min_dist_from_start", def.MinDistFromStart)
	return routing.GoalIntentConfig{
		PruneGoal:        cfg.GetBool("prune_goal"),
		MaxDistFromEdge:  cfg.GetFloat64("max_dist_from_edge"),
		MinDistFromGoal:  cfg.GetFloat64("min_dist_from_goal"),
		MinDistFromStart: cfg.GetFloat64("min_dist_from_start"),
	}
}

func collisionMonitorConfig(cfg *viper.Viper) operations.CollisionMonitorConfig {
	def := operations.DefaultCollisionMonitorConfig()
	cfg.SetDefault("collision_monitor.costmap_topic", def.CostmapTopic)
	cfg.SetDefault("collision_monitor.rate", def.Rate)
	cfg.SetDefault("collision_monitor.max_cost", def.MaxCost)
	cfg.SetDefault("collision_monitor.max_collision_dist", def.MaxCollisionDist)
	return operations.CollisionMonitorConfig{
		CostmapTopic:     cfg.GetString("collision_monitor.costmap_topic"),
		Rate:             cfg.GetFloat64("collision_monitor.rate"),
		MaxCost:          cfg.GetFloat64("collision_monitor.max_cost"),
		MaxCollisionDist: cfg.GetFloat64("collision_monitor.max_collision_dist"),
	}
}

// ComputeRoute resolves start and goal, searches and prunes the route ends. rerouting may be nil.
func (e *Engine) ComputeRoute(req routing.RouteRequest, rerouting *routing.ReroutingState) (routing.Route, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	extents, err := e.goalIntent.FindStartAndGoal(req)
	if err != nil {
		metrics.RouteRequests.WithLabelValues(resultLabel(err)).Inc()
		return routing.Route{}, err
	}

	// already there
	if extents.Start == extents.Goal {
		metrics.RouteRequests.WithLabelValues(metrics.ResultFound).Inc()
		return routing.NewRoute([]da.Index{}, extents.Start, 0), nil
	}

	startTime := time.Now()
	route, err := e.planner.FindRoute(e.graph, extents.Start, extents.Goal, req.BlockedIDs)
	metrics.SearchDuration.Observe(float64(time.Since(startTime).Microseconds()) / 1000.0)
	metrics.SearchIterations.Observe(float64(e.planner.GetNumIterations()))
	metrics.RouteRequests.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		e.logSearchError(err, extents)
		return routing.Route{}, err
	}

	return e.goalIntent.PruneStartAndGoal(route, req, extents, rerouting), nil
}

func (e *Engine) logSearchError(err error, extents routing.NodeExtents) {
	fields := []zap.Field{
		zap.Uint32("start", uint32(e.graph.GetNode(extents.Start).GetNodeId())),
		zap.Uint32("goal", uint32(e.graph.GetNode(extents.Goal).GetNodeId())),
		zap.Int("iterations", e.planner.GetNumIterations()),
		zap.Error(err),
	}
	if errors.Is(err, routing.ErrInvalidGraph) {
		e.logger.Error("route search failed", fields...)
		return
	}
	e.logger.Warn("route search failed", fields...)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultFound
	case errors.Is(err, routing.ErrNoRouteFound):
		return metrics.ResultNoRoute
	case errors.Is(err, routing.ErrSearchTimedOut):
		return metrics.ResultTimedOut
	case errors.Is(err, routing.ErrIndeterminateNodes):
		return metrics.ResultBadRequest
	default:
		return metrics.ResultInvalid
	}
}

// AdjustEdges forwards a closure/override request to the edge adjuster registered under name.
func (e *Engine) AdjustEdges(name string, req costfunction.AdjustEdgesRequest) (costfunction.AdjustEdgesResponse, error) {
	adjuster, ok := e.services.GetEdgeAdjuster(name)
	if !ok {
		return costfunction.AdjustEdgesResponse{}, fmt.Errorf("%w: %q", ErrUnknownAdjuster, name)
	}
	return adjuster.AdjustEdges(req), nil
}

func (e *Engine) AdjusterNames() []string {
	return e.services.Names()
}

func (e *Engine) PublishCostmap(topic string, cm *costmap.Costmap) {
	e.costmaps.Publish(topic, cm)
	e.logger.Info("costmap published", zap.String("topic", topic),
		zap.Uint32("size_x", cm.GetSizeInCellsX()), zap.Uint32("size_y", cm.GetSizeInCellsY()))
}

// CheckCollision runs the collision monitor on a route given as edge ids, with the vehicle at pose on currEdgeId.
func (e *Engine) CheckCollision(currEdgeId da.Index, routeEdgeIds []da.Index, pose da.Coordinates) (operations.OperationResult, error) {
	curr, ok := e.graph.EdgeIndexOf(currEdgeId)
	if !ok {
		return operations.OperationResult{}, fmt.Errorf("%w: %d", ErrUnknownEdge, currEdgeId)
	}
	edges := make([]da.Index, 0, len(routeEdgeIds))
	for _, id := range routeEdgeIds {
		idx, ok := e.graph.EdgeIndexOf(id)
		if !ok {
			return operations.OperationResult{}, fmt.Errorf("%w: %d", ErrUnknownEdge, id)
		}
		edges = append(edges, idx)
	}

	start := e.graph.GetEdge(curr).GetStart()
	if len(edges) > 0 {
		start = e.graph.GetEdge(edges[0]).GetStart()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collisionMonitor.Perform(curr, routing.NewRoute(edges, start, 0), pose)
}
