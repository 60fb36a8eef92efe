package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/lintang-b-s/navroute/pkg/concurrent"
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/lintang-b-s/navroute/pkg/logger"
	"github.com/lintang-b-s/navroute/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "./data/config.yaml", "path to the yaml config file")
	numQueries = flag.Int("n", 1000, "number of random queries")
	numWorkers = flag.Int("workers", 4, "number of workers, each with its own graph copy")
	seed       = flag.Int64("seed", 1, "random seed")
	outPath    = flag.String("out", "./data/randqueries.txt", "output file")
)

type query struct {
	start, goal da.Index
}

type queryResult struct {
	query
	cost     float64
	duration time.Duration
	status   string
}

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	routingEngine, err := engine.NewEngine(ctx, viper.GetViper(), logger)
	if err != nil {
		logger.Fatal("failed to start route engine", zap.Error(err))
	}
	graph := routingEngine.GetGraph()
	if graph.Empty() {
		logger.Fatal("graph has no nodes")
	}

	wp := concurrent.NewWorkerPool[query, queryResult](ctx, *numWorkers, *numQueries)

	// every worker searches its own graph copy, search state is per graph
	wp.Start(func(workerId int) (func(query) queryResult, error) {
		scorer, err := costfunction.NewEdgeScorer(costfunction.PluginContext{
			Config:   viper.GetViper(),
			Logger:   logger.Named("edge_scorer"),
			Costmaps: routingEngine.GetCostmaps(),
		}, costfunction.NewDefaultRegistry())
		if err != nil {
			return nil, fmt.Errorf("worker %d: %w", workerId, err)
		}
		g := graph.Clone()
		planner := routing.NewRoutePlanner(viper.GetInt("max_iterations"), scorer, logger.Named("route_planner"))

		return func(q query) queryResult {
			start := time.Now()
			route, err := planner.FindRoute(g, q.start, q.goal, nil)
			res := queryResult{query: q, cost: route.Cost, duration: time.Since(start), status: "found"}
			switch {
			case err == nil:
			case errors.Is(err, routing.ErrNoRouteFound):
				res.status = "no_route"
			case errors.Is(err, routing.ErrSearchTimedOut):
				res.status = "timed_out"
			default:
				res.status = "invalid"
			}
			return res
		}, nil
	})

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *numQueries; i++ {
		if err := wp.Submit(query{
			start: da.Index(rng.Intn(graph.Size())),
			goal:  da.Index(rng.Intn(graph.Size())),
		}); err != nil {
			break
		}
	}
	wp.Close()
	if err := wp.Wait(); err != nil {
		logger.Fatal("random queries failed", zap.Error(err))
	}

	f, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal("failed to create output file", zap.Error(err))
	}
	defer f.Close()
	out := bufio.NewWriter(f)

	var (
		total time.Duration
		found int
	)
	for res := range wp.Results() {
		total += res.duration
		if res.status == "found" {
			found++
		}
		fmt.Fprintf(out, "%d %d %f %d %s\n", graph.GetNode(res.start).GetNodeId(), graph.GetNode(res.goal).GetNodeId(),
			res.cost, res.duration.Microseconds(), res.status)
	}
	if err := out.Flush(); err != nil {
		logger.Fatal("failed to write output file", zap.Error(err))
	}

	logger.Info("random queries done", zap.Int("queries", *numQueries), zap.Int("found", found),
		zap.Duration("avg_duration", total/time.Duration(max(*numQueries, 1))), zap.String("out", *outPath))
}
