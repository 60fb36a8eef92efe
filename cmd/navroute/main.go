package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/navroute/pkg/engine"
	"github.com/lintang-b-s/navroute/pkg/http"
	"github.com/lintang-b-s/navroute/pkg/http/usecases"
	"github.com/lintang-b-s/navroute/pkg/logger"
	"github.com/lintang-b-s/navroute/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "./data/config.yaml", "path to the yaml config file")
	useRateLimit = flag.Bool("rate_limit", false, "enable the global request rate limiter (RATE_LIMIT, RATE_BURST)")
)

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

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	routingEngine, err := engine.NewEngine(ctx, viper.GetViper(), logger)
	if err != nil {
		logger.Fatal("failed to start route engine", zap.Error(err))
	}

	api := http.NewServer(logger)

	routingService := usecases.NewRoutingService(logger, routingEngine)
	if _, err := api.Use(ctx, logger, *useRateLimit, routingService); err != nil {
		logger.Fatal("failed to start API", zap.Error(err))
	}

	signal := http.GracefulShutdown()

	logger.Info("navroute server stopped", zap.String("signal", signal.String()))
	cleanup()
	_ = api.Wait()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
