package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/baxromumarov/lunch-menu/internal/config"
	"github.com/baxromumarov/lunch-menu/internal/observability"
	"github.com/baxromumarov/lunch-menu/internal/publish"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(cfg.Logger(os.Stdout))

	pub := publish.NewPublisher(store.NewStore(cfg.DataDir), cfg.IndexPath,
		publish.Binding{Region: publish.NacepuRegion, MenuPath: cfg.NacepuOutput},
		publish.Binding{Region: publish.SiaRegion, MenuPath: cfg.SiaOutput},
	)
	pub.SetStatsPath(cfg.StatsOutput)
	if err := pub.Publish(context.Background()); err != nil {
		slog.Error("publish failed", "error", err)
		os.Exit(1)
	}
	slog.Info("run_stats", "stats", observability.Snapshot())
}
