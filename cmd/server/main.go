package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/baxromumarov/lunch-menu/internal/api"
	"github.com/baxromumarov/lunch-menu/internal/config"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(cfg.Logger(os.Stdout))

	srv := api.NewServer(store.NewStore(cfg.DataDir), cfg.IndexPath, map[string]string{
		"nacepu": cfg.NacepuOutput,
		"sia":    cfg.SiaOutput,
	})
	srv.SetStatsPath(cfg.StatsOutput)

	slog.Info("starting preview server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
