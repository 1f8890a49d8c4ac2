package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/baxromumarov/lunch-menu/internal/config"
	"github.com/baxromumarov/lunch-menu/internal/core"
	"github.com/baxromumarov/lunch-menu/internal/httpx"
	"github.com/baxromumarov/lunch-menu/internal/observability"
	"github.com/baxromumarov/lunch-menu/internal/scraper"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	client := httpx.NewPoliteClient(cfg.UserAgent)
	client.SetTimeout(cfg.FetchTimeout)
	client.SetAttempts(cfg.FetchAttempts)

	scr := scraper.NewSiaScraper(cfg.SiaURL, client)
	scr.SetCharset(cfg.SiaCharset)

	svc := core.NewScrapeService(store.NewStore(cfg.DataDir), logger)
	svc.SetStatsPath(cfg.StatsOutput)
	if _, err := svc.Run(context.Background(), scr, cfg.SiaOutput); err != nil {
		slog.Error("sia scrape failed", "kind", observability.ClassifyScrapeError(err), "error", err)
		os.Exit(1)
	}
	slog.Info("run_stats", "stats", observability.Snapshot())
}
