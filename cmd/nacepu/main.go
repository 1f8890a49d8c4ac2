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

	fetcher := httpx.NewCollyFetcher(cfg.UserAgent)
	fetcher.SetTimeout(cfg.FetchTimeout)
	fetcher.SetAttempts(cfg.FetchAttempts)

	svc := core.NewScrapeService(store.NewStore(cfg.DataDir), logger)
	svc.SetStatsPath(cfg.StatsOutput)
	scr := scraper.NewNacepuScraper(cfg.NacepuURL, fetcher)

	if _, err := svc.Run(context.Background(), scr, cfg.NacepuOutput); err != nil {
		slog.Error("nacepu scrape failed", "kind", observability.ClassifyScrapeError(err), "error", err)
		os.Exit(1)
	}
	slog.Info("run_stats", "stats", observability.Snapshot())
}
