package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/baxromumarov/lunch-menu/internal/menu"
	"github.com/baxromumarov/lunch-menu/internal/observability"
	"github.com/baxromumarov/lunch-menu/internal/scraper"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

type ScrapeService struct {
	store     *store.Store
	logger    *slog.Logger
	statsPath string
}

func NewScrapeService(st *store.Store, logger *slog.Logger) *ScrapeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeService{store: st, logger: logger, statsPath: store.DefaultStatsFile}
}

// SetStatsPath changes the file run counters are added to. An empty name
// turns recording off.
func (s *ScrapeService) SetStatsPath(name string) {
	s.statsPath = name
}

// Run fetches one menu and writes it to output. A changed page layout is not
// fatal: it is logged and an empty document is written so the publisher
// still has something to read. Every other failure is returned.
func (s *ScrapeService) Run(ctx context.Context, scr scraper.MenuScraper, output string) (*menu.Document, error) {
	before := observability.Snapshot()
	defer s.recordStats(before)

	start := time.Now()
	doc, err := scr.FetchMenu(ctx)
	observability.ObserveFetchDuration(time.Since(start).Seconds())
	if err != nil {
		observability.IncError(observability.ClassifyScrapeError(err), scr.Name())
		if !errors.Is(err, menu.ErrLayoutChanged) {
			return nil, err
		}
		s.logger.Warn("menu layout not recognised, writing empty menu",
			"source", scr.Name(),
			"error", err,
		)
		doc = &menu.Document{}
	}

	if err := s.store.SaveMenu(output, doc); err != nil {
		observability.IncError(observability.ErrorStore, scr.Name())
		return nil, fmt.Errorf("save %s menu failed: %w", scr.Name(), err)
	}
	observability.AddSectionsWritten(doc.Len())

	s.logger.Info("menu saved",
		"source", scr.Name(),
		"path", s.store.Path(output),
		"sections", doc.Len(),
		"items", doc.ItemCount(),
	)
	return doc, nil
}

// recordStats adds everything counted since before to the stats file. A
// failed write is logged and does not fail the run.
func (s *ScrapeService) recordStats(before observability.StatsSnapshot) {
	if s.statsPath == "" {
		return
	}
	if err := s.store.RecordStats(s.statsPath, observability.Snapshot().Sub(before)); err != nil {
		s.logger.Warn("failed to record run stats", "path", s.store.Path(s.statsPath), "error", err)
	}
}
