package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baxromumarov/lunch-menu/internal/observability"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

// Binding ties a page region to the menu JSON file rendered into it.
type Binding struct {
	Region   Region
	MenuPath string
}

type Publisher struct {
	store     *store.Store
	page      string
	bindings  []Binding
	now       func() time.Time
	logger    *slog.Logger
	statsPath string
}

func NewPublisher(st *store.Store, page string, bindings ...Binding) *Publisher {
	return &Publisher{
		store:     st,
		page:      page,
		bindings:  bindings,
		now:       time.Now,
		logger:    slog.Default(),
		statsPath: store.DefaultStatsFile,
	}
}

// SetStatsPath changes the file publish counters are added to. An empty name
// turns recording off.
func (p *Publisher) SetStatsPath(name string) {
	p.statsPath = name
}

// SetClock replaces the time source used for the "last updated" stamp.
func (p *Publisher) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

func (p *Publisher) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Publish renders every bound menu into its region, stamps the current local
// time and writes the page back in place. A missing or malformed menu file
// aborts before the page is touched.
func (p *Publisher) Publish(ctx context.Context) error {
	before := observability.Snapshot()
	defer p.recordStats(before)

	rendered := make([]string, len(p.bindings))
	for i, b := range p.bindings {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := p.store.LoadMenu(b.MenuPath)
		if err != nil {
			observability.IncError(observability.ErrorParsing, "publisher")
			return err
		}
		rendered[i] = RenderList(doc)
	}

	raw, err := p.store.ReadFile(p.page)
	if err != nil {
		observability.IncError(observability.ErrorStore, "publisher")
		return err
	}

	page := string(raw)
	for i, b := range p.bindings {
		if page, err = ReplaceRegion(page, b.Region, rendered[i]); err != nil {
			return err
		}
	}
	if page, err = StampTime(page, p.now()); err != nil {
		return err
	}

	if err := p.store.WriteFile(p.page, []byte(page)); err != nil {
		observability.IncError(observability.ErrorStore, "publisher")
		return fmt.Errorf("publish %s failed: %w", p.page, err)
	}
	observability.IncPagesPublished()

	p.logger.Info("page updated with new menu data",
		"path", p.store.Path(p.page),
		"regions", len(p.bindings),
	)
	return nil
}

func (p *Publisher) recordStats(before observability.StatsSnapshot) {
	if p.statsPath == "" {
		return
	}
	if err := p.store.RecordStats(p.statsPath, observability.Snapshot().Sub(before)); err != nil {
		p.logger.Warn("failed to record run stats", "path", p.store.Path(p.statsPath), "error", err)
	}
}
