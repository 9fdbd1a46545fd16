// Package orchestrator sequences a scrape run across the class dashboard:
// enumerate classes, filter against the allow-list, and hand each surviving
// class to the per-tab traversal. Class failures are recorded and the run
// moves on; only authentication loss or cancellation aborts it.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// Class is one dashboard entry, identified by position like every other
// sibling list in the walk.
type Class struct {
	Ordinal int
	Name    string
}

// Site abstracts the dashboard operations. The rod implementation lives in
// this package; tests substitute a scripted one.
type Site interface {
	// EnumerateClasses lists the dashboard's current class cards.
	EnumerateClasses() ([]Class, error)

	// OpenClass navigates into a class and returns its output folder,
	// created with the subject/class-id tag in the name.
	OpenClass(c Class) (folder string, err error)

	// WalkTabs traverses every configured tab of the currently open class.
	WalkTabs(ctx context.Context, folder string) error

	// ReturnToDashboard restores the class list view.
	ReturnToDashboard() error
}

// Orchestrator runs the class loop.
type Orchestrator struct {
	site   Site
	cfg    config.ScrapeConfig
	logger *slog.Logger
}

func New(site Site, cfg config.ScrapeConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		site:   site,
		cfg:    cfg,
		logger: logger.With("component", "orchestrator"),
	}
}

// Run walks every allowed class and returns the per-class outcome summary.
// Class handles are positional: the list is re-enumerated before each visit
// because returning to the dashboard invalidates previous handles.
func (o *Orchestrator) Run(ctx context.Context) (*types.RunSummary, error) {
	summary := types.NewRunSummary()

	classes, err := o.site.EnumerateClasses()
	if err != nil {
		return nil, err
	}
	total := len(classes)
	o.logger.Info("classes found", "count", total)

	for idx := 0; idx < total; idx++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fresh, err := o.site.EnumerateClasses()
		if err != nil {
			o.logger.Warn("class re-enumeration failed", "index", idx, "error", err)
			summary.RecordFailed(classes[idx].Name, "re-enumeration failed: "+err.Error())
			continue
		}
		if idx >= len(fresh) {
			o.logger.Warn("class missing after re-enumeration", "index", idx, "have", len(fresh))
			summary.RecordFailed(classes[idx].Name, "missing after re-enumeration")
			continue
		}
		c := fresh[idx]

		if !o.allowed(c.Name) {
			o.logger.Info("class filtered out", "class", c.Name)
			summary.RecordFiltered(c.Name)
			continue
		}

		o.logger.Info("processing class", "class", c.Name, "index", idx)
		if err := o.processClass(ctx, c); err != nil {
			o.logger.Error("class failed", "class", c.Name, "error", err)
			summary.RecordFailed(c.Name, err.Error())
		} else {
			summary.RecordProcessed(c.Name)
		}

		if err := o.site.ReturnToDashboard(); err != nil {
			o.logger.Warn("could not return to dashboard", "error", err)
		}
	}

	summary.Finished = time.Now()
	return summary, nil
}

func (o *Orchestrator) processClass(ctx context.Context, c Class) error {
	folder, err := o.site.OpenClass(c)
	if err != nil {
		return err
	}
	return o.site.WalkTabs(ctx, folder)
}

// allowed applies the subject allow-list: case-insensitive substring match,
// empty list allows everything.
func (o *Orchestrator) allowed(name string) bool {
	if len(o.cfg.Subjects) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, want := range o.cfg.Subjects {
		if strings.Contains(lower, strings.ToLower(want)) {
			return true
		}
	}
	return false
}
