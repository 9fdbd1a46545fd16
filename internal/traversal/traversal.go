// Package traversal walks the four-level content hierarchy of a class tab.
// The central constraint is that element handles do not survive navigation:
// the engine therefore walks by position, re-enumerating the sibling list
// before every visit instead of holding on to handles from the first pass.
package traversal

import (
	"context"
	"log/slog"
)

// Level names a depth in the content hierarchy.
type Level int

const (
	LevelTab Level = iota
	LevelMainTopic
	LevelSubtopic
	LevelSection
)

func (l Level) String() string {
	switch l {
	case LevelTab:
		return "tab"
	case LevelMainTopic:
		return "main_topic"
	case LevelSubtopic:
		return "subtopic"
	default:
		return "section"
	}
}

func (l Level) next() Level { return l + 1 }

// Sibling is one entry of an enumerated sibling list. Ordinal is its
// position in that enumeration; it is the only identity that survives a
// page mutation.
type Sibling struct {
	Ordinal int
	Label   string
}

// Surface abstracts the live page operations the engine drives. The rod
// implementation lives in this package; tests substitute a scripted one.
type Surface interface {
	// Enumerate lists the current siblings at level under path. An empty
	// list with a nil error means the level genuinely has no entries
	// right now (possibly because an ancestor collapsed).
	Enumerate(level Level, path []string) ([]Sibling, error)

	// Descend activates the sibling so the next level becomes visible.
	Descend(level Level, sib Sibling, path []string) error

	// RecoverAncestor restores the view that made this level's siblings
	// visible after the page drifted away from it.
	RecoverAncestor(level Level, path []string) error

	// CaptureLeaf opens a section and persists it.
	CaptureLeaf(sib Sibling, path []string) error
}

// Stats counts the outcome of a walk.
type Stats struct {
	Captured  int
	Skipped   int
	Failed    int
	Recovered int
}

// Engine runs the positional walk.
type Engine struct {
	surface Surface
	logger  *slog.Logger
}

func New(surface Surface, logger *slog.Logger) *Engine {
	return &Engine{
		surface: surface,
		logger:  logger.With("component", "traversal"),
	}
}

// Walk traverses main topics, subtopics, and sections of the already
// activated tab. Per-subtree failures are recorded in Stats and logged,
// never propagated; only context cancellation aborts the walk.
func (e *Engine) Walk(ctx context.Context, tab string) (*Stats, error) {
	stats := &Stats{}
	err := e.walkLevel(ctx, LevelMainTopic, []string{tab}, stats)
	return stats, err
}

func (e *Engine) walkLevel(ctx context.Context, level Level, path []string, stats *Stats) error {
	first, err := e.surface.Enumerate(level, path)
	if err != nil {
		e.logger.Warn("enumeration failed", "level", level.String(), "path", path, "error", err)
		stats.Failed++
		return nil
	}
	total := len(first)
	if total == 0 {
		e.logger.Debug("no siblings at level", "level", level.String(), "path", path)
		return nil
	}
	e.logger.Info("entering level", "level", level.String(), "path", path, "siblings", total)

	// total is fixed by the first enumeration; everything else is read
	// fresh per index so stale handles never get dereferenced.
	for idx := 0; idx < total; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		fresh, err := e.surface.Enumerate(level, path)
		if err != nil {
			e.logger.Warn("re-enumeration failed, skipping sibling",
				"level", level.String(), "index", idx, "error", err)
			stats.Failed++
			continue
		}

		if len(fresh) == 0 {
			if err := e.surface.RecoverAncestor(level, path); err != nil {
				e.logger.Warn("ancestor recovery failed, abandoning level",
					"level", level.String(), "path", path, "error", err)
				stats.Failed += total - idx
				return nil
			}
			stats.Recovered++
			fresh, err = e.surface.Enumerate(level, path)
			if err != nil || len(fresh) == 0 {
				e.logger.Warn("level still empty after recovery, abandoning",
					"level", level.String(), "path", path)
				stats.Failed += total - idx
				return nil
			}
		}

		if idx >= len(fresh) {
			e.logger.Warn("sibling missing after re-enumeration",
				"level", level.String(), "index", idx, "have", len(fresh))
			stats.Skipped++
			continue
		}
		sib := fresh[idx]

		if level == LevelSection {
			if err := e.surface.CaptureLeaf(sib, path); err != nil {
				e.logger.Warn("section capture failed",
					"section", sib.Label, "path", path, "error", err)
				stats.Failed++
				continue
			}
			e.logger.Info("section captured", "section", sib.Label, "path", path)
			stats.Captured++
			continue
		}

		if err := e.surface.Descend(level, sib, path); err != nil {
			e.logger.Warn("descend failed, skipping subtree",
				"level", level.String(), "label", sib.Label, "error", err)
			stats.Failed++
			continue
		}

		childPath := make([]string, len(path), len(path)+1)
		copy(childPath, path)
		childPath = append(childPath, sib.Label)
		if err := e.walkLevel(ctx, level.next(), childPath, stats); err != nil {
			return err
		}
	}
	return nil
}
