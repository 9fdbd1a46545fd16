package traversal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/kazantsevivan2813-art/kogscrape/internal/browser"
	"github.com/kazantsevivan2813-art/kogscrape/internal/capture"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/locator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/selectors"
	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// RodSurface implements Surface against a live rod page. All enumeration
// goes through the selector table, so a config override reshapes what the
// engine sees without touching the walk itself.
type RodSurface struct {
	page    *rod.Page
	browser *browser.Browser
	loc     *locator.Locator
	cap     *capture.Service
	cfg     config.ScrapeConfig
	root    string // class folder
	logger  *slog.Logger
}

func NewRodSurface(page *rod.Page, b *browser.Browser, loc *locator.Locator, cap *capture.Service, cfg config.ScrapeConfig, classFolder string, logger *slog.Logger) *RodSurface {
	return &RodSurface{
		page:    page,
		browser: b,
		loc:     loc,
		cap:     cap,
		cfg:     cfg,
		root:    classFolder,
		logger:  logger.With("component", "surface"),
	}
}

func levelTarget(level Level) string {
	switch level {
	case LevelMainTopic:
		return selectors.TocTopics
	case LevelSubtopic:
		return selectors.SubtopicContainer
	default:
		return selectors.SectionLinks
	}
}

func (s *RodSurface) Enumerate(level Level, path []string) ([]Sibling, error) {
	els, err := s.loc.ResolveAll(s.page, levelTarget(level))
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(els))
	for i, el := range els {
		labels[i] = elementLabel(el, i)
	}
	if level == LevelSubtopic {
		// Header elements carry the clean subtopic titles; container text
		// mixes the section rows in.
		headers, err := s.loc.ResolveAll(s.page, selectors.SubtopicHeader)
		if err == nil && len(headers) == len(els) {
			for i, h := range headers {
				labels[i] = elementLabel(h, i)
			}
		}
	}
	sibs := make([]Sibling, len(els))
	for i := range els {
		sibs[i] = Sibling{Ordinal: i, Label: labels[i]}
	}
	return sibs, nil
}

func (s *RodSurface) Descend(level Level, sib Sibling, path []string) error {
	el, err := s.elementAt(level, sib.Ordinal)
	if err != nil {
		return err
	}
	clickErr := s.loc.ClickRobust(s.page, el)
	if clickErr != nil && level == LevelMainTopic {
		// Some themes render the topic row inert and hang the action off a
		// dedicated button.
		if btn, err := s.loc.Resolve(s.page, selectors.MainTopicButton, locator.ModeSnapshot); err == nil {
			clickErr = s.loc.ClickRobust(s.page, btn)
		}
	}
	if clickErr != nil {
		return types.NewStepError("descend "+sib.Label, path, clickErr)
	}
	time.Sleep(s.cfg.AfterClick)
	return nil
}

// RecoverAncestor restores the view that exposed this level's siblings.
// Re-selecting the ancestor control by its remembered label is the primary
// mechanism: the label survives arbitrary drift (dashboard resets, history
// entries consumed by earlier leaf captures) where a blind history step can
// land on a leaf page instead of the ancestor list. One step back through
// history is the fallback when no control matches the label.
func (s *RodSurface) RecoverAncestor(level Level, path []string) error {
	// An open topic-rail overlay hides the lists underneath; dismiss it
	// before trying to re-select anything.
	if btn, err := s.loc.Resolve(s.page, selectors.CloseButton, locator.ModeSnapshot); err == nil {
		if err := s.loc.ClickRobust(s.page, btn); err == nil {
			time.Sleep(s.cfg.AfterClick)
		}
	}

	if label, ok := ancestorLabel(path); ok {
		if el, err := s.loc.FindByText(s.page, label); err == nil {
			if err := s.loc.ClickRobust(s.page, el); err == nil {
				time.Sleep(s.cfg.AfterClick)
				s.logger.Info("re-selected ancestor by label",
					"level", level.String(), "label", label)
				return nil
			}
		}
		s.logger.Debug("ancestor label not re-selectable, stepping back in history", "label", label)
	}

	if err := s.page.NavigateBack(); err != nil {
		return fmt.Errorf("navigate back: %w", err)
	}
	if err := s.page.Timeout(30 * time.Second).WaitLoad(); err != nil {
		s.logger.Debug("load wait timed out during recovery", "error", err)
	}
	time.Sleep(s.cfg.PageSettle)
	s.logger.Info("recovered ancestor view via history", "level", level.String(), "path", path)
	return nil
}

// ancestorLabel is the label whose activation made the current level's
// siblings visible: the path tail. A single-element path holds the tab
// name, which is re-selectable the same way.
func ancestorLabel(path []string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	return path[len(path)-1], true
}

// CaptureLeaf clicks a section link and persists whatever it opened. Links
// may spawn a new browser tab or navigate in place; both are handled, and
// the original page is always the active one on return.
func (s *RodSurface) CaptureLeaf(sib Sibling, path []string) error {
	dir := s.leafDir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create section dir: %w", err)
	}

	beforeURL := s.pageURL()
	beforePages, err := s.browser.Pages()
	if err != nil {
		return err
	}

	el, err := s.elementAt(LevelSection, sib.Ordinal)
	if err != nil {
		return err
	}
	if err := s.loc.ClickRobust(s.page, el); err != nil {
		return types.NewStepError("open "+sib.Label, path, err)
	}

	if newPage := s.awaitNewTab(len(beforePages)); newPage != nil {
		defer func() {
			_ = newPage.Close()
			_, _ = s.page.Activate()
		}()
		if err := newPage.Timeout(30 * time.Second).WaitLoad(); err != nil {
			s.logger.Debug("new tab load wait timed out", "section", sib.Label)
		}
		time.Sleep(s.cfg.PageSettle)
		target := types.CaptureTarget{Folder: dir, LogicalName: sib.Label}
		_, err := s.cap.Capture(capture.NewRodPage(newPage, s.loc), target)
		return err
	}

	// No spawned tab: either an in-place navigation or a dead click.
	time.Sleep(s.cfg.PageSettle)
	if deadClick(false, beforeURL, s.pageURL()) {
		// Capturing here would save the still-open subtopic view under the
		// section's name.
		return types.NewStepError("open "+sib.Label, path,
			fmt.Errorf("click changed nothing: %w", types.ErrInteractionFailed))
	}
	target := types.CaptureTarget{Folder: dir, LogicalName: sib.Label}
	_, capErr := s.cap.Capture(capture.NewRodPage(s.page, s.loc), target)
	if err := s.page.NavigateBack(); err != nil {
		s.logger.Warn("could not navigate back after capture", "section", sib.Label, "error", err)
	} else {
		_ = s.page.Timeout(30 * time.Second).WaitLoad()
		time.Sleep(s.cfg.PageSettle)
	}
	return capErr
}

// deadClick reports a leaf click that neither spawned a tab nor changed the
// page URL. Such a click opened nothing; the page is still the subtopic view.
func deadClick(spawnedTab bool, beforeURL, afterURL string) bool {
	return !spawnedTab && beforeURL == afterURL
}

// awaitNewTab polls for a tab spawned by the last click.
func (s *RodSurface) awaitNewTab(before int) *rod.Page {
	for i := 0; i < s.cfg.NewTabPolls; i++ {
		time.Sleep(time.Second)
		pages, err := s.browser.Pages()
		if err != nil {
			continue
		}
		if len(pages) > before {
			return pages[len(pages)-1]
		}
	}
	return nil
}

func (s *RodSurface) elementAt(level Level, ordinal int) (*rod.Element, error) {
	els, err := s.loc.ResolveAll(s.page, levelTarget(level))
	if err != nil {
		return nil, err
	}
	if ordinal >= len(els) {
		return nil, fmt.Errorf("sibling %d of %d gone: %w", ordinal, len(els), types.ErrStaleReference)
	}
	return els[ordinal], nil
}

// leafDir maps a walk path to a directory: tab folder, then one folder per
// main topic. Subtopics do not get folders; the section file name carries
// the ordering.
func (s *RodSurface) leafDir(path []string) string {
	dir := s.root
	if len(path) > 0 {
		dir = filepath.Join(dir, capture.SanitizeFilename(path[0]))
	}
	if len(path) > 1 {
		dir = filepath.Join(dir, capture.SanitizeFilename(path[1]))
	}
	return dir
}

func (s *RodSurface) pageURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// elementLabel extracts a display label from a live element's text.
func elementLabel(el *rod.Element, ordinal int) string {
	text, err := el.Text()
	if err != nil {
		text = ""
	}
	return labelFromText(text, ordinal)
}

// labelFromText picks the longest non-blank line. Kognity nests badges and
// counters inside list items, so the raw text is multi-line with the real
// title usually the longest line. Blank text falls back to a positional name.
func labelFromText(text string, ordinal int) string {
	best := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > len(best) {
			best = line
		}
	}
	if best == "" {
		return fmt.Sprintf("item_%d", ordinal+1)
	}
	return best
}
