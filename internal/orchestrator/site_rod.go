package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/kazantsevivan2813-art/kogscrape/internal/archive"
	"github.com/kazantsevivan2813-art/kogscrape/internal/browser"
	"github.com/kazantsevivan2813-art/kogscrape/internal/capture"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/locator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/navigator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/selectors"
	"github.com/kazantsevivan2813-art/kogscrape/internal/traversal"
	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// classURLRe extracts subject and class identifiers from a class URL,
// e.g. /study/app/biology-sl-fe2016/sid-422-cid-9981/overview.
var classURLRe = regexp.MustCompile(`sid-(\d+)(?:-cid-(\d+))?`)

// RodSite implements Site against the live dashboard.
type RodSite struct {
	page    *rod.Page
	browser *browser.Browser
	loc     *locator.Locator
	nav     *navigator.Navigator
	cap     *capture.Service
	cfg     *config.Config
	logger  *slog.Logger
}

func NewRodSite(page *rod.Page, b *browser.Browser, loc *locator.Locator, nav *navigator.Navigator, cap *capture.Service, cfg *config.Config, logger *slog.Logger) *RodSite {
	return &RodSite{
		page:    page,
		browser: b,
		loc:     loc,
		nav:     nav,
		cap:     cap,
		cfg:     cfg,
		logger:  logger.With("component", "site"),
	}
}

func (s *RodSite) EnumerateClasses() ([]Class, error) {
	els, err := s.loc.ResolveAll(s.page, selectors.ClassItems)
	if err != nil {
		return nil, err
	}
	classes := make([]Class, 0, len(els))
	for i, el := range els {
		name := fmt.Sprintf("class_%d", i+1)
		if text, err := el.Text(); err == nil {
			if line := longestLine(text); line != "" {
				name = line
			}
		}
		classes = append(classes, Class{Ordinal: i, Name: name})
	}
	return classes, nil
}

// OpenClass clicks into a class card, waits for the subject URL, and makes
// the tagged output folder. The folder name carries sid (and cid when the
// URL has one) so API commands can run against the archive alone.
func (s *RodSite) OpenClass(c Class) (string, error) {
	els, err := s.loc.ResolveAll(s.page, selectors.ClassItems)
	if err != nil {
		return "", err
	}
	if c.Ordinal >= len(els) {
		return "", fmt.Errorf("class %d of %d gone: %w", c.Ordinal, len(els), types.ErrStaleReference)
	}
	if err := s.loc.ClickRobust(s.page, els[c.Ordinal]); err != nil {
		return "", fmt.Errorf("open class %q: %w", c.Name, err)
	}

	if err := s.nav.WaitURLContains(s.page, "sid-", s.cfg.Scrape.ElementTimeout); err != nil {
		return "", fmt.Errorf("class %q: %w", c.Name, err)
	}
	time.Sleep(s.cfg.Scrape.PageSettle)

	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("read class url: %w", err)
	}
	m := classURLRe.FindStringSubmatch(info.URL)
	if m == nil {
		return "", fmt.Errorf("class %q: no sid in url %s: %w", c.Name, info.URL, types.ErrNavigationTimeout)
	}
	sid, cid := m[1], m[2]

	name := capture.SanitizeFilename(c.Name)
	if name == "" {
		name = "class_" + sid
	}
	folder := filepath.Join(s.cfg.Scrape.OutputDir, archive.FolderName(name, sid, cid))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create class folder: %w", err)
	}
	s.logger.Info("class opened", "class", c.Name, "sid", sid, "cid", cid, "folder", folder)
	return folder, nil
}

// WalkTabs activates each configured tab and runs the traversal inside it.
// A tab that cannot be activated is logged and skipped; the class is only
// an overall failure when every tab failed.
func (s *RodSite) WalkTabs(ctx context.Context, folder string) error {
	classURL := s.pageURL()
	failed := 0
	for _, tab := range s.cfg.Scrape.Tabs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.nav.SwitchToLogicalView(s.page, tab); err != nil {
			s.logger.Warn("tab not reachable", "tab", tab, "error", err)
			failed++
			continue
		}
		time.Sleep(s.cfg.Scrape.PageSettle)

		surface := traversal.NewRodSurface(s.page, s.browser, s.loc, s.cap, s.cfg.Scrape, folder, s.logger)
		stats, err := traversal.New(surface, s.logger).Walk(ctx, tab)
		if err != nil {
			return err
		}
		s.logger.Info("tab walked", "tab", tab,
			"captured", stats.Captured, "skipped", stats.Skipped,
			"failed", stats.Failed, "recovered", stats.Recovered)

		// Tabs share the class URL prefix; restore it so the next tab
		// switch starts from a known place.
		if classURL != "" && s.pageURL() != classURL {
			if err := s.page.Navigate(classURL); err == nil {
				_ = s.page.Timeout(30 * time.Second).WaitLoad()
				time.Sleep(s.cfg.Scrape.PageSettle)
			}
		}
	}
	if failed == len(s.cfg.Scrape.Tabs) && failed > 0 {
		return fmt.Errorf("no configured tab reachable: %w", types.ErrElementNotFound)
	}
	return nil
}

func (s *RodSite) ReturnToDashboard() error {
	if err := s.page.Navigate(s.cfg.Site.BaseURL); err != nil {
		return fmt.Errorf("return to dashboard: %w", err)
	}
	_ = s.page.Timeout(30 * time.Second).WaitLoad()
	time.Sleep(s.cfg.Scrape.PageSettle)
	return nil
}

func (s *RodSite) pageURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func longestLine(text string) string {
	best := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > len(best) {
			best = line
		}
	}
	return best
}
