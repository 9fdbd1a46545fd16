// Package browser owns the Chromium instance and the single live session
// handle. Everything above it borrows pages; nothing above it launches or
// closes the browser.
package browser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
)

// Browser wraps the connected Rod browser.
type Browser struct {
	browser *rod.Browser
	cfg     config.BrowserConfig
	logger  *slog.Logger
}

// Launch starts a Chromium instance and connects to it.
func Launch(cfg config.BrowserConfig, logger *slog.Logger) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	if cfg.WindowSize != "" {
		l = l.Set("window-size", cfg.WindowSize)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	logger.Info("browser ready", "headless", cfg.Headless, "stealth", cfg.Stealth)
	return &Browser{
		browser: b,
		cfg:     cfg,
		logger:  logger.With("component", "browser"),
	}, nil
}

// Page opens a page and navigates it to url. With stealth enabled the page
// is created with the automation-fingerprint patches applied before any
// navigation happens.
func (b *Browser) Page(url string) (*rod.Page, error) {
	var page *rod.Page
	var err error

	if b.cfg.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.Timeout(30 * time.Second).WaitLoad(); err != nil {
		b.logger.Warn("page load wait timed out, continuing", "url", url, "error", err)
	}
	return page, nil
}

// Pages lists the currently open tabs. Used to detect leaf clicks that
// spawn a new tab.
func (b *Browser) Pages() (rod.Pages, error) {
	pages, err := b.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// ApplyCookies installs a restored session's cookies into the browser.
func (b *Browser) ApplyCookies(cookies []*proto.NetworkCookieParam) error {
	if err := b.browser.SetCookies(cookies); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	b.logger.Debug("cookies applied", "count", len(cookies))
	return nil
}

// Cookies extracts the browser's current cookie set for persistence.
func (b *Browser) Cookies() ([]*proto.NetworkCookie, error) {
	cookies, err := b.browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	return cookies, nil
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}
