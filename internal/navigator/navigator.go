// Package navigator handles authentication and top-level view switching.
// Login is modeled as a small state machine because Kognity has shipped
// both single-screen and two-screen (identifier first, secret second)
// login flows; the machine handles either without configuration.
package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"

	"github.com/kazantsevivan2813-art/kogscrape/internal/browser"
	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/locator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/selectors"
	"github.com/kazantsevivan2813-art/kogscrape/internal/session"
	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// loginState tracks the credential-entry machine.
type loginState int

const (
	stateAwaitingIdentifier loginState = iota
	stateAwaitingSecret
	stateAuthenticated
	stateRejected
)

func (s loginState) String() string {
	switch s {
	case stateAwaitingIdentifier:
		return "awaiting_identifier"
	case stateAwaitingSecret:
		return "awaiting_secret"
	case stateAuthenticated:
		return "authenticated"
	default:
		return "rejected"
	}
}

// Navigator drives login and tab switching on a live page.
type Navigator struct {
	browser *browser.Browser
	loc     *locator.Locator
	store   *session.Store
	cfg     *config.Config
	logger  *slog.Logger
}

func New(b *browser.Browser, loc *locator.Locator, store *session.Store, cfg *config.Config, logger *slog.Logger) *Navigator {
	return &Navigator{
		browser: b,
		loc:     loc,
		store:   store,
		cfg:     cfg,
		logger:  logger.With("component", "navigator"),
	}
}

// EnsureAuthenticated returns a page with a valid session on it. A saved
// cookie session is tried first; when that still lands on a login screen
// the full credential flow runs and the fresh cookies are persisted.
func (n *Navigator) EnsureAuthenticated(ctx context.Context) (*rod.Page, error) {
	restored := false
	if sess, err := n.store.Load(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	} else if sess != nil {
		if err := n.browser.ApplyCookies(sess.Params()); err != nil {
			n.logger.Warn("could not apply saved cookies", "error", err)
		} else {
			restored = true
		}
	}

	page, err := n.browser.Page(n.cfg.Site.BaseURL)
	if err != nil {
		return nil, err
	}

	if restored && !n.IsLoginPage(page) {
		n.logger.Info("session restored from cookies")
		return page, nil
	}
	if restored {
		n.logger.Info("saved session no longer accepted, logging in")
		if err := n.store.Clear(); err != nil {
			n.logger.Warn("could not clear stale cookie file", "error", err)
		}
	}

	if err := n.Login(ctx, page); err != nil {
		return nil, err
	}

	cookies, err := n.browser.Cookies()
	if err != nil {
		n.logger.Warn("could not read cookies for persistence", "error", err)
	} else if err := n.store.Save(cookies); err != nil {
		n.logger.Warn("could not save session", "error", err)
	}
	return page, nil
}

// Login runs the credential state machine on the current page. The page is
// navigated to the login URL first if it is not already a login screen.
func (n *Navigator) Login(ctx context.Context, page *rod.Page) error {
	if n.cfg.Site.Email == "" || n.cfg.Site.Password == "" {
		return fmt.Errorf("email and password are required: %w", types.ErrAuth)
	}

	if !n.IsLoginPage(page) {
		loginURL, err := url.JoinPath(n.cfg.Site.BaseURL, n.cfg.Site.LoginPath)
		if err != nil {
			return fmt.Errorf("build login url: %w", err)
		}
		if err := page.Navigate(loginURL); err != nil {
			return fmt.Errorf("navigate to login: %w", err)
		}
		_ = page.Timeout(30 * time.Second).WaitLoad()
	}

	state := stateAwaitingIdentifier
	for state != stateAuthenticated && state != stateRejected {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch state {
		case stateAwaitingIdentifier:
			state, err = n.enterIdentifier(page)
		case stateAwaitingSecret:
			state, err = n.enterSecret(page)
		}
		if err != nil {
			return err
		}
	}
	if state == stateRejected {
		return fmt.Errorf("login rejected: %w", types.ErrAuth)
	}

	n.logger.Info("logged in", "email", n.cfg.Site.Email)
	time.Sleep(n.cfg.Scrape.AfterLogin)
	return nil
}

// enterIdentifier fills the email field. When a password field is already
// visible the flow is single-screen: both credentials go in before the one
// submit.
func (n *Navigator) enterIdentifier(page *rod.Page) (loginState, error) {
	if err := n.fillField(page, selectors.EmailField, n.cfg.Site.Email); err != nil {
		return stateRejected, err
	}
	n.logger.Debug("identifier entered", "state", stateAwaitingIdentifier.String())

	if _, err := n.loc.Resolve(page, selectors.PasswordField, locator.ModeSnapshot); err == nil {
		// Single-screen form.
		return stateAwaitingSecret, nil
	}

	if err := n.submit(page); err != nil {
		return stateRejected, err
	}
	time.Sleep(n.cfg.Scrape.AfterClick)
	return stateAwaitingSecret, nil
}

// enterSecret fills the password field, submits, and classifies the result
// by whether the URL left the login pattern.
func (n *Navigator) enterSecret(page *rod.Page) (loginState, error) {
	if err := n.fillField(page, selectors.PasswordField, n.cfg.Site.Password); err != nil {
		return stateRejected, err
	}
	if err := n.submit(page); err != nil {
		return stateRejected, err
	}

	if err := n.WaitURLLeaves(page, "login", n.cfg.Scrape.ElementTimeout); err != nil {
		if n.cfg.Auth.Strict {
			n.logger.Error("still on login screen after submit")
			return stateRejected, nil
		}
		n.logger.Warn("login state ambiguous, continuing anyway", "error", err)
	}
	return stateAuthenticated, nil
}

func (n *Navigator) fillField(page *rod.Page, target, value string) error {
	el, err := n.loc.Resolve(page, target, locator.ModeWait)
	if err != nil {
		return fmt.Errorf("locate %s: %w", target, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", target, err)
	}
	return nil
}

// submit clicks the login button when one resolves, falling back to the
// Enter key inside the focused field.
func (n *Navigator) submit(page *rod.Page) error {
	if btn, err := n.loc.Resolve(page, selectors.LoginButton, locator.ModeSnapshot); err == nil {
		if err := n.loc.ClickRobust(page, btn); err == nil {
			return nil
		}
		n.logger.Debug("login button click failed, sending Enter")
	}
	if err := page.Keyboard.Press(input.Enter); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}
	return nil
}

// IsLoginPage reports whether the page looks like a login screen. The URL
// token is decisive; failing that, a visible logged-in indicator (the user
// menu) rules a login screen out before the password-field check, which
// alone would misread a change-password view.
func (n *Navigator) IsLoginPage(page *rod.Page) bool {
	if info, err := page.Info(); err == nil && strings.Contains(strings.ToLower(info.URL), "login") {
		return true
	}
	if _, err := n.loc.Resolve(page, selectors.LoggedInIndicator, locator.ModeSnapshot); err == nil {
		return false
	}
	_, err := n.loc.Resolve(page, selectors.PasswordField, locator.ModeSnapshot)
	return err == nil
}

// WaitURLContains polls until the page URL contains token.
func (n *Navigator) WaitURLContains(page *rod.Page, token string, timeout time.Duration) error {
	return n.waitURL(page, timeout, func(u string) bool {
		return strings.Contains(u, token)
	}, fmt.Sprintf("url did not reach %q", token))
}

// WaitURLLeaves polls until the page URL no longer contains token.
func (n *Navigator) WaitURLLeaves(page *rod.Page, token string, timeout time.Duration) error {
	return n.waitURL(page, timeout, func(u string) bool {
		return !strings.Contains(strings.ToLower(u), token)
	}, fmt.Sprintf("url still matches %q", token))
}

func (n *Navigator) waitURL(page *rod.Page, timeout time.Duration, ok func(string) bool, desc string) error {
	deadline := time.Now().Add(timeout)
	for {
		if info, err := page.Info(); err == nil && ok(info.URL) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s within %s: %w", desc, timeout, types.ErrNavigationTimeout)
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// SwitchToLogicalView activates a named top-level tab. Resolution tries, in
// order: the structural tab queries, the navbar menu items matched by text,
// a config-overridden "tab.<name>" table entry, and finally a text search
// over interactive elements.
func (n *Navigator) SwitchToLogicalView(page *rod.Page, name string) error {
	el := n.resolveTab(page, name)
	if el == nil {
		return fmt.Errorf("tab %q: %w", name, types.ErrElementNotFound)
	}
	if err := n.loc.ClickRobust(page, el); err != nil {
		return fmt.Errorf("activate tab %q: %w", name, err)
	}
	n.logger.Info("switched view", "tab", name)
	time.Sleep(n.cfg.Scrape.AfterClick)
	return nil
}

func (n *Navigator) resolveTab(page *rod.Page, name string) *rod.Element {
	lower := strings.ToLower(name)

	snap := page.Sleeper(rod.NotFoundSleeper)
	for _, q := range selectors.TabQueries(lower) {
		var el *rod.Element
		var err error
		if q.Kind == selectors.KindXPath {
			el, err = snap.ElementX(q.Expr)
		} else {
			el, err = snap.Element(q.Expr)
		}
		if err == nil && el != nil {
			return el
		}
	}

	if items, err := n.loc.ResolveAll(page, selectors.NavMenuItems); err == nil {
		for _, item := range items {
			if text, err := item.Text(); err == nil &&
				strings.Contains(strings.ToLower(text), lower) {
				return item
			}
		}
	}

	if el, err := n.loc.Resolve(page, "tab."+lower, locator.ModeSnapshot); err == nil {
		return el
	}

	if el, err := n.loc.FindByText(page, lower); err == nil {
		return el
	}
	return nil
}
