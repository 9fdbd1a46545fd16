// Package locator resolves logical UI targets to live element handles.
// A target is an ordered list of candidate queries; individual query
// failures are expected (Kognity's generated class names shift between
// releases) and never surface; only exhausting every candidate does.
package locator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kazantsevivan2813-art/kogscrape/internal/selectors"
	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// Mode selects between waiting for a target and probing the current DOM.
type Mode int

const (
	// ModeWait retries each candidate until the element appears or the
	// per-candidate timeout expires. Used for first discovery.
	ModeWait Mode = iota

	// ModeSnapshot probes the DOM as it is right now, without waiting.
	// Used for existence checks.
	ModeSnapshot
)

// Locator resolves targets against the current page.
type Locator struct {
	table   selectors.Table
	timeout time.Duration
	logger  *slog.Logger
}

func New(table selectors.Table, timeout time.Duration, logger *slog.Logger) *Locator {
	return &Locator{
		table:   table,
		timeout: timeout,
		logger:  logger.With("component", "locator"),
	}
}

// Resolve returns a live handle for the first candidate query that matches.
// The handle is only valid until the next navigation or DOM mutation.
func (l *Locator) Resolve(page *rod.Page, target string, mode Mode) (*rod.Element, error) {
	queries := l.table.Lookup(target)
	if len(queries) == 0 {
		return nil, fmt.Errorf("no candidate queries for target %q: %w", target, types.ErrElementNotFound)
	}

	for _, q := range queries {
		el, err := l.tryQuery(page, q, mode)
		if err == nil && el != nil {
			l.logger.Debug("target resolved", "target", target, "query", q.String())
			return el, nil
		}
	}
	return nil, fmt.Errorf("target %q: %d candidates exhausted: %w",
		target, len(queries), types.ErrElementNotFound)
}

// ResolveAll enumerates the collection for a target: the first candidate
// query yielding at least one element wins. An empty slice with a nil error
// means every query ran but nothing matched: a meaningful zero-sibling
// result for the traversal engine, not a failure.
func (l *Locator) ResolveAll(page *rod.Page, target string) ([]*rod.Element, error) {
	queries := l.table.Lookup(target)
	if len(queries) == 0 {
		return nil, fmt.Errorf("no candidate queries for target %q: %w", target, types.ErrElementNotFound)
	}

	snap := page.Sleeper(rod.NotFoundSleeper)
	for _, q := range queries {
		var els rod.Elements
		var err error
		switch q.Kind {
		case selectors.KindXPath:
			els, err = snap.ElementsX(q.Expr)
		default:
			els, err = snap.Elements(q.Expr)
		}
		if err != nil || len(els) == 0 {
			continue
		}
		l.logger.Debug("collection resolved", "target", target, "query", q.String(), "count", len(els))
		out := make([]*rod.Element, len(els))
		copy(out, els)
		return out, nil
	}
	return nil, nil
}

func (l *Locator) tryQuery(page *rod.Page, q selectors.Query, mode Mode) (*rod.Element, error) {
	p := page
	if mode == ModeWait {
		p = page.Timeout(l.timeout)
	} else {
		p = page.Sleeper(rod.NotFoundSleeper)
	}

	switch q.Kind {
	case selectors.KindXPath:
		return p.ElementX(q.Expr)
	default:
		return p.Element(q.Expr)
	}
}

// ClickRobust attempts an ordered sequence of interaction strategies and
// returns on the first that does not raise. Kognity renders some controls
// off-screen or overlapped, so a failed direct click falls through to
// scripted and synthesized-event interaction.
func (l *Locator) ClickRobust(page *rod.Page, el *rod.Element) error {
	strategies := []struct {
		name string
		fn   func() error
	}{
		{"direct", func() error {
			_ = el.ScrollIntoView()
			return el.Click(proto.InputMouseButtonLeft, 1)
		}},
		{"scripted", func() error {
			_, err := el.Eval(`() => this.click()`)
			return err
		}},
		{"attribute_stripped", func() error {
			_, err := el.Eval(`() => {
				this.removeAttribute("disabled");
				this.removeAttribute("aria-disabled");
				this.click();
			}`)
			return err
		}},
		{"synthesized_pointer", func() error {
			_, err := el.Eval(`() => {
				const opts = { bubbles: true, cancelable: true, view: window };
				this.dispatchEvent(new PointerEvent("pointerdown", opts));
				this.dispatchEvent(new MouseEvent("mousedown", opts));
				this.dispatchEvent(new PointerEvent("pointerup", opts));
				this.dispatchEvent(new MouseEvent("mouseup", opts));
				this.dispatchEvent(new MouseEvent("click", opts));
			}`)
			return err
		}},
	}

	var lastErr error
	for _, s := range strategies {
		if err := s.fn(); err != nil {
			lastErr = err
			l.logger.Debug("click strategy failed", "strategy", s.name, "error", err)
			continue
		}
		if s.name != "direct" {
			l.logger.Debug("click succeeded via fallback strategy", "strategy", s.name)
		}
		return nil
	}
	return fmt.Errorf("click: last strategy error: %v: %w", lastErr, types.ErrInteractionFailed)
}
