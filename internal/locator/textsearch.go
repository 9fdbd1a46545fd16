package locator

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/go-rod/rod"
	"golang.org/x/net/html"

	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// interactiveXPath matches the elements FindByText considers clickable.
const interactiveXPath = `//a | //button | //*[@role="button"] | //*[@role="tab"]`

// FindByText locates an interactive element whose visible text contains all
// of the given words (case-insensitive). The page HTML is parsed offline,
// the matching node's positional path is computed, and the live element is
// re-resolved through that path; the parsed node itself is never kept.
func (l *Locator) FindByText(page *rod.Page, words ...string) (*rod.Element, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("text search needs at least one word: %w", types.ErrElementNotFound)
	}

	pageHTML, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	doc, err := htmlquery.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}

	for _, node := range htmlquery.Find(doc, interactiveXPath) {
		text := strings.ToLower(normalizeSpace(htmlquery.InnerText(node)))
		if text == "" || !containsAll(text, lowered) {
			continue
		}

		xp := nodePath(node)
		el, err := page.Sleeper(rod.NotFoundSleeper).ElementX(xp)
		if err != nil {
			// The DOM moved between serialization and re-resolution;
			// try the next textual match.
			l.logger.Debug("text match went stale", "xpath", xp)
			continue
		}
		l.logger.Debug("element found by text", "words", words, "xpath", xp)
		return el, nil
	}
	return nil, fmt.Errorf("no interactive element matching %v: %w", words, types.ErrElementNotFound)
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// nodePath builds a positional XPath (/html/body/div[2]/a[1]) for a parsed
// node, usable against the live page as long as the DOM has not mutated.
func nodePath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		idx := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				idx++
			}
		}
		segments = append([]string{fmt.Sprintf("%s[%d]", cur.Data, idx)}, segments...)
	}
	return "/" + strings.Join(segments, "/")
}
