package capture

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kazantsevivan2813-art/kogscrape/internal/locator"
	"github.com/kazantsevivan2813-art/kogscrape/internal/selectors"
)

// RodPage adapts a live rod page to the capture surface.
type RodPage struct {
	page *rod.Page
	loc  *locator.Locator
}

func NewRodPage(page *rod.Page, loc *locator.Locator) *RodPage {
	return &RodPage{page: page, loc: loc}
}

func (r *RodPage) Snapshot() ([]byte, error) {
	res, err := proto.PageCaptureSnapshot{
		Format: proto.PageCaptureSnapshotFormatMhtml,
	}.Call(r.page)
	if err != nil {
		return nil, err
	}
	return []byte(res.Data), nil
}

func (r *RodPage) SerializeDOM() (string, error) {
	return r.page.HTML()
}

// ExpandAll opens collapsed sections and reveals hidden answers so the
// snapshot carries the full content. Each control is clicked at most once;
// a control that disappears mid-pass just counts as a failure.
func (r *RodPage) ExpandAll() (clicked, failed int) {
	for _, target := range []string{selectors.ExpandControls, selectors.RevealControls} {
		els, err := r.loc.ResolveAll(r.page, target)
		if err != nil {
			continue
		}
		for _, el := range els {
			if err := r.loc.ClickRobust(r.page, el); err != nil {
				failed++
				continue
			}
			clicked++
		}
	}
	return clicked, failed
}

func (r *RodPage) Settle(d time.Duration) {
	time.Sleep(d)
}
