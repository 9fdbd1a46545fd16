package selectors

import (
	"strings"
	"testing"
)

func TestDefaultCoversEveryTarget(t *testing.T) {
	targets := []string{
		EmailField, PasswordField, LoginButton, LoggedInIndicator,
		ClassItems, TocTopics, MainTopicButton, SubtopicContainer,
		SubtopicHeader, SectionLinks, NavMenuItems, CloseButton,
		ExpandControls, RevealControls,
	}
	table := Default()
	if len(table) != len(targets) {
		t.Errorf("table has %d entries, %d targets declared", len(table), len(targets))
	}
	for _, target := range targets {
		if len(table.Lookup(target)) == 0 {
			t.Errorf("target %q has no candidate queries", target)
		}
	}
}

func TestOverrideReplacesWholeList(t *testing.T) {
	table := Default()
	table.Override(SectionLinks, []Query{CSS(".my-sections a")})
	got := table.Lookup(SectionLinks)
	if len(got) != 1 || got[0].Expr != ".my-sections a" {
		t.Errorf("override not applied: %v", got)
	}
}

func TestTabQueriesMatchCaseInsensitively(t *testing.T) {
	qs := TabQueries("book")
	if len(qs) != 3 {
		t.Fatalf("got %d queries, want 3", len(qs))
	}
	if qs[0].Kind != KindXPath || !strings.Contains(qs[0].Expr, "translate(") {
		t.Errorf("first query should lowercase in-xpath: %s", qs[0])
	}
	if qs[1].Kind != KindCSS || !strings.Contains(qs[1].Expr, `href`) {
		t.Errorf("second query should match by href: %s", qs[1])
	}
}
