package traversal

import "testing"

func TestAncestorLabel(t *testing.T) {
	if label, ok := ancestorLabel(nil); ok {
		t.Errorf("empty path yielded label %q", label)
	}
	if label, ok := ancestorLabel([]string{"overview"}); !ok || label != "overview" {
		t.Errorf("tab-only path: got %q (ok=%v), want %q", label, ok, "overview")
	}
	path := []string{"overview", "Topic 1", "Sub 1.1"}
	if label, ok := ancestorLabel(path); !ok || label != "Sub 1.1" {
		t.Errorf("deep path: got %q (ok=%v), want %q", label, ok, "Sub 1.1")
	}
}

func TestDeadClick(t *testing.T) {
	cases := []struct {
		name       string
		spawnedTab bool
		before     string
		after      string
		want       bool
	}{
		{"no tab, url unchanged", false, "https://app/subtopic", "https://app/subtopic", true},
		{"no tab, url changed", false, "https://app/subtopic", "https://app/section", false},
		{"tab spawned, url unchanged", true, "https://app/subtopic", "https://app/subtopic", false},
	}
	for _, c := range cases {
		if got := deadClick(c.spawnedTab, c.before, c.after); got != c.want {
			t.Errorf("%s: deadClick = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLabelFromText(t *testing.T) {
	got := labelFromText("3\n1.1 Stoichiometric relationships\nNot started", 0)
	if got != "1.1 Stoichiometric relationships" {
		t.Errorf("label = %q", got)
	}
	got = labelFromText("  Chemistry HL  ", 0)
	if got != "Chemistry HL" {
		t.Errorf("label = %q", got)
	}
	got = labelFromText(" \n\t\n", 2)
	if got != "item_3" {
		t.Errorf("blank text label = %q, want item_3", got)
	}
}
