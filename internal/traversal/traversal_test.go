package traversal

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSurface serves a scripted hierarchy keyed by the walk path. Levels
// are implied by path depth: tab -> main topics -> subtopics -> sections.
type fakeSurface struct {
	children map[string][]string

	// shrinkTo truncates every enumeration after the first at a path,
	// simulating entries vanishing mid-walk.
	shrinkTo map[string]int

	failCapture map[string]bool
	recoverErr  error

	captured     []string
	descends     []string
	recovers     int
	recoverPaths [][]string
	enumCalls    map[string]int
}

func newFakeSurface(children map[string][]string) *fakeSurface {
	return &fakeSurface{
		children:    children,
		shrinkTo:    map[string]int{},
		failCapture: map[string]bool{},
		enumCalls:   map[string]int{},
	}
}

func pathKey(path []string) string { return strings.Join(path, "/") }

func (f *fakeSurface) Enumerate(level Level, path []string) ([]Sibling, error) {
	k := pathKey(path)
	f.enumCalls[k]++
	labels := f.children[k]
	if limit, ok := f.shrinkTo[k]; ok && f.enumCalls[k] > 1 && limit < len(labels) {
		labels = labels[:limit]
	}
	sibs := make([]Sibling, len(labels))
	for i, l := range labels {
		sibs[i] = Sibling{Ordinal: i, Label: l}
	}
	return sibs, nil
}

func (f *fakeSurface) Descend(level Level, sib Sibling, path []string) error {
	f.descends = append(f.descends, pathKey(path)+"/"+sib.Label)
	return nil
}

func (f *fakeSurface) RecoverAncestor(level Level, path []string) error {
	f.recovers++
	f.recoverPaths = append(f.recoverPaths, append([]string(nil), path...))
	return f.recoverErr
}

func (f *fakeSurface) CaptureLeaf(sib Sibling, path []string) error {
	full := pathKey(path) + "/" + sib.Label
	if f.failCapture[full] {
		return errors.New("capture exploded")
	}
	f.captured = append(f.captured, full)
	return nil
}

func fullTree() map[string][]string {
	return map[string][]string{
		"overview":                     {"Topic 1", "Topic 2"},
		"overview/Topic 1":             {"Sub 1.1", "Sub 1.2"},
		"overview/Topic 1/Sub 1.1":     {"1.1, Water", "1.2, Acids"},
		"overview/Topic 1/Sub 1.2":     {"1.3, Bases"},
		"overview/Topic 2":             {"Sub 2.1"},
		"overview/Topic 2/Sub 2.1":     {"2.1, Cells", "2.2, Membranes"},
	}
}

func TestWalkCapturesEverySection(t *testing.T) {
	f := newFakeSurface(fullTree())
	stats, err := New(f, testLogger).Walk(context.Background(), "overview")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if stats.Captured != 5 {
		t.Errorf("captured = %d, want 5", stats.Captured)
	}
	if stats.Failed != 0 || stats.Skipped != 0 {
		t.Errorf("failed=%d skipped=%d, want 0/0", stats.Failed, stats.Skipped)
	}
	want := []string{
		"overview/Topic 1/Sub 1.1/1.1, Water",
		"overview/Topic 1/Sub 1.1/1.2, Acids",
		"overview/Topic 1/Sub 1.2/1.3, Bases",
		"overview/Topic 2/Sub 2.1/2.1, Cells",
		"overview/Topic 2/Sub 2.1/2.2, Membranes",
	}
	if len(f.captured) != len(want) {
		t.Fatalf("captured %v", f.captured)
	}
	for i := range want {
		if f.captured[i] != want[i] {
			t.Errorf("captured[%d] = %q, want %q", i, f.captured[i], want[i])
		}
	}
}

func TestWalkReEnumeratesPerIndex(t *testing.T) {
	f := newFakeSurface(fullTree())
	if _, err := New(f, testLogger).Walk(context.Background(), "overview"); err != nil {
		t.Fatalf("walk: %v", err)
	}
	// Two topics: one initial enumeration plus one fresh per index.
	if calls := f.enumCalls["overview"]; calls != 3 {
		t.Errorf("topic enumerations = %d, want 3", calls)
	}
	// Two sections under Sub 1.1: again 1 + 2.
	if calls := f.enumCalls["overview/Topic 1/Sub 1.1"]; calls != 3 {
		t.Errorf("section enumerations = %d, want 3", calls)
	}
}

func TestWalkSkipsSiblingGoneAfterReEnumeration(t *testing.T) {
	f := newFakeSurface(fullTree())
	// The second section of Sub 2.1 vanishes after the first enumeration.
	f.shrinkTo["overview/Topic 2/Sub 2.1"] = 1

	stats, err := New(f, testLogger).Walk(context.Background(), "overview")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.Skipped)
	}
	if stats.Captured != 4 {
		t.Errorf("captured = %d, want 4", stats.Captured)
	}
	for _, c := range f.captured {
		if c == "overview/Topic 2/Sub 2.1/2.2, Membranes" {
			t.Error("vanished sibling was still captured")
		}
	}
}

func TestWalkRecoversFromEmptyEnumeration(t *testing.T) {
	// The fresh enumeration before the first section of Sub 1.1 comes
	// back empty, as if the subtopic collapsed; recovery restores it.
	f := newFakeSurface(fullTree())
	w := &emptyOnSecondCall{fakeSurface: f, at: "overview/Topic 1/Sub 1.1"}

	stats, err := New(w, testLogger).Walk(context.Background(), "overview")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if stats.Recovered != 1 {
		t.Errorf("recovered = %d, want 1", stats.Recovered)
	}
	if stats.Captured != 5 {
		t.Errorf("captured = %d, want 5 (recovery should not lose sections)", stats.Captured)
	}
	if f.recovers != 1 {
		t.Errorf("RecoverAncestor calls = %d, want 1", f.recovers)
	}
	// The surface needs the walk path to re-select the collapsed ancestor
	// by its remembered label, so recovery must receive it intact.
	got := pathKey(f.recoverPaths[0])
	if got != "overview/Topic 1/Sub 1.1" {
		t.Errorf("recovery path = %q, want %q", got, "overview/Topic 1/Sub 1.1")
	}
	if label, ok := ancestorLabel(f.recoverPaths[0]); !ok || label != "Sub 1.1" {
		t.Errorf("ancestor label = %q (ok=%v), want %q", label, ok, "Sub 1.1")
	}
}

// emptyOnSecondCall makes exactly the second enumeration at one path come
// back empty.
type emptyOnSecondCall struct {
	*fakeSurface
	at string
}

func (w *emptyOnSecondCall) Enumerate(level Level, path []string) ([]Sibling, error) {
	if pathKey(path) == w.at && w.enumCalls[w.at] == 1 {
		w.enumCalls[w.at]++
		return nil, nil
	}
	return w.fakeSurface.Enumerate(level, path)
}

func TestWalkAbandonsLevelWhenRecoveryFails(t *testing.T) {
	f := newFakeSurface(fullTree())
	f.recoverErr = errors.New("history exhausted")
	w := &emptyOnSecondCall{fakeSurface: f, at: "overview/Topic 1/Sub 1.1"}

	stats, err := New(w, testLogger).Walk(context.Background(), "overview")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	// The two sections of Sub 1.1 are lost, the rest of the tree survives.
	if stats.Failed != 2 {
		t.Errorf("failed = %d, want 2", stats.Failed)
	}
	if stats.Captured != 3 {
		t.Errorf("captured = %d, want 3", stats.Captured)
	}
}

func TestWalkContinuesPastCaptureFailure(t *testing.T) {
	f := newFakeSurface(fullTree())
	f.failCapture["overview/Topic 1/Sub 1.1/1.1, Water"] = true

	stats, err := New(f, testLogger).Walk(context.Background(), "overview")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", stats.Failed)
	}
	if stats.Captured != 4 {
		t.Errorf("captured = %d, want 4", stats.Captured)
	}
}

func TestWalkStopsOnContextCancel(t *testing.T) {
	f := newFakeSurface(fullTree())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f, testLogger).Walk(ctx, "overview")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(f.captured) != 0 {
		t.Errorf("captured %v before cancellation check", f.captured)
	}
}
