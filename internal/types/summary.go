package types

import (
	"fmt"
	"strings"
	"time"
)

// ClassOutcome records why a class ended up in the failed bucket.
type ClassOutcome struct {
	Name   string
	Reason string
}

// RunSummary accumulates per-class outcomes across one execution. It is an
// explicit value passed through the orchestrator and returned at the end,
// not ambient state on a long-lived object.
type RunSummary struct {
	Started   time.Time
	Finished  time.Time
	Processed []string
	Filtered  []string
	Failed    []ClassOutcome
}

func NewRunSummary() *RunSummary {
	return &RunSummary{Started: time.Now()}
}

func (s *RunSummary) RecordProcessed(name string) {
	s.Processed = append(s.Processed, name)
}

func (s *RunSummary) RecordFiltered(name string) {
	s.Filtered = append(s.Filtered, name)
}

func (s *RunSummary) RecordFailed(name, reason string) {
	s.Failed = append(s.Failed, ClassOutcome{Name: name, Reason: reason})
}

// Total is the number of classes seen, in any bucket.
func (s *RunSummary) Total() int {
	return len(s.Processed) + len(s.Filtered) + len(s.Failed)
}

// Render formats the final human-readable report written to the console and
// the durable run log.
func (s *RunSummary) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\nRUN SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&b, "processed: %d, filtered: %d, failed: %d (of %d)\n",
		len(s.Processed), len(s.Filtered), len(s.Failed), s.Total())

	if len(s.Processed) > 0 {
		b.WriteString("\nprocessed classes:\n")
		for _, name := range s.Processed {
			fmt.Fprintf(&b, "  + %s\n", name)
		}
	}
	if len(s.Filtered) > 0 {
		b.WriteString("\nfiltered out (no allow-list match):\n")
		for _, name := range s.Filtered {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}
	if len(s.Failed) > 0 {
		b.WriteString("\nfailed classes:\n")
		for _, f := range s.Failed {
			fmt.Fprintf(&b, "  x %s: %s\n", f.Name, f.Reason)
		}
	}

	if !s.Finished.IsZero() {
		fmt.Fprintf(&b, "\nelapsed: %s\n", s.Finished.Sub(s.Started).Round(time.Second))
	}
	b.WriteString(rule + "\n")
	return b.String()
}
