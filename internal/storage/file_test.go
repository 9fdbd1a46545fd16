package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestFileStoreSave(t *testing.T) {
	classFolder := filepath.Join(t.TempDir(), "Biology SL [sid-422]")
	if err := os.MkdirAll(classFolder, 0o755); err != nil {
		t.Fatal(err)
	}

	st := NewFileStore(testLogger)
	set := &kognityapi.ExamQuestionSet{
		Count: 2,
		Results: []kognityapi.ExamQuestion{
			{ID: 1, QuestionHTML: "<p>Define osmosis</p>", Marks: 2},
			{ID: 2, QuestionHTML: "<p>State the function of ribosomes</p>", Marks: 1},
		},
	}

	if err := st.SaveExamQuestions(context.Background(), classFolder, "422", set); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(classFolder, "assignments", "exam_questions_subject_422.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var got kognityapi.ExamQuestionSet
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Count != 2 || len(got.Results) != 2 {
		t.Errorf("round trip gave count=%d results=%d", got.Count, len(got.Results))
	}
	if got.Results[0].QuestionHTML != "<p>Define osmosis</p>" {
		t.Errorf("html not preserved: %q", got.Results[0].QuestionHTML)
	}

	if err := st.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	st, err := New(config.StorageConfig{Type: "json"}, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if st.Name() != "json" {
		t.Errorf("backend = %q", st.Name())
	}

	if _, err := New(config.StorageConfig{Type: "bogus"}, testLogger); err == nil {
		t.Error("expected error for unknown backend")
	}
}
