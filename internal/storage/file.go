package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
)

// FileStore writes each question set as an indented JSON file inside the
// class's assignments folder, the shape downstream report generators read.
type FileStore struct {
	count  int
	logger *slog.Logger
}

func NewFileStore(logger *slog.Logger) *FileStore {
	return &FileStore{logger: logger.With("component", "json_storage")}
}

func (s *FileStore) Name() string { return "json" }

func (s *FileStore) SaveExamQuestions(ctx context.Context, classFolder, sid string, set *kognityapi.ExamQuestionSet) error {
	dir := filepath.Join(classFolder, "assignments")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create assignments dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("exam_questions_subject_%s.json", sid))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	s.count++
	s.logger.Info("question set written", "path", path, "results", len(set.Results))
	return nil
}

func (s *FileStore) Close(ctx context.Context) error {
	s.logger.Info("json storage closing", "sets", s.count)
	return nil
}
