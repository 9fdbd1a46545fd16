// Package storage persists fetched exam-style question sets. The default
// backend writes the JSON dump next to the generated assignment pages; the
// mongodb backend mirrors the same documents into a collection for ad-hoc
// querying across runs.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazantsevivan2813-art/kogscrape/internal/config"
	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
)

// QuestionStore persists one class's exam-style question set.
type QuestionStore interface {
	Name() string
	SaveExamQuestions(ctx context.Context, classFolder, sid string, set *kognityapi.ExamQuestionSet) error
	Close(ctx context.Context) error
}

// New selects a backend from configuration.
func New(cfg config.StorageConfig, logger *slog.Logger) (QuestionStore, error) {
	switch cfg.Type {
	case "json":
		return NewFileStore(logger), nil
	case "mongodb":
		return NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}
