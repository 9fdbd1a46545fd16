package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kazantsevivan2813-art/kogscrape/internal/kognityapi"
)

// MongoStore mirrors question sets into a MongoDB collection, one document
// per question, tagged with the subject id and fetch time.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	count      int
	logger     *slog.Logger
}

func NewMongoStore(uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStore) Name() string { return "mongodb" }

func (s *MongoStore) SaveExamQuestions(ctx context.Context, classFolder, sid string, set *kognityapi.ExamQuestionSet) error {
	if len(set.Results) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]any, len(set.Results))
	for i, q := range set.Results {
		docs[i] = bson.M{
			"sid":              sid,
			"class_folder":     classFolder,
			"fetched_at":       now,
			"question_id":      q.ID,
			"question_html":    q.QuestionHTML,
			"answer_html":      q.AnswerExplanationHTML,
			"marks":            q.Marks,
			"papertype":        q.PaperType,
			"attributes":       q.Attributes,
			"subject_mappings": q.SubjectNodeMappings,
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Replace the previous run's documents for this subject so the
	// collection always reflects the latest fetch.
	if _, err := s.collection.DeleteMany(opCtx, bson.M{"sid": sid}); err != nil {
		return fmt.Errorf("mongodb delete stale: %w", err)
	}
	if _, err := s.collection.InsertMany(opCtx, docs); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	s.count += len(docs)
	s.logger.Info("question set stored in mongodb", "sid", sid, "questions", len(docs))
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	s.logger.Info("mongodb storage closing", "total_questions", s.count)
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(opCtx)
}
