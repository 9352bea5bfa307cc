package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fpa-intel/fpa-api/internal/core/domain"
	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// Mode is reported by Store.Mode.
const Mode = "mongodb"

// Store is the durable resource store.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	users     *Collection[domain.User]
	analyses  *Collection[domain.Analysis]
	questions *Collection[domain.Question]
	files     *Collection[domain.FileRecord]
}

var _ ports.Store = (*Store)(nil)

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:    client,
		db:        db,
		users:     NewCollection[domain.User](db, ports.CollectionUsers),
		analyses:  NewCollection[domain.Analysis](db, ports.CollectionAnalyses),
		questions: NewCollection[domain.Question](db, ports.CollectionQuestions),
		files:     NewCollection[domain.FileRecord](db, ports.CollectionFiles),
	}
}

func (s *Store) Users() ports.Collection[domain.User] { return s.users }
func (s *Store) Analyses() ports.Collection[domain.Analysis] { return s.analyses }
func (s *Store) Questions() ports.Collection[domain.Question] { return s.questions }
func (s *Store) Files() ports.Collection[domain.FileRecord] { return s.files }
func (s *Store) Mode() string { return Mode }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique user indexes and the owner lookups every
// listing filters on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		ports.CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ports.CollectionAnalyses: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		ports.CollectionQuestions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "analysis_id", Value: 1}}},
		},
		ports.CollectionFiles: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "analysis_id", Value: 1}}},
		},
	}
	for name, indexes := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
