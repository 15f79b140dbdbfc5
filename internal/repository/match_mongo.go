package repo

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/statuses"
)

const (
	matchesCollection = "matches"
	maxUpdateAttempts = 5
	storeTimeout      = 5 * time.Second
)

type MongoMatchStore struct {
	log   *zap.SugaredLogger
	mongo *mongo.Database
}

func NewMongoMatchStore(log *zap.SugaredLogger, mongo *mongo.Database) *MongoMatchStore {
	return &MongoMatchStore{
		log:   log,
		mongo: mongo,
	}
}

func (s *MongoMatchStore) collection() *mongo.Collection {
	return s.mongo.Collection(matchesCollection)
}

// EnsureIndexes creates the unique code index and the lobby listing index.
func (s *MongoMatchStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, err := s.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create indexes: %v", errors.ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoMatchStore) Create(ctx context.Context, m *match.Match) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, err := s.collection().InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", errors.ErrCodeTaken, m.Code)
	}
	if err != nil {
		s.log.Errorf("failed to insert match to database: %v", err)
		return fmt.Errorf("%w: insert: %v", errors.ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoMatchStore) findOne(ctx context.Context, filter bson.M) (*match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var found match.Match
	err := s.collection().FindOne(ctx, filter).Decode(&found)
	if stdErrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		s.log.Errorw("failed to load match", "filter", filter, "error", err)
		return nil, fmt.Errorf("%w: find: %v", errors.ErrStoreFailure, err)
	}
	if err := found.Validate(); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", errors.ErrStoreFailure, err)
	}
	return &found, nil
}

func (s *MongoMatchStore) GetByID(ctx context.Context, id string) (*match.Match, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoMatchStore) GetByCode(ctx context.Context, code string) (*match.Match, error) {
	return s.findOne(ctx, bson.M{"code": code})
}

// Update replaces the document only if its version is still the one that
// was read; a lost race reloads and reruns fn.
func (s *MongoMatchStore) Update(ctx context.Context, id string, fn func(*match.Match) error) (*match.Match, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.Version = current.Version + 1

		replaced, err := s.replace(ctx, current.Version, next)
		if err != nil {
			return nil, err
		}
		if replaced {
			return next, nil
		}
		s.log.Debugw("match version conflict, retrying", "match_id", id, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("%w: match %s", errors.ErrConflict, id)
}

func (s *MongoMatchStore) replace(ctx context.Context, version int64, next *match.Match) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	filter := bson.M{"_id": next.ID, "version": version}
	res, err := s.collection().ReplaceOne(ctx, filter, next)
	if err != nil {
		s.log.Errorw("failed to replace match", "match_id", next.ID, "error", err)
		return false, fmt.Errorf("%w: replace: %v", errors.ErrStoreFailure, err)
	}
	return res.MatchedCount == 1, nil
}

func (s *MongoMatchStore) ListByStatus(ctx context.Context, status statuses.MatchStatus, limit int) ([]*match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.collection().Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		s.log.Error(err)
		return nil, fmt.Errorf("%w: find: %v", errors.ErrStoreFailure, err)
	}
	defer cursor.Close(ctx)

	var result []*match.Match
	for cursor.Next(ctx) {
		var m match.Match
		if err := cursor.Decode(&m); err != nil {
			s.log.Error(err)
			return nil, fmt.Errorf("%w: decode: %v", errors.ErrStoreFailure, err)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", errors.ErrStoreFailure, err)
		}
		result = append(result, &m)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor: %v", errors.ErrStoreFailure, err)
	}
	return result, nil
}
