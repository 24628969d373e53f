package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CandidateRepository struct {
	collection *mongo.Collection
}

func NewCandidateRepository(collection *mongo.Collection) *CandidateRepository {
	return &CandidateRepository{collection: collection}
}

func (r *CandidateRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return apperrors.NewStorageError("create candidate indexes", err)
	}
	return nil
}

func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if _, err := r.collection.InsertOne(ctx, candidate); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewDuplicateError("Candidate", "email", err)
		}
		return apperrors.NewStorageError("create candidate", err)
	}
	return nil
}

func (r *CandidateRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&candidate)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("get candidate", err)
	}
	return &candidate, nil
}

// FindByIDs resolves many references in one query. Unknown ids are simply
// absent from the result.
func (r *CandidateRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Candidate, error) {
	if len(ids) == 0 {
		return []*models.Candidate{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find(), "resolve candidates")
}

// Find returns matching candidates, newest first. limit 0 means no limit.
func (r *CandidateRepository) Find(ctx context.Context, pred filter.Predicate, limit int64) ([]*models.Candidate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, pred.BSON(), opts, "list candidates")
}

func (r *CandidateRepository) find(ctx context.Context, query interface{}, opts *options.FindOptionsBuilder, op string) ([]*models.Candidate, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.NewStorageError(op, err)
	}
	defer cursor.Close(ctx)

	candidates := []*models.Candidate{}
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, apperrors.NewStorageError(op, err)
	}
	return candidates, nil
}

// Save replaces the whole document after refreshing updatedAt. Concurrent
// saves of the same candidate are last-write-wins.
func (r *CandidateRepository) Save(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": candidate.ID}, candidate)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewDuplicateError("Candidate", "email", err)
		}
		return apperrors.NewStorageError("update candidate", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFoundError("Candidate")
	}
	return nil
}
