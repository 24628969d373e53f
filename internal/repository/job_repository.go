package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type JobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(collection *mongo.Collection) *JobRepository {
	return &JobRepository{collection: collection}
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "jobType", Value: 1}}},
		{Keys: bson.D{{Key: "experienceLevel", Value: 1}}},
		{Keys: bson.D{{Key: "primaryTechnology", Value: 1}}},
		{Keys: bson.D{{Key: "postedDate", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if _, err := r.collection.InsertOne(ctx, job); err != nil {
		return apperrors.NewStorageError("create job", err)
	}
	return nil
}

// FindByID returns nil, nil when no job has the id.
func (r *JobRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Job, error) {
	var job models.Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("get job", err)
	}
	return &job, nil
}

// List returns one page of matching jobs, newest first, with the total
// number of matches.
func (r *JobRepository) List(ctx context.Context, pred filter.Predicate, page filter.Page) ([]*models.Job, int64, error) {
	query := pred.BSON()

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("count jobs", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "postedDate", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, apperrors.NewStorageError("list jobs", err)
	}
	defer cursor.Close(ctx)

	jobs := []*models.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, 0, apperrors.NewStorageError("decode jobs", err)
	}
	return jobs, total, nil
}

// Increment bumps one counter by one in a single $inc update and refreshes
// updatedAt. It returns the job as it is after the update, or nil, nil when
// no job has the id.
func (r *JobRepository) Increment(ctx context.Context, id bson.ObjectID, counter models.JobCounter) (*models.Job, error) {
	update := bson.M{
		"$inc": bson.M{string(counter): 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var job models.Job
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("increment job %s", counter), err)
	}
	return &job, nil
}
