package repository

import (
	"context"
	"errors"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type HotlistRepository struct {
	collection *mongo.Collection
}

func NewHotlistRepository(collection *mongo.Collection) *HotlistRepository {
	return &HotlistRepository{collection: collection}
}

func (r *HotlistRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		return apperrors.NewStorageError("create hotlist indexes", err)
	}
	return nil
}

func (r *HotlistRepository) Create(ctx context.Context, hotlist *models.Hotlist) error {
	if _, err := r.collection.InsertOne(ctx, hotlist); err != nil {
		return apperrors.NewStorageError("create hotlist", err)
	}
	return nil
}

func (r *HotlistRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Hotlist, error) {
	var hotlist models.Hotlist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hotlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("get hotlist", err)
	}
	return &hotlist, nil
}

func (r *HotlistRepository) Find(ctx context.Context, pred filter.Predicate, limit int64) ([]*models.Hotlist, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, pred.BSON(), opts)
	if err != nil {
		return nil, apperrors.NewStorageError("list hotlists", err)
	}
	defer cursor.Close(ctx)

	hotlists := []*models.Hotlist{}
	if err := cursor.All(ctx, &hotlists); err != nil {
		return nil, apperrors.NewStorageError("decode hotlists", err)
	}
	return hotlists, nil
}
