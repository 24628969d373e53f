package service

import (
	"context"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/cache"
	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// JobStore persists jobs. Reads go through Increment, since every fetch of
// a single job counts a view.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	List(ctx context.Context, pred filter.Predicate, page filter.Page) ([]*models.Job, int64, error)
	// Increment must be a single atomic store operation that returns the
	// updated job, or nil, nil for an unknown id.
	Increment(ctx context.Context, id bson.ObjectID, counter models.JobCounter) (*models.Job, error)
}

type CandidateStore interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Candidate, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Candidate, error)
	Find(ctx context.Context, pred filter.Predicate, limit int64) ([]*models.Candidate, error)
	// Save replaces the whole document and refreshes updatedAt.
	Save(ctx context.Context, candidate *models.Candidate) error
}

type HotlistStore interface {
	Create(ctx context.Context, hotlist *models.Hotlist) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Hotlist, error)
	Find(ctx context.Context, pred filter.Predicate, limit int64) ([]*models.Hotlist, error)
}

// SearchCache is an optional read-through cache for search results.
type SearchCache interface {
	// Get reports a hit, or on a miss returns the entry the loaded value
	// belongs under.
	Get(ctx context.Context, scope, key string, dest interface{}) (cache.Entry, bool)
	Set(ctx context.Context, entry cache.Entry, value interface{})
	Invalidate(ctx context.Context, scopes ...string)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, string, interface{}) (cache.Entry, bool) {
	return "", false
}
func (noopCache) Set(context.Context, cache.Entry, interface{}) {}
func (noopCache) Invalidate(context.Context, ...string)         {}

func parseID(entity, raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.ObjectID{}, apperrors.NewInvalidIDError(entity, raw)
	}
	return id, nil
}

// now is truncated to the store's millisecond precision so values read back
// compare equal to the ones written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
