package service

import (
	"context"
	"strings"

	"github.com/PrathushaR/ithotlist-api/internal/cache"
	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/events"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"github.com/PrathushaR/ithotlist-api/internal/schema"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type HotlistService struct {
	hotlists   HotlistStore
	candidates CandidateStore
	validator  *schema.Validator
	cache      SearchCache
	publisher  events.Publisher
	log        logger.Logger
}

func NewHotlistService(hotlists HotlistStore, candidates CandidateStore, validator *schema.Validator, searchCache SearchCache, publisher events.Publisher, log logger.Logger) *HotlistService {
	if searchCache == nil {
		searchCache = noopCache{}
	}
	return &HotlistService{
		hotlists:   hotlists,
		candidates: candidates,
		validator:  validator,
		cache:      searchCache,
		publisher:  publisher,
		log:        log.WithFields(map[string]interface{}{"service": "hotlists"}),
	}
}

// List returns every hotlist with candidate references expanded.
func (s *HotlistService) List(ctx context.Context) ([]*models.PopulatedHotlist, error) {
	hotlists, err := s.hotlists.Find(ctx, filter.Predicate{}, 0)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, hotlists)
}

func (s *HotlistService) Search(ctx context.Context, term string) ([]*models.PopulatedHotlist, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewInvalidInputError("Search query is required")
	}

	var cached []*models.PopulatedHotlist
	entry, hit := s.cache.Get(ctx, cache.ScopeHotlists, term, &cached)
	if hit {
		return cached, nil
	}

	hotlists, err := s.hotlists.Find(ctx, filter.HotlistSearch(term), filter.SearchLimit)
	if err != nil {
		return nil, err
	}
	populated, err := s.populate(ctx, hotlists)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, entry, populated)
	return populated, nil
}

func (s *HotlistService) Get(ctx context.Context, rawID string) (*models.PopulatedHotlist, error) {
	id, err := parseID("Hotlist", rawID)
	if err != nil {
		return nil, err
	}
	hotlist, err := s.hotlists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hotlist == nil {
		return nil, apperrors.NewNotFoundError("Hotlist")
	}

	populated, err := s.populate(ctx, []*models.Hotlist{hotlist})
	if err != nil {
		return nil, err
	}
	return populated[0], nil
}

// Create stores the hotlist. Candidate references are checked for format
// only; they are weak and may point at candidates that do not exist.
func (s *HotlistService) Create(ctx context.Context, doc map[string]interface{}) (*models.Hotlist, error) {
	var req models.CreateHotlistRequest
	if err := s.validator.Decode(schema.Hotlist, doc, &req); err != nil {
		return nil, err
	}

	hotlist, err := models.NewHotlist(&req, now())
	if err != nil {
		return nil, apperrors.NewValidationError([]string{err.Error()})
	}
	if err := s.hotlists.Create(ctx, hotlist); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ScopeHotlists)

	if err := s.publisher.PublishHotlistCreated(ctx, hotlist); err != nil {
		s.log.Warn("failed to publish event", map[string]interface{}{"event": events.EventTypeHotlistCreated, "error": err})
	}
	return hotlist, nil
}

// populate resolves all references of all hotlists with one store query.
func (s *HotlistService) populate(ctx context.Context, hotlists []*models.Hotlist) ([]*models.PopulatedHotlist, error) {
	out := make([]*models.PopulatedHotlist, 0, len(hotlists))
	ids := models.CandidateIDs(hotlists)

	byID := make(map[bson.ObjectID]*models.Candidate, len(ids))
	if len(ids) > 0 {
		found, err := s.candidates.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			byID[c.ID] = c
		}
	}

	for _, h := range hotlists {
		out = append(out, h.Populate(byID))
	}
	return out, nil
}
