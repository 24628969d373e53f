package service

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/PrathushaR/ithotlist-api/internal/cache"
	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/events"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"github.com/PrathushaR/ithotlist-api/internal/schema"
	"github.com/PrathushaR/ithotlist-api/internal/upload"
)

type CandidateService struct {
	store     CandidateStore
	uploads   *upload.Store
	validator *schema.Validator
	cache     SearchCache
	publisher events.Publisher
	log       logger.Logger
}

// NewCandidateService wires the service. searchCache may be nil.
func NewCandidateService(store CandidateStore, uploads *upload.Store, validator *schema.Validator, searchCache SearchCache, publisher events.Publisher, log logger.Logger) *CandidateService {
	if searchCache == nil {
		searchCache = noopCache{}
	}
	return &CandidateService{
		store:     store,
		uploads:   uploads,
		validator: validator,
		cache:     searchCache,
		publisher: publisher,
		log:       log.WithFields(map[string]interface{}{"service": "candidates"}),
	}
}

// List returns candidates matching the optional filters, newest first.
func (s *CandidateService) List(ctx context.Context, query filter.CandidateQuery) ([]*models.Candidate, error) {
	return s.store.Find(ctx, query.Predicate(), 0)
}

// Search matches name, email, technology and skills, case-insensitively.
func (s *CandidateService) Search(ctx context.Context, term string) ([]*models.Candidate, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewInvalidInputError("Search query is required")
	}

	var cached []*models.Candidate
	entry, hit := s.cache.Get(ctx, cache.ScopeCandidates, term, &cached)
	if hit {
		return cached, nil
	}

	found, err := s.store.Find(ctx, filter.CandidateSearch(term), filter.SearchLimit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, entry, found)
	return found, nil
}

func (s *CandidateService) Get(ctx context.Context, rawID string) (*models.Candidate, error) {
	id, err := parseID("Candidate", rawID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, apperrors.NewNotFoundError("Candidate")
	}
	return candidate, nil
}

func (s *CandidateService) Create(ctx context.Context, doc map[string]interface{}) (*models.Candidate, error) {
	candidate, err := s.create(ctx, doc, nil)
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// CreateWithResume creates the candidate and stores the optional resume as
// one unit: if the record cannot be saved the written file is removed again.
func (s *CandidateService) CreateWithResume(ctx context.Context, doc map[string]interface{}, resume *multipart.FileHeader) (*models.Candidate, error) {
	if resume == nil {
		return s.Create(ctx, doc)
	}

	var created *models.Candidate
	err := s.uploads.Commit(resume, func(sf *upload.StoredFile) error {
		c, err := s.create(ctx, doc, sf)
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CandidateService) create(ctx context.Context, doc map[string]interface{}, resume *upload.StoredFile) (*models.Candidate, error) {
	var req models.CreateCandidateRequest
	if err := s.validator.Decode(schema.Candidate, doc, &req); err != nil {
		return nil, err
	}

	candidate := models.NewCandidate(&req, now())
	if resume != nil {
		candidate.AttachResume(resume.Filename, resume.Path, resume.Mimetype)
	}

	if err := s.store.Create(ctx, candidate); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ScopeCandidates, cache.ScopeHotlists)

	if err := s.publisher.PublishCandidateCreated(ctx, candidate); err != nil {
		s.log.Warn("failed to publish event", map[string]interface{}{"event": events.EventTypeCandidateCreated, "error": err})
	}
	return candidate, nil
}

// AttachResume stores a new resume for an existing candidate and re-saves
// the whole record. The previous file is removed once the save succeeded.
func (s *CandidateService) AttachResume(ctx context.Context, rawID string, resume *multipart.FileHeader) (*models.Candidate, error) {
	if resume == nil {
		return nil, apperrors.NewInvalidInputError("Resume file is required")
	}

	candidate, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	previous := candidate.ResumeFile

	err = s.uploads.Commit(resume, func(sf *upload.StoredFile) error {
		candidate.AttachResume(sf.Filename, sf.Path, sf.Mimetype)
		return s.store.Save(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	if previous.Path != nil {
		s.uploads.ReleasePath(*previous.Path)
	}
	s.cache.Invalidate(ctx, cache.ScopeCandidates, cache.ScopeHotlists)

	if err := s.publisher.PublishResumeAttached(ctx, candidate); err != nil {
		s.log.Warn("failed to publish event", map[string]interface{}{"event": events.EventTypeCandidateResumeAttached, "error": err})
	}
	return candidate, nil
}
