package service

import (
	"context"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/events"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/metrics"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"github.com/PrathushaR/ithotlist-api/internal/schema"
)

type JobList struct {
	Jobs       []*models.Job     `json:"jobs"`
	Pagination filter.Pagination `json:"pagination"`
}

type JobService struct {
	store     JobStore
	validator *schema.Validator
	publisher events.Publisher
	log       logger.Logger
}

func NewJobService(store JobStore, validator *schema.Validator, publisher events.Publisher, log logger.Logger) *JobService {
	return &JobService{
		store:     store,
		validator: validator,
		publisher: publisher,
		log:       log.WithFields(map[string]interface{}{"service": "jobs"}),
	}
}

func (s *JobService) List(ctx context.Context, query filter.JobQuery, page filter.Page) (*JobList, error) {
	jobs, total, err := s.store.List(ctx, query.Predicate(), page)
	if err != nil {
		return nil, err
	}
	return &JobList{Jobs: jobs, Pagination: page.Paginate(total)}, nil
}

// Get returns the job and counts the fetch as one view.
func (s *JobService) Get(ctx context.Context, rawID string) (*models.Job, error) {
	job, err := s.increment(ctx, rawID, models.CounterViews)
	if err != nil {
		return nil, err
	}
	s.publish(func() error { return s.publisher.PublishJobViewed(ctx, job) }, events.EventTypeJobViewed)
	return job, nil
}

// Apply records one application.
func (s *JobService) Apply(ctx context.Context, rawID string) (*models.Job, error) {
	job, err := s.increment(ctx, rawID, models.CounterApplications)
	if err != nil {
		return nil, err
	}
	s.publish(func() error { return s.publisher.PublishJobApplied(ctx, job) }, events.EventTypeJobApplied)
	return job, nil
}

func (s *JobService) increment(ctx context.Context, rawID string, counter models.JobCounter) (*models.Job, error) {
	id, err := parseID("Job", rawID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.Increment(ctx, id, counter)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.NewNotFoundError("Job")
	}
	metrics.JobCounterIncrements.WithLabelValues(string(counter)).Inc()
	return job, nil
}

func (s *JobService) Create(ctx context.Context, doc map[string]interface{}) (*models.Job, error) {
	var req models.CreateJobRequest
	if err := s.validator.Decode(schema.Job, doc, &req); err != nil {
		return nil, err
	}

	job, err := models.NewJob(&req, now())
	if err != nil {
		return nil, apperrors.NewValidationError([]string{err.Error()})
	}
	if job.Salary.Min > job.Salary.Max {
		return nil, apperrors.NewValidationError([]string{"salary: min must not exceed max"})
	}

	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	s.publish(func() error { return s.publisher.PublishJobCreated(ctx, job) }, events.EventTypeJobCreated)
	return job, nil
}

func (s *JobService) publish(fn func() error, event events.EventType) {
	if err := fn(); err != nil {
		s.log.Warn("failed to publish event", map[string]interface{}{"event": event, "error": err})
	}
}
