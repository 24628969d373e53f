package memory

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ==========================
// Jobs
// ==========================

type JobStore struct {
	c *collection[models.Job]
}

func NewJobStore() *JobStore {
	return &JobStore{c: newCollection[models.Job]()}
}

// SetError makes every operation fail with err; nil restores normal
// behaviour.
func (s *JobStore) SetError(err error) { s.c.setError(err) }

func (s *JobStore) Create(_ context.Context, job *models.Job) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.err != nil {
		return s.c.err
	}
	if err := s.c.insert(job.ID, job); err != nil {
		return apperrors.NewStorageError("create job", err)
	}
	return nil
}

func (s *JobStore) FindByID(_ context.Context, id bson.ObjectID) (*models.Job, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, s.c.err
	}
	e, ok := s.c.items[id]
	if !ok {
		return nil, nil
	}
	return copyOf(e.value), nil
}

func (s *JobStore) List(_ context.Context, pred filter.Predicate, page filter.Page) ([]*models.Job, int64, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, 0, s.c.err
	}

	all := s.c.query(pred, func(a, b *models.Job) bool { return a.PostedDate.After(b.PostedDate) })
	total := int64(len(all))

	start := page.Skip()
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + int64(page.Limit)
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Increment holds the write lock for the whole read-modify-write, which is
// what makes it atomic here.
func (s *JobStore) Increment(_ context.Context, id bson.ObjectID, counter models.JobCounter) (*models.Job, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.err != nil {
		return nil, s.c.err
	}

	e, ok := s.c.items[id]
	if !ok {
		return nil, nil
	}
	job := copyOf(e.value)
	switch counter {
	case models.CounterViews:
		job.Views++
	case models.CounterApplications:
		job.Applications++
	}
	job.UpdatedAt = time.Now().UTC()

	if err := s.c.replace(id, job); err != nil {
		return nil, apperrors.NewStorageError("increment job "+string(counter), err)
	}
	return job, nil
}

// ==========================
// Candidates
// ==========================

type CandidateStore struct {
	c *collection[models.Candidate]
}

func NewCandidateStore() *CandidateStore {
	return &CandidateStore{c: newCollection[models.Candidate]()}
}

func (s *CandidateStore) SetError(err error) { s.c.setError(err) }

func (s *CandidateStore) emailTaken(email string, except bson.ObjectID) bool {
	for id, e := range s.c.items {
		if id != except && strings.EqualFold(e.value.Email, email) {
			return true
		}
	}
	return false
}

func (s *CandidateStore) Create(_ context.Context, candidate *models.Candidate) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.err != nil {
		return s.c.err
	}
	if s.emailTaken(candidate.Email, candidate.ID) {
		return apperrors.NewDuplicateError("Candidate", "email", nil)
	}
	if err := s.c.insert(candidate.ID, candidate); err != nil {
		return apperrors.NewStorageError("create candidate", err)
	}
	return nil
}

func (s *CandidateStore) FindByID(_ context.Context, id bson.ObjectID) (*models.Candidate, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, s.c.err
	}
	e, ok := s.c.items[id]
	if !ok {
		return nil, nil
	}
	return copyOf(e.value), nil
}

func (s *CandidateStore) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Candidate, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, s.c.err
	}
	out := []*models.Candidate{}
	for _, id := range ids {
		if e, ok := s.c.items[id]; ok {
			out = append(out, copyOf(e.value))
		}
	}
	return out, nil
}

func (s *CandidateStore) Find(_ context.Context, pred filter.Predicate, limit int64) ([]*models.Candidate, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, s.c.err
	}
	out := s.c.query(pred, func(a, b *models.Candidate) bool { return a.CreatedAt.After(b.CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *CandidateStore) Save(_ context.Context, candidate *models.Candidate) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.err != nil {
		return s.c.err
	}
	if _, ok := s.c.items[candidate.ID]; !ok {
		return apperrors.NewNotFoundError("Candidate")
	}
	if s.emailTaken(candidate.Email, candidate.ID) {
		return apperrors.NewDuplicateError("Candidate", "email", nil)
	}
	candidate.UpdatedAt = time.Now().UTC()
	if err := s.c.replace(candidate.ID, candidate); err != nil {
		return apperrors.NewStorageError("update candidate", err)
	}
	return nil
}

// Delete removes a candidate. Hotlists keep their references.
func (s *CandidateStore) Delete(_ context.Context, id bson.ObjectID) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	delete(s.c.items, id)
}

// ==========================
// Hotlists
// ==========================

type HotlistStore struct {
	c *collection[models.Hotlist]
}

func NewHotlistStore() *HotlistStore {
	return &HotlistStore{c: newCollection[models.Hotlist]()}
}

func (s *HotlistStore) SetError(err error) { s.c.setError(err) }

func (s *HotlistStore) Create(_ context.Context, hotlist *models.Hotlist) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.err != nil {
		return s.c.err
	}
	if err := s.c.insert(hotlist.ID, hotlist); err != nil {
		return apperrors.NewStorageError("create hotlist", err)
	}
	return nil
}

func (s *HotlistStore) FindByID(_ context.Context, id bson.ObjectID) (*models.Hotlist, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, s.c.err
	}
	e, ok := s.c.items[id]
	if !ok {
		return nil, nil
	}
	return copyOf(e.value), nil
}

func (s *HotlistStore) Find(_ context.Context, pred filter.Predicate, limit int64) ([]*models.Hotlist, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.err != nil {
		return nil, s.c.err
	}
	out := s.c.query(pred, func(a, b *models.Hotlist) bool { return a.CreatedAt.After(b.CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
