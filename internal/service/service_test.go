package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathushaR/ithotlist-api/internal/cache"
	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/events"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"github.com/PrathushaR/ithotlist-api/internal/repository/memory"
	"github.com/PrathushaR/ithotlist-api/internal/schema"
	"github.com/PrathushaR/ithotlist-api/internal/upload"
)

// ==========================
// Test Helper Functions
// ==========================

type testEnv struct {
	jobs       *memory.JobStore
	candidates *memory.CandidateStore
	hotlists   *memory.HotlistStore
	uploadsDir string

	jobService       *JobService
	candidateService *CandidateService
	hotlistService   *HotlistService
}

func createTestEnv(t *testing.T, searchCache SearchCache) *testEnv {
	t.Helper()

	log := logger.NewTestLogger(t)
	validator := schema.MustNewValidator()
	publisher := events.NewDisabledPublisher(log)

	env := &testEnv{
		jobs:       memory.NewJobStore(),
		candidates: memory.NewCandidateStore(),
		hotlists:   memory.NewHotlistStore(),
		uploadsDir: filepath.Join(t.TempDir(), "uploads"),
	}
	uploads := upload.NewStore(upload.Config{Dir: env.uploadsDir, PublicPrefix: "/uploads"}, log)

	env.jobService = NewJobService(env.jobs, validator, publisher, log)
	env.candidateService = NewCandidateService(env.candidates, uploads, validator, searchCache, publisher, log)
	env.hotlistService = NewHotlistService(env.hotlists, env.candidates, validator, searchCache, publisher, log)
	return env
}

func createTestJobDoc(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":               title,
		"company":             map[string]interface{}{"name": "Acme Corp"},
		"description":         "Build and run services",
		"jobType":             "Full-time",
		"experienceLevel":     "Senior",
		"location":            "Springfield, IL",
		"salary":              map[string]interface{}{"min": 100000.0, "max": 150000.0},
		"primaryTechnology":   "Go",
		"requiredSkills":      []interface{}{"Go", "Kubernetes"},
		"applicationDeadline": "2025-06-30",
	}
}

func createTestCandidateDoc(name, email string) map[string]interface{} {
	return map[string]interface{}{
		"name":       name,
		"email":      email,
		"technology": "Go",
		"skills":     "Go, Postgres",
	}
}

func createTestResume(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["resume"][0]
}

func (env *testEnv) uploadedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(env.uploadsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var pdf = []byte("%PDF-1.4 resume")

var (
	_ JobStore       = (*memory.JobStore)(nil)
	_ CandidateStore = (*memory.CandidateStore)(nil)
	_ HotlistStore   = (*memory.HotlistStore)(nil)
)

// ==========================
// Job Service Tests
// ==========================

func TestJobService_CreateAppliesDefaults(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	job, err := env.jobService.Create(ctx, createTestJobDoc("Backend Engineer"))
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusDraft, job.Status)
	assert.Equal(t, models.DefaultCurrency, job.Salary.Currency)
	assert.Equal(t, models.SalaryYearly, job.Salary.Period)
	assert.Zero(t, job.Views)
	assert.Zero(t, job.Applications)
	assert.False(t, job.PostedDate.IsZero())
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), job.ApplicationDeadline)
}

func TestJobService_CreateRejectsInvalidInput(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	doc := createTestJobDoc("Backend Engineer")
	delete(doc, "title")
	_, err := env.jobService.Create(ctx, doc)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))

	doc = createTestJobDoc("Backend Engineer")
	doc["salary"] = map[string]interface{}{"min": 200.0, "max": 100.0}
	_, err = env.jobService.Create(ctx, doc)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))

	_, total, err := env.jobs.List(ctx, filter.Predicate{}, filter.NewPage(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestJobService_GetCountsViews(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	job, err := env.jobService.Create(ctx, createTestJobDoc("Backend Engineer"))
	require.NoError(t, err)

	const fetches = 50
	var wg sync.WaitGroup
	for i := 0; i < fetches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.jobService.Get(ctx, job.ID.Hex())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := env.jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(fetches), stored.Views)
	assert.Zero(t, stored.Applications)
}

func TestJobService_ApplyCountsApplications(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	job, err := env.jobService.Create(ctx, createTestJobDoc("Backend Engineer"))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		applied, err := env.jobService.Apply(ctx, job.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(i), applied.Applications)
		assert.Zero(t, applied.Views)
	}
}

func TestJobService_UnknownAndMalformedIDs(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.jobService.Get(ctx, "not-an-id")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidID))

	_, err = env.jobService.Get(ctx, "507f1f77bcf86cd799439011")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = env.jobService.Apply(ctx, "507f1f77bcf86cd799439011")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestJobService_ListPaginates(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := env.jobService.Create(ctx, createTestJobDoc(fmt.Sprintf("Engineer %d", i)))
		require.NoError(t, err)
	}

	list, err := env.jobService.List(ctx, filter.JobQuery{}, filter.NewPage(3, 10))
	require.NoError(t, err)
	assert.Len(t, list.Jobs, 5)
	assert.Equal(t, filter.Pagination{Total: 25, Page: 3, Limit: 10, Pages: 3}, list.Pagination)

	list, err = env.jobService.List(ctx, filter.JobQuery{Search: "engineer 7"}, filter.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, "Engineer 7", list.Jobs[0].Title)
}

// ==========================
// Candidate Service Tests
// ==========================

func TestCandidateService_Create(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	c, err := env.candidateService.Create(ctx, map[string]interface{}{"name": " Ada ", "email": "Ada@Example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, models.DefaultTechnology, c.Technology)
	assert.Equal(t, models.DefaultAvatar, c.Avatar)
	assert.Equal(t, models.CandidatePending, c.Status)
	assert.Empty(t, c.Skills)
	assert.True(t, c.ResumeFile.IsEmpty())
}

func TestCandidateService_DuplicateEmail(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.candidateService.Create(ctx, createTestCandidateDoc("Ada", "ada@example.com"))
	require.NoError(t, err)

	_, err = env.candidateService.Create(ctx, createTestCandidateDoc("Ada Again", "ADA@example.com"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicateRecord))
}

func TestCandidateService_CreateWithResume(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	c, err := env.candidateService.CreateWithResume(ctx, createTestCandidateDoc("Ada", "ada@example.com"),
		createTestResume(t, "ada cv.pdf", upload.MimePDF, pdf))
	require.NoError(t, err)

	require.False(t, c.ResumeFile.IsEmpty())
	assert.Equal(t, upload.MimePDF, *c.ResumeFile.Mimetype)
	assert.Equal(t, "/uploads/"+*c.ResumeFile.Filename, *c.ResumeFile.Path)
	assert.Equal(t, []string{*c.ResumeFile.Filename}, env.uploadedFiles(t))
	assert.Equal(t, []string{"Go", "Postgres"}, c.Skills)
}

func TestCandidateService_CreateWithResumeWithoutFile(t *testing.T) {
	env := createTestEnv(t, nil)

	c, err := env.candidateService.CreateWithResume(context.Background(), createTestCandidateDoc("Ada", "ada@example.com"), nil)
	require.NoError(t, err)
	assert.True(t, c.ResumeFile.IsEmpty())
	assert.Empty(t, env.uploadedFiles(t))
}

func TestCandidateService_CreateWithResumeRollsBack(t *testing.T) {
	tests := []struct {
		name     string
		doc      map[string]interface{}
		setup    func(t *testing.T, env *testEnv)
		wantCode apperrors.ErrorCode
		wantErr  error
	}{
		{
			name:     "missing email",
			doc:      map[string]interface{}{"name": "Ada"},
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name: "duplicate email",
			doc:  createTestCandidateDoc("Ada", "ada@example.com"),
			setup: func(t *testing.T, env *testEnv) {
				_, err := env.candidateService.Create(context.Background(), createTestCandidateDoc("Other", "ada@example.com"))
				require.NoError(t, err)
			},
			wantCode: apperrors.ErrCodeDuplicateRecord,
		},
		{
			name:    "store failure",
			doc:     createTestCandidateDoc("Ada", "ada@example.com"),
			setup:   func(_ *testing.T, env *testEnv) { env.candidates.SetError(errors.New("connection reset")) },
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := createTestEnv(t, nil)
			if tt.setup != nil {
				tt.setup(t, env)
			}

			c, err := env.candidateService.CreateWithResume(context.Background(), tt.doc,
				createTestResume(t, "cv.pdf", upload.MimePDF, pdf))
			require.Error(t, err)
			assert.Nil(t, c)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
			}
			assert.Empty(t, env.uploadedFiles(t))
		})
	}
}

func TestCandidateService_CreateWithResumeRejectsFileType(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.candidateService.CreateWithResume(ctx, createTestCandidateDoc("Ada", "ada@example.com"),
		createTestResume(t, "photo.png", "image/png", []byte("png")))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFileType))
	assert.Empty(t, env.uploadedFiles(t))

	list, err := env.candidateService.List(ctx, filter.CandidateQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCandidateService_AttachResumeReplacesFile(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	c, err := env.candidateService.CreateWithResume(ctx, createTestCandidateDoc("Ada", "ada@example.com"),
		createTestResume(t, "old.pdf", upload.MimePDF, pdf))
	require.NoError(t, err)
	oldName := *c.ResumeFile.Filename

	updated, err := env.candidateService.AttachResume(ctx, c.ID.Hex(),
		createTestResume(t, "new.docx", upload.MimeDocx, []byte("PK docx")))
	require.NoError(t, err)

	newName := *updated.ResumeFile.Filename
	assert.NotEqual(t, oldName, newName)
	assert.Equal(t, upload.MimeDocx, *updated.ResumeFile.Mimetype)
	assert.Equal(t, []string{newName}, env.uploadedFiles(t))

	stored, err := env.candidateService.Get(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, newName, *stored.ResumeFile.Filename)
}

func TestCandidateService_AttachResumeFailures(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.candidateService.AttachResume(ctx, "507f1f77bcf86cd799439011", createTestResume(t, "cv.pdf", upload.MimePDF, pdf))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = env.candidateService.AttachResume(ctx, "bad", createTestResume(t, "cv.pdf", upload.MimePDF, pdf))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidID))

	c, err := env.candidateService.Create(ctx, createTestCandidateDoc("Ada", "ada@example.com"))
	require.NoError(t, err)
	_, err = env.candidateService.AttachResume(ctx, c.ID.Hex(), nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	assert.Empty(t, env.uploadedFiles(t))
}

func TestCandidateService_ListAndSearch(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	docs := []map[string]interface{}{
		{"name": "Ada Lovelace", "email": "ada@example.com", "technology": "Go", "skills": "Go, gRPC", "status": "active"},
		{"name": "Grace Hopper", "email": "grace@navy.mil", "technology": "COBOL", "skills": []interface{}{"COBOL"}, "status": "inactive"},
		{"name": "Linus", "email": "linus@kernel.org", "technology": "C", "skills": "C, Git", "status": "active"},
	}
	for _, d := range docs {
		_, err := env.candidateService.Create(ctx, d)
		require.NoError(t, err)
	}

	active, err := env.candidateService.List(ctx, filter.CandidateQuery{Status: "active"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	bySkill, err := env.candidateService.List(ctx, filter.CandidateQuery{Skills: "git"})
	require.NoError(t, err)
	require.Len(t, bySkill, 1)
	assert.Equal(t, "Linus", bySkill[0].Name)

	found, err := env.candidateService.Search(ctx, "NAVY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Grace Hopper", found[0].Name)

	_, err = env.candidateService.Search(ctx, "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func TestCandidateService_SearchIsLimited(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := env.candidateService.Create(ctx, createTestCandidateDoc(fmt.Sprintf("Dev %d", i), fmt.Sprintf("dev%d@example.com", i)))
		require.NoError(t, err)
	}

	found, err := env.candidateService.Search(ctx, "dev")
	require.NoError(t, err)
	assert.Len(t, found, filter.SearchLimit)
}

// ==========================
// Hotlist Service Tests
// ==========================

func TestHotlistService_PopulatesInReferenceOrder(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	ada, err := env.candidateService.Create(ctx, createTestCandidateDoc("Ada", "ada@example.com"))
	require.NoError(t, err)
	grace, err := env.candidateService.Create(ctx, createTestCandidateDoc("Grace", "grace@example.com"))
	require.NoError(t, err)
	gone, err := env.candidateService.Create(ctx, createTestCandidateDoc("Gone", "gone@example.com"))
	require.NoError(t, err)

	h, err := env.hotlistService.Create(ctx, map[string]interface{}{
		"name":       "Go developers",
		"candidates": []interface{}{grace.ID.Hex(), gone.ID.Hex(), ada.ID.Hex()},
	})
	require.NoError(t, err)
	assert.Len(t, h.Candidates, 3)

	env.candidates.Delete(ctx, gone.ID)

	populated, err := env.hotlistService.Get(ctx, h.ID.Hex())
	require.NoError(t, err)
	require.Len(t, populated.Candidates, 2)
	assert.Equal(t, "Grace", populated.Candidates[0].Name)
	assert.Equal(t, "Ada", populated.Candidates[1].Name)

	all, err := env.hotlistService.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Candidates, 2)
}

func TestHotlistService_CreateValidation(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.hotlistService.Create(ctx, map[string]interface{}{"description": "no name"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))

	_, err = env.hotlistService.Create(ctx, map[string]interface{}{"name": "Bad", "candidates": []interface{}{"xyz"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))

	// Well-formed references are accepted without checking they exist.
	h, err := env.hotlistService.Create(ctx, map[string]interface{}{"name": "Weak", "candidates": []interface{}{"507f1f77bcf86cd799439011"}})
	require.NoError(t, err)
	populated, err := env.hotlistService.Get(ctx, h.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, populated.Candidates)
}

func TestHotlistService_GetAndSearch(t *testing.T) {
	env := createTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.hotlistService.Get(ctx, "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidID))
	_, err = env.hotlistService.Get(ctx, "507f1f77bcf86cd799439011")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = env.hotlistService.Create(ctx, map[string]interface{}{"name": "Backend", "description": "Senior Go people"})
	require.NoError(t, err)
	_, err = env.hotlistService.Create(ctx, map[string]interface{}{"name": "Frontend", "description": "React"})
	require.NoError(t, err)

	found, err := env.hotlistService.Search(ctx, "go")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Backend", found[0].Name)

	_, err = env.hotlistService.Search(ctx, "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

// ==========================
// Search Cache Tests
// ==========================

func createTestSearchCache(t *testing.T) *cache.SearchCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewSearchCache(client, time.Minute, logger.NewTestLogger(t))
}

func TestCandidateService_SearchUsesCache(t *testing.T) {
	env := createTestEnv(t, createTestSearchCache(t))
	ctx := context.Background()

	_, err := env.candidateService.Create(ctx, createTestCandidateDoc("Ada", "ada@example.com"))
	require.NoError(t, err)

	found, err := env.candidateService.Search(ctx, "example")
	require.NoError(t, err)
	require.Len(t, found, 1)

	// Written behind the service's back, so the cached result stays.
	bypass := models.NewCandidate(&models.CreateCandidateRequest{Name: "Grace", Email: "grace@example.com"}, time.Now().UTC())
	require.NoError(t, env.candidates.Create(ctx, bypass))

	found, err = env.candidateService.Search(ctx, "example")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// A mutation through the service invalidates it.
	_, err = env.candidateService.Create(ctx, createTestCandidateDoc("Linus", "linus@example.com"))
	require.NoError(t, err)

	found, err = env.candidateService.Search(ctx, "example")
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestHotlistService_SearchCacheInvalidatedByCreate(t *testing.T) {
	env := createTestEnv(t, createTestSearchCache(t))
	ctx := context.Background()

	_, err := env.hotlistService.Create(ctx, map[string]interface{}{"name": "Backend"})
	require.NoError(t, err)

	found, err := env.hotlistService.Search(ctx, "backend")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = env.hotlistService.Create(ctx, map[string]interface{}{"name": "Backend 2"})
	require.NoError(t, err)

	found, err = env.hotlistService.Search(ctx, "backend")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

// racingCandidateStore runs afterFind once, right after the first Find
// returns, to land a write between a search's store read and its cache fill.
type racingCandidateStore struct {
	*memory.CandidateStore
	afterFind func()
	once      sync.Once
}

func (s *racingCandidateStore) Find(ctx context.Context, pred filter.Predicate, limit int64) ([]*models.Candidate, error) {
	found, err := s.CandidateStore.Find(ctx, pred, limit)
	if s.afterFind != nil {
		s.once.Do(s.afterFind)
	}
	return found, err
}

func TestCandidateService_SearchDoesNotCacheAcrossConcurrentWrite(t *testing.T) {
	log := logger.NewTestLogger(t)
	ctx := context.Background()
	store := &racingCandidateStore{CandidateStore: memory.NewCandidateStore()}
	uploads := upload.NewStore(upload.Config{Dir: filepath.Join(t.TempDir(), "uploads"), PublicPrefix: "/uploads"}, log)
	svc := NewCandidateService(store, uploads, schema.MustNewValidator(), createTestSearchCache(t), events.NewDisabledPublisher(log), log)

	_, err := svc.Create(ctx, createTestCandidateDoc("Ada", "ada@example.com"))
	require.NoError(t, err)

	store.afterFind = func() {
		_, err := svc.Create(ctx, createTestCandidateDoc("Grace", "grace@example.com"))
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, "example")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.Search(ctx, "example")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
