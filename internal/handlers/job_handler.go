package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/service"
	"github.com/gofiber/fiber/v3"
)

type JobHandler struct {
	jobService *service.JobService
	opts       Options
}

func NewJobHandler(jobService *service.JobService, opts Options) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		opts:       opts.withDefaults(),
	}
}

func (h *JobHandler) RegisterRoutes(app *fiber.App) {
	jobs := app.Group("/jobs")

	jobs.Get("/", h.ListJobs)
	jobs.Post("/", h.CreateJob)
	jobs.Get("/:id", h.GetJob)
	jobs.Post("/:id/apply", h.ApplyToJob)
}

// ListJobs supports status, jobType, experienceLevel and primaryTechnology
// as exact filters, location/search/requiredSkills as case-insensitive
// substring filters, remote as a boolean and page/limit pagination.
func (h *JobHandler) ListJobs(c fiber.Ctx) error {
	query := filter.JobQuery{
		Status:            c.Query("status"),
		JobType:           c.Query("jobType"),
		ExperienceLevel:   c.Query("experienceLevel"),
		PrimaryTechnology: c.Query("primaryTechnology"),
		Remote:            c.Query("remote"),
		Location:          c.Query("location"),
		Search:            c.Query("search"),
		RequiredSkills:    c.Query("requiredSkills"),
	}
	page := filter.NewPage(queryInt(c, "page", filter.DefaultPage), queryInt(c, "limit", filter.DefaultLimit))

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	list, err := h.jobService.List(ctx, query, page)
	if err != nil {
		return err
	}
	return success(c, list)
}

func (h *JobHandler) GetJob(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	job, err := h.jobService.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(job)
}

func (h *JobHandler) CreateJob(c fiber.Ctx) error {
	doc, err := bodyDocument(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	job, err := h.jobService.Create(ctx, doc)
	if err != nil {
		return err
	}
	h.opts.Logger.Info("job created", map[string]interface{}{"job_id": job.ID.Hex()})
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *JobHandler) ApplyToJob(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	job, err := h.jobService.Apply(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(job)
}

// queryInt falls back to def when the parameter is absent or not a number.
func queryInt(c fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func bodyDocument(c fiber.Ctx) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(c.Body(), &doc); err != nil || doc == nil {
		return nil, apperrors.NewInvalidInputError("Invalid request body")
	}
	return doc, nil
}
