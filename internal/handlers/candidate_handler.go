package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"github.com/PrathushaR/ithotlist-api/internal/service"
	"github.com/gofiber/fiber/v3"
)

// ResumeField is the multipart field carrying the resume file.
const ResumeField = "resume"

// Form fields that arrive as text but are numbers in the record.
var numericFormFields = map[string]bool{
	"yearsOfExp": true,
	"experience": true,
}

type CandidateHandler struct {
	candidateService *service.CandidateService
	opts             Options
}

func NewCandidateHandler(candidateService *service.CandidateService, opts Options) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		opts:             opts.withDefaults(),
	}
}

func (h *CandidateHandler) RegisterRoutes(app *fiber.App) {
	candidates := app.Group("/candidates")

	candidates.Get("/", h.ListCandidates)
	// Registered before /:id so "search" is not taken for an id.
	candidates.Get("/search", h.SearchCandidates)
	candidates.Get("/:id", h.GetCandidate)
	candidates.Post("/:id/resume", h.AttachResume)

	app.Post("/candidate", h.CreateCandidate)
	app.Post("/candidate/with-resume", h.CreateCandidateWithResume)
}

func (h *CandidateHandler) ListCandidates(c fiber.Ctx) error {
	query := filter.CandidateQuery{
		Status:     c.Query("status"),
		Technology: c.Query("technology"),
		Skills:     c.Query("skills"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	candidates, err := h.candidateService.List(ctx, query)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(candidates)
}

func (h *CandidateHandler) SearchCandidates(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	candidates, err := h.candidateService.Search(ctx, c.Query("q"))
	if err != nil {
		return err
	}
	return success(c, candidates)
}

func (h *CandidateHandler) GetCandidate(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	candidate, err := h.candidateService.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(candidate)
}

func (h *CandidateHandler) CreateCandidate(c fiber.Ctx) error {
	doc, err := bodyDocument(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	candidate, err := h.candidateService.Create(ctx, doc)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(candidate)
}

// CreateCandidateWithResume accepts a multipart form with an optional
// resume file. A JSON body is accepted too and behaves like CreateCandidate.
func (h *CandidateHandler) CreateCandidateWithResume(c fiber.Ctx) error {
	var (
		doc    map[string]interface{}
		resume *multipart.FileHeader
		err    error
	)
	if isMultipart(c) {
		doc, resume, err = multipartDocument(c)
	} else {
		doc, err = bodyDocument(c)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	candidate, err := h.candidateService.CreateWithResume(ctx, doc, resume)
	if err != nil {
		return err
	}
	h.opts.Logger.Info("candidate created", map[string]interface{}{
		"candidate_id": candidate.ID.Hex(),
		"with_resume":  resume != nil,
	})
	return c.Status(fiber.StatusCreated).JSON(candidate)
}

func (h *CandidateHandler) AttachResume(c fiber.Ctx) error {
	if !isMultipart(c) {
		return apperrors.NewInvalidInputError("Resume file is required")
	}
	_, resume, err := multipartDocument(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	candidate, err := h.candidateService.AttachResume(ctx, c.Params("id"), resume)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(candidate)
}

func isMultipart(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// multipartDocument turns the text fields of a multipart form into a
// document and returns the resume file, if one was sent.
func multipartDocument(c fiber.Ctx) (map[string]interface{}, *multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return nil, nil, fe
		}
		return nil, nil, apperrors.NewInvalidInputError("Invalid multipart form")
	}

	doc := make(map[string]interface{}, len(form.Value))
	for key, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		if numericFormFields[key] {
			if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				doc[key] = n
				continue
			}
		}
		doc[key] = value
	}

	var resume *multipart.FileHeader
	if files := form.File[ResumeField]; len(files) > 0 {
		resume = files[0]
	}
	return doc, resume, nil
}
