package handlers

import (
	"context"

	"github.com/PrathushaR/ithotlist-api/internal/service"
	"github.com/gofiber/fiber/v3"
)

type HotlistHandler struct {
	hotlistService *service.HotlistService
	opts           Options
}

func NewHotlistHandler(hotlistService *service.HotlistService, opts Options) *HotlistHandler {
	return &HotlistHandler{
		hotlistService: hotlistService,
		opts:           opts.withDefaults(),
	}
}

func (h *HotlistHandler) RegisterRoutes(app *fiber.App) {
	hotlists := app.Group("/hotlists")

	hotlists.Get("/", h.ListHotlists)
	hotlists.Get("/search", h.SearchHotlists)
	hotlists.Post("/", h.CreateHotlist)

	app.Get("/hotlist/:id", h.GetHotlist)
}

func (h *HotlistHandler) ListHotlists(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	hotlists, err := h.hotlistService.List(ctx)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(hotlists)
}

func (h *HotlistHandler) SearchHotlists(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	hotlists, err := h.hotlistService.Search(ctx, c.Query("q"))
	if err != nil {
		return err
	}
	return success(c, hotlists)
}

func (h *HotlistHandler) GetHotlist(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	hotlist, err := h.hotlistService.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(hotlist)
}

func (h *HotlistHandler) CreateHotlist(c fiber.Ctx) error {
	doc, err := bodyDocument(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()

	hotlist, err := h.hotlistService.Create(ctx, doc)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(hotlist)
}
