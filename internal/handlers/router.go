package handlers

import (
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/middleware"
	"github.com/PrathushaR/ithotlist-api/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AppConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int

	UploadsDir    string
	UploadsPrefix string
}

type Services struct {
	Jobs       *service.JobService
	Candidates *service.CandidateService
	Hotlists   *service.HotlistService
	Store      Pinger
}

// NewApp builds the Fiber app with middleware, static resume serving,
// /metrics and every API route.
func NewApp(cfg AppConfig, svc Services, opts Options) *fiber.App {
	opts = opts.withDefaults()

	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler(opts.ExposeErrors, opts.Logger),
	})

	app.Use(middleware.RequestLogger(opts.Logger))
	app.Use(recoverer.New())
	app.Use(cors.New())

	if cfg.UploadsDir != "" {
		prefix := cfg.UploadsPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		app.Get(prefix+"*", static.New(cfg.UploadsDir))
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	NewHealthHandler(svc.Store, cfg.Name, opts).RegisterRoutes(app)
	NewJobHandler(svc.Jobs, opts).RegisterRoutes(app)
	NewCandidateHandler(svc.Candidates, opts).RegisterRoutes(app)
	NewHotlistHandler(svc.Hotlists, opts).RegisterRoutes(app)

	return app
}
