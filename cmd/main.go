package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/cache"
	"github.com/PrathushaR/ithotlist-api/internal/config"
	"github.com/PrathushaR/ithotlist-api/internal/database/mongo"
	"github.com/PrathushaR/ithotlist-api/internal/database/redis"
	"github.com/PrathushaR/ithotlist-api/internal/events"
	"github.com/PrathushaR/ithotlist-api/internal/handlers"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/repository"
	"github.com/PrathushaR/ithotlist-api/internal/schema"
	"github.com/PrathushaR/ithotlist-api/internal/service"
	"github.com/PrathushaR/ithotlist-api/internal/upload"
	"github.com/PrathushaR/ithotlist-api/pkg/discovery"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ithotlist-api: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred closes and the final log sync
// always happen.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting service", map[string]interface{}{
		"service":     cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	startCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.ConnectTimeout)
	defer cancel()

	// Serving without the document store is pointless, so a failed connect
	// ends the process.
	mongoClient, err := mongo.Connect(startCtx, cfg.MongoDB, log)
	if err != nil {
		log.Error("failed to connect to MongoDB", map[string]interface{}{"error": err})
		return err
	}
	defer mongoClient.Close()

	jobRepo := repository.NewJobRepository(mongoClient.Collection(mongo.JobsCollection))
	candidateRepo := repository.NewCandidateRepository(mongoClient.Collection(mongo.CandidatesCollection))
	hotlistRepo := repository.NewHotlistRepository(mongoClient.Collection(mongo.HotlistsCollection))

	for name, ensure := range map[string]func(context.Context) error{
		mongo.JobsCollection:       jobRepo.EnsureIndexes,
		mongo.CandidatesCollection: candidateRepo.EnsureIndexes,
		mongo.HotlistsCollection:   hotlistRepo.EnsureIndexes,
	} {
		if err := ensure(startCtx); err != nil {
			log.Error("failed to create indexes", map[string]interface{}{"collection": name, "error": err})
			return err
		}
	}

	redisClient, err := redis.Connect(startCtx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, search cache disabled", map[string]interface{}{"error": err})
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	searchCache := cache.NewSearchCache(redisClient, cfg.Redis.SearchTTL, log)

	var publisher events.Publisher
	eventPublisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.PublishTimeout, log)
	if err != nil {
		log.Warn("failed to initialize event publisher, events disabled", map[string]interface{}{"error": err})
		publisher = events.NewDisabledPublisher(log)
	} else {
		publisher = eventPublisher
	}

	validator, err := schema.NewValidator()
	if err != nil {
		log.Error("failed to load record schemas", map[string]interface{}{"error": err})
		return err
	}

	uploads := upload.NewStore(upload.Config{
		Dir:          cfg.Uploads.Dir,
		PublicPrefix: cfg.Uploads.PublicPrefix,
		MaxSize:      cfg.Uploads.MaxSize,
	}, log)

	opts := handlers.Options{
		Timeout:      cfg.MongoDB.OperationTimeout,
		ExposeErrors: !cfg.App.IsProduction(),
		Logger:       log,
	}
	app := handlers.NewApp(
		handlers.AppConfig{
			Name:          cfg.App.Name,
			ReadTimeout:   cfg.Server.ReadTimeout,
			WriteTimeout:  cfg.Server.WriteTimeout,
			BodyLimit:     cfg.Server.BodyLimit,
			UploadsDir:    cfg.Uploads.Dir,
			UploadsPrefix: cfg.Uploads.PublicPrefix,
		},
		handlers.Services{
			Jobs:       service.NewJobService(jobRepo, validator, publisher, log),
			Candidates: service.NewCandidateService(candidateRepo, uploads, validator, searchCache, publisher, log),
			Hotlists:   service.NewHotlistService(hotlistRepo, candidateRepo, validator, searchCache, publisher, log),
			Store:      mongoClient,
		},
		opts,
	)

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Address != "" {
		registry, err = discovery.NewServiceRegistry(cfg.Consul.Address, cfg.App.Name, cfg.Consul.ServiceID, cfg.Server.Host, cfg.Server.Port)
		if err != nil {
			log.Warn("failed to create service registry", map[string]interface{}{"error": err})
		} else if err := registry.Register(); err != nil {
			log.Warn("failed to register with Consul", map[string]interface{}{"error": err})
			registry = nil
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting HTTP server", map[string]interface{}{"address": cfg.Server.Address()})
		if err := app.Listen(cfg.Server.Address()); err != nil {
			log.Error("HTTP server stopped", map[string]interface{}{"error": err})
			shutdownChan <- syscall.SIGTERM
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Info("shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error shutting down HTTP server", map[string]interface{}{"error": err})
	}

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Warn("error deregistering from Consul", map[string]interface{}{"error": err})
		}
	}

	if err := publisher.Close(); err != nil {
		log.Warn("error closing event publisher", map[string]interface{}{"error": err})
	}

	<-doneChan
	log.Info("server shutdown complete", nil)
	return nil
}
