package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/merra-climatology/internal/api/http"
	"github.com/i474232898/merra-climatology/internal/climate"
	"github.com/i474232898/merra-climatology/internal/climate/archive"
	"github.com/i474232898/merra-climatology/internal/config"
	"github.com/i474232898/merra-climatology/internal/scheduler"
	"github.com/i474232898/merra-climatology/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for archive fetches; per-fetch deadlines come from the engine.
	httpClient := archive.NewHTTPClient(cfg.FetchConcurrency, 0)

	backoff := archive.DefaultBackoff()
	backoff.MaxRetries = cfg.FetchMaxRetries
	sampler := archive.NewOPeNDAPSampler(httpClient, backoff, cfg.FetchConcurrency)
	resolver := climate.NewResolver(cfg.ArchiveBaseURL)

	engine := climate.NewEngine(sampler, resolver, cfg.EngineConfig())
	predictor := climate.NewPredictor(engine, time.Now)

	// In-memory probe history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	probe := climate.DefaultProbeConfig()
	probe.Point = cfg.ProbePoint
	probe.Timeout = cfg.FetchTimeout

	// Core service orchestrating predictions and archive probes.
	service := climate.NewService(predictor, sampler, resolver, memStore, probe)

	log.Printf("INFO: sampling %s via %s, baseline %d-%d, recent %d years, concurrency %d",
		cfg.ArchiveBaseURL, sampler.Name(), cfg.Baseline.First, cfg.Baseline.Last, cfg.RecentYears, cfg.FetchConcurrency)

	// Scheduler that periodically probes the archive.
	sched := scheduler.New(cfg.ProbeInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "climate-estimator",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Estimates fan out to dozens of archive reads.
		WriteTimeout: 6 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "climate-estimator",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
