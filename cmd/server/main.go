package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examguard/internal/config"
	"examguard/internal/database"
	"examguard/internal/handlers"
	"examguard/internal/jobs"
	"examguard/internal/logging"
	"examguard/internal/middleware"
	"examguard/internal/services"
	"examguard/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting ExamGuard retention server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, retention: %dh, grace: %dd, cleanup every %dm)",
		cfg.Port, cfg.RetentionHours, cfg.GracePeriodDays, cfg.CleanupIntervalMinutes)

	// Storage: MongoDB when configured, in-memory otherwise
	var mongoDB *database.MongoDB
	var recordingRepo store.RecordingRepository
	var eventRepo store.EventRepository

	if cfg.MongoURI != "" {
		log.Println("🔗 Connecting to MongoDB...")
		var err error
		mongoDB, err = database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		defer mongoDB.Close(context.Background())

		initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := mongoDB.Initialize(initCtx); err != nil {
			cancel()
			log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
		}
		cancel()

		recordingRepo = store.NewMongoRecordingRepository(mongoDB)
		eventRepo = store.NewMongoEventRepository(mongoDB)
	} else {
		log.Println("⚠️ MONGODB_URI not set - using in-memory store (data lost on restart)")
		recordingRepo = store.NewMemoryRecordingRepository()
		eventRepo = store.NewMemoryEventRepository()
	}

	// Redis (optional - alert fan-out)
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		var err error
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (alert fan-out disabled)", err)
			redisService = nil
		} else {
			defer redisService.Close()
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - alert fan-out disabled")
	}

	// Metrics
	metrics := services.InitMetrics()

	// Core services
	retentionService := services.NewRetentionService(recordingRepo, eventRepo, cfg)
	reportService := services.NewReportService(retentionService, cfg.ReportCacheTTL)
	legalService := services.NewLegalReportService(retentionService, cfg)
	exportService := services.NewExportService(retentionService)
	alertService := services.NewAlertService(redisService, cfg.AlertWebhookURL)
	log.Println("✅ Core services initialized")

	if cfg.AdminAPIKey == "" {
		log.Println("⚠️ ADMIN_API_KEY not set - privileged routes are unprotected (development only)")
	}

	// Cleanup scheduler: one immediate pass, then a fixed interval
	jobScheduler := jobs.NewJobScheduler()
	jobScheduler.Register("retention_cleanup",
		jobs.NewRetentionCleanupJob(retentionService, metrics, cfg.CleanupInterval()))
	if err := jobScheduler.RunNow("retention_cleanup"); err != nil {
		log.Printf("⚠️ Startup cleanup pass failed: %v (will retry on schedule)", err)
	}
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start job scheduler: %v", err)
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ExamGuard Retention Server",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	prometheus := fiberprometheus.New("examguard")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	rateLimitConfig := middleware.LoadRateLimitConfig()
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Handlers
	healthHandler := handlers.NewHealthHandler(mongoDB)
	recordingHandler := handlers.NewRecordingHandler(retentionService, reportService, metrics)
	eventHandler := handlers.NewEventHandler(retentionService, reportService, alertService, metrics)
	reportHandler := handlers.NewReportHandler(reportService, metrics, cfg.AdminAPIKey)
	legalHandler := handlers.NewLegalReportHandler(legalService, metrics)
	exportHandler := handlers.NewExportHandler(exportService, metrics)
	adminHandler := handlers.NewAdminHandler(retentionService, jobScheduler)

	// Routes
	app.Get("/health", healthHandler.Handle)

	ingestLimiter := middleware.IngestRateLimiter(rateLimitConfig)
	reportLimiter := middleware.ReportRateLimiter(rateLimitConfig)
	requireKey := middleware.RequireAPIKey(cfg.AdminAPIKey)

	app.Post("/api/recordings", ingestLimiter, recordingHandler.Create)
	app.Get("/api/recordings", recordingHandler.List)

	app.Post("/api/events", ingestLimiter, eventHandler.Create)
	app.Get("/api/events", eventHandler.List)

	app.Get("/api/students/:id/events", eventHandler.ListByStudent)
	app.Get("/api/students/:id/report", reportLimiter, reportHandler.GetStudentReport)
	app.Get("/api/students/:id/legal-report", reportLimiter, requireKey, legalHandler.GetLegalReport)
	app.Get("/api/students/:id/events/export", reportLimiter, requireKey, exportHandler.ExportStudentEvents)

	app.Get("/api/retention/stats", adminHandler.RetentionStats)
	app.Post("/api/admin/cleanup", requireKey, adminHandler.TriggerCleanup)
	app.Get("/api/admin/scheduler", requireKey, adminHandler.SchedulerStatus)

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdown
		log.Println("🛑 Shutting down...")
		jobScheduler.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Fiber shutdown error: %v", err)
		}
	}()

	log.Printf("🌐 Listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("✅ Server stopped")
}
