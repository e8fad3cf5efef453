package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/config"
	"github.com/ysxx86/classreport-go-api/internal/database"
	"github.com/ysxx86/classreport-go-api/internal/handler"
	"github.com/ysxx86/classreport-go-api/internal/middleware"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/internal/router"
	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/pkg/docx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.Grade{}, &models.Comment{}, &models.Template{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	archiveStore := repository.NewArchiveStore(redisClient, cfg.ArchiveTTL)

	engineProvider := docx.NewProvider(docx.ProviderConfig{
		BundleURL:    cfg.EngineBundleURL,
		FetchTimeout: cfg.EngineFetchTime,
	}, logger)

	templateService, err := service.NewTemplateService(templateRepo, cfg.MaxTemplateSizeMB, logger)
	if err != nil {
		log.Fatalf("failed to initialise template service: %v", err)
	}

	aggregator := service.NewAggregator(studentRepo, gradeRepo, commentRepo, logger)
	packager := service.NewPackager(archiveStore, logger)
	progressBroker := service.NewProgressBroker(natsConn, "", logger)
	exportService := service.NewExportService(aggregator, templateService, engineProvider, packager, archiveStore, progressBroker, validate, logger)
	rosterService := service.NewRosterService(studentRepo, gradeRepo, commentRepo, validate, logger)
	seedService := service.NewSeedService(studentRepo, gradeRepo, commentRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExportHandler:   handler.NewExportHandler(exportService, logger),
		ProgressHandler: handler.NewProgressHandler(progressBroker, logger),
		TemplateHandler: handler.NewTemplateHandler(templateService, logger),
		RosterHandler:   handler.NewRosterHandler(rosterService, logger),
		SeedHandler:     handler.NewSeedHandler(seedService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
