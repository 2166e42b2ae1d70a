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

	"github.com/aoisorajuku/seiseki-api/internal/config"
	"github.com/aoisorajuku/seiseki-api/internal/database"
	"github.com/aoisorajuku/seiseki-api/internal/handler"
	"github.com/aoisorajuku/seiseki-api/internal/middleware"
	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
	"github.com/aoisorajuku/seiseki-api/internal/router"
	"github.com/aoisorajuku/seiseki-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.ImportRecord{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	staticDocs := repository.NewStaticDocuments(cfg.DataDir, logger)
	recordRepo := repository.NewRecordRepository(redisClient, staticDocs, logger)
	importLogRepo := repository.NewImportLogRepository(db)

	importService := service.NewImportService(recordRepo, importLogRepo, cfg.DefaultClassID, cfg.UploadMaxMB, logger)
	dashboardService := service.NewDashboardService(recordRepo, redisClient, cfg.DashboardCacheTTL, logger)
	studentService := service.NewStudentService(recordRepo, logger)
	gradeService := service.NewGradeService(recordRepo, validate, logger)

	importHandler := handler.NewImportHandler(importService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	gradeHandler := handler.NewGradeHandler(gradeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ImportHandler:    importHandler,
		DashboardHandler: dashboardHandler,
		StudentHandler:   studentHandler,
		GradeHandler:     gradeHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
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
