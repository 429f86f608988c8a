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
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/config"
	"github.com/exambel/exambel-api/internal/database"
	"github.com/exambel/exambel-api/internal/handler"
	"github.com/exambel/exambel-api/internal/identity"
	"github.com/exambel/exambel-api/internal/middleware"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
	"github.com/exambel/exambel-api/internal/router"
	"github.com/exambel/exambel-api/internal/service"
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

	if err := db.AutoMigrate(
		&identity.Credential{},
		&models.Account{},
		&models.AdminGrant{},
		&models.Class{},
		&models.Student{},
		&models.Exam{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional: a single node works without the bridge.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(natsConn, cfg.RealtimeSubject, uuid.NewString(), logger)
	if err := hub.Start(ctx); err != nil {
		log.Fatalf("failed to start realtime hub: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	accountRepo := repository.NewAccountRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	identityStore := identity.NewLocalStore(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(accountRepo, identityStore, activityService, hub, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	adminTeacherService := service.NewAdminTeacherService(accountRepo, classRepo, studentRepo, examRepo, activityService, hub, redisClient, cfg.OverviewCacheTTL, validate, logger)
	classService := service.NewClassService(classRepo, hub, validate, logger)
	studentService := service.NewStudentService(studentRepo, classRepo, hub, validate, logger)
	examService := service.NewExamService(examRepo, classRepo, hub, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		AdminTeacherHandler: handler.NewAdminTeacherHandler(adminTeacherService, logger),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		ClassHandler:        handler.NewClassHandler(classService, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		ExamHandler:         handler.NewExamHandler(examService, logger),
		RealtimeHandler:     handler.NewRealtimeHandler(hub, logger),
		Accounts:            accountRepo,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
