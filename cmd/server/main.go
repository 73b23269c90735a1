package main

import (
	"context"
	"errors"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/domain/fiber/handler"
	"github.com/fadilmartias/cert-verifier/internal/middleware"
	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/fadilmartias/cert-verifier/internal/repository"
	"github.com/fadilmartias/cert-verifier/internal/storage"
	"github.com/fadilmartias/cert-verifier/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log := logrus.WithField("app", "cert-verifier")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	if !appConfig.IsProduction() {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: appConfig.MaxUploadSize,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB(log)

	store, err := storage.Open(ctx, config.LoadStorageConfig())
	if err != nil {
		log.WithError(err).Fatal("could not open certificate storage")
	}

	studentRepo := repository.NewStudentRepository(db)
	studentUC := usecase.NewStudentUsecase(studentRepo, store)
	verifyUC := usecase.NewVerificationUsecaseFromConfig(config.LoadVerifierConfig(), log)

	handler.NewStudentHandler(studentUC, appConfig.MaxUploadSize).RegisterRoutes(app)
	handler.NewVerifyHandler(verifyUC, store, appConfig.MaxUploadSize).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debugf("Active goroutines: %d", runtime.NumGoroutine())
			}
		}
	}()

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.Infof("Server running on %s", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB(log *logrus.Entry) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(2)
		pgDB.SetMaxOpenConns(5)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(10)
		pgDB.SetMaxOpenConns(50)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.Student{}); err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
