package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vuttr/internal/apperrors"
	"vuttr/internal/config"
	"vuttr/internal/handlers"
	"vuttr/internal/middleware"
	"vuttr/internal/models"
	"vuttr/internal/repositories"
	"vuttr/internal/services"
	"vuttr/pkg/mailer"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		// Supervisor restarts the process; no in-process retry.
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Tool{}, &models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Mailer ---
	var mail mailer.Mailer
	amqpMailer, err := mailer.NewAMQPMailer(mailer.Config{URL: cfg.AMQPURL})
	if err != nil {
		if cfg.AppEnv == "production" {
			log.Fatalf("Failed to initialize mailer: %v", err)
		}
		log.Printf("Mailer unavailable (%v), falling back to log-only mailer", err)
		mail = mailer.LogMailer{}
	} else {
		defer amqpMailer.Close()
		mail = amqpMailer
		if cfg.AppEnv != "production" {
			// No separate mail worker runs in development, so drain the
			// queue in process and log each delivery.
			err := amqpMailer.ConsumeMail(func(msg mailer.Message) error {
				log.Printf("mail delivered: template=%s to=%s", msg.Template, msg.To)
				return nil
			})
			if err != nil {
				log.Printf("Failed to start in-process mail consumer: %v", err)
			}
		}
	}

	// --- Repositories ---
	toolRepo := repositories.NewGormRepository[models.Tool](db)
	userResourceRepo := repositories.NewGormRepository[models.User](db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	toolService := services.NewResourceService[models.Tool](toolRepo)
	userResourceService := services.NewResourceService[models.User](userResourceRepo)
	authService := services.NewAuthService(userRepo, mail, cfg.JWTSecret, cfg.JWTExpiresIn, cfg.PasswordResetTTL)
	userService := services.NewUserService(userRepo)

	// --- Handlers ---
	toolHandler := handlers.NewToolHandler(toolService)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService, userResourceService)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.Handler(cfg.Verbose()),
	})

	app.Use(logger.New())

	// --- Routes ---
	protect := middleware.Protect(authService)
	writerOnly := middleware.RestrictTo(models.RoleWriter)

	toolHandler.RegisterRoutes(app, protect, writerOnly)
	authHandler.RegisterRoutes(app, protect)
	userHandler.RegisterRoutes(app, protect, writerOnly)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Unknown paths resolve through the boundary translator too.
	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NotFound("Can't find " + c.OriginalURL() + " on this server")
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
