package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/api"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/config"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/events"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/jwt"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/repository"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/service"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/tracing"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/weatherstack"
	_ "github.com/chandrakanthc072-pixel/weather-monitoring-system/migrations"
)

const serviceName = "weather-service"

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables")
	}

	api.SetupGlobalHandler(serviceName)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracer, err := tracing.InitTracerProvider(serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg)
		return
	}

	db := connectDB(cfg)
	defer db.Close()

	eventPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	userRepo := repository.NewPostgresUserRepository(db)
	historyRepo := repository.NewPostgresHistoryRepository(db)

	tokenManager := jwt.NewManager(cfg.JWTSecret)
	weatherClient := weatherstack.NewClient(cfg)

	authService := service.NewAuthService(userRepo, tokenManager, eventPublisher)
	weatherService := service.NewWeatherService(weatherClient, historyRepo, eventPublisher)
	historyService := service.NewHistoryService(historyRepo)

	authHandler := api.NewAuthHandler(authService, cfg.Env)
	weatherHandler := api.NewWeatherHandler(weatherService, historyService)
	adminHandler := api.NewAdminHandler(authService, historyService)

	authRequired := api.AuthMiddleware(tokenManager, authService)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": serviceName})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	root := app.Group("/api")

	authRoutes := root.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authRequired, authHandler.Logout)
	authRoutes.Get("/me", authRequired, authHandler.Me)

	weatherRoutes := root.Group("/weather", authRequired)
	// history routes are registered before /:city so they match first
	weatherRoutes.Get("/history", weatherHandler.History)
	weatherRoutes.Delete("/history/all", weatherHandler.ClearHistory)
	weatherRoutes.Delete("/history/:id", weatherHandler.DeleteHistoryItem)
	weatherRoutes.Get("/:city", weatherHandler.Get)

	adminRoutes := root.Group("/admin", authRequired, api.RequireRole(model.RoleAdmin))
	adminRoutes.Get("/users", adminHandler.Users)
	adminRoutes.Get("/all-history", adminHandler.AllHistory)
	adminRoutes.Delete("/history/:id", adminHandler.DeleteHistoryItem)

	log.Printf("Listening %s on port %s", serviceName, cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations(cfg *config.Config) {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
