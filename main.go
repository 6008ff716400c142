package main

import (
	"log/slog"
	"os"

	"campusgpt-backend/auth"
	"campusgpt-backend/clients"
	"campusgpt-backend/config"
	"campusgpt-backend/controllers"
	"campusgpt-backend/database"
	"campusgpt-backend/middlewares"
	"campusgpt-backend/routes"
	"campusgpt-backend/services"
	"campusgpt-backend/stores"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ---- Config (single source of env access)
	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// ---- Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	// ---- Stores, clients, services
	users := stores.NewUsers(db)
	sessions := stores.NewSessions(db, cfg.TokenTTL)
	queries := stores.NewQueries(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	responder := clients.NewResponder(cfg.ResponderURL, cfg.ResponderTimeout)

	authService := services.NewAuthService(users, sessions, tokens, cfg.BcryptCost, log)
	queryService := services.NewQueryService(queries, responder, log)
	userService := services.NewUserService(users, queries)

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.NewErrorHandler(log),
		BodyLimit:    cfg.BodyLimitBytes,
	})

	app.Use(middlewares.RequestLogger(log))

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	// ---- Global rate limiter (default KeyGenerator = client IP)
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	// ---- Routes
	routes.Register(app, routes.Handlers{
		Auth:  controllers.NewAuthController(authService),
		Query: controllers.NewQueryController(queryService),
		User:  controllers.NewUserController(userService),
	}, middlewares.AuthGate(tokens, users))

	// ---- Start
	log.Info("starting API server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
