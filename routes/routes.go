package routes

import (
	"github.com/gofiber/fiber/v2"

	"campusgpt-backend/controllers"
)

type Handlers struct {
	Auth  *controllers.AuthController
	Query *controllers.QueryController
	User  *controllers.UserController
}

// Register wires all HTTP routes. gate is the auth middleware guarding the
// protected group.
func Register(app *fiber.App, h Handlers, gate fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "CampusGPT API is running",
		})
	})

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/signup", h.Auth.Signup)
	api.Post("/login", h.Auth.Login)

	// Protected endpoints (JWT auth + user liveness)
	protected := api.Group("")
	protected.Use(gate)

	protected.Post("/query", h.Query.Submit)
	protected.Get("/history", h.Query.History)
	protected.Get("/user", h.User.Profile)
	protected.Post("/logout", h.Auth.Logout)
}
