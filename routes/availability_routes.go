package routes

import (
	"github.com/anjiri1684/lesson_ledger/handlers"
	"github.com/anjiri1684/lesson_ledger/middleware"
	"github.com/gofiber/fiber/v2"
)

func AvailabilityRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	availability := api.Group("/availability", middleware.Protected(h.JWTSecret))
	availability.Get("/me", h.GetMyAvailability)
	availability.Put("/me", h.ReplaceMyAvailability)
	availability.Get("/overlap/:counterpartId", h.GetOverlap)
}
