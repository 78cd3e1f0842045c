package routes

import (
	"github.com/anjiri1684/lesson_ledger/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Get("/tutors/:tutorId/stats", h.GetTutorStats)
	api.Get("/tutors/:tutorId/heatmap", h.GetTutorHeatmap)
}
