package routes

import (
	"github.com/anjiri1684/lesson_ledger/handlers"
	"github.com/anjiri1684/lesson_ledger/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(h.JWTSecret), middleware.AdminRequired())
	admin.Get("/disputes", h.GetDisputedLessons)
}
