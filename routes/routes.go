package routes

import (
	"github.com/anjiri1684/lesson_ledger/handlers"
	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	PublicRoutes(app, h)
	LessonRoutes(app, h)
	AvailabilityRoutes(app, h)
	AdminRoutes(app, h)
	EventRoutes(app, h)
}
