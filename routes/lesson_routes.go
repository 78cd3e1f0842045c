package routes

import (
	"github.com/anjiri1684/lesson_ledger/handlers"
	"github.com/anjiri1684/lesson_ledger/middleware"
	"github.com/gofiber/fiber/v2"
)

func LessonRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	protected := middleware.Protected(h.JWTSecret)

	lessons := api.Group("/lessons", protected)
	lessons.Post("", middleware.TutorRequired(), h.ScheduleLesson)
	lessons.Get("/:lessonId", h.GetLesson)
	lessons.Post("/:lessonId/complete", middleware.TutorRequired(), h.CompleteLesson)
	lessons.Post("/:lessonId/cancel", h.CancelLesson)
	lessons.Post("/:lessonId/confirm", middleware.ParentRequired(), h.ConfirmLesson)

	// Registered per route: a "/tutor" group would also match "/tutors/...".
	api.Get("/tutor/lessons", protected, middleware.TutorRequired(), h.GetTutorLessons)
	api.Get("/parent/lessons", protected, middleware.ParentRequired(), h.GetParentLessons)
	api.Get("/students/:studentId/progress", protected, h.GetStudentProgress)
}
