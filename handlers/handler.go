package handlers

import (
	"errors"
	"log"

	"github.com/anjiri1684/lesson_ledger/middleware"
	"github.com/anjiri1684/lesson_ledger/services"
	"github.com/anjiri1684/lesson_ledger/utils"
	"github.com/anjiri1684/lesson_ledger/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// hhmm accepts "HH:MM" wall-clock times, including "24:00".
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseHHMM(fl.Field().String())
		return err == nil
	})
	return v
}

type Handler struct {
	Lessons      *services.LessonService
	Stats        *services.StatsService
	Availability *services.AvailabilityService
	Hub          *websocket.Hub
	JWTSecret    string
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrInvalidTimeRange, fiber.StatusBadRequest, "invalid_time_range"},
	{services.ErrForbiddenRelationship, fiber.StatusForbidden, "forbidden_relationship"},
	{services.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{services.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition"},
	{services.ErrAlreadyConfirmed, fiber.StatusConflict, "already_confirmed"},
}

// respondError turns a service error into its HTTP status. Anything without a
// mapping is logged and reported as a 500 without internal detail.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(fiber.Map{"error": m.err.Error(), "code": m.code})
		}
	}

	log.Printf("🔥 %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error", "code": "internal_error"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message, "code": "bad_request"})
}

func currentUser(c *fiber.Ctx) (middleware.Identity, error) {
	identity, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.Identity{}, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "code": "unauthorized"})
	}
	return identity, nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
