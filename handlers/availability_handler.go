package handlers

import (
	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/gofiber/fiber/v2"
)

type SlotRequest struct {
	DayOfWeek   *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
	EndTime     string `json:"end_time" validate:"required,hhmm"`
	IsAvailable *bool  `json:"is_available"`
}

type ReplaceAvailabilityRequest struct {
	Slots []SlotRequest `json:"slots" validate:"max=200,dive"`
}

// ReplaceMyAvailability swaps the caller's whole weekly grid. Omitting
// is_available means the slot is available.
func (h *Handler) ReplaceMyAvailability(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ReplaceAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	slots := make([]models.AvailabilitySlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		available := true
		if s.IsAvailable != nil {
			available = *s.IsAvailable
		}
		slots = append(slots, models.AvailabilitySlot{
			DayOfWeek:   *s.DayOfWeek,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: available,
		})
	}

	saved, err := h.Availability.ReplaceGrid(c.UserContext(), user.UserID, user.Role, slots)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

func (h *Handler) GetMyAvailability(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	slots, err := h.Availability.Grid(c.UserContext(), user.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slots)
}

func (h *Handler) GetOverlap(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	counterpartID, ok := uuidParam(c, "counterpartId")
	if !ok {
		return badRequest(c, "Invalid counterpart ID")
	}

	overlap, err := h.Availability.OverlapWith(c.UserContext(), user.UserID, user.Role, counterpartID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"days": overlap})
}
