package handlers

import "github.com/gofiber/fiber/v2"

// GetDisputedLessons feeds the manual review queue. Disputes are resolved
// outside this API.
func (h *Handler) GetDisputedLessons(c *fiber.Ctx) error {
	lessons, err := h.Lessons.Disputes(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lessons)
}
