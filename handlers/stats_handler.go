package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetTutorStats(c *fiber.Ctx) error {
	tutorID, ok := uuidParam(c, "tutorId")
	if !ok {
		return badRequest(c, "Invalid tutor ID")
	}

	stats, err := h.Stats.TutorStats(c.UserContext(), tutorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetTutorHeatmap returns the sparse {"2024-03-05": 2} map. Without ?year the
// tutor's current local year is used.
func (h *Handler) GetTutorHeatmap(c *fiber.Ctx) error {
	tutorID, ok := uuidParam(c, "tutorId")
	if !ok {
		return badRequest(c, "Invalid tutor ID")
	}

	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1970 || parsed > 9999 {
			return badRequest(c, "Invalid year")
		}
		year = parsed
	}

	heatmap, err := h.Stats.BuildHeatmap(c.UserContext(), tutorID, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(heatmap)
}

func (h *Handler) GetStudentProgress(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	studentID, ok := uuidParam(c, "studentId")
	if !ok {
		return badRequest(c, "Invalid student ID")
	}

	progress, err := h.Stats.StudentProgress(c.UserContext(), user.UserID, studentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(progress)
}
