package handlers

import (
	"time"

	"github.com/anjiri1684/lesson_ledger/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ScheduleLessonRequest struct {
	StudentID      string  `json:"student_id" validate:"required,uuid"`
	ScheduledStart string  `json:"scheduled_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ScheduledEnd   string  `json:"scheduled_end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

type ConfirmLessonRequest struct {
	Confirmed   *bool   `json:"confirmed" validate:"required"`
	DisputeNote *string `json:"dispute_note" validate:"omitempty,max=2000"`
}

func (h *Handler) ScheduleLesson(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ScheduleLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	studentID, _ := uuid.Parse(req.StudentID)
	start, _ := time.Parse(time.RFC3339, req.ScheduledStart)
	end, _ := time.Parse(time.RFC3339, req.ScheduledEnd)

	lesson, err := h.Lessons.ScheduleLesson(c.UserContext(), services.ScheduleLessonInput{
		TutorID:   user.UserID,
		StudentID: studentID,
		Start:     start,
		End:       end,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *Handler) GetLesson(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	lessonID, ok := uuidParam(c, "lessonId")
	if !ok {
		return badRequest(c, "Invalid lesson ID")
	}

	lesson, err := h.Lessons.GetLesson(c.UserContext(), user.UserID, user.Role, lessonID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lesson)
}

func (h *Handler) CompleteLesson(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	lessonID, ok := uuidParam(c, "lessonId")
	if !ok {
		return badRequest(c, "Invalid lesson ID")
	}

	lesson, err := h.Lessons.MarkCompleted(c.UserContext(), user.UserID, lessonID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lesson)
}

func (h *Handler) CancelLesson(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	lessonID, ok := uuidParam(c, "lessonId")
	if !ok {
		return badRequest(c, "Invalid lesson ID")
	}

	lesson, err := h.Lessons.CancelLesson(c.UserContext(), user.UserID, lessonID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lesson)
}

func (h *Handler) ConfirmLesson(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	lessonID, ok := uuidParam(c, "lessonId")
	if !ok {
		return badRequest(c, "Invalid lesson ID")
	}

	var req ConfirmLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	lesson, err := h.Lessons.ConfirmByParent(c.UserContext(), user.UserID, lessonID, *req.Confirmed, req.DisputeNote)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lesson)
}

func (h *Handler) GetTutorLessons(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	lessons, err := h.Lessons.TutorLessons(c.UserContext(), user.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lessons)
}

func (h *Handler) GetParentLessons(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	lessons, err := h.Lessons.ParentLessons(c.UserContext(), user.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lessons)
}
