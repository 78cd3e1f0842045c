package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/anjiri1684/lesson_ledger/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityStore interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ReplaceSlots(ctx context.Context, ownerID uuid.UUID, role string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error)
	SlotsForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AvailabilitySlot, error)
}

type AvailabilityService struct {
	store AvailabilityStore
}

func NewAvailabilityService(store AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// ReplaceGrid validates every slot before swapping out the owner's whole week.
// One bad slot rejects the lot. Times are stored as canonical "HH:MM".
func (s *AvailabilityService) ReplaceGrid(ctx context.Context, ownerID uuid.UUID, role string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	const op = "services.ReplaceGrid"

	if role != models.RoleTutor && role != models.RoleParent {
		return nil, fmt.Errorf("%s: role %q has no availability: %w", op, role, ErrForbiddenRelationship)
	}
	normalized := make([]models.AvailabilitySlot, len(slots))
	for i, slot := range slots {
		start, end, err := validateSlot(slot)
		if err != nil {
			return nil, fmt.Errorf("%s: slot %d: %w", op, i, err)
		}
		slot.StartTime, slot.EndTime = utils.FormatClock(start), utils.FormatClock(end)
		normalized[i] = slot
	}

	saved, err := s.store.ReplaceSlots(ctx, ownerID, role, normalized)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Printf("✅ Availability replaced for %s %s (%d slots)", role, ownerID, len(saved))
	return saved, nil
}

func (s *AvailabilityService) Grid(ctx context.Context, ownerID uuid.UUID) ([]models.AvailabilitySlot, error) {
	slots, err := s.store.SlotsForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("services.Grid: %w", err)
	}
	return slots, nil
}

// OverlapWith intersects the caller's grid with a counterpart of the opposite
// role. The tutor's slots are always passed first.
func (s *AvailabilityService) OverlapWith(ctx context.Context, actorID uuid.UUID, role string, counterpartID uuid.UUID) (WeeklyOverlap, error) {
	const op = "services.OverlapWith"

	counterpart, err := s.store.FindUser(ctx, counterpartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WeeklyOverlap{}, fmt.Errorf("%s: user %s: %w", op, counterpartID, ErrNotFound)
		}
		return WeeklyOverlap{}, fmt.Errorf("%s: %w", op, err)
	}

	var tutorID, parentID uuid.UUID
	switch {
	case role == models.RoleTutor && counterpart.Role == models.RoleParent:
		tutorID, parentID = actorID, counterpartID
	case role == models.RoleParent && counterpart.Role == models.RoleTutor:
		tutorID, parentID = counterpartID, actorID
	default:
		return WeeklyOverlap{}, fmt.Errorf("%s: %s cannot match with %s: %w", op, role, counterpart.Role, ErrForbiddenRelationship)
	}

	tutorSlots, err := s.store.SlotsForOwner(ctx, tutorID)
	if err != nil {
		return WeeklyOverlap{}, fmt.Errorf("%s: tutor slots: %w", op, err)
	}
	parentSlots, err := s.store.SlotsForOwner(ctx, parentID)
	if err != nil {
		return WeeklyOverlap{}, fmt.Errorf("%s: parent slots: %w", op, err)
	}
	return ComputeOverlap(tutorSlots, parentSlots), nil
}

func validateSlot(slot models.AvailabilitySlot) (start, end int, err error) {
	if slot.DayOfWeek < 0 || slot.DayOfWeek >= DaysPerWeek {
		return 0, 0, fmt.Errorf("day_of_week %d: %w", slot.DayOfWeek, ErrInvalidTimeRange)
	}
	if start, err = utils.ParseHHMM(slot.StartTime); err != nil {
		return 0, 0, fmt.Errorf("%v: %w", err, ErrInvalidTimeRange)
	}
	if end, err = utils.ParseHHMM(slot.EndTime); err != nil {
		return 0, 0, fmt.Errorf("%v: %w", err, ErrInvalidTimeRange)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%s-%s: %w", slot.StartTime, slot.EndTime, ErrInvalidTimeRange)
	}
	return start, end, nil
}
