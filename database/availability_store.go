package database

import (
	"context"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReplaceSlots swaps an owner's whole weekly grid for slots. Grids are never
// patched slot by slot.
func (s *Store) ReplaceSlots(ctx context.Context, ownerID uuid.UUID, role string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&models.AvailabilitySlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}

		for i := range slots {
			slots[i].ID = uuid.Nil
			slots[i].OwnerID = ownerID
			slots[i].OwnerRole = role
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *Store) SlotsForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("day_of_week asc, start_time asc").
		Find(&slots).Error
	return slots, err
}
