package database

import (
	"context"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
)

func (s *Store) FindStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *Store) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CountActiveStudents(ctx context.Context, tutorID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Student{}).
		Where("tutor_id = ? AND is_active = ?", tutorID, true).
		Count(&count).Error
	return count, err
}

func (s *Store) PublicRatings(ctx context.Context, tutorID uuid.UUID) ([]int, error) {
	var ratings []int
	err := s.db.WithContext(ctx).Model(&models.Testimonial{}).
		Where("tutor_id = ? AND is_public = ?", tutorID, true).
		Pluck("rating", &ratings).Error
	return ratings, err
}
