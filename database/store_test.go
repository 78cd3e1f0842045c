package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lessons.db")
	db, err := Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedLesson(t *testing.T, store *Store, db *gorm.DB) *models.Lesson {
	t.Helper()

	student := models.Student{TutorID: uuid.New(), ParentID: uuid.New(), FullName: "Amani", IsActive: true}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	start := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	lesson := &models.Lesson{
		TutorID:        student.TutorID,
		StudentID:      student.ID,
		ScheduledStart: start,
		ScheduledEnd:   start.Add(90 * time.Minute),
		Status:         models.LessonScheduled,
	}
	if err := store.CreateLesson(context.Background(), lesson); err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return lesson
}

func TestCreateLessonCreatesUnconfirmedConfirmation(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	lesson := seedLesson(t, store, db)

	got, err := store.GetLesson(context.Background(), lesson.ID)
	if err != nil {
		t.Fatalf("get lesson: %v", err)
	}
	if got.Confirmation == nil {
		t.Fatal("expected confirmation row")
	}
	if got.Confirmation.FinalStatus != models.ConfirmationUnconfirmed {
		t.Fatalf("expected unconfirmed, got %s", got.Confirmation.FinalStatus)
	}
	if got.Confirmation.ParentConfirmed != nil {
		t.Fatal("expected parent_confirmed to be unset")
	}
	if got.Student == nil || got.Student.ID != lesson.StudentID {
		t.Fatal("expected student to be preloaded")
	}
}

func TestSecondConfirmationForLessonFails(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	lesson := seedLesson(t, store, db)

	dup := models.LessonConfirmation{LessonID: lesson.ID, FinalStatus: models.ConfirmationUnconfirmed}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("expected unique violation for a second confirmation row")
	}

	var count int64
	db.Model(&models.LessonConfirmation{}).Where("lesson_id = ?", lesson.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 confirmation row, got %d", count)
	}
}

func TestCompleteLessonOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	lesson := seedLesson(t, store, db)
	ctx := context.Background()

	first := time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)
	applied, err := store.CompleteLesson(ctx, lesson.ID, first)
	if err != nil || !applied {
		t.Fatalf("expected first completion to apply, got %v %v", applied, err)
	}

	applied, err = store.CompleteLesson(ctx, lesson.ID, first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if applied {
		t.Fatal("expected second completion to be rejected")
	}

	got, _ := store.GetLesson(ctx, lesson.ID)
	if got.Status != models.LessonCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !got.Confirmation.TutorConfirmed || got.Confirmation.TutorConfirmedAt == nil {
		t.Fatal("expected tutor confirmation to be recorded")
	}
	if !got.Confirmation.TutorConfirmedAt.Equal(first) {
		t.Fatalf("expected first timestamp %s, got %s", first, got.Confirmation.TutorConfirmedAt)
	}
}

func TestCompleteLessonWithoutConfirmationRollsBack(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	lesson := seedLesson(t, store, db)
	ctx := context.Background()

	if err := db.Where("lesson_id = ?", lesson.ID).Delete(&models.LessonConfirmation{}).Error; err != nil {
		t.Fatalf("delete confirmation: %v", err)
	}

	_, err := store.CompleteLesson(ctx, lesson.ID, time.Now())
	if err != ErrConfirmationMissing {
		t.Fatalf("expected ErrConfirmationMissing, got %v", err)
	}

	got, _ := store.GetLesson(ctx, lesson.ID)
	if got.Status != models.LessonScheduled {
		t.Fatalf("expected status rollback to scheduled, got %s", got.Status)
	}
}

func TestConfirmLessonRequiresCompletedAndUnset(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	lesson := seedLesson(t, store, db)
	ctx := context.Background()
	now := time.Now()

	applied, err := store.ConfirmLesson(ctx, lesson.ID, true, nil, now)
	if err != nil {
		t.Fatalf("confirm scheduled: %v", err)
	}
	if applied {
		t.Fatal("expected confirmation of a scheduled lesson to be rejected")
	}

	if _, err := store.CompleteLesson(ctx, lesson.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	note := "tutor did not show"
	applied, err = store.ConfirmLesson(ctx, lesson.ID, false, &note, now)
	if err != nil || !applied {
		t.Fatalf("expected dispute to apply, got %v %v", applied, err)
	}

	applied, err = store.ConfirmLesson(ctx, lesson.ID, true, nil, now)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if applied {
		t.Fatal("expected second verdict to be rejected")
	}

	got, _ := store.GetLesson(ctx, lesson.ID)
	c := got.Confirmation
	if c.ParentConfirmed == nil || *c.ParentConfirmed {
		t.Fatal("expected parent_confirmed=false")
	}
	if c.FinalStatus != models.ConfirmationDisputed {
		t.Fatalf("expected disputed, got %s", c.FinalStatus)
	}
	if c.DisputeNote == nil || *c.DisputeNote != note {
		t.Fatalf("expected dispute note %q, got %v", note, c.DisputeNote)
	}
}

func TestCancelLessonOnlyFromScheduled(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	lesson := seedLesson(t, store, db)
	ctx := context.Background()

	applied, err := store.CancelLesson(ctx, lesson.ID, time.Now())
	if err != nil || !applied {
		t.Fatalf("expected cancel to apply, got %v %v", applied, err)
	}
	applied, _ = store.CancelLesson(ctx, lesson.ID, time.Now())
	if applied {
		t.Fatal("expected second cancel to be rejected")
	}
	applied, _ = store.CompleteLesson(ctx, lesson.ID, time.Now())
	if applied {
		t.Fatal("expected completion of a cancelled lesson to be rejected")
	}
}

func TestLessonsForParentAndDisputes(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	lesson := seedLesson(t, store, db)
	seedLesson(t, store, db)

	student, err := store.FindStudent(ctx, lesson.StudentID)
	if err != nil {
		t.Fatalf("find student: %v", err)
	}

	got, err := store.LessonsForParent(ctx, student.ParentID)
	if err != nil {
		t.Fatalf("lessons for parent: %v", err)
	}
	if len(got) != 1 || got[0].ID != lesson.ID {
		t.Fatalf("expected only the parent's lesson, got %d lessons", len(got))
	}

	store.CompleteLesson(ctx, lesson.ID, time.Now())
	store.ConfirmLesson(ctx, lesson.ID, false, nil, time.Now())

	disputes, err := store.DisputedLessons(ctx)
	if err != nil {
		t.Fatalf("disputed lessons: %v", err)
	}
	if len(disputes) != 1 || disputes[0].ID != lesson.ID {
		t.Fatalf("expected one disputed lesson, got %d", len(disputes))
	}
}

func TestReminderWindows(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	lesson := seedLesson(t, store, db)

	end := lesson.ScheduledEnd
	got, err := store.ScheduledLessonsEndedBetween(ctx, end.Add(-time.Minute), end)
	if err != nil {
		t.Fatalf("scheduled window: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected lesson in window, got %d", len(got))
	}
	got, _ = store.ScheduledLessonsEndedBetween(ctx, end, end.Add(time.Minute))
	if len(got) != 0 {
		t.Fatalf("expected window to exclude its lower bound, got %d", len(got))
	}

	completedAt := end.Add(10 * time.Minute)
	store.CompleteLesson(ctx, lesson.ID, completedAt)

	got, err = store.UnconfirmedLessonsCompletedBetween(ctx, completedAt.Add(-time.Minute), completedAt)
	if err != nil {
		t.Fatalf("unconfirmed window: %v", err)
	}
	if len(got) != 1 || got[0].Student == nil {
		t.Fatalf("expected unconfirmed lesson with student, got %d", len(got))
	}

	store.ConfirmLesson(ctx, lesson.ID, true, nil, completedAt)
	got, _ = store.UnconfirmedLessonsCompletedBetween(ctx, completedAt.Add(-time.Minute), completedAt)
	if len(got) != 0 {
		t.Fatalf("expected confirmed lesson to leave the reminder set, got %d", len(got))
	}
}

func TestReplaceSlotsSwapsWholeGrid(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	owner := uuid.New()

	first := []models.AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00", IsAvailable: true},
	}
	if _, err := store.ReplaceSlots(ctx, owner, models.RoleTutor, first); err != nil {
		t.Fatalf("replace: %v", err)
	}

	second := []models.AvailabilitySlot{{DayOfWeek: 3, StartTime: "13:00", EndTime: "14:00", IsAvailable: true}}
	if _, err := store.ReplaceSlots(ctx, owner, models.RoleTutor, second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	slots, err := store.SlotsForOwner(ctx, owner)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 1 || slots[0].DayOfWeek != 3 {
		t.Fatalf("expected only the new grid, got %+v", slots)
	}
	if slots[0].OwnerRole != models.RoleTutor {
		t.Fatalf("expected owner role tutor, got %s", slots[0].OwnerRole)
	}
}
