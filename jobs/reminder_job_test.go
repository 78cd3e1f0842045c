package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anjiri1684/lesson_ledger/cache"
	"github.com/anjiri1684/lesson_ledger/database"
	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var now = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

type recordingReminder struct {
	completions   []uuid.UUID
	confirmations []uuid.UUID
}

func (r *recordingReminder) RemindCompletion(_ context.Context, lesson models.Lesson) error {
	r.completions = append(r.completions, lesson.ID)
	return nil
}

func (r *recordingReminder) RemindConfirmation(_ context.Context, lesson models.Lesson) error {
	r.confirmations = append(r.confirmations, lesson.ID)
	return nil
}

func newStore(t *testing.T) *database.Store {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "jobs.db")+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database.NewStore(db)
}

func lessonEndingAt(t *testing.T, store *database.Store, end time.Time) *models.Lesson {
	t.Helper()

	lesson := &models.Lesson{
		TutorID:        uuid.New(),
		StudentID:      uuid.New(),
		ScheduledStart: end.Add(-time.Hour),
		ScheduledEnd:   end,
		Status:         models.LessonScheduled,
	}
	if err := store.CreateLesson(context.Background(), lesson); err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return lesson
}

func TestRemindCompletionsUsesWindow(t *testing.T) {
	store := newStore(t)
	due := lessonEndingAt(t, store, now.Add(-time.Hour-2*time.Minute))
	lessonEndingAt(t, store, now.Add(-time.Hour-10*time.Minute))
	lessonEndingAt(t, store, now.Add(-30*time.Minute))

	reminder := &recordingReminder{}
	r := NewReminders(store, reminder, time.Hour, 24*time.Hour, WithClock(func() time.Time { return now }))

	sent, err := r.RemindCompletions(context.Background())
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if sent != 1 || len(reminder.completions) != 1 || reminder.completions[0] != due.ID {
		t.Fatalf("expected only lesson %s reminded, got %v", due.ID, reminder.completions)
	}

	got, err := store.GetLesson(context.Background(), due.ID)
	if err != nil {
		t.Fatalf("get lesson: %v", err)
	}
	if got.Status != models.LessonScheduled || got.Confirmation.FinalStatus != models.ConfirmationUnconfirmed {
		t.Fatalf("reminders must not change lesson state, got %s/%s", got.Status, got.Confirmation.FinalStatus)
	}
}

func TestRemindConfirmationsUsesWindow(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	waiting := lessonEndingAt(t, store, now.Add(-26*time.Hour))
	if _, err := store.CompleteLesson(ctx, waiting.ID, now.Add(-24*time.Hour-time.Minute)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	answered := lessonEndingAt(t, store, now.Add(-26*time.Hour))
	if _, err := store.CompleteLesson(ctx, answered.ID, now.Add(-24*time.Hour-time.Minute)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := store.ConfirmLesson(ctx, answered.ID, true, nil, now.Add(-time.Hour)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	reminder := &recordingReminder{}
	r := NewReminders(store, reminder, time.Hour, 24*time.Hour, WithClock(func() time.Time { return now }))

	sent, err := r.RemindConfirmations(ctx)
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if sent != 1 || reminder.confirmations[0] != waiting.ID {
		t.Fatalf("expected only lesson %s reminded, got %v", waiting.ID, reminder.confirmations)
	}
}

func TestClaimerPreventsDuplicateReminders(t *testing.T) {
	store := newStore(t)
	lessonEndingAt(t, store, now.Add(-time.Hour-time.Minute))

	mr := miniredis.RunT(t)
	client, err := cache.Connect(mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()
	lock := cache.NewReminderLock(client)

	clock := WithClock(func() time.Time { return now })
	first := &recordingReminder{}
	second := &recordingReminder{}
	a := NewReminders(store, first, time.Hour, 24*time.Hour, clock, WithClaimer(lock))
	b := NewReminders(store, second, time.Hour, 24*time.Hour, clock, WithClaimer(lock))

	if sent, _ := a.RemindCompletions(context.Background()); sent != 1 {
		t.Fatalf("expected first instance to send, got %d", sent)
	}
	if sent, _ := b.RemindCompletions(context.Background()); sent != 0 {
		t.Fatalf("expected second instance to skip, got %d", sent)
	}
}

func TestScheduleRegistersBothJobs(t *testing.T) {
	r := NewReminders(newStore(t), &recordingReminder{}, time.Hour, 24*time.Hour)

	c := cron.New()
	if err := r.Schedule(c, "*/5 * * * *"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(c.Entries()) != 2 {
		t.Fatalf("expected 2 cron entries, got %d", len(c.Entries()))
	}

	if err := r.Schedule(cron.New(), "not a spec"); err == nil {
		t.Fatal("expected invalid spec to fail")
	}
}

func TestScheduleSizesWindowToInterval(t *testing.T) {
	for spec, want := range map[string]time.Duration{
		"*/5 * * * *":  5 * time.Minute,
		"*/15 * * * *": 15 * time.Minute,
		"0 * * * *":    time.Hour,
		"@daily":       24 * time.Hour,
	} {
		r := NewReminders(newStore(t), &recordingReminder{}, time.Hour, 24*time.Hour)
		if err := r.Schedule(cron.New(), spec); err != nil {
			t.Fatalf("%s: schedule: %v", spec, err)
		}
		if r.Window() != want {
			t.Fatalf("%s: expected window %s, got %s", spec, want, r.Window())
		}
	}
}

func TestScheduleRejectsUnevenIntervals(t *testing.T) {
	for _, spec := range []string{"*/7 * * * *", "0 9,17 * * *", "0 9 * * 1-5"} {
		r := NewReminders(newStore(t), &recordingReminder{}, time.Hour, 24*time.Hour)
		c := cron.New()
		if err := r.Schedule(c, spec); err == nil {
			t.Fatalf("%s: expected uneven schedule to be rejected", spec)
		}
		if len(c.Entries()) != 0 {
			t.Fatalf("%s: expected no entries registered, got %d", spec, len(c.Entries()))
		}
		if r.Window() != DefaultWindow {
			t.Fatalf("%s: window changed to %s", spec, r.Window())
		}
	}
}

func TestWiderScheduleWidensLookBack(t *testing.T) {
	store := newStore(t)
	due := lessonEndingAt(t, store, now.Add(-time.Hour-12*time.Minute))
	lessonEndingAt(t, store, now.Add(-time.Hour-20*time.Minute))

	reminder := &recordingReminder{}
	r := NewReminders(store, reminder, time.Hour, 24*time.Hour, WithClock(func() time.Time { return now }))
	if err := r.Schedule(cron.New(), "*/15 * * * *"); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	sent, err := r.RemindCompletions(context.Background())
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if sent != 1 || reminder.completions[0] != due.ID {
		t.Fatalf("expected only lesson %s reminded, got %v", due.ID, reminder.completions)
	}
}
