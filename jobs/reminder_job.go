package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/robfig/cron/v3"
)

// DefaultWindow is how far back each run looks until Schedule derives the
// window from the cron interval. Window and interval must match so every
// lesson falls into exactly one run.
const DefaultWindow = 5 * time.Minute

const maxProbeTicks = 20000

var probeStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type LessonFinder interface {
	ScheduledLessonsEndedBetween(ctx context.Context, from, to time.Time) ([]models.Lesson, error)
	UnconfirmedLessonsCompletedBetween(ctx context.Context, from, to time.Time) ([]models.Lesson, error)
}

type Reminder interface {
	RemindCompletion(ctx context.Context, lesson models.Lesson) error
	RemindConfirmation(ctx context.Context, lesson models.Lesson) error
}

// Claimer stops two instances from sending the same reminder.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Reminders only ever sends emails. It never changes a lesson's status or
// confirmation, so a missed reminder cannot affect statistics.
type Reminders struct {
	lessons           LessonFinder
	notify            Reminder
	claims            Claimer
	completionAfter   time.Duration
	confirmationAfter time.Duration
	window            time.Duration
	now               func() time.Time
}

type Option func(*Reminders)

func WithClaimer(c Claimer) Option {
	return func(r *Reminders) {
		r.claims = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reminders) {
		r.now = now
	}
}

func NewReminders(lessons LessonFinder, notify Reminder, completionAfter, confirmationAfter time.Duration, opts ...Option) *Reminders {
	r := &Reminders{
		lessons:           lessons,
		notify:            notify,
		completionAfter:   completionAfter,
		confirmationAfter: confirmationAfter,
		window:            DefaultWindow,
		now:               time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Reminders) Window() time.Duration {
	return r.window
}

// Schedule registers both reminder runs on c and sizes the look-back window
// to the schedule's interval. Schedules that fire at uneven intervals are
// rejected.
func (r *Reminders) Schedule(c *cron.Cron, spec string) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("jobs.Schedule: %w", err)
	}
	interval, err := fixedInterval(sched)
	if err != nil {
		return fmt.Errorf("jobs.Schedule: %q: %w", spec, err)
	}
	r.window = interval

	if _, err := c.AddFunc(spec, r.runCompletion); err != nil {
		return fmt.Errorf("jobs.Schedule: completion reminders: %w", err)
	}
	if _, err := c.AddFunc(spec, r.runConfirmation); err != nil {
		return fmt.Errorf("jobs.Schedule: confirmation reminders: %w", err)
	}
	return nil
}

func fixedInterval(sched cron.Schedule) (time.Duration, error) {
	t := sched.Next(probeStart)
	if t.IsZero() {
		return 0, errors.New("schedule never fires")
	}
	end := t.Add(8 * 24 * time.Hour)

	var interval time.Duration
	for i := 0; i < maxProbeTicks && t.Before(end); i++ {
		next := sched.Next(t)
		if next.IsZero() {
			return 0, errors.New("schedule stops firing")
		}
		gap := next.Sub(t)
		if interval == 0 {
			interval = gap
		} else if gap != interval {
			return 0, fmt.Errorf("fires at uneven intervals (%s then %s)", interval, gap)
		}
		t = next
	}
	return interval, nil
}

func (r *Reminders) runCompletion() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := r.RemindCompletions(ctx); err != nil {
		log.Printf("🔥 Completion reminder job failed: %v", err)
	}
}

func (r *Reminders) runConfirmation() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := r.RemindConfirmations(ctx); err != nil {
		log.Printf("🔥 Confirmation reminder job failed: %v", err)
	}
}

// RemindCompletions emails tutors whose lesson ended completionAfter ago and
// is still scheduled.
func (r *Reminders) RemindCompletions(ctx context.Context) (int, error) {
	log.Println("Running job: RemindCompletions...")

	to := r.now().Add(-r.completionAfter)
	lessons, err := r.lessons.ScheduledLessonsEndedBetween(ctx, to.Add(-r.window), to)
	if err != nil {
		return 0, fmt.Errorf("jobs.RemindCompletions: %w", err)
	}
	return r.remind(ctx, "completion", lessons, r.notify.RemindCompletion), nil
}

// RemindConfirmations emails parents who have left a completed lesson
// unanswered for confirmationAfter.
func (r *Reminders) RemindConfirmations(ctx context.Context) (int, error) {
	log.Println("Running job: RemindConfirmations...")

	to := r.now().Add(-r.confirmationAfter)
	lessons, err := r.lessons.UnconfirmedLessonsCompletedBetween(ctx, to.Add(-r.window), to)
	if err != nil {
		return 0, fmt.Errorf("jobs.RemindConfirmations: %w", err)
	}
	return r.remind(ctx, "confirmation", lessons, r.notify.RemindConfirmation), nil
}

func (r *Reminders) remind(ctx context.Context, kind string, lessons []models.Lesson, send func(context.Context, models.Lesson) error) int {
	sent := 0
	for _, lesson := range lessons {
		if r.claims != nil {
			won, err := r.claims.Claim(ctx, fmt.Sprintf("%s:%s", kind, lesson.ID), 2*r.window)
			if err != nil {
				log.Printf("⚠️ Could not claim %s reminder for lesson %s: %v", kind, lesson.ID, err)
			} else if !won {
				continue
			}
		}

		log.Printf("Sending %s reminder for lesson ID: %s", kind, lesson.ID)
		if err := send(ctx, lesson); err != nil {
			log.Printf("🔥 Failed %s reminder for lesson %s: %v", kind, lesson.ID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("Sent %d %s reminder(s).", sent, kind)
	}
	return sent
}
