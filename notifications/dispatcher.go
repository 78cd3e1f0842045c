package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/anjiri1684/lesson_ledger/services"
	"github.com/google/uuid"
)

type UserDirectory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Pusher delivers a payload to whichever recipients are connected right now.
type Pusher interface {
	Send(recipients []uuid.UUID, payload interface{})
}

// Dispatcher fans lesson events out to websocket clients and email. It
// implements services.EventPublisher.
type Dispatcher struct {
	users    UserDirectory
	mailer   Mailer
	pusher   Pusher
	location *time.Location
	spawn    func(func())
}

type DispatcherOption func(*Dispatcher)

func WithMailer(m Mailer) DispatcherOption {
	return func(d *Dispatcher) {
		d.mailer = m
	}
}

func WithPusher(p Pusher) DispatcherOption {
	return func(d *Dispatcher) {
		d.pusher = p
	}
}

// WithSpawn replaces the goroutine launcher used for emails.
func WithSpawn(spawn func(func())) DispatcherOption {
	return func(d *Dispatcher) {
		d.spawn = spawn
	}
}

func NewDispatcher(users UserDirectory, location *time.Location, opts ...DispatcherOption) *Dispatcher {
	if location == nil {
		location = time.UTC
	}
	d := &Dispatcher{
		users:    users,
		location: location,
		spawn:    func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *Dispatcher) Publish(event services.LessonEvent) {
	if d.pusher != nil {
		d.pusher.Send([]uuid.UUID{event.TutorID, event.ParentID}, event)
	}
	if d.mailer == nil {
		return
	}

	for _, recipientID := range emailRecipients(event) {
		recipientID := recipientID
		d.spawn(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			d.emailEvent(ctx, event, recipientID)
		})
	}
}

func emailRecipients(event services.LessonEvent) []uuid.UUID {
	switch event.Type {
	case services.EventLessonScheduled, services.EventLessonCompleted:
		return []uuid.UUID{event.ParentID}
	case services.EventLessonDisputed:
		return []uuid.UUID{event.TutorID}
	case services.EventLessonCancelled:
		return []uuid.UUID{event.TutorID, event.ParentID}
	default:
		return nil
	}
}

func (d *Dispatcher) emailEvent(ctx context.Context, event services.LessonEvent, recipientID uuid.UUID) {
	recipient, err := d.users.FindUser(ctx, recipientID)
	if err != nil {
		log.Printf("🔥 Failed to load recipient %s for %s: %v", recipientID, event.Type, err)
		return
	}
	msg, ok := eventEmail(event, recipient, d.location)
	if !ok {
		return
	}
	d.send(ctx, recipient, msg)
}

// RemindCompletion nudges the tutor of a lesson that ended but is still scheduled.
func (d *Dispatcher) RemindCompletion(ctx context.Context, lesson models.Lesson) error {
	recipient, err := d.users.FindUser(ctx, lesson.TutorID)
	if err != nil {
		return fmt.Errorf("notifications.RemindCompletion: %w", err)
	}
	return d.send(ctx, recipient, completionReminder(recipient, lesson, d.location))
}

// RemindConfirmation nudges the parent of a completed lesson with no verdict yet.
func (d *Dispatcher) RemindConfirmation(ctx context.Context, lesson models.Lesson) error {
	recipient, err := d.users.FindUser(ctx, lesson.ParentID())
	if err != nil {
		return fmt.Errorf("notifications.RemindConfirmation: %w", err)
	}
	return d.send(ctx, recipient, confirmationReminder(recipient, lesson, d.location))
}

func (d *Dispatcher) send(ctx context.Context, recipient *models.User, msg email) error {
	if d.mailer == nil {
		log.Println("Email client not initialized, skipping email send.")
		return nil
	}
	if err := d.mailer.Send(ctx, recipient.FullName, recipient.Email, msg.Subject, msg.HTML); err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", recipient.Email, err)
		return err
	}
	log.Printf("✅ Email sent successfully to %s", recipient.Email)
	return nil
}
