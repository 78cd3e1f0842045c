package notifications

import (
	"fmt"
	"html"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/anjiri1684/lesson_ledger/services"
)

const lessonTimeLayout = "Mon 2 Jan 2006, 15:04 MST"

type email struct {
	Subject string
	HTML    string
}

func lessonTime(t time.Time, recipient *models.User, fallback *time.Location) string {
	return t.In(recipient.Location(fallback)).Format(lessonTimeLayout)
}

// eventEmail returns the email a lesson event produces for recipient, or false
// when the event is push-only.
func eventEmail(event services.LessonEvent, recipient *models.User, fallback *time.Location) (email, bool) {
	name := html.EscapeString(recipient.FullName)
	when := lessonTime(event.StartsAt, recipient, fallback)

	switch event.Type {
	case services.EventLessonScheduled:
		return email{
			Subject: "A new lesson has been scheduled",
			HTML: fmt.Sprintf(
				"<h1>Lesson Scheduled</h1><p>Hi %s,</p><p>A lesson has been booked for %s.</p>",
				name, when),
		}, true
	case services.EventLessonCompleted:
		return email{
			Subject: "Please confirm your child's lesson",
			HTML: fmt.Sprintf(
				"<h1>Did this lesson happen?</h1><p>Hi %s,</p><p>The tutor has marked the lesson on %s as completed. Please confirm it or raise a dispute from your dashboard.</p>",
				name, when),
		}, true
	case services.EventLessonDisputed:
		note := "No reason was given."
		if event.DisputeNote != nil {
			note = html.EscapeString(*event.DisputeNote)
		}
		return email{
			Subject: "A parent has disputed a lesson",
			HTML: fmt.Sprintf(
				"<h1>Lesson Disputed</h1><p>Hi %s,</p><p>The lesson on %s was disputed by the parent.</p><p><b>Note:</b> %s</p><p>Our team will review it and get in touch.</p>",
				name, when, note),
		}, true
	case services.EventLessonCancelled:
		return email{
			Subject: "A lesson has been cancelled",
			HTML: fmt.Sprintf(
				"<h1>Lesson Cancelled</h1><p>Hi %s,</p><p>The lesson on %s has been cancelled.</p>",
				name, when),
		}, true
	default:
		return email{}, false
	}
}

func completionReminder(recipient *models.User, lesson models.Lesson, fallback *time.Location) email {
	return email{
		Subject: "Reminder: mark your lesson as completed",
		HTML: fmt.Sprintf(
			"<h1>Lesson Reminder</h1><p>Hi %s,</p><p>Your lesson on %s has ended but is still marked as scheduled. Mark it completed so the parent can confirm it.</p>",
			html.EscapeString(recipient.FullName), lessonTime(lesson.ScheduledStart, recipient, fallback)),
	}
}

func confirmationReminder(recipient *models.User, lesson models.Lesson, fallback *time.Location) email {
	return email{
		Subject: "Reminder: please confirm your child's lesson",
		HTML: fmt.Sprintf(
			"<h1>Confirmation Reminder</h1><p>Hi %s,</p><p>The lesson on %s is still waiting for your confirmation.</p>",
			html.EscapeString(recipient.FullName), lessonTime(lesson.ScheduledStart, recipient, fallback)),
	}
}
