package utils

import (
	"time"

	"learnhub/database"
	"learnhub/models"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// InitializeWebinarScheduler starts the reminder job on spec (standard 5-field cron).
func InitializeWebinarScheduler(spec string) (*cron.Cron, error) {
	log.Info().Str("spec", spec).Msg("[WEBINAR-SCHEDULER] Initializing webinar reminder scheduler...")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		sent := SendWebinarReminders(time.Now())
		log.Info().Int("webinars", sent).Msg("[WEBINAR-SCHEDULER] Reminder run finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

// ReminderWindowEnd is the latest start time picked up by a run at t: the end of
// the hour 24h ahead, so hourly runs leave no gaps.
func ReminderWindowEnd(t time.Time) time.Time {
	return now.With(t.UTC().Add(24 * time.Hour)).EndOfHour()
}

// SendWebinarReminders emails the attendees of scheduled webinars that start
// within the reminder window and marks them as reminded. It returns the number
// of webinars processed.
func SendWebinarReminders(at time.Time) int {
	db := database.Database.Db
	at = at.UTC()

	var webinars []models.Webinar
	if err := db.
		Where("status = ? AND reminder_sent_at IS NULL", models.WebinarScheduled).
		Where("start_time > ? AND start_time <= ?", at, ReminderWindowEnd(at)).
		Preload("Attendees").
		Find(&webinars).Error; err != nil {
		log.Error().Err(err).Msg("[WEBINAR-SCHEDULER] Error fetching upcoming webinars")
		return 0
	}

	for i := range webinars {
		w := &webinars[i]
		failed := 0
		for j := range w.Attendees {
			if err := SendWebinarReminderEmail(&w.Attendees[j], w); err != nil {
				failed++
			}
		}

		if err := db.Model(w).Update("reminder_sent_at", at).Error; err != nil {
			log.Error().Err(err).Uint("webinar_id", w.ID).Msg("[WEBINAR-SCHEDULER] Error marking reminder sent")
			continue
		}
		log.Info().
			Uint("webinar_id", w.ID).
			Int("attendees", len(w.Attendees)).
			Int("failed", failed).
			Msg("[WEBINAR-SCHEDULER] Sent webinar reminders")
	}
	return len(webinars)
}
