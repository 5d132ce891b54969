package worker

import (
	"context"
	"log/slog"
	"time"

	"bebaagua/internal/core"
)

// disabledPollInterval is how often a scheduler with reminders switched off
// checks whether they were re-enabled.
const disabledPollInterval = 15 * time.Minute

// SettingsLoader supplies the current reminder preferences.
type SettingsLoader interface {
	Load(ctx context.Context) core.UserSettings
}

// ReminderPublisher pushes a due reminder to the notification edge.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, scheduledFor time.Time, intervalHours int) error
}

// ReminderScheduler publishes drink reminders on the user's configured
// interval. It builds the instants for the next 24 hours up front, walks
// them, and rebuilds the schedule as soon as the settings it was built from
// change.
type ReminderScheduler struct {
	settings  SettingsLoader
	publisher ReminderPublisher
	now       func() time.Time
	after     func(time.Duration) <-chan time.Time
}

func NewReminderScheduler(settings SettingsLoader, publisher ReminderPublisher) *ReminderScheduler {
	return &ReminderScheduler{
		settings:  settings,
		publisher: publisher,
		now:       time.Now,
		after:     time.After,
	}
}

// Run blocks until ctx is cancelled. Each published reminder carries the
// instant it was scheduled for, not the instant it happened to fire.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	for {
		prefs := s.settings.Load(ctx)
		if !prefs.RemindersEnabled {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "Reminder scheduler stopping", "reason", ctx.Err())
				return ctx.Err()
			case <-s.after(disabledPollInterval):
			}
			continue
		}

		for _, instant := range reminderSchedule(s.now(), prefs.ReminderInterval) {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "Reminder scheduler stopping", "reason", ctx.Err())
				return ctx.Err()
			case <-s.after(instant.Sub(s.now())):
			}

			// The schedule is stale once the settings it was built from
			// change; drop it and rebuild.
			current := s.settings.Load(ctx)
			if !current.RemindersEnabled || current.ReminderInterval != prefs.ReminderInterval {
				break
			}

			if err := s.publisher.PublishReminder(ctx, instant, current.ReminderInterval); err != nil {
				// Missing one reminder is not worth crashing the worker.
				slog.ErrorContext(ctx, "Failed to publish reminder", "error", err)
			}
		}
	}
}

// NextReminders returns the reminder instants due within the next 24 hours,
// given the current settings. Empty when reminders are disabled.
func (s *ReminderScheduler) NextReminders(ctx context.Context) []time.Time {
	settings := s.settings.Load(ctx)
	if !settings.RemindersEnabled {
		return nil
	}
	return reminderSchedule(s.now(), settings.ReminderInterval)
}

// reminderSchedule lists the instants from start+interval through start+24h,
// inclusive, at the given interval.
func reminderSchedule(start time.Time, intervalHours int) []time.Time {
	interval := time.Duration(intervalHours) * time.Hour
	horizon := start.Add(24 * time.Hour)

	var out []time.Time
	for t := start.Add(interval); !t.After(horizon); t = t.Add(interval) {
		out = append(out, t)
	}
	return out
}
