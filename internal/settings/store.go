// Package settings persists user preferences in the app_state key-value
// table and supplies the goal/weight snapshot for intake additions.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"bebaagua/internal/core"
)

var errNotSet = errors.New("setting not present")

// State keys. These names are part of the stored data format.
const (
	keyWeight           = "user_weight"
	keyCupSize          = "cup_size"
	keyDailyGoal        = "daily_goal"
	keyRemindersEnabled = "reminders_enabled"
	keyReminderInterval = "reminder_interval"
)

// StateStore is the key-value persistence the settings live in.
type StateStore interface {
	GetState(ctx context.Context, key string) (value string, ok bool, err error)
	SetState(ctx context.Context, key, value string) error
}

type Store struct {
	state StateStore
}

func NewStore(state StateStore) *Store {
	return &Store{state: state}
}

// Load reads the user settings. Missing or unreadable values fall back to
// safe defaults so a settings read never blocks the rest of the app; only
// writes propagate storage failures.
func (s *Store) Load(ctx context.Context) core.UserSettings {
	defaults := core.DefaultSettings()
	loaded := defaults

	if v, err := s.getFloat(ctx, keyWeight); err == nil {
		loaded.Weight = v
	}
	if v, err := s.getInt(ctx, keyCupSize); err == nil {
		loaded.CupSize = v
	}
	if v, err := s.getInt(ctx, keyDailyGoal); err == nil {
		loaded.DailyGoal = v
	} else {
		loaded.DailyGoal = core.CalculateDailyGoal(loaded.Weight)
	}
	if v, ok, err := s.state.GetState(ctx, keyRemindersEnabled); err == nil && ok {
		loaded.RemindersEnabled = v == "true"
	}
	if v, err := s.getInt(ctx, keyReminderInterval); err == nil {
		loaded.ReminderInterval = int(v)
	}

	if err := loaded.Validate(); err != nil {
		slog.WarnContext(ctx, "Stored settings invalid, using defaults", "error", err)
		return defaults
	}
	return loaded
}

// Save validates and persists the settings. The daily goal is always
// recomputed from the weight; the stored goal is a derived value, never a
// user-entered one.
func (s *Store) Save(ctx context.Context, in core.UserSettings) (core.UserSettings, error) {
	in.DailyGoal = core.CalculateDailyGoal(in.Weight)
	if err := in.Validate(); err != nil {
		return core.UserSettings{}, err
	}

	enabled := "false"
	if in.RemindersEnabled {
		enabled = "true"
	}

	writes := []struct{ key, value string }{
		{keyWeight, strconv.FormatFloat(in.Weight, 'f', -1, 64)},
		{keyCupSize, strconv.FormatInt(in.CupSize, 10)},
		{keyDailyGoal, strconv.FormatInt(in.DailyGoal, 10)},
		{keyRemindersEnabled, enabled},
		{keyReminderInterval, strconv.Itoa(in.ReminderInterval)},
	}
	for _, w := range writes {
		if err := s.state.SetState(ctx, w.key, w.value); err != nil {
			return core.UserSettings{}, err
		}
	}

	slog.InfoContext(ctx, "User settings saved",
		"weight_kg", in.Weight,
		"daily_goal_ml", in.DailyGoal,
		"reminders_enabled", in.RemindersEnabled)

	return in, nil
}

func (s *Store) getInt(ctx context.Context, key string) (int64, error) {
	v, ok, err := s.state.GetState(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errNotSet
	}
	return strconv.ParseInt(v, 10, 64)
}

func (s *Store) getFloat(ctx context.Context, key string) (float64, error) {
	v, ok, err := s.state.GetState(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errNotSet
	}
	return strconv.ParseFloat(v, 64)
}
