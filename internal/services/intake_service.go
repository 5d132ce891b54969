// Package services orchestrates intake operations across storage, the daily
// counter, settings, and the message queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bebaagua/internal/core"
	"bebaagua/internal/counter"
	"bebaagua/internal/settings"
	"bebaagua/internal/stats"
	"bebaagua/internal/storage"
)

// EventPublisher pushes asynchronous events to the queue. A nil publisher
// disables events without disabling the service.
type EventPublisher interface {
	PublishRecordBackup(ctx context.Context, id int64) error
	PublishGoalAchieved(ctx context.Context, date string, total, goal int64) error
}

// AddResult reports the outcome of one intake addition.
type AddResult struct {
	ID           int64 `json:"id"`
	Total        int64 `json:"total_ml"`
	Goal         int64 `json:"goal_ml"`
	GoalAchieved bool  `json:"goal_achieved"`
}

// ProgressSnapshot is the dashboard view of the current day.
type ProgressSnapshot struct {
	Date       string  `json:"date"`
	Total      int64   `json:"total_ml"`
	Goal       int64   `json:"goal_ml"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// IntakeService is the application core: every read and write path goes
// through it. Statistics are recomputed from the record log on each call;
// nothing is cached.
type IntakeService struct {
	storage  *storage.SQLiteRepository
	settings *settings.Store
	counter  *counter.DailyCounter
	events   EventPublisher
	now      func() time.Time
}

func NewIntakeService(storage *storage.SQLiteRepository, settings *settings.Store, counter *counter.DailyCounter, events EventPublisher) *IntakeService {
	return &IntakeService{
		storage:  storage,
		settings: settings,
		counter:  counter,
		events:   events,
		now:      time.Now,
	}
}

// AddIntake appends one record stamped with the current goal and weight,
// bumps the daily counter, and checks whether this addition crossed the
// daily goal. The goal event fires only on the crossing record, so it is
// emitted at most once per day.
func (s *IntakeService) AddIntake(ctx context.Context, amount int64) (AddResult, error) {
	if amount <= 0 {
		return AddResult{}, core.ErrInvalidAmount
	}

	prefs := s.settings.Load(ctx)

	// One clock reading for the whole addition: the day of the pre-append
	// total, the persisted record, and the goal check must not straddle
	// midnight.
	now := s.now()
	today := now.Format(core.DateLayout)

	before, err := s.storage.TodayTotal(ctx, today)
	if err != nil {
		return AddResult{}, fmt.Errorf("read day total: %w", err)
	}

	id, err := s.storage.AppendAt(ctx, amount, prefs.DailyGoal, prefs.Weight, now)
	if err != nil {
		return AddResult{}, fmt.Errorf("append record: %w", err)
	}

	if _, err := s.counter.Add(ctx, amount); err != nil {
		// The record is the source of truth; a counter glitch self-heals on
		// the next rollover.
		slog.WarnContext(ctx, "Daily counter update failed", "error", err)
	}

	total := before + amount
	achieved := before < prefs.DailyGoal && total >= prefs.DailyGoal
	if achieved {
		s.publishGoalAchieved(ctx, today, total, prefs.DailyGoal)
	}
	s.publishRecordBackup(ctx, id)

	return AddResult{
		ID:           id,
		Total:        total,
		Goal:         prefs.DailyGoal,
		GoalAchieved: achieved,
	}, nil
}

// History returns the raw records for a period, newest first.
func (s *IntakeService) History(ctx context.Context, filter core.PeriodFilter) ([]core.IntakeRecord, error) {
	return s.storage.RecordsByPeriod(ctx, filter)
}

// DailySummaries aggregates a period into per-date summaries, newest first.
func (s *IntakeService) DailySummaries(ctx context.Context, filter core.PeriodFilter) ([]core.DailySummary, error) {
	records, err := s.storage.RecordsByPeriod(ctx, filter)
	if err != nil {
		return nil, err
	}
	return stats.DailySummaries(records), nil
}

// MonthlyTotals aggregates one year into per-month totals.
func (s *IntakeService) MonthlyTotals(ctx context.Context, year int) ([]core.MonthlyTotal, error) {
	records, err := s.storage.RecordsByPeriod(ctx, core.YearFilter{Year: year})
	if err != nil {
		return nil, err
	}
	return stats.MonthlyTotals(records), nil
}

// YearlyStats aggregates the whole log into per-year statistics.
func (s *IntakeService) YearlyStats(ctx context.Context) ([]core.YearlyStat, error) {
	records, err := s.storage.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return stats.YearlyStats(records), nil
}

// CurrentStreak counts consecutive completed days ending at the most recent
// date with data.
func (s *IntakeService) CurrentStreak(ctx context.Context) (int, error) {
	records, err := s.storage.AllRecords(ctx)
	if err != nil {
		return 0, err
	}
	return stats.CurrentStreak(records), nil
}

// WeekStats rolls up the Sunday-through-Saturday week containing date.
func (s *IntakeService) WeekStats(ctx context.Context, date string) (core.WeeklyStats, error) {
	summaries, err := s.DailySummaries(ctx, core.WeekFilter{Date: date})
	if err != nil {
		return core.WeeklyStats{}, err
	}
	return stats.WeekStats(summaries, 7), nil
}

// AvailableYears lists the years having at least one record, newest first.
func (s *IntakeService) AvailableYears(ctx context.Context) ([]int, error) {
	records, err := s.storage.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return stats.AvailableYears(records), nil
}

// AvailableMonths lists the months of a year having at least one record,
// ascending.
func (s *IntakeService) AvailableMonths(ctx context.Context, year int) ([]int, error) {
	records, err := s.storage.RecordsByPeriod(ctx, core.YearFilter{Year: year})
	if err != nil {
		return nil, err
	}
	return stats.AvailableMonths(records, year), nil
}

// Progress reports the current day's total against the goal. The total comes
// from the daily counter, which answers without scanning the record log; the
// log is consulted only when the counter cannot be read.
func (s *IntakeService) Progress(ctx context.Context) (ProgressSnapshot, error) {
	prefs := s.settings.Load(ctx)
	today := s.now().Format(core.DateLayout)

	total, err := s.counter.Today(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Counter read failed, falling back to record log", "error", err)
		total, err = s.storage.TodayTotal(ctx, today)
		if err != nil {
			return ProgressSnapshot{}, fmt.Errorf("read day total: %w", err)
		}
	}

	pct := core.ProgressPercentage(total, prefs.DailyGoal)
	return ProgressSnapshot{
		Date:       today,
		Total:      total,
		Goal:       prefs.DailyGoal,
		Percentage: pct,
		Message:    core.MotivationalMessage(pct),
	}, nil
}

// Settings returns the current user settings.
func (s *IntakeService) Settings(ctx context.Context) core.UserSettings {
	return s.settings.Load(ctx)
}

// SaveSettings validates and persists new settings.
func (s *IntakeService) SaveSettings(ctx context.Context, in core.UserSettings) (core.UserSettings, error) {
	return s.settings.Save(ctx, in)
}

// ClearAll wipes the record log and resets the daily counter. Irreversible.
func (s *IntakeService) ClearAll(ctx context.Context) error {
	if err := s.storage.ClearAll(ctx); err != nil {
		return err
	}
	if err := s.counter.Reset(ctx); err != nil {
		slog.WarnContext(ctx, "Counter reset failed after clear", "error", err)
	}
	return nil
}

func (s *IntakeService) publishGoalAchieved(ctx context.Context, date string, total, goal int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGoalAchieved(ctx, date, total, goal); err != nil {
		// The record is saved; losing the celebration is acceptable.
		slog.ErrorContext(ctx, "Failed to publish goal achieved event", "error", err)
	}
}

func (s *IntakeService) publishRecordBackup(ctx context.Context, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordBackup(ctx, id); err != nil {
		// The periodic pending scan will pick the record up.
		slog.ErrorContext(ctx, "Failed to publish backup message", "id", id, "error", err)
	}
}

// Close releases the underlying storage.
func (s *IntakeService) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
