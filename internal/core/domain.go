package core

import (
	"errors"
	"time"
)

// DateLayout is the canonical calendar-day format used across storage and
// aggregation. Records are grouped and compared by this string form.
const DateLayout = "2006-01-02"

// DateTimeLayout is the second-precision timestamp format persisted per record.
const DateTimeLayout = "2006-01-02 15:04:05"

type (
	// IntakeRecord is one logged water-drinking action. Records are
	// append-only: once created they are never mutated or deleted
	// individually (ClearAll is the only deletion operation).
	IntakeRecord struct {
		ID        int64
		Date      string // calendar day, DateLayout
		Timestamp time.Time
		Amount    int64   // ml
		Goal      int64   // daily goal (ml) in effect when recorded
		Weight    float64 // body weight (kg) in effect when recorded
	}

	// DailySummary aggregates one calendar date of intake records.
	DailySummary struct {
		Date        string
		TotalAmount int64
		Goal        int64 // max goal seen that date
		RecordCount int
		Completed   bool // TotalAmount >= Goal
	}

	// MonthlyTotal aggregates one calendar month. Completion at the month
	// level uses total >= distinctDays * averageGoal, which is stricter
	// than the daily rule.
	MonthlyTotal struct {
		Month     int // 1-12
		Total     int64
		Goal      float64 // average of per-record goals
		Completed bool
	}

	// YearlyStat aggregates one calendar year. AveragePerRecord is the mean
	// of individual record amounts, not of daily totals.
	YearlyStat struct {
		Year             int
		Total            int64
		DaysWithData     int
		AveragePerRecord int64
	}

	// WeeklyStats rolls up a seven-day window of daily summaries.
	WeeklyStats struct {
		TotalWeek     int64
		AverageDaily  float64
		DaysCompleted int
		BestDay       int64
	}

	// UserSettings parameterizes intake additions and reminder scheduling.
	UserSettings struct {
		Weight           float64 // kg
		CupSize          int64   // ml
		DailyGoal        int64   // ml
		RemindersEnabled bool
		ReminderInterval int // hours
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidWeight   = errors.New("invalid weight")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidInterval = errors.New("invalid reminder interval")
)

// PeriodFilter selects the records for one calendar period. Each variant
// carries only the fields its period needs.
type PeriodFilter interface {
	// Range returns the inclusive [from, to] date bounds in DateLayout form.
	Range() (from, to string)
	Validate() error
}

// DayFilter selects a single calendar date.
type DayFilter struct {
	Date string // DateLayout
}

func (f DayFilter) Range() (string, string) { return f.Date, f.Date }

func (f DayFilter) Validate() error { return validateDate(f.Date) }

// WeekFilter selects the Sunday-through-Saturday week containing Date.
// The Sunday anchor matches the historical behavior exactly and must not be
// changed to an ISO Monday start.
type WeekFilter struct {
	Date string // DateLayout
}

func (f WeekFilter) Range() (string, string) {
	t, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return f.Date, f.Date
	}
	start := t.AddDate(0, 0, -int(t.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format(DateLayout), end.Format(DateLayout)
}

func (f WeekFilter) Validate() error { return validateDate(f.Date) }

// MonthFilter selects one year+month.
type MonthFilter struct {
	Year  int
	Month int // 1-12
}

func (f MonthFilter) Range() (string, string) {
	first := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

func (f MonthFilter) Validate() error {
	if f.Year < 1 {
		return ErrInvalidDate
	}
	if f.Month < 1 || f.Month > 12 {
		return ErrInvalidDate
	}
	return nil
}

// YearFilter selects one calendar year.
type YearFilter struct {
	Year int
}

func (f YearFilter) Range() (string, string) {
	first := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), last.Format(DateLayout)
}

func (f YearFilter) Validate() error {
	if f.Year < 1 {
		return ErrInvalidDate
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the invariants the record store assumes on entry.
func (r IntakeRecord) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return validateDate(r.Date)
}

func (s UserSettings) Validate() error {
	if s.Weight <= 0 {
		return ErrInvalidWeight
	}
	if s.CupSize <= 0 {
		return ErrInvalidAmount
	}
	if s.ReminderInterval < 1 || s.ReminderInterval > 24 {
		return ErrInvalidInterval
	}
	return nil
}
