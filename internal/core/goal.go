// Package core provides the hydration domain model: intake records, period
// filters, derived summary types, and the weight-based goal formula.
package core

import (
	"fmt"
	"math"
)

const (
	DefaultDailyGoal        int64 = 2000 // ml
	DefaultCupSize          int64 = 250  // ml
	DefaultReminderInterval       = 2    // hours
	DefaultWeight                 = 70.0 // kg

	MinWeight = 30.0  // kg
	MaxWeight = 200.0 // kg

	waterPerKg = 35.0 // ml per kg of body weight
)

// CalculateDailyGoal derives the daily goal (ml) from body weight.
// Weights outside the plausible range fall back to the default goal.
func CalculateDailyGoal(weight float64) int64 {
	if weight < MinWeight || weight > MaxWeight {
		return DefaultDailyGoal
	}
	return int64(math.Round(weight * waterPerKg))
}

// DefaultSettings returns the settings applied before the user configures
// anything, with the goal derived from the default weight.
func DefaultSettings() UserSettings {
	return UserSettings{
		Weight:           DefaultWeight,
		CupSize:          DefaultCupSize,
		DailyGoal:        CalculateDailyGoal(DefaultWeight),
		RemindersEnabled: true,
		ReminderInterval: DefaultReminderInterval,
	}
}

// FormatVolume renders a millilitre amount for display, switching to litres
// at 1000 ml.
func FormatVolume(ml int64) string {
	if ml >= 1000 {
		return fmt.Sprintf("%.1fL", float64(ml)/1000)
	}
	return fmt.Sprintf("%dml", ml)
}

// ProgressPercentage returns current/goal as a percentage capped at 100.
func ProgressPercentage(current, goal int64) float64 {
	if goal == 0 {
		return 0
	}
	pct := float64(current) / float64(goal) * 100
	return math.Min(pct, 100)
}

// MotivationalMessage maps a progress percentage to the encouragement shown
// alongside the daily counter.
func MotivationalMessage(percentage float64) string {
	switch {
	case percentage >= 100:
		return "Goal reached, well done!"
	case percentage >= 75:
		return "Almost there, keep drinking!"
	case percentage >= 50:
		return "Halfway through the day!"
	case percentage >= 25:
		return "Good start, keep it up!"
	default:
		return "Time to hydrate!"
	}
}
