// Package stats derives daily, monthly, and yearly rollups plus the current
// goal-completion streak from raw intake records.
//
// Every function here is a pure computation over the record set it is given:
// no caching, no incremental state. With at most a handful of records per day
// a full re-scan per query is cheap and leaves no invalidation to get wrong.
package stats

import (
	"math"
	"sort"
	"time"

	"bebaagua/internal/core"
)

// DailySummaries groups records by calendar date, sorted date descending.
// The per-day goal is the maximum goal seen that date, so a mid-day goal
// change never retroactively completes a day.
func DailySummaries(records []core.IntakeRecord) []core.DailySummary {
	byDate := make(map[string]*core.DailySummary)
	for _, r := range records {
		s, ok := byDate[r.Date]
		if !ok {
			s = &core.DailySummary{Date: r.Date}
			byDate[r.Date] = s
		}
		s.TotalAmount += r.Amount
		s.RecordCount++
		if r.Goal > s.Goal {
			s.Goal = r.Goal
		}
	}

	summaries := make([]core.DailySummary, 0, len(byDate))
	for _, s := range byDate {
		s.Completed = s.TotalAmount >= s.Goal
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date > summaries[j].Date
	})
	return summaries
}

// MonthlyTotals groups records by calendar month, sorted month ascending.
// Month-level completion requires total >= distinctDays * averageGoal; this
// is deliberately preserved even though it is stricter than the daily rule.
func MonthlyTotals(records []core.IntakeRecord) []core.MonthlyTotal {
	type monthAgg struct {
		total   int64
		goalSum int64
		count   int
		days    map[string]struct{}
	}

	byMonth := make(map[int]*monthAgg)
	for _, r := range records {
		month := monthOf(r.Date)
		if month == 0 {
			continue
		}
		m, ok := byMonth[month]
		if !ok {
			m = &monthAgg{days: make(map[string]struct{})}
			byMonth[month] = m
		}
		m.total += r.Amount
		m.goalSum += r.Goal
		m.count++
		m.days[r.Date] = struct{}{}
	}

	totals := make([]core.MonthlyTotal, 0, len(byMonth))
	for month, m := range byMonth {
		avgGoal := float64(m.goalSum) / float64(m.count)
		totals = append(totals, core.MonthlyTotal{
			Month:     month,
			Total:     m.total,
			Goal:      avgGoal,
			Completed: float64(m.total) >= float64(len(m.days))*avgGoal,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })
	return totals
}

// YearlyStats groups records by calendar year, sorted year descending.
func YearlyStats(records []core.IntakeRecord) []core.YearlyStat {
	type yearAgg struct {
		total int64
		count int
		days  map[string]struct{}
	}

	byYear := make(map[int]*yearAgg)
	for _, r := range records {
		year := yearOf(r.Date)
		if year == 0 {
			continue
		}
		y, ok := byYear[year]
		if !ok {
			y = &yearAgg{days: make(map[string]struct{})}
			byYear[year] = y
		}
		y.total += r.Amount
		y.count++
		y.days[r.Date] = struct{}{}
	}

	years := make([]core.YearlyStat, 0, len(byYear))
	for year, y := range byYear {
		years = append(years, core.YearlyStat{
			Year:             year,
			Total:            y.total,
			DaysWithData:     len(y.days),
			AveragePerRecord: int64(math.Round(float64(y.total) / float64(y.count))),
		})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year > years[j].Year })
	return years
}

// CurrentStreak counts consecutive completed calendar days walking backward
// from the most recent date with data. A day missing from the record set
// breaks the streak just like an incomplete one.
//
// The streak is anchored at the most recent recorded date rather than the
// wall-clock today, so it is not zeroed before the first drink of the day.
func CurrentStreak(records []core.IntakeRecord) int {
	summaries := DailySummaries(records)
	if len(summaries) == 0 {
		return 0
	}

	streak := 0
	var prev time.Time
	for i, s := range summaries {
		if !s.Completed {
			break
		}
		day, err := time.Parse(core.DateLayout, s.Date)
		if err != nil {
			break
		}
		if i > 0 && !day.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = day
	}
	return streak
}

// AvailableYears returns the distinct years present, sorted descending.
func AvailableYears(records []core.IntakeRecord) []int {
	seen := make(map[int]struct{})
	for _, r := range records {
		if y := yearOf(r.Date); y != 0 {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// AvailableMonths returns the distinct months present in the given year,
// sorted ascending.
func AvailableMonths(records []core.IntakeRecord, year int) []int {
	seen := make(map[int]struct{})
	for _, r := range records {
		if yearOf(r.Date) != year {
			continue
		}
		if m := monthOf(r.Date); m != 0 {
			seen[m] = struct{}{}
		}
	}
	months := make([]int, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// WeekStats rolls a week of summaries into totals. days is the window size
// the average is taken over, normally seven; days with no summary count as
// zero.
func WeekStats(summaries []core.DailySummary, days int) core.WeeklyStats {
	var w core.WeeklyStats
	for _, s := range summaries {
		w.TotalWeek += s.TotalAmount
		if s.Completed && s.RecordCount > 0 {
			w.DaysCompleted++
		}
		if s.TotalAmount > w.BestDay {
			w.BestDay = s.TotalAmount
		}
	}
	if days > 0 {
		w.AverageDaily = float64(w.TotalWeek) / float64(days)
	}
	return w
}

func yearOf(date string) int {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return 0
	}
	return t.Year()
}

func monthOf(date string) int {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return 0
	}
	return int(t.Month())
}
