package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bebaagua/internal/core"
	"bebaagua/internal/counter"
	"bebaagua/internal/settings"
	"bebaagua/internal/storage"
)

type publishedEvents struct {
	backups      []int64
	goalAchieved []string
	failPublish  bool
}

func (p *publishedEvents) PublishRecordBackup(_ context.Context, id int64) error {
	if p.failPublish {
		return errors.New("broker down")
	}
	p.backups = append(p.backups, id)
	return nil
}

func (p *publishedEvents) PublishGoalAchieved(_ context.Context, date string, _, _ int64) error {
	if p.failPublish {
		return errors.New("broker down")
	}
	p.goalAchieved = append(p.goalAchieved, date)
	return nil
}

func newTestService(t *testing.T) (*IntakeService, *publishedEvents) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "bebaagua.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	events := &publishedEvents{}
	svc := NewIntakeService(repo, settings.NewStore(repo), counter.NewDailyCounter(repo), events)
	return svc, events
}

func TestIntakeService_AddIntake(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddIntake(ctx, 500)
	if err != nil {
		t.Fatalf("AddIntake() error = %v", err)
	}
	if res.Total != 500 {
		t.Errorf("Total = %d, want 500", res.Total)
	}
	if res.Goal != core.CalculateDailyGoal(core.DefaultWeight) {
		t.Errorf("Goal = %d, want default-weight goal", res.Goal)
	}
	if res.GoalAchieved {
		t.Error("GoalAchieved = true for 500ml, want false")
	}
	if len(events.backups) != 1 || events.backups[0] != res.ID {
		t.Errorf("backup events = %v, want [%d]", events.backups, res.ID)
	}
}

func TestIntakeService_AddIntakeRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddIntake(context.Background(), 0); err != core.ErrInvalidAmount {
		t.Errorf("AddIntake(0) error = %v, want ErrInvalidAmount", err)
	}
}

func TestIntakeService_GoalAchievedFiresOnceOnCrossing(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	goal := svc.Settings(ctx).DailyGoal

	// Stay under the goal: no event.
	res, err := svc.AddIntake(ctx, goal-100)
	if err != nil {
		t.Fatal(err)
	}
	if res.GoalAchieved || len(events.goalAchieved) != 0 {
		t.Fatal("goal event fired before the goal was reached")
	}

	// Cross the goal: exactly one event.
	res, err = svc.AddIntake(ctx, 200)
	if err != nil {
		t.Fatal(err)
	}
	if !res.GoalAchieved {
		t.Error("GoalAchieved = false on crossing record")
	}
	if len(events.goalAchieved) != 1 {
		t.Fatalf("goal events = %d, want 1", len(events.goalAchieved))
	}

	// Further additions the same day must not fire again.
	res, err = svc.AddIntake(ctx, 250)
	if err != nil {
		t.Fatal(err)
	}
	if res.GoalAchieved || len(events.goalAchieved) != 1 {
		t.Error("goal event fired again after the crossing record")
	}
}

func TestIntakeService_PublishFailureDoesNotFailAdd(t *testing.T) {
	svc, events := newTestService(t)
	events.failPublish = true

	if _, err := svc.AddIntake(context.Background(), 500); err != nil {
		t.Errorf("AddIntake() with failing publisher error = %v, want nil", err)
	}
}

func TestIntakeService_NilPublisher(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "bebaagua.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := NewIntakeService(repo, settings.NewStore(repo), counter.NewDailyCounter(repo), nil)
	if _, err := svc.AddIntake(context.Background(), 500); err != nil {
		t.Errorf("AddIntake() without publisher error = %v, want nil", err)
	}
}

func TestIntakeService_Progress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	snap, err := svc.Progress(ctx)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if snap.Total != 0 || snap.Percentage != 0 {
		t.Errorf("empty-day progress = %+v, want zero", snap)
	}
	if snap.Message == "" {
		t.Error("Message is empty, want a motivational message")
	}

	if _, err := svc.AddIntake(ctx, 500); err != nil {
		t.Fatal(err)
	}

	snap, err = svc.Progress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Total != 500 {
		t.Errorf("Total = %d, want 500", snap.Total)
	}
	if snap.Percentage <= 0 {
		t.Errorf("Percentage = %v, want positive", snap.Percentage)
	}
}

func TestIntakeService_AggregationPaths(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, amount := range []int64{600, 700, 800} {
		if _, err := svc.AddIntake(ctx, amount); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	today := now.Format(core.DateLayout)

	summaries, err := svc.DailySummaries(ctx, core.DayFilter{Date: today})
	if err != nil {
		t.Fatalf("DailySummaries() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].TotalAmount != 2100 || summaries[0].RecordCount != 3 {
		t.Errorf("summaries = %+v, want one day with 2100ml over 3 records", summaries)
	}

	months, err := svc.AvailableMonths(ctx, now.Year())
	if err != nil {
		t.Fatal(err)
	}
	if len(months) != 1 || months[0] != int(now.Month()) {
		t.Errorf("AvailableMonths() = %v, want [%d]", months, int(now.Month()))
	}

	years, err := svc.AvailableYears(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(years) != 1 || years[0] != now.Year() {
		t.Errorf("AvailableYears() = %v, want [%d]", years, now.Year())
	}

	week, err := svc.WeekStats(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if week.TotalWeek != 2100 {
		t.Errorf("WeekStats().TotalWeek = %d, want 2100", week.TotalWeek)
	}
}

func TestIntakeService_ClearAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddIntake(ctx, 500); err != nil {
		t.Fatal(err)
	}
	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}

	snap, err := svc.Progress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Total != 0 {
		t.Errorf("Progress().Total after ClearAll = %d, want 0", snap.Total)
	}

	streak, err := svc.CurrentStreak(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if streak != 0 {
		t.Errorf("CurrentStreak() after ClearAll = %d, want 0", streak)
	}
}

func TestIntakeService_CounterMatchesDailySummaries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, amount := range []int64{300, 450, 250} {
		if _, err := svc.AddIntake(ctx, amount); err != nil {
			t.Fatal(err)
		}
	}

	today := time.Now().Format(core.DateLayout)

	fromCounter, err := svc.counter.Today(ctx)
	if err != nil {
		t.Fatalf("counter Today() error = %v", err)
	}
	summaries, err := svc.DailySummaries(ctx, core.DayFilter{Date: today})
	if err != nil {
		t.Fatalf("DailySummaries() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if fromCounter != summaries[0].TotalAmount {
		t.Errorf("counter total = %d, summary total = %d; want them equal", fromCounter, summaries[0].TotalAmount)
	}

	snap, err := svc.Progress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Total != fromCounter {
		t.Errorf("Progress().Total = %d, want counter total %d", snap.Total, fromCounter)
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	fromCounter, err = svc.counter.Today(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fromCounter != 0 {
		t.Errorf("counter total after ClearAll = %d, want 0", fromCounter)
	}
	summaries, err = svc.DailySummaries(ctx, core.DayFilter{Date: today})
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Errorf("got %d summaries after ClearAll, want 0", len(summaries))
	}
}

func TestIntakeService_AddIntakeStampsRecordWithServiceClock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// An instant right before midnight, where a second clock reading inside
	// the same addition could land on the next day.
	lateNight, err := time.ParseInLocation(core.DateTimeLayout, "2024-03-13 23:59:59", time.Local)
	if err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return lateNight }

	res, err := svc.AddIntake(ctx, 500)
	if err != nil {
		t.Fatalf("AddIntake() error = %v", err)
	}

	records, err := svc.History(ctx, core.DayFilter{Date: "2024-03-13"})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != res.ID {
		t.Fatalf("records for 2024-03-13 = %+v, want the one just added", records)
	}
	if !records[0].Timestamp.Equal(lateNight) {
		t.Errorf("record timestamp = %v, want the service clock reading %v", records[0].Timestamp, lateNight)
	}

	next, err := svc.History(ctx, core.DayFilter{Date: "2024-03-14"})
	if err != nil {
		t.Fatal(err)
	}
	if len(next) != 0 {
		t.Errorf("got %d records on the following day, want 0", len(next))
	}
}

func TestIntakeService_SaveSettingsChangesGoal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveSettings(ctx, core.UserSettings{
		Weight:           80,
		CupSize:          300,
		RemindersEnabled: true,
		ReminderInterval: 2,
	})
	if err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	res, err := svc.AddIntake(ctx, 250)
	if err != nil {
		t.Fatal(err)
	}
	if res.Goal != saved.DailyGoal {
		t.Errorf("record goal = %d, want %d from saved settings", res.Goal, saved.DailyGoal)
	}
}
