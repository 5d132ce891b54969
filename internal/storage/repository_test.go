package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bebaagua/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "bebaagua.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(core.DateTimeLayout, value, time.Local)
	if err != nil {
		t.Fatalf("parse test time %q: %v", value, err)
	}
	return ts
}

func TestSQLiteRepository_AppendRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, 500, 2000, 70)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("Append() id = %d, want positive", id)
	}

	today := time.Now().Format(core.DateLayout)
	records, err := repo.RecordsByPeriod(ctx, core.DayFilter{Date: today})
	if err != nil {
		t.Fatalf("RecordsByPeriod() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want exactly 1", len(records))
	}

	r := records[0]
	if r.Amount != 500 || r.Goal != 2000 || r.Weight != 70 {
		t.Errorf("record = {amount:%d goal:%d weight:%v}, want {500 2000 70}", r.Amount, r.Goal, r.Weight)
	}
	if r.Date != today {
		t.Errorf("record date = %s, want %s", r.Date, today)
	}
}

func TestSQLiteRepository_AppendRejectsInvalidAmount(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Append(context.Background(), 0, 2000, 70); err != core.ErrInvalidAmount {
		t.Errorf("Append(0) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := repo.Append(context.Background(), -250, 2000, 70); err != core.ErrInvalidAmount {
		t.Errorf("Append(-250) error = %v, want ErrInvalidAmount", err)
	}
}

func TestSQLiteRepository_PeriodFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// 2024-03-13 is a Wednesday inside the 2024-03-10..16 week.
	seed := []string{
		"2024-03-09 10:00:00", // Saturday before the week
		"2024-03-10 09:00:00", // Sunday, week start
		"2024-03-13 12:30:00",
		"2024-03-16 20:00:00", // Saturday, week end
		"2024-03-17 08:00:00", // Sunday after the week
		"2024-04-02 11:00:00",
		"2023-12-31 23:59:59",
	}
	for _, s := range seed {
		if _, err := repo.AppendAt(ctx, 250, 2000, 70, at(t, s)); err != nil {
			t.Fatalf("seed %s: %v", s, err)
		}
	}

	t.Run("day", func(t *testing.T) {
		records, err := repo.RecordsByPeriod(ctx, core.DayFilter{Date: "2024-03-13"})
		if err != nil {
			t.Fatalf("RecordsByPeriod() error = %v", err)
		}
		if len(records) != 1 || records[0].Date != "2024-03-13" {
			t.Errorf("day filter returned %d records", len(records))
		}
	})

	t.Run("week spans Sunday through Saturday", func(t *testing.T) {
		records, err := repo.RecordsByPeriod(ctx, core.WeekFilter{Date: "2024-03-13"})
		if err != nil {
			t.Fatalf("RecordsByPeriod() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("week filter returned %d records, want 3", len(records))
		}
		for _, r := range records {
			if r.Date < "2024-03-10" || r.Date > "2024-03-16" {
				t.Errorf("record %s outside week bounds", r.Date)
			}
		}
	})

	t.Run("month", func(t *testing.T) {
		records, err := repo.RecordsByPeriod(ctx, core.MonthFilter{Year: 2024, Month: 3})
		if err != nil {
			t.Fatalf("RecordsByPeriod() error = %v", err)
		}
		if len(records) != 5 {
			t.Errorf("month filter returned %d records, want 5", len(records))
		}
	})

	t.Run("year", func(t *testing.T) {
		records, err := repo.RecordsByPeriod(ctx, core.YearFilter{Year: 2023})
		if err != nil {
			t.Fatalf("RecordsByPeriod() error = %v", err)
		}
		if len(records) != 1 || records[0].Date != "2023-12-31" {
			t.Errorf("year filter returned %d records", len(records))
		}
	})

	t.Run("invalid filter rejected", func(t *testing.T) {
		if _, err := repo.RecordsByPeriod(ctx, core.MonthFilter{Year: 2024, Month: 13}); err != core.ErrInvalidDate {
			t.Errorf("invalid month error = %v, want ErrInvalidDate", err)
		}
	})
}

func TestSQLiteRepository_OrderedByDatetimeDescending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, s := range []string{"2024-03-13 08:00:00", "2024-03-13 12:00:00", "2024-03-13 10:00:00"} {
		if _, err := repo.AppendAt(ctx, 250, 2000, 70, at(t, s)); err != nil {
			t.Fatal(err)
		}
	}

	records, err := repo.RecordsByPeriod(ctx, core.DayFilter{Date: "2024-03-13"})
	if err != nil {
		t.Fatalf("RecordsByPeriod() error = %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(records[i-1].Timestamp) {
			t.Errorf("records not sorted datetime descending at index %d", i)
		}
	}
}

func TestSQLiteRepository_ClearAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Append(ctx, 250, 2000, 70); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}

	records, err := repo.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records after ClearAll, want 0", len(records))
	}
}

func TestSQLiteRepository_BackupBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, _ := repo.Append(ctx, 250, 2000, 70)
	id2, _ := repo.Append(ctx, 300, 2000, 70)

	pending, err := repo.PendingBackup(ctx, 10)
	if err != nil {
		t.Fatalf("PendingBackup() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending records, want 2", len(pending))
	}
	if pending[0].ID != id1 {
		t.Errorf("pending order: first id = %d, want oldest %d", pending[0].ID, id1)
	}

	if err := repo.MarkBackedUp(ctx, id1); err != nil {
		t.Fatalf("MarkBackedUp() error = %v", err)
	}
	if err := repo.MarkBackupError(ctx, id2); err != nil {
		t.Fatalf("MarkBackupError() error = %v", err)
	}

	pending, err = repo.PendingBackup(ctx, 10)
	if err != nil {
		t.Fatalf("PendingBackup() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending records after marking, want 0", len(pending))
	}
}

func TestSQLiteRepository_Record(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Append(ctx, 400, 2100, 72.5)

	record, err := repo.Record(ctx, id)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if record.Amount != 400 || record.Goal != 2100 || record.Weight != 72.5 {
		t.Errorf("record = %+v", record)
	}

	if _, err := repo.Record(ctx, id+999); err != ErrNotFound {
		t.Errorf("missing id error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_TodayTotal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if total, err := repo.TodayTotal(ctx, "2024-03-13"); err != nil || total != 0 {
		t.Fatalf("TodayTotal() on empty store = %d, %v; want 0, nil", total, err)
	}

	for _, amount := range []int64{600, 700, 800} {
		if _, err := repo.AppendAt(ctx, amount, 2000, 70, at(t, "2024-03-13 10:00:00")); err != nil {
			t.Fatal(err)
		}
	}

	total, err := repo.TodayTotal(ctx, "2024-03-13")
	if err != nil {
		t.Fatalf("TodayTotal() error = %v", err)
	}
	if total != 2100 {
		t.Errorf("TodayTotal() = %d, want 2100", total)
	}
}

func TestSQLiteRepository_AppState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.GetState(ctx, "missing"); err != nil || ok {
		t.Fatalf("GetState(missing) = ok:%v err:%v, want absent", ok, err)
	}

	if err := repo.SetState(ctx, "water_intake", "1250"); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	value, ok, err := repo.GetState(ctx, "water_intake")
	if err != nil || !ok || value != "1250" {
		t.Fatalf("GetState() = %q ok:%v err:%v, want 1250", value, ok, err)
	}

	// Upsert overwrites.
	if err := repo.SetState(ctx, "water_intake", "1500"); err != nil {
		t.Fatal(err)
	}
	value, _, _ = repo.GetState(ctx, "water_intake")
	if value != "1500" {
		t.Errorf("GetState() after upsert = %q, want 1500", value)
	}
}
