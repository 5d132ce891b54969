// Package storage is the durable record store: an append-only SQLite log of
// intake records plus a small key-value table for app state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bebaagua/internal/core"

	_ "modernc.org/sqlite"
)

// Backup status values for the spreadsheet backup bookkeeping.
const (
	BackupPending = "pending"
	BackupDone    = "done"
	BackupError   = "error"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append stamps a new intake record with the current local date and time,
// persists it, and returns the assigned id. The caller is expected to have
// validated the amount already; the check here is the store's last line.
func (r *SQLiteRepository) Append(ctx context.Context, amount, goal int64, weight float64) (int64, error) {
	return r.AppendAt(ctx, amount, goal, weight, time.Now())
}

// AppendAt is Append with an explicit clock reading, so a caller that has
// already derived the day from its own now can stamp the record with the
// same instant.
func (r *SQLiteRepository) AppendAt(ctx context.Context, amount, goal int64, weight float64, now time.Time) (int64, error) {
	record := core.IntakeRecord{
		Date:      now.Format(core.DateLayout),
		Timestamp: now,
		Amount:    amount,
		Goal:      goal,
		Weight:    weight,
	}
	if err := record.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO intake_records (date, datetime, amount, goal, weight, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.Date,
		now.Format(core.DateTimeLayout),
		record.Amount,
		record.Goal,
		record.Weight,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert intake record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Intake record saved",
		"id", id,
		"date", record.Date,
		"amount_ml", record.Amount,
		"goal_ml", record.Goal)

	return id, nil
}

// RecordsByPeriod returns all records whose date falls inside the filter's
// range, ordered by datetime descending.
func (r *SQLiteRepository) RecordsByPeriod(ctx context.Context, filter core.PeriodFilter) ([]core.IntakeRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	from, to := filter.Range()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, datetime, amount, goal, weight
		 FROM intake_records
		 WHERE date BETWEEN ? AND ?
		 ORDER BY datetime DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query records by period: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// AllRecords returns the full log ordered by datetime descending. Streak and
// year-level aggregation scan everything; the volume is human-scale so a full
// read is the simple, correct choice.
func (r *SQLiteRepository) AllRecords(ctx context.Context) ([]core.IntakeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, datetime, amount, goal, weight
		 FROM intake_records
		 ORDER BY datetime DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Record fetches a single record by id.
func (r *SQLiteRepository) Record(ctx context.Context, id int64) (*core.IntakeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, datetime, amount, goal, weight
		 FROM intake_records WHERE id = ?`,
		id,
	)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record by id: %w", err)
	}
	return record, nil
}

// TodayTotal sums the amounts recorded for the given date.
func (r *SQLiteRepository) TodayTotal(ctx context.Context, date string) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM intake_records WHERE date = ?`, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum day total: %w", err)
	}
	return total.Int64, nil
}

// ClearAll deletes every intake record. Irreversible; only an explicit
// user-initiated reset reaches this.
func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM intake_records`); err != nil {
		return fmt.Errorf("clear intake records: %w", err)
	}
	slog.InfoContext(ctx, "All intake records cleared")
	return nil
}

// PendingBackup returns up to limit records not yet backed up to the
// spreadsheet, oldest first.
func (r *SQLiteRepository) PendingBackup(ctx context.Context, limit int) ([]core.IntakeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, datetime, amount, goal, weight
		 FROM intake_records
		 WHERE backup_status = ?
		 ORDER BY id ASC
		 LIMIT ?`,
		BackupPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending backup records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// MarkBackedUp marks a record as successfully written to the spreadsheet.
func (r *SQLiteRepository) MarkBackedUp(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE intake_records SET backup_status = ? WHERE id = ?`,
		BackupDone, id,
	); err != nil {
		return fmt.Errorf("mark record backed up: %w", err)
	}
	return nil
}

// MarkBackupError flags a record whose backup attempt failed; the periodic
// pending scan will not retry it until it is reset.
func (r *SQLiteRepository) MarkBackupError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE intake_records SET backup_status = ? WHERE id = ?`,
		BackupError, id,
	); err != nil {
		return fmt.Errorf("mark record backup error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with backup error", "id", id)
	return nil
}

// GetState reads one app_state value. The second return is false when the
// key has never been written.
func (r *SQLiteRepository) GetState(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get app state %q: %w", key, err)
	}
	return value, true, nil
}

// SetState upserts one app_state value.
func (r *SQLiteRepository) SetState(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set app state %q: %w", key, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*core.IntakeRecord, error) {
	var (
		record   core.IntakeRecord
		datetime string
	)
	if err := row.Scan(&record.ID, &record.Date, &datetime, &record.Amount, &record.Goal, &record.Weight); err != nil {
		return nil, err
	}
	ts, err := time.ParseInLocation(core.DateTimeLayout, datetime, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse record datetime %q: %w", datetime, err)
	}
	record.Timestamp = ts
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]core.IntakeRecord, error) {
	var records []core.IntakeRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intake records: %w", err)
	}
	return records, nil
}
