// Package worker runs the background jobs: spreadsheet backup of intake
// records and the drink reminder schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bebaagua/internal/core"
	"bebaagua/internal/notify"
	"bebaagua/internal/sheets"
	"bebaagua/internal/storage"
)

// BackupWorker copies intake records from SQLite to the backup spreadsheet.
// The queue carries only record ids; the worker reads the full record from
// the database so it always backs up the stored truth.
type BackupWorker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.RecordWriter
	batchSize int
}

func NewBackupWorker(storage *storage.SQLiteRepository, sheets sheets.RecordWriter, batchSize int) *BackupWorker {
	return &BackupWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleBackupMessage processes a single backup message from the queue.
func (w *BackupWorker) HandleBackupMessage(ctx context.Context, msg *notify.RecordBackupMessage) error {
	slog.InfoContext(ctx, "Processing backup message", "id", msg.ID)

	record, err := w.storage.Record(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The record was cleared after the message was queued. Nothing
			// to back up; ack and move on.
			slog.WarnContext(ctx, "Record gone before backup, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get record from storage: %w", err)
	}

	return w.backupRecord(ctx, record.ID, *record)
}

// ProcessPending backs up records still marked pending. This is the safety
// net for lost queue messages.
func (w *BackupWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingBackup(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending backups", "count", len(pending))

	for _, record := range pending {
		if err := w.backupRecord(ctx, record.ID, record); err != nil {
			slog.ErrorContext(ctx, "Failed to back up record", "id", record.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck drains pending records at worker startup, with a larger batch
// to recover from downtime.
func (w *BackupWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingBackup(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending backups found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending backups on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, record := range pending {
		if err := w.backupRecord(ctx, record.ID, record); err != nil {
			slog.ErrorContext(ctx, "Failed to back up record during startup",
				"id", record.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup backup check completed",
		"total", len(pending),
		"backed_up", successCount,
		"errors", errorCount)

	return nil
}

func (w *BackupWorker) backupRecord(ctx context.Context, id int64, record core.IntakeRecord) error {
	ref, err := w.sheets.Append(ctx, record)
	if err != nil {
		if markErr := w.storage.MarkBackupError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark backup error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkBackedUp(ctx, id); err != nil {
		// The backup itself worked; log and keep going.
		slog.ErrorContext(ctx, "Failed to mark record backed up", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Record backed up",
		"id", id,
		"sheet_ref", ref,
		"date", record.Date,
		"amount_ml", record.Amount)

	return nil
}
