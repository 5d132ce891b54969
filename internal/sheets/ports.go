package sheets

import (
	"context"

	"bebaagua/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// RecordWriter appends one intake record to the backup spreadsheet.
	RecordWriter interface {
		Append(ctx context.Context, record core.IntakeRecord) (rowRef string, err error)
	}

	// RecordLister reads back the records stored for a given year and month.
	RecordLister interface {
		ListRecords(ctx context.Context, year int, month int) ([]core.IntakeRecord, error)
	}
)
