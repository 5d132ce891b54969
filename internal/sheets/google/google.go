// Package google backs intake records up to a Google spreadsheet. One sheet
// per year, named "<year> <base>", columns: date, time, amount, goal, weight.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"bebaagua/internal/core"
	ports "bebaagua/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year (e.g. "Hydration"); code prefixes the year.
	sheetBase string
}

// Ensure interface conformance
var (
	_ ports.RecordWriter = (*Client)(nil)
	_ ports.RecordLister = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Hydration") and service account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Hydration"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets service using service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Append writes one record to the year sheet and returns the row reference.
func (c *Client) Append(ctx context.Context, record core.IntakeRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheetName := c.sheetName(record.Timestamp.Year())

	// Find the next empty row from the date column.
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:E%d", sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		record.Date,
		record.Timestamp.Format("15:04:05"),
		record.Amount,
		record.Goal,
		record.Weight,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", sheetName, err)
	}

	return dataRange, nil
}

// ListRecords reads back the records stored for the given year and month.
// Best-effort: malformed rows are skipped, not reported.
func (c *Client) ListRecords(ctx context.Context, year int, month int) ([]core.IntakeRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidDate
	}

	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	rng := fmt.Sprintf("%s!A:E", c.sheetName(year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.IntakeRecord
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) < 5 {
			continue
		}
		if !strings.HasPrefix(cols[0], prefix) {
			continue
		}
		ts, err := time.ParseInLocation(core.DateTimeLayout, cols[0]+" "+cols[1], time.Local)
		if err != nil {
			continue
		}
		amount, err := strconv.ParseInt(cols[2], 10, 64)
		if err != nil {
			continue
		}
		goal, err := strconv.ParseInt(cols[3], 10, 64)
		if err != nil {
			continue
		}
		weight, err := strconv.ParseFloat(strings.ReplaceAll(cols[4], ",", "."), 64)
		if err != nil {
			continue
		}
		out = append(out, core.IntakeRecord{
			Date:      cols[0],
			Timestamp: ts,
			Amount:    amount,
			Goal:      goal,
			Weight:    weight,
		})
	}
	return out, nil
}

// sheetName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func (c *Client) sheetName(year int) string {
	base := strings.TrimSpace(c.sheetBase)
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
