// Package memory is an in-memory spreadsheet adapter for tests and local
// development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bebaagua/internal/core"
	ports "bebaagua/internal/sheets"
)

type Client struct {
	mu      sync.Mutex
	records []core.IntakeRecord

	// FailAppend makes the next Append calls return an error.
	FailAppend bool
}

var (
	_ ports.RecordWriter = (*Client)(nil)
	_ ports.RecordLister = (*Client)(nil)
)

func New() *Client {
	return &Client{}
}

func (c *Client) Append(_ context.Context, record core.IntakeRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailAppend {
		return "", fmt.Errorf("append unavailable")
	}

	c.records = append(c.records, record)
	return fmt.Sprintf("memory!A%d", len(c.records)), nil
}

func (c *Client) ListRecords(_ context.Context, year int, month int) ([]core.IntakeRecord, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidDate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	var out []core.IntakeRecord
	for _, r := range c.records {
		if strings.HasPrefix(r.Date, prefix) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len reports how many records were appended. Test helper.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
