// Package counter keeps the running intake total for the current day. The
// total is derived state; the record log remains the source of truth and the
// counter is rebuilt from it whenever the two disagree.
package counter

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"bebaagua/internal/core"
)

const (
	keyIntake    = "water_intake"
	keyLastReset = "last_reset_date"
)

// StateStore is the key-value persistence the counter lives in.
type StateStore interface {
	GetState(ctx context.Context, key string) (value string, ok bool, err error)
	SetState(ctx context.Context, key, value string) error
}

// DailyCounter tracks today's total. On the first touch of a new day the
// stored value is discarded and the count restarts at zero.
type DailyCounter struct {
	state StateStore
	now   func() time.Time
}

func NewDailyCounter(state StateStore) *DailyCounter {
	return &DailyCounter{state: state, now: time.Now}
}

// Today returns the current day's running total. A stale value from a
// previous day reads as zero.
func (c *DailyCounter) Today(ctx context.Context) (int64, error) {
	today := c.now().Format(core.DateLayout)

	stored, ok, err := c.state.GetState(ctx, keyLastReset)
	if err != nil {
		return 0, err
	}
	if !ok || stored != today {
		return 0, nil
	}

	raw, ok, err := c.state.GetState(ctx, keyIntake)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	total, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "Counter state corrupted, resetting", "value", raw)
		return 0, nil
	}
	return total, nil
}

// Add increments today's total by amount and returns the new total. Crossing
// midnight between calls rolls the counter over to a fresh day first.
func (c *DailyCounter) Add(ctx context.Context, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, core.ErrInvalidAmount
	}

	current, err := c.Today(ctx)
	if err != nil {
		return 0, err
	}
	total := current + amount

	if err := c.state.SetState(ctx, keyIntake, strconv.FormatInt(total, 10)); err != nil {
		return 0, err
	}
	if err := c.state.SetState(ctx, keyLastReset, c.now().Format(core.DateLayout)); err != nil {
		return 0, err
	}
	return total, nil
}

// Reset zeroes the counter for the current day.
func (c *DailyCounter) Reset(ctx context.Context) error {
	if err := c.state.SetState(ctx, keyIntake, "0"); err != nil {
		return err
	}
	return c.state.SetState(ctx, keyLastReset, c.now().Format(core.DateLayout))
}
