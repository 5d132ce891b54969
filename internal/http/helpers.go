package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bebaagua/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseYearMonth extracts year and month from query parameters, defaulting
// to the current year and month.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	return year, month
}

// parseDateParam reads the "date" query parameter, defaulting to today.
func parseDateParam(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		return v
	}
	return time.Now().Format(core.DateLayout)
}

// periodFromQuery builds the filter for a "period" query parameter. The date
// parameter anchors day and week periods; year/month parameters anchor the
// rest.
func periodFromQuery(r *http.Request) (core.PeriodFilter, error) {
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	switch period {
	case "", "day":
		return core.DayFilter{Date: parseDateParam(r)}, nil
	case "week":
		return core.WeekFilter{Date: parseDateParam(r)}, nil
	case "month":
		year, month := parseYearMonth(r)
		return core.MonthFilter{Year: year, Month: month}, nil
	case "year":
		year, _ := parseYearMonth(r)
		return core.YearFilter{Year: year}, nil
	}
	return nil, fmt.Errorf("unknown period %q", period)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
