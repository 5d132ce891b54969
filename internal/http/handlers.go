package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bebaagua/internal/core"
)

// statusFor maps domain errors to HTTP statuses. Validation failures are the
// caller's fault; everything else is a storage problem.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidWeight),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidInterval):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "op", op, "error", err)
	}
	writeError(w, status, err.Error())
}

type addIntakeRequest struct {
	Amount int64 `json:"amount_ml"`
}

// handleIntake serves POST (add a record) and GET (period history).
func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.addIntake(w, r)
	case http.MethodGet:
		s.listIntake(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// addIntake appends one record. An absent or zero amount means "one cup" at
// the configured cup size.
func (s *Server) addIntake(w http.ResponseWriter, r *http.Request) {
	var req addIntakeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	amount := req.Amount
	if amount == 0 {
		amount = s.svc.Settings(r.Context()).CupSize
	}

	result, err := s.svc.AddIntake(r.Context(), amount)
	if err != nil {
		s.fail(w, r, err, "add intake")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) listIntake(w http.ResponseWriter, r *http.Request) {
	filter, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.svc.History(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err, "list intake")
		return
	}
	if records == nil {
		records = []core.IntakeRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.svc.Progress(r.Context())
	if err != nil {
		s.fail(w, r, err, "progress")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type settingsPayload struct {
	Weight           float64 `json:"weight_kg"`
	CupSize          int64   `json:"cup_size_ml"`
	DailyGoal        int64   `json:"daily_goal_ml"`
	RemindersEnabled bool    `json:"reminders_enabled"`
	ReminderInterval int     `json:"reminder_interval_hours"`
}

func settingsToPayload(s core.UserSettings) settingsPayload {
	return settingsPayload{
		Weight:           s.Weight,
		CupSize:          s.CupSize,
		DailyGoal:        s.DailyGoal,
		RemindersEnabled: s.RemindersEnabled,
		ReminderInterval: s.ReminderInterval,
	}
}

// handleSettings serves GET (current settings) and PUT (replace settings).
// The daily goal in a PUT body is ignored; it is derived from the weight.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, settingsToPayload(s.svc.Settings(r.Context())))
	case http.MethodPut:
		var payload settingsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		saved, err := s.svc.SaveSettings(r.Context(), core.UserSettings{
			Weight:           payload.Weight,
			CupSize:          payload.CupSize,
			RemindersEnabled: payload.RemindersEnabled,
			ReminderInterval: payload.ReminderInterval,
		})
		if err != nil {
			s.fail(w, r, err, "save settings")
			return
		}
		writeJSON(w, http.StatusOK, settingsToPayload(saved))
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleRecords serves DELETE: wipe the whole record log.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := s.svc.ClearAll(r.Context()); err != nil {
		s.fail(w, r, err, "clear records")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	filter, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := s.svc.DailySummaries(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err, "daily stats")
		return
	}
	if summaries == nil {
		summaries = []core.DailySummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	week, err := s.svc.WeekStats(r.Context(), parseDateParam(r))
	if err != nil {
		s.fail(w, r, err, "weekly stats")
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, _ := parseYearMonth(r)

	totals, err := s.svc.MonthlyTotals(r.Context(), year)
	if err != nil {
		s.fail(w, r, err, "monthly stats")
		return
	}
	if totals == nil {
		totals = []core.MonthlyTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleYearlyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.YearlyStats(r.Context())
	if err != nil {
		s.fail(w, r, err, "yearly stats")
		return
	}
	if stats == nil {
		stats = []core.YearlyStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.svc.CurrentStreak(r.Context())
	if err != nil {
		s.fail(w, r, err, "streak")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak_days": streak})
}

func (s *Server) handleAvailableYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.svc.AvailableYears(r.Context())
	if err != nil {
		s.fail(w, r, err, "available years")
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, years)
}

func (s *Server) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	year, _ := parseYearMonth(r)

	months, err := s.svc.AvailableMonths(r.Context(), year)
	if err != nil {
		s.fail(w, r, err, "available months")
		return
	}
	if months == nil {
		months = []int{}
	}
	writeJSON(w, http.StatusOK, months)
}
