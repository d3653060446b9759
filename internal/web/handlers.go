package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/report"
	"github.com/user/wifiauth/internal/storage"
	"github.com/user/wifiauth/internal/util"
)

const (
	defaultAttemptLimit = 50
	maxAttemptLimit     = 1000
	defaultHourlyDays   = 7
	maxHourlyDays       = 365
	dashboardRecent     = 10
)

// Handlers contains HTTP handlers.
type Handlers struct {
	attempts *storage.AttemptStorage
	now      func() time.Time
}

// NewHandlers creates new handlers.
func NewHandlers(attempts *storage.AttemptStorage) *Handlers {
	return &Handlers{
		attempts: attempts,
		now:      time.Now,
	}
}

// Dashboard serves the main dashboard page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	recent, err := h.attempts.Recent(dashboardRecent, "")
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	stats, err := h.attempts.Summary()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	networks, err := h.attempts.AggregateByNetwork()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		GeneratedAt: h.now(),
		Stats:       stats,
		Networks:    networks,
		Recent:      recent,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		util.Error("Failed to render dashboard: %v", err)
	}
}

// APIAttempts returns filtered attempts, newest first.
func (h *Handlers) APIAttempts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAttemptFilter(r)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	attempts, err := h.attempts.Query(filter)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if attempts == nil {
		attempts = []model.LoginAttempt{}
	}

	writeJSON(w, map[string]any{"attempts": attempts})
}

// APIStats returns overall totals.
func (h *Handlers) APIStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.attempts.Summary()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"stats": stats})
}

// APINetworkStats returns per network totals.
func (h *Handlers) APINetworkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.attempts.AggregateByNetwork()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []model.NetworkStats{}
	}
	writeJSON(w, map[string]any{"network_stats": stats})
}

// APIHourlyStats returns hourly buckets for the last days (default 7).
func (h *Handlers) APIHourlyStats(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", defaultHourlyDays, 1, maxHourlyDays)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	hourly, err := h.attempts.Hourly(h.now().AddDate(0, 0, -days))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if hourly == nil {
		hourly = []model.HourlyStats{}
	}
	writeJSON(w, map[string]any{"hourly_stats": hourly})
}

// DownloadReport generates a markdown report over ?last= (default 24h).
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if v := r.URL.Query().Get("last"); v != "" {
		d, err := util.ParseDuration(v)
		if err != nil {
			writeError(w, fmt.Errorf("invalid last: %w", err), http.StatusBadRequest)
			return
		}
		window = d
	}

	now := h.now()
	gen := report.NewGenerator(h.attempts)
	data, err := gen.Generate(model.ReportOptions{Since: now.Add(-window), Until: now})
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	content := report.FormatMarkdown(data)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=wifiauth_report.md")
	w.Write([]byte(content))
}

// Health reports liveness. It needs no credentials.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

func parseAttemptFilter(r *http.Request) (model.AttemptFilter, error) {
	q := r.URL.Query()
	filter := model.AttemptFilter{Network: q.Get("network_filter")}

	limit, err := intParam(r, "limit", defaultAttemptLimit, 1, maxAttemptLimit)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit

	switch status := q.Get("status_filter"); status {
	case "", model.StatusFilterSuccess, model.StatusFilterFailed:
		filter.Status = status
	default:
		return filter, fmt.Errorf("invalid status_filter %q: want success or failed", status)
	}

	if v := q.Get("start_date"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date: %w", err)
		}
		filter.Since = t
	}
	if v := q.Get("end_date"); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date: %w", err)
		}
		// A bare date covers the whole day.
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Microsecond)
		}
		filter.Until = t
	}

	return filter, nil
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// parseDate parses v in local time and reports whether it was a bare date.
func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t, true, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", v)
}

func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s %q: want %d-%d", name, v, lo, hi)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
