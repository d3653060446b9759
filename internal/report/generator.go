// Package report generates login history reports.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/storage"
)

// DefaultFailureLimit caps the failed attempts listed when options set none.
const DefaultFailureLimit = 20

// Generator creates login history reports.
type Generator struct {
	attempts *storage.AttemptStorage
}

// NewGenerator creates a new report generator.
func NewGenerator(attempts *storage.AttemptStorage) *Generator {
	return &Generator{attempts: attempts}
}

// ReportData holds all data for a report.
type ReportData struct {
	GeneratedAt time.Time
	Since       time.Time
	Until       time.Time

	Summary  model.AttemptStats
	Networks []model.NetworkStats
	Hourly   []model.HourlyStats

	// Failures lists the newest failed attempts of the window.
	Failures      []model.LoginAttempt
	FailureCount  int
	LastSuccess   *model.LoginAttempt
	StatusSummary map[string]int
}

// Generate creates a report for the specified time range.
func (g *Generator) Generate(opts model.ReportOptions) (*ReportData, error) {
	if opts.Until.IsZero() {
		opts.Until = time.Now()
	}
	limit := opts.FailureLimit
	if limit <= 0 {
		limit = DefaultFailureLimit
	}

	data := &ReportData{
		GeneratedAt:   time.Now(),
		Since:         opts.Since,
		Until:         opts.Until,
		StatusSummary: make(map[string]int),
	}

	attempts, err := g.attempts.Query(model.AttemptFilter{Since: opts.Since, Until: opts.Until})
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	data.Summary, data.Networks = summarize(attempts)

	for i := range attempts {
		a := attempts[i]
		data.StatusSummary[a.ResponseStatus]++
		if login.Success(a.ResponseStatus) {
			if data.LastSuccess == nil {
				data.LastSuccess = &a
			}
			continue
		}
		data.FailureCount++
		if len(data.Failures) < limit {
			data.Failures = append(data.Failures, a)
		}
	}

	hourly, err := g.attempts.Hourly(opts.Since)
	if err != nil {
		return nil, fmt.Errorf("failed to get hourly stats: %w", err)
	}
	lastHour := opts.Until.Format("2006-01-02 15")
	for _, h := range hourly {
		if h.Hour <= lastHour {
			data.Hourly = append(data.Hourly, h)
		}
	}

	return data, nil
}

// summarize computes overall and per network totals over attempts, which
// are ordered newest first.
func summarize(attempts []model.LoginAttempt) (model.AttemptStats, []model.NetworkStats) {
	var total model.AttemptStats
	byName := make(map[string]*model.NetworkStats)
	var order []string

	for i := range attempts {
		a := attempts[i]
		ok := login.Success(a.ResponseStatus)

		total.TotalAttempts++
		if ok {
			total.SuccessfulAttempts++
		}
		if total.LastAttempt == nil {
			ts := a.Timestamp
			total.LastAttempt = &ts
		}

		ns, seen := byName[a.NetworkName]
		if !seen {
			ns = &model.NetworkStats{
				NetworkName: a.NetworkName,
				Legacy:      !a.HasNetwork(),
				LastAttempt: a.Timestamp,
			}
			byName[a.NetworkName] = ns
			order = append(order, a.NetworkName)
		}
		ns.TotalAttempts++
		if ok {
			ns.SuccessfulAttempts++
		}
	}

	total.FailedAttempts = total.TotalAttempts - total.SuccessfulAttempts
	total.SuccessRate = model.SuccessRate(total.SuccessfulAttempts, total.TotalAttempts)

	networks := make([]model.NetworkStats, 0, len(order))
	for _, name := range order {
		ns := byName[name]
		ns.FailedAttempts = ns.TotalAttempts - ns.SuccessfulAttempts
		ns.SuccessRate = model.SuccessRate(ns.SuccessfulAttempts, ns.TotalAttempts)
		networks = append(networks, *ns)
	}
	sort.SliceStable(networks, func(i, j int) bool {
		return networks[i].TotalAttempts > networks[j].TotalAttempts
	})

	return total, networks
}
