// Package model defines core data structures for wifiauth.
package model

import "time"

// LoginAttempt is one persisted execution of the login procedure. Rows are
// append-only.
type LoginAttempt struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	// NetworkName and NetworkSSID are empty for rows written before the
	// store carried network columns.
	NetworkName     string `json:"network_name"`
	NetworkSSID     string `json:"network_ssid"`
	Username        string `json:"username"`
	Password        string `json:"-"`
	SessionID       string `json:"a"`
	ResponseStatus  string `json:"response_status"`
	ResponseMessage string `json:"response_message"`
}

// HasNetwork reports whether the attempt carries a network profile name.
func (a LoginAttempt) HasNetwork() bool {
	return a.NetworkName != ""
}

// AttemptFilter narrows attempt queries.
type AttemptFilter struct {
	Limit   int
	Network string
	Since   time.Time
	Until   time.Time
	// Status is "success", "failed" or empty for both.
	Status string
}

// Status filter values.
const (
	StatusFilterSuccess = "success"
	StatusFilterFailed  = "failed"
)

// AttemptStats holds totals over all attempts.
type AttemptStats struct {
	TotalAttempts      int        `json:"total_attempts"`
	SuccessfulAttempts int        `json:"successful_attempts"`
	FailedAttempts     int        `json:"failed_attempts"`
	SuccessRate        float64    `json:"success_rate"`
	LastAttempt        *time.Time `json:"last_attempt"`
}

// NetworkStats holds totals for one network_name bucket. Legacy is set for
// the bucket of rows without a network name.
type NetworkStats struct {
	NetworkName        string    `json:"network_name"`
	Legacy             bool      `json:"legacy"`
	TotalAttempts      int       `json:"total_attempts"`
	SuccessfulAttempts int       `json:"successful_attempts"`
	FailedAttempts     int       `json:"failed_attempts"`
	SuccessRate        float64   `json:"success_rate"`
	LastAttempt        time.Time `json:"last_attempt"`
}

// DisplayName returns the bucket label used by views.
func (s NetworkStats) DisplayName() string {
	if s.Legacy {
		return "(legacy)"
	}
	return s.NetworkName
}

// HourlyStats is one hour bucket of attempts.
type HourlyStats struct {
	Hour               string `json:"hour"`
	TotalAttempts      int    `json:"total_attempts"`
	SuccessfulAttempts int    `json:"successful_attempts"`
	FailedAttempts     int    `json:"failed_attempts"`
}

// SuccessRate returns successes/total as a percentage rounded to two
// decimals.
func SuccessRate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(successes) / float64(total) * 100
	return float64(int64(rate*100+0.5)) / 100
}

// ReportOptions defines options for report generation.
type ReportOptions struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
	// FailureLimit caps the failed attempts listed in the report.
	FailureLimit int `json:"failure_limit"`
}
