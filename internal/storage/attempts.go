package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
)

// TimestampLayout is the layout attempt timestamps are written in.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Layouts accepted when reading timestamps back. Older stores and other
// drivers wrote several variants.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

const attemptsTable = "login_attempts"

const createAttemptsTable = `CREATE TABLE login_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT,
	network_name TEXT,
	network_ssid TEXT,
	username TEXT,
	password TEXT,
	a TEXT,
	response_status TEXT,
	response_message TEXT
)`

// networkColumns were added after the first release of the log. Stores
// created before then are upgraded in place.
var networkColumns = []string{"network_name", "network_ssid"}

var attemptIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_login_attempts_timestamp ON login_attempts(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_login_attempts_network ON login_attempts(network_name)`,
}

const attemptColumns = `id, timestamp, network_name, network_ssid, username, password, a, response_status, response_message`

// AttemptStorage handles login attempt persistence.
type AttemptStorage struct {
	db *DB

	mu    sync.Mutex
	ready bool
}

// NewAttemptStorage creates a new attempt storage handler.
func NewAttemptStorage(db *DB) *AttemptStorage {
	return &AttemptStorage{db: db}
}

// EnsureSchema creates the attempts table or adds the network columns a
// legacy table lacks. Existing rows are never rewritten. The check runs once
// per AttemptStorage; later calls return immediately.
func (s *AttemptStorage) EnsureSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	err := s.db.WithLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration: %w", err)
		}
		defer tx.Rollback()

		cols, err := tableColumns(tx, attemptsTable)
		if err != nil {
			return err
		}

		if len(cols) == 0 {
			if _, err := tx.Exec(createAttemptsTable); err != nil {
				return fmt.Errorf("failed to create %s: %w", attemptsTable, err)
			}
		} else {
			for _, col := range networkColumns {
				if cols[col] {
					continue
				}
				stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", attemptsTable, col)
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("failed to add column %s: %w", col, err)
				}
			}
		}

		for _, idx := range attemptIndexes {
			if _, err := tx.Exec(idx); err != nil {
				return fmt.Errorf("failed to execute: %s: %w", idx, err)
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return &StorageError{Op: "ensure schema", Err: err}
	}

	s.ready = true
	return nil
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// tableColumns returns the column names of table, or an empty set when the
// table does not exist.
func tableColumns(q queryer, table string) (map[string]bool, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan schema of %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Record appends an attempt and sets its ID. A zero timestamp is replaced
// with the current time.
func (s *AttemptStorage) Record(a *model.LoginAttempt) error {
	if err := s.EnsureSchema(); err != nil {
		return err
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	query := `INSERT INTO login_attempts
		(timestamp, network_name, network_ssid, username, password, a, response_status, response_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	return s.db.WithLock(func() error {
		result, err := s.db.Exec(query,
			formatTimestamp(a.Timestamp),
			nullString(a.NetworkName), nullString(a.NetworkSSID),
			a.Username, a.Password, a.SessionID,
			a.ResponseStatus, a.ResponseMessage)
		if err != nil {
			return &StorageError{Op: "record attempt", Err: fmt.Errorf("failed to insert attempt: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &StorageError{Op: "record attempt", Err: fmt.Errorf("failed to get last insert ID: %w", err)}
		}
		a.ID = id
		return nil
	})
}

// Recent returns the newest limit attempts, optionally only those of one
// network. A limit of zero or less returns all attempts.
func (s *AttemptStorage) Recent(limit int, network string) ([]model.LoginAttempt, error) {
	return s.Query(model.AttemptFilter{Limit: limit, Network: network})
}

// Latest returns the newest attempt, or nil when the log is empty.
func (s *AttemptStorage) Latest() (*model.LoginAttempt, error) {
	attempts, err := s.Recent(1, "")
	if err != nil || len(attempts) == 0 {
		return nil, err
	}
	return &attempts[0], nil
}

// Query returns attempts matching filter, newest first. Attempts with equal
// timestamps are ordered by descending ID.
func (s *AttemptStorage) Query(filter model.AttemptFilter) ([]model.LoginAttempt, error) {
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Network != "" {
		where = append(where, "network_name = ?")
		args = append(args, filter.Network)
	}
	if !filter.Since.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTimestamp(filter.Since))
	}
	if !filter.Until.IsZero() {
		where = append(where, "timestamp < ?")
		args = append(args, formatTimestamp(filter.Until))
	}
	switch filter.Status {
	case model.StatusFilterSuccess:
		where = append(where, "response_status = ?")
		args = append(args, login.StatusSuccess)
	case model.StatusFilterFailed:
		where = append(where, "(response_status IS NULL OR response_status != ?)")
		args = append(args, login.StatusSuccess)
	}

	query := "SELECT " + attemptColumns + " FROM login_attempts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var attempts []model.LoginAttempt
	err := s.db.WithRLock(func() error {
		rows, err := s.db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("failed to query attempts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAttempt(rows)
			if err != nil {
				return err
			}
			attempts = append(attempts, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &StorageError{Op: "query attempts", Err: err}
	}

	return attempts, nil
}

// AggregateByNetwork returns per network_name totals, including a bucket for
// attempts recorded without a network name. Buckets are ordered by total
// attempts, busiest first.
func (s *AttemptStorage) AggregateByNetwork() ([]model.NetworkStats, error) {
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}

	query := `SELECT network_name,
			COUNT(*),
			COALESCE(SUM(CASE WHEN response_status = ? THEN 1 ELSE 0 END), 0),
			MAX(timestamp)
		FROM login_attempts
		GROUP BY network_name
		ORDER BY COUNT(*) DESC, network_name`

	var stats []model.NetworkStats
	err := s.db.WithRLock(func() error {
		rows, err := s.db.Query(query, login.StatusSuccess)
		if err != nil {
			return fmt.Errorf("failed to aggregate attempts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name sql.NullString
				last sql.NullString
				ns   model.NetworkStats
			)
			if err := rows.Scan(&name, &ns.TotalAttempts, &ns.SuccessfulAttempts, &last); err != nil {
				return fmt.Errorf("failed to scan network stats: %w", err)
			}
			ns.NetworkName = name.String
			ns.Legacy = !name.Valid
			ns.FailedAttempts = ns.TotalAttempts - ns.SuccessfulAttempts
			ns.SuccessRate = model.SuccessRate(ns.SuccessfulAttempts, ns.TotalAttempts)
			if last.Valid {
				ns.LastAttempt, _ = parseTimestamp(last.String)
			}
			stats = append(stats, ns)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &StorageError{Op: "aggregate by network", Err: err}
	}

	return stats, nil
}

// Summary returns totals over all attempts.
func (s *AttemptStorage) Summary() (*model.AttemptStats, error) {
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}

	query := `SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN response_status = ? THEN 1 ELSE 0 END), 0),
			MAX(timestamp)
		FROM login_attempts`

	var (
		stats model.AttemptStats
		last  sql.NullString
	)
	err := s.db.WithRLock(func() error {
		return s.db.QueryRow(query, login.StatusSuccess).Scan(
			&stats.TotalAttempts, &stats.SuccessfulAttempts, &last)
	})
	if err != nil {
		return nil, &StorageError{Op: "summary", Err: fmt.Errorf("failed to summarize attempts: %w", err)}
	}

	stats.FailedAttempts = stats.TotalAttempts - stats.SuccessfulAttempts
	stats.SuccessRate = model.SuccessRate(stats.SuccessfulAttempts, stats.TotalAttempts)
	if last.Valid {
		if t, err := parseTimestamp(last.String); err == nil {
			stats.LastAttempt = &t
		}
	}

	return &stats, nil
}

// Hourly returns attempts grouped by hour since the given time, oldest
// first.
func (s *AttemptStorage) Hourly(since time.Time) ([]model.HourlyStats, error) {
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}

	query := `SELECT strftime('%Y-%m-%d %H', timestamp) AS hour,
			COUNT(*),
			COALESCE(SUM(CASE WHEN response_status = ? THEN 1 ELSE 0 END), 0)
		FROM login_attempts
		WHERE timestamp >= ? AND strftime('%Y-%m-%d %H', timestamp) IS NOT NULL
		GROUP BY hour
		ORDER BY hour`

	var hours []model.HourlyStats
	err := s.db.WithRLock(func() error {
		rows, err := s.db.Query(query, login.StatusSuccess, formatTimestamp(since))
		if err != nil {
			return fmt.Errorf("failed to query hourly stats: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var h model.HourlyStats
			if err := rows.Scan(&h.Hour, &h.TotalAttempts, &h.SuccessfulAttempts); err != nil {
				return fmt.Errorf("failed to scan hourly stats: %w", err)
			}
			h.FailedAttempts = h.TotalAttempts - h.SuccessfulAttempts
			hours = append(hours, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &StorageError{Op: "hourly stats", Err: err}
	}

	return hours, nil
}

// Count returns the number of recorded attempts.
func (s *AttemptStorage) Count() (int, error) {
	if err := s.EnsureSchema(); err != nil {
		return 0, err
	}

	var n int
	err := s.db.WithRLock(func() error {
		return s.db.QueryRow("SELECT COUNT(*) FROM login_attempts").Scan(&n)
	})
	if err != nil {
		return 0, &StorageError{Op: "count", Err: fmt.Errorf("failed to count attempts: %w", err)}
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (model.LoginAttempt, error) {
	var a model.LoginAttempt
	var ts, name, ssid, user, pass, sid, st, msg sql.NullString
	if err := row.Scan(&a.ID, &ts, &name, &ssid, &user, &pass, &sid, &st, &msg); err != nil {
		return a, fmt.Errorf("failed to scan attempt: %w", err)
	}

	if ts.Valid {
		t, err := parseTimestamp(ts.String)
		if err != nil {
			return a, err
		}
		a.Timestamp = t
	}
	a.NetworkName = name.String
	a.NetworkSSID = ssid.String
	a.Username = user.String
	a.Password = pass.String
	a.SessionID = sid.String
	a.ResponseStatus = st.String
	a.ResponseMessage = msg.String

	return a, nil
}

func formatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
