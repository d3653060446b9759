package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// createLegacyTable creates the attempts table as it was before network
// columns existed and fills it with rows.
func createLegacyTable(t *testing.T, db *DB, rows int) {
	t.Helper()
	_, err := db.Exec(`CREATE TABLE login_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		username TEXT,
		password TEXT,
		a TEXT,
		response_status TEXT,
		response_message TEXT
	)`)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	for i := 0; i < rows; i++ {
		_, err := db.Exec(`INSERT INTO login_attempts (timestamp, username, password, a, response_status, response_message)
			VALUES (?, ?, ?, ?, ?, ?)`,
			base.Add(time.Duration(i)*time.Minute).Format("2006-01-02 15:04:05.000000"),
			"olduser", "******", "1709280000", "200", "legacy row")
		require.NoError(t, err)
	}
}

type rowSnapshot struct {
	ID      int64
	Time    string
	User    string
	Status  string
	Message string
	Network *string
	SSID    *string
}

func snapshotRows(t *testing.T, db *DB) []rowSnapshot {
	t.Helper()
	rows, err := db.Query(`SELECT id, timestamp, username, response_status, response_message, network_name, network_ssid
		FROM login_attempts ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var out []rowSnapshot
	for rows.Next() {
		var r rowSnapshot
		require.NoError(t, rows.Scan(&r.ID, &r.Time, &r.User, &r.Status, &r.Message, &r.Network, &r.SSID))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestEnsureSchemaCreatesTable(t *testing.T) {
	db := openTestDB(t)
	s := NewAttemptStorage(db)

	require.NoError(t, s.EnsureSchema())

	cols, err := tableColumns(db, attemptsTable)
	require.NoError(t, err)
	for _, c := range []string{"id", "timestamp", "network_name", "network_ssid", "username", "password", "a", "response_status", "response_message"} {
		assert.True(t, cols[c], c)
	}
}

func TestEnsureSchemaUpgradesLegacyStore(t *testing.T) {
	db := openTestDB(t)
	createLegacyTable(t, db, 3)

	before, err := tableColumns(db, attemptsTable)
	require.NoError(t, err)
	assert.False(t, before["network_name"])

	s := NewAttemptStorage(db)
	require.NoError(t, s.EnsureSchema())

	after := snapshotRows(t, db)
	require.Len(t, after, 3)
	for _, r := range after {
		assert.Equal(t, "olduser", r.User)
		assert.Equal(t, "200", r.Status)
		assert.Equal(t, "legacy row", r.Message)
		assert.Nil(t, r.Network)
		assert.Nil(t, r.SSID)
	}

	attempt := &model.LoginAttempt{
		NetworkName:    "work",
		NetworkSSID:    "OfficeWiFi",
		Username:       "alice",
		Password:       "******",
		SessionID:      "1709290000",
		ResponseStatus: "200",
	}
	require.NoError(t, s.Record(attempt))
	assert.Equal(t, int64(4), attempt.ID)

	rows := snapshotRows(t, db)
	require.Len(t, rows, 4)
	require.NotNil(t, rows[3].Network)
	assert.Equal(t, "work", *rows[3].Network)
	assert.Equal(t, "OfficeWiFi", *rows[3].SSID)
	assert.Equal(t, after, rows[:3])
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	createLegacyTable(t, db, 2)

	require.NoError(t, NewAttemptStorage(db).EnsureSchema())
	colsOnce, err := tableColumns(db, attemptsTable)
	require.NoError(t, err)
	rowsOnce := snapshotRows(t, db)

	// A fresh instance repeats the column check against the upgraded table.
	require.NoError(t, NewAttemptStorage(db).EnsureSchema())
	colsTwice, err := tableColumns(db, attemptsTable)
	require.NoError(t, err)

	assert.Equal(t, colsOnce, colsTwice)
	assert.Equal(t, rowsOnce, snapshotRows(t, db))
}

func TestRecentLimitNewestFirst(t *testing.T) {
	s := NewAttemptStorage(openTestDB(t))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Record(&model.LoginAttempt{
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			NetworkName:    "home",
			Username:       "alice",
			SessionID:      "a",
			ResponseStatus: "200",
		}))
	}

	got, err := s.Recent(5, "")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, a := range got {
		assert.True(t, a.Timestamp.Equal(base.Add(time.Duration(9-i)*time.Minute)), "position %d", i)
	}

	all, err := s.Recent(0, "")
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestRecentTieBreaksByID(t *testing.T) {
	s := NewAttemptStorage(openTestDB(t))

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, s.Record(&model.LoginAttempt{Timestamp: ts, NetworkName: name}))
	}

	got, err := s.Recent(3, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].NetworkName)
	assert.Equal(t, "second", got[1].NetworkName)
	assert.Equal(t, "first", got[2].NetworkName)
}

func TestRecentNetworkFilter(t *testing.T) {
	s := NewAttemptStorage(openTestDB(t))

	for _, name := range []string{"home", "work", "home", ""} {
		require.NoError(t, s.Record(&model.LoginAttempt{NetworkName: name, ResponseStatus: "200"}))
	}

	got, err := s.Recent(10, "home")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, "home", a.NetworkName)
	}
}

func TestQueryFilters(t *testing.T) {
	s := NewAttemptStorage(openTestDB(t))

	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local)
	statuses := []string{"200", "FAILED", "500", "200"}
	for i, st := range statuses {
		require.NoError(t, s.Record(&model.LoginAttempt{
			Timestamp:      base.Add(time.Duration(i) * 24 * time.Hour),
			NetworkName:    "home",
			ResponseStatus: st,
		}))
	}

	ok, err := s.Query(model.AttemptFilter{Status: model.StatusFilterSuccess})
	require.NoError(t, err)
	assert.Len(t, ok, 2)

	failed, err := s.Query(model.AttemptFilter{Status: model.StatusFilterFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 2)

	window, err := s.Query(model.AttemptFilter{
		Since: base.Add(24 * time.Hour),
		Until: base.Add(3 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "500", window[0].ResponseStatus)
	assert.Equal(t, "FAILED", window[1].ResponseStatus)
}

func TestAggregateByNetwork(t *testing.T) {
	db := openTestDB(t)
	createLegacyTable(t, db, 2)
	s := NewAttemptStorage(db)

	records := []model.LoginAttempt{
		{NetworkName: "home", ResponseStatus: login.StatusSuccess},
		{NetworkName: "home", ResponseStatus: login.StatusSuccess},
		{NetworkName: "home", ResponseStatus: login.StatusFailed},
		{NetworkName: "work", ResponseStatus: login.StatusFailed},
	}
	for i := range records {
		require.NoError(t, s.Record(&records[i]))
	}

	stats, err := s.AggregateByNetwork()
	require.NoError(t, err)
	require.Len(t, stats, 3)

	byName := make(map[string]model.NetworkStats)
	for _, ns := range stats {
		byName[ns.DisplayName()] = ns
	}

	home := byName["home"]
	assert.Equal(t, 3, home.TotalAttempts)
	assert.Equal(t, 2, home.SuccessfulAttempts)
	assert.Equal(t, 1, home.FailedAttempts)
	assert.Equal(t, 66.67, home.SuccessRate)
	assert.False(t, home.LastAttempt.IsZero())

	work := byName["work"]
	assert.Equal(t, 1, work.TotalAttempts)
	assert.Equal(t, 0, work.SuccessfulAttempts)

	legacy := byName["(legacy)"]
	assert.True(t, legacy.Legacy)
	assert.Equal(t, 2, legacy.TotalAttempts)
	assert.Equal(t, 2, legacy.SuccessfulAttempts)
	assert.True(t, time.Date(2024, 3, 1, 8, 1, 0, 0, time.Local).Equal(legacy.LastAttempt))

	assert.Equal(t, "home", stats[0].NetworkName)
}

func TestSummaryAndCount(t *testing.T) {
	s := NewAttemptStorage(openTestDB(t))

	empty, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalAttempts)
	assert.Nil(t, empty.LastAttempt)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	for _, st := range []string{"200", "FAILED", "200", "200"} {
		require.NoError(t, s.Record(&model.LoginAttempt{NetworkName: "home", ResponseStatus: st}))
	}

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalAttempts)
	assert.Equal(t, 3, sum.SuccessfulAttempts)
	assert.Equal(t, 1, sum.FailedAttempts)
	assert.Equal(t, 75.0, sum.SuccessRate)
	assert.NotNil(t, sum.LastAttempt)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestHourly(t *testing.T) {
	s := NewAttemptStorage(openTestDB(t))

	base := time.Date(2024, 7, 2, 10, 15, 0, 0, time.Local)
	times := []time.Duration{0, 10 * time.Minute, time.Hour, 26 * time.Hour}
	for _, d := range times {
		require.NoError(t, s.Record(&model.LoginAttempt{Timestamp: base.Add(d), ResponseStatus: "200"}))
	}

	hours, err := s.Hourly(base)
	require.NoError(t, err)
	require.Len(t, hours, 3)
	assert.Equal(t, "2024-07-02 10", hours[0].Hour)
	assert.Equal(t, 2, hours[0].TotalAttempts)
	assert.Equal(t, "2024-07-02 11", hours[1].Hour)
	assert.Equal(t, "2024-07-03 12", hours[2].Hour)
}

func TestStorageErrorsSurface(t *testing.T) {
	db := openTestDB(t)
	s := NewAttemptStorage(db)
	require.NoError(t, db.Close())

	err := s.Record(&model.LoginAttempt{NetworkName: "home"})
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "ensure schema", serr.Op)
}

func TestOpenUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := Open(filepath.Join(blocker, "wifi_log.db"))
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "open", serr.Op)
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-01-02 15:04:05.123456",
		"2024-01-02 15:04:05",
		"2024-01-02T15:04:05.123456",
		"2024-01-02T15:04:05Z",
	} {
		_, err := parseTimestamp(s)
		assert.NoError(t, err, s)
	}
	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}
