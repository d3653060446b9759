package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/storage"
	"github.com/user/wifiauth/internal/util"
)

var base = time.Date(2024, 7, 2, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T, password string) *httptest.Server {
	t.Helper()
	db, err := storage.Initialize(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewAttemptStorage(db)

	records := []model.LoginAttempt{
		{Timestamp: base.AddDate(0, 0, -1), Username: "u0", ResponseStatus: login.StatusSuccess},
		{Timestamp: base, NetworkName: "home", NetworkSSID: "HomeWiFi", Username: "u1", Password: "secret", ResponseStatus: login.StatusSuccess},
		{Timestamp: base.Add(time.Hour), NetworkName: "work", NetworkSSID: "OfficeWiFi", Username: "u2", ResponseStatus: login.StatusFailed, ResponseMessage: "timeout"},
		{Timestamp: base.Add(2 * time.Hour), NetworkName: "home", NetworkSSID: "HomeWiFi", Username: "u1", ResponseStatus: "500"},
	}
	for i := range records {
		require.NoError(t, store.Record(&records[i]))
	}

	srv := NewServer(store, util.DashboardConfig{Username: "admin", Password: password})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, auth bool) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if auth {
		req.SetBasicAuth("admin", "admin123")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, "admin123")

	for _, path := range []string{"/", "/api/attempts", "/api/stats", "/api/network-stats", "/api/hourly-stats", "/report", "/metrics"} {
		resp, _ := get(t, ts, path, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic", path)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/stats", nil)
	req.SetBasicAuth("admin", "wrong")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t, "admin123")

	resp, body := get(t, ts, "/health", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "healthy", out["status"])
	assert.NotEmpty(t, out["timestamp"])
}

func TestBcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	ts := newTestServer(t, string(hash))

	resp, _ := get(t, ts, "/api/stats", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type attemptsResponse struct {
	Attempts []map[string]any `json:"attempts"`
}

func TestAPIAttempts(t *testing.T) {
	ts := newTestServer(t, "admin123")

	resp, body := get(t, ts, "/api/attempts", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out attemptsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Attempts, 4)
	assert.Equal(t, "500", out.Attempts[0]["response_status"])
	assert.NotContains(t, out.Attempts[1], "password")
	assert.Contains(t, out.Attempts[1], "a")

	_, body = get(t, ts, "/api/attempts?network_filter=home&status_filter=success", true)
	out = attemptsResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Attempts, 1)
	assert.Equal(t, "HomeWiFi", out.Attempts[0]["network_ssid"])

	_, body = get(t, ts, "/api/attempts?status_filter=failed", true)
	out = attemptsResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Attempts, 2)

	_, body = get(t, ts, "/api/attempts?limit=2", true)
	out = attemptsResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Attempts, 2)
}

func TestAPIAttemptsDateRange(t *testing.T) {
	ts := newTestServer(t, "admin123")

	_, body := get(t, ts, "/api/attempts?start_date=2024-07-02&end_date=2024-07-02", true)
	var out attemptsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Attempts, 3)

	_, body = get(t, ts, "/api/attempts?end_date=2024-07-01", true)
	out = attemptsResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Attempts, 1)
	assert.Equal(t, "u0", out.Attempts[0]["username"])

	_, body = get(t, ts, "/api/attempts?start_date=2024-07-02T11:00:00", true)
	out = attemptsResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Attempts, 2)
}

func TestAPIAttemptsBadParams(t *testing.T) {
	ts := newTestServer(t, "admin123")

	for _, q := range []string{"limit=0", "limit=abc", "status_filter=maybe", "start_date=yesterday"} {
		resp, body := get(t, ts, "/api/attempts?"+q, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, string(body), "error", q)
	}
}

func TestAPIStats(t *testing.T) {
	ts := newTestServer(t, "admin123")

	_, body := get(t, ts, "/api/stats", true)
	var out struct {
		Stats model.AttemptStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 4, out.Stats.TotalAttempts)
	assert.Equal(t, 2, out.Stats.SuccessfulAttempts)
	assert.Equal(t, 50.0, out.Stats.SuccessRate)
}

func TestAPINetworkStats(t *testing.T) {
	ts := newTestServer(t, "admin123")

	_, body := get(t, ts, "/api/network-stats", true)
	var out struct {
		NetworkStats []model.NetworkStats `json:"network_stats"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.NetworkStats, 3)
	assert.Equal(t, "home", out.NetworkStats[0].NetworkName)
	assert.Equal(t, 2, out.NetworkStats[0].TotalAttempts)
	assert.Equal(t, 50.0, out.NetworkStats[0].SuccessRate)
}

func TestAPIHourlyStats(t *testing.T) {
	ts := newTestServer(t, "admin123")

	resp, body := get(t, ts, "/api/hourly-stats?days=3", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"hourly_stats":[`)

	resp, _ = get(t, ts, "/api/hourly-stats?days=0", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardPage(t *testing.T) {
	ts := newTestServer(t, "admin123")

	resp, body := get(t, ts, "/", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	page := string(body)
	assert.Contains(t, page, "WiFi Auth Dashboard")
	assert.Contains(t, page, "OfficeWiFi")
	assert.Contains(t, page, "(legacy)")
	assert.NotContains(t, page, "secret")
}

func TestDownloadReport(t *testing.T) {
	ts := newTestServer(t, "admin123")

	resp, body := get(t, ts, "/report?last=30d", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "wifiauth_report.md")
	assert.True(t, strings.HasPrefix(string(body), "# WiFi Login Report"))

	resp, _ = get(t, ts, "/report?last=forever", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, "admin123")

	get(t, ts, "/health", false)
	resp, body := get(t, ts, "/metrics", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `wifiauth_login_attempts_total{network="home"} 2`)
	assert.Contains(t, string(body), `wifiauth_http_requests_total{code="200",method="GET",route="/health"}`)
}

func TestBasicAuthCheck(t *testing.T) {
	auth := NewBasicAuth("admin", "admin123")
	assert.True(t, auth.Check("admin", "admin123"))
	assert.False(t, auth.Check("root", "admin123"))
	assert.False(t, auth.Check("admin", ""))
}
