package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifiauth/internal/model"
)

type fakeSource struct {
	stats []model.NetworkStats
	err   error
}

func (f fakeSource) AggregateByNetwork() ([]model.NetworkStats, error) {
	return f.stats, f.err
}

func scrape(t *testing.T, source StatsSource) (int, string) {
	t.Helper()
	srv := httptest.NewServer(Handler(NewRegistry(source)))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAttemptCollector(t *testing.T) {
	last := time.Unix(1700000000, 0)
	_, body := scrape(t, fakeSource{stats: []model.NetworkStats{
		{NetworkName: "work", TotalAttempts: 1, LastAttempt: last},
		{Legacy: true, TotalAttempts: 3, SuccessfulAttempts: 2},
	}})

	assert.Contains(t, body, `wifiauth_login_attempts_total{network="work"} 1`)
	assert.Contains(t, body, `wifiauth_login_successes_total{network="work"} 0`)
	assert.Contains(t, body, `wifiauth_last_attempt_timestamp_seconds{network="work"} 1.7e+09`)
	assert.Contains(t, body, `wifiauth_login_attempts_total{network="(legacy)"} 3`)
	assert.NotContains(t, body, `wifiauth_last_attempt_timestamp_seconds{network="(legacy)"}`)
	assert.Contains(t, body, "go_goroutines")
}

func TestAttemptCollectorError(t *testing.T) {
	status, _ := scrape(t, fakeSource{err: errors.New("database is locked")})
	assert.Equal(t, 500, status)
}
