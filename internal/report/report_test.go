package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/storage"
)

func seededGenerator(t *testing.T) (*Generator, time.Time) {
	t.Helper()
	db, err := storage.Initialize(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewAttemptStorage(db)

	now := time.Now().Truncate(time.Second)
	records := []model.LoginAttempt{
		{Timestamp: now.Add(-48 * time.Hour), NetworkName: "home", ResponseStatus: login.StatusFailed},
		{Timestamp: now.Add(-3 * time.Hour), NetworkName: "home", ResponseStatus: login.StatusSuccess},
		{Timestamp: now.Add(-2 * time.Hour), NetworkName: "work", NetworkSSID: "OfficeWiFi", ResponseStatus: login.StatusFailed, ResponseMessage: "timeout | retry"},
		{Timestamp: now.Add(-time.Hour), NetworkName: "home", ResponseStatus: login.StatusSuccess},
		{Timestamp: now.Add(-30 * time.Minute), ResponseStatus: "500", ResponseMessage: "Unknown response"},
	}
	for i := range records {
		require.NoError(t, store.Record(&records[i]))
	}
	return NewGenerator(store), now
}

func TestGenerateWindow(t *testing.T) {
	gen, now := seededGenerator(t)

	data, err := gen.Generate(model.ReportOptions{Since: now.Add(-24 * time.Hour), Until: now.Add(time.Minute)})
	require.NoError(t, err)

	assert.Equal(t, 4, data.Summary.TotalAttempts)
	assert.Equal(t, 2, data.Summary.SuccessfulAttempts)
	assert.Equal(t, 2, data.Summary.FailedAttempts)
	assert.Equal(t, 50.0, data.Summary.SuccessRate)

	require.Len(t, data.Networks, 3)
	assert.Equal(t, "home", data.Networks[0].NetworkName)
	assert.Equal(t, 2, data.Networks[0].TotalAttempts)

	assert.Equal(t, 2, data.FailureCount)
	require.Len(t, data.Failures, 2)
	assert.Equal(t, "500", data.Failures[0].ResponseStatus)
	require.NotNil(t, data.LastSuccess)
	assert.Equal(t, "home", data.LastSuccess.NetworkName)
	assert.Equal(t, 1, data.StatusSummary["500"])
	assert.NotEmpty(t, data.Hourly)
}

func TestGenerateFailureLimit(t *testing.T) {
	gen, now := seededGenerator(t)

	data, err := gen.Generate(model.ReportOptions{Since: now.Add(-72 * time.Hour), FailureLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, data.FailureCount)
	assert.Len(t, data.Failures, 1)
}

func TestFormatMarkdown(t *testing.T) {
	gen, now := seededGenerator(t)

	data, err := gen.Generate(model.ReportOptions{Since: now.Add(-24 * time.Hour)})
	require.NoError(t, err)

	md := FormatMarkdown(data)
	assert.True(t, strings.HasPrefix(md, "# WiFi Login Report"))
	assert.Contains(t, md, "| Total attempts | 4 |")
	assert.Contains(t, md, "| work | 1 | 0 | 1 | 0.00% |")
	assert.Contains(t, md, "(legacy)")
	assert.Contains(t, md, `timeout \| retry`)
	assert.Contains(t, md, "pie title Login outcomes")
	assert.Contains(t, md, "xychart-beta")
}

func TestFormatMarkdownEmpty(t *testing.T) {
	md := FormatMarkdown(&ReportData{GeneratedAt: time.Now()})
	assert.Contains(t, md, "No login attempts")
	assert.NotContains(t, md, "mermaid")
}

func TestWriteMarkdownFile(t *testing.T) {
	gen, now := seededGenerator(t)
	data, err := gen.Generate(model.ReportOptions{Since: now.Add(-24 * time.Hour)})
	require.NoError(t, err)

	path, err := WriteMarkdownFile(data, t.TempDir()+"/reports")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown(data), string(content))
}

func TestGenerateHourlyChart(t *testing.T) {
	chart := GenerateHourlyChart([]model.HourlyStats{
		{Hour: "2024-07-02 10", TotalAttempts: 3, FailedAttempts: 1},
		{Hour: "2024-07-02 11", TotalAttempts: 1},
	})
	assert.Contains(t, chart, `x-axis ["07-02 10h", "07-02 11h"]`)
	assert.Contains(t, chart, "bar [3, 1]")
	assert.Contains(t, chart, "line [1, 0]")
	assert.Contains(t, chart, "0 --> 4")

	assert.Empty(t, GenerateHourlyChart(nil))
}
