package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
data_dir: ` + dir + `
log_level: debug
login:
  timeout: 3s
dashboard:
  port: 9090
  username: root
networks:
  home:
    ssid: HomeWiFi
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Login.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Login.TestTimeout)
	assert.Equal(t, 9090, cfg.Dashboard.Port)
	assert.Equal(t, "root", cfg.Dashboard.Username)
	assert.Equal(t, DefaultDashboardPassword, cfg.Dashboard.Password)
	assert.Equal(t, "127.0.0.1:9090", cfg.Dashboard.Addr())
	assert.Equal(t, filepath.Join(dir, "wifi_log.db"), cfg.Database)
	assert.Equal(t, filepath.Join(dir, "wifiauth.log"), cfg.LogFile)
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	doc := `{"data_dir": "` + dir + `", "wifi_url": "http://10.0.0.1/login", "dashboard": {"port": 8001}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Dashboard.Port)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":    LevelDebug,
		"INFO":     LevelInfo,
		"warning":  LevelWarn,
		"CRITICAL": LevelError,
		"bogus":    LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"90m": 90 * time.Minute,
		"24h": 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"2w":  14 * 24 * time.Hour,
	}
	for in, want := range tests {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "soon", "-1h", "0d"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogOptions{Level: LevelWarn, Console: true, Output: &buf})

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN: shown 2")
}

func TestLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := NewLogger(LogOptions{Level: LevelDebug, File: path})
	l.Debug("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG: to file")
	assert.True(t, FileExists(path))
}
