// Package util provides common utilities for wifiauth.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir    string `mapstructure:"data_dir"`
	LogLevel   string `mapstructure:"log_level"`
	LogFile    string `mapstructure:"log_file"`
	LogConsole bool   `mapstructure:"log_console"`
	Database   string `mapstructure:"database"`
	ReportDir  string `mapstructure:"report_dir"`

	Login     LoginConfig     `mapstructure:"login"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`

	// ConfigFile is the document viper read, if any. Network profiles are
	// parsed from the same file.
	ConfigFile string `mapstructure:"-"`
}

// LoginConfig controls the portal HTTP calls.
type LoginConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	TestTimeout time.Duration `mapstructure:"test_timeout"`
}

// WatchConfig controls periodic re-authentication.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	ProbeURL string        `mapstructure:"probe_url"`
}

// DashboardConfig is the dashboard block of the config document.
type DashboardConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Addr returns host:port for the dashboard listener.
func (d DashboardConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// DefaultDashboardPassword is used when the config has no dashboard block.
const DefaultDashboardPassword = "admin123"

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".wifiauth")

	return &Config{
		DataDir:    dataDir,
		LogLevel:   "info",
		LogFile:    filepath.Join(dataDir, "wifiauth.log"),
		LogConsole: true,
		Database:   filepath.Join(dataDir, "wifi_log.db"),
		ReportDir:  filepath.Join(dataDir, "reports"),

		Login: LoginConfig{
			Timeout:     10 * time.Second,
			TestTimeout: 5 * time.Second,
		},
		Watch: WatchConfig{
			Interval: 5 * time.Minute,
			ProbeURL: "http://connectivitycheck.gstatic.com/generate_204",
		},
		Dashboard: DashboardConfig{
			Host:     "127.0.0.1",
			Port:     8000,
			Username: "admin",
			Password: DefaultDashboardPassword,
		},
	}
}

// LoadConfig loads configuration from file and environment. An explicit
// path wins over the search locations.
func LoadConfig(path string) (*Config, error) {
	return loadConfig(viper.GetViper(), path)
}

func loadConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(cfg.DataDir)
	}

	v.SetEnvPrefix("wifiauth")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_console", cfg.LogConsole)
	v.SetDefault("login.timeout", cfg.Login.Timeout)
	v.SetDefault("login.test_timeout", cfg.Login.TestTimeout)
	v.SetDefault("watch.interval", cfg.Watch.Interval)
	v.SetDefault("watch.probe_url", cfg.Watch.ProbeURL)
	v.SetDefault("dashboard.host", cfg.Dashboard.Host)
	v.SetDefault("dashboard.port", cfg.Dashboard.Port)
	v.SetDefault("dashboard.username", cfg.Dashboard.Username)
	v.SetDefault("dashboard.password", cfg.Dashboard.Password)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	// Paths derived from data_dir follow it unless set explicitly.
	if !v.IsSet("log_file") {
		cfg.LogFile = filepath.Join(cfg.DataDir, "wifiauth.log")
	}
	if !v.IsSet("database") {
		cfg.Database = filepath.Join(cfg.DataDir, "wifi_log.db")
	}
	if !v.IsSet("report_dir") {
		cfg.ReportDir = filepath.Join(cfg.DataDir, "reports")
	}

	if err := EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
