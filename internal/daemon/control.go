package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// StatusFileName is the watcher status snapshot inside the data directory.
const StatusFileName = "status.json"

// ErrNotRunning is returned by SendStop when no watcher is alive.
var ErrNotRunning = errors.New("watcher is not running")

// CheckRunning reports whether the pid file names a live process.
func CheckRunning(dataDir string) (bool, int) {
	data, err := os.ReadFile(filepath.Join(dataDir, PIDFileName))
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// Signal 0 only checks that the process exists.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, 0
	}

	return true, pid
}

// SendStop sends SIGTERM to the running watcher.
func SendStop(dataDir string) (int, error) {
	running, pid := CheckRunning(dataDir)
	if !running {
		return 0, ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("failed to send signal: %w", err)
	}

	return pid, nil
}

// StatusFile holds serialized watcher status.
type StatusFile struct {
	Running     bool        `json:"running"`
	PID         int         `json:"pid"`
	StartTime   string      `json:"start_time"`
	Uptime      string      `json:"uptime"`
	LastNetwork string      `json:"last_network,omitempty"`
	LastStatus  string      `json:"last_status,omitempty"`
	Jobs        []JobStatus `json:"jobs"`
}

// WriteStatusFile writes the watcher status to the data directory.
func WriteStatusFile(dataDir string, status *DaemonStatus) error {
	sf := StatusFile{
		Running:     status.Running,
		PID:         status.PID,
		StartTime:   status.StartTime.Format("2006-01-02 15:04:05"),
		Uptime:      status.Uptime.Round(time.Second).String(),
		LastNetwork: status.LastNetwork,
		LastStatus:  status.LastStatus,
		Jobs:        status.Jobs,
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dataDir, StatusFileName), data, 0644)
}

// ReadStatusFile reads the watcher status from the data directory.
func ReadStatusFile(dataDir string) (*StatusFile, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, StatusFileName))
	if err != nil {
		return nil, err
	}

	var sf StatusFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	return &sf, nil
}
