// Package daemon runs the foreground watch loop that re-authenticates when
// the captive portal starts intercepting traffic.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/user/wifiauth/internal/portal"
	"github.com/user/wifiauth/internal/util"
)

// PIDFileName is the pid file written inside the data directory.
const PIDFileName = "wifiauth.pid"

// ErrAlreadyRunning is returned when another watcher holds the pid file.
var ErrAlreadyRunning = errors.New("watcher already running")

// Options configures a Daemon.
type Options struct {
	DataDir  string
	Interval time.Duration
	ProbeURL string
	// Network forces a profile for every login; empty resolves by SSID.
	Network       string
	Prober        Prober
	Authenticator Authenticator
}

// Daemon manages the watch loop.
type Daemon struct {
	opts      Options
	scheduler *Scheduler
	pidFile   string
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	startTime time.Time
	last      *portal.Outcome
	mu        sync.RWMutex
}

// New creates a new daemon instance.
func New(opts Options) (*Daemon, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive, got %s", opts.Interval)
	}
	if opts.Prober == nil || opts.Authenticator == nil {
		return nil, errors.New("watch needs a prober and an authenticator")
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		opts:    opts,
		pidFile: filepath.Join(opts.DataDir, PIDFileName),
		ctx:     ctx,
		cancel:  cancel,
	}

	d.scheduler = NewScheduler(ctx)
	d.scheduler.OnFinish(func(*Job) {
		if !d.IsRunning() {
			return
		}
		if err := WriteStatusFile(opts.DataDir, d.GetStatus()); err != nil {
			util.Warn("Failed to write status file: %v", err)
		}
	})

	return d, nil
}

// Start writes the pid file and starts the scheduler.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	if running, pid := CheckRunning(d.opts.DataDir); running && pid != os.Getpid() {
		d.mu.Unlock()
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	util.Info("Watcher starting, interval %s", d.opts.Interval)

	d.registerJobs()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.scheduler.Run()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.handleSignals()
	}()

	util.Info("Watcher started with PID %d", os.Getpid())

	return nil
}

// Wait blocks until the loop ends on a signal or Stop. Call Stop
// afterwards to remove the pid file.
func (d *Daemon) Wait() {
	d.wg.Wait()
}

// Stop cancels the loop, waits for it and removes the pid and status files.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.mu.Unlock()

	util.Info("Watcher stopping...")

	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		util.Info("Watcher stopped")
	case <-time.After(30 * time.Second):
		util.Warn("Watcher stop timed out")
	}

	d.removePIDFile()
	os.Remove(filepath.Join(d.opts.DataDir, StatusFileName))

	return nil
}

func (d *Daemon) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		util.Info("Received signal: %v", sig)
		d.cancel()
	case <-d.ctx.Done():
	}
}

func (d *Daemon) writePIDFile() error {
	if err := util.EnsureDir(d.opts.DataDir); err != nil {
		return err
	}
	pid := os.Getpid()
	return os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), 0644)
}

func (d *Daemon) removePIDFile() {
	os.Remove(d.pidFile)
}

func (d *Daemon) setLastOutcome(o *portal.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = o
}

// IsRunning returns whether the daemon is running.
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// GetStatus returns the daemon status.
func (d *Daemon) GetStatus() *DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := &DaemonStatus{
		Running:   d.running,
		PID:       os.Getpid(),
		StartTime: d.startTime,
		Uptime:    time.Since(d.startTime),
		Jobs:      d.scheduler.GetJobStatuses(),
	}
	if d.last != nil {
		status.LastNetwork = d.last.Resolution.Profile.Name
		status.LastStatus = d.last.Result.Status
	}
	return status
}

// DaemonStatus holds the current daemon status.
type DaemonStatus struct {
	Running     bool
	PID         int
	StartTime   time.Time
	Uptime      time.Duration
	LastNetwork string
	LastStatus  string
	Jobs        []JobStatus
}
