// Package detect discovers the SSID of the currently associated wireless
// network using the operating system's own tools.
package detect

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/user/wifiauth/internal/util"
)

// ErrUnsupported is wrapped by DetectionError when the platform has no
// detection mechanism.
var ErrUnsupported = errors.New("unsupported platform")

// DetectionError reports that no mechanism could query the wireless state.
// Callers treat it as "no SSID detected".
type DetectionError struct {
	Platform string
	Err      error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("ssid detection on %s failed: %v", e.Platform, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// Detector returns the SSID of the current network, or "" when the host is
// not associated with one.
type Detector interface {
	CurrentSSID(ctx context.Context) (string, error)
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type mechanism struct {
	name  string
	args  []string
	parse func(string) string
}

const airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

var platformMechanisms = map[string][]mechanism{
	"linux": {
		{name: "iwgetid", args: []string{"-r"}, parse: parseIwgetid},
		{name: "nmcli", args: []string{"-t", "-f", "active,ssid", "dev", "wifi"}, parse: parseNmcli},
		{name: "iwconfig", parse: parseIwconfig},
	},
	"darwin": {
		{name: "networksetup", args: []string{"-getairportnetwork", "en0"}, parse: parseNetworksetup},
		{name: airportPath, args: []string{"-I"}, parse: parseAirport},
	},
	"windows": {
		{name: "netsh", args: []string{"wlan", "show", "interfaces"}, parse: parseNetsh},
	},
}

// System detects the SSID by running platform commands in order until one
// reports a network.
type System struct {
	goos    string
	run     Runner
	timeout time.Duration
}

// NewSystem creates a detector for the running platform.
func NewSystem() *System {
	return NewSystemFor(runtime.GOOS, ExecRunner)
}

// NewSystemFor creates a detector for goos that runs commands with run.
func NewSystemFor(goos string, run Runner) *System {
	if run == nil {
		run = ExecRunner
	}
	return &System{
		goos:    goos,
		run:     run,
		timeout: 5 * time.Second,
	}
}

// Platform returns the platform the detector targets.
func (s *System) Platform() string {
	return s.goos
}

// CurrentSSID returns the first SSID reported by a platform mechanism. A
// mechanism that runs but reports nothing means the host is not associated;
// a DetectionError is returned only when every mechanism failed to run.
func (s *System) CurrentSSID(ctx context.Context) (string, error) {
	mechs, ok := platformMechanisms[s.goos]
	if !ok {
		return "", &DetectionError{Platform: s.goos, Err: ErrUnsupported}
	}

	var (
		errs []error
		ran  bool
	)
	for _, m := range mechs {
		out, err := s.runOne(ctx, m)
		if err != nil {
			util.Debug("ssid mechanism %s failed: %v", m.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		ran = true
		if ssid := m.parse(string(out)); ssid != "" {
			util.Debug("detected ssid %q via %s", ssid, m.name)
			return ssid, nil
		}
	}

	if !ran {
		return "", &DetectionError{Platform: s.goos, Err: errors.Join(errs...)}
	}
	util.Debug("no active wifi connection found on %s", s.goos)
	return "", nil
}

func (s *System) runOne(ctx context.Context, m mechanism) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.run(ctx, m.name, m.args...)
}

// Static is a Detector that always reports the same result.
type Static struct {
	SSID string
	Err  error
}

// CurrentSSID returns the configured SSID and error.
func (s Static) CurrentSSID(context.Context) (string, error) {
	return s.SSID, s.Err
}
