// Package portal ties detection, profile resolution, the login request and
// the attempt log together.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/wifiauth/internal/detect"
	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/profile"
	"github.com/user/wifiauth/internal/util"
)

// MaskedPassword replaces the password in recorded attempts.
const MaskedPassword = "******"

// Executor performs portal requests.
type Executor interface {
	Login(ctx context.Context, req login.Request) login.Result
	TestConnection(ctx context.Context, rawURL string) (int, error)
}

// Recorder persists login attempts.
type Recorder interface {
	Record(a *model.LoginAttempt) error
}

// Service runs the login workflow.
type Service struct {
	Profiles *profile.Config
	Detector detect.Detector
	Executor Executor
	Attempts Recorder

	now func() time.Time
}

// NewService creates a service.
func NewService(profiles *profile.Config, detector detect.Detector, executor Executor, attempts Recorder) *Service {
	return &Service{
		Profiles: profiles,
		Detector: detector,
		Executor: executor,
		Attempts: attempts,
		now:      time.Now,
	}
}

// Outcome describes one completed login.
type Outcome struct {
	Resolution   *profile.Resolution
	DetectedSSID string
	Result       login.Result
	Attempt      *model.LoginAttempt
}

// Login resolves a profile, posts its credentials and records the attempt.
// Detection is skipped when override names a profile. Resolution and
// storage failures are returned; a failed login is not an error.
func (s *Service) Login(ctx context.Context, override string) (*Outcome, error) {
	var ssid string
	if override == "" {
		ssid = s.detectSSID(ctx)
	}

	res, err := profile.Resolve(s.Profiles, override, ssid)
	if err != nil {
		return nil, err
	}
	p := res.Profile
	util.Info("using network profile %s (matched by %s)", p.Name, res.Rule)

	result := s.Executor.Login(ctx, login.Request{
		URL:         p.LoginURL,
		Username:    p.Username,
		Password:    p.Password,
		ProductType: p.ProductType,
	})
	if result.Err != nil {
		util.Error("login to %s failed: %v", p.Name, result.Err)
	} else {
		util.Info("login to %s returned %s: %s", p.Name, result.Status, result.Message)
	}

	attempt := &model.LoginAttempt{
		Timestamp:       s.clock(),
		NetworkName:     p.Name,
		NetworkSSID:     recordedSSID(ssid, p),
		Username:        p.Username,
		Password:        MaskedPassword,
		SessionID:       result.SessionID,
		ResponseStatus:  result.Status,
		ResponseMessage: result.Message,
	}
	if err := s.Attempts.Record(attempt); err != nil {
		return nil, fmt.Errorf("failed to record login attempt: %w", err)
	}

	return &Outcome{
		Resolution:   res,
		DetectedSSID: ssid,
		Result:       result,
		Attempt:      attempt,
	}, nil
}

// ConnectionCheck is the result of TestConnection.
type ConnectionCheck struct {
	Profile    *profile.NetworkProfile
	StatusCode int
}

// OK reports whether the login URL answered 200.
func (c *ConnectionCheck) OK() bool {
	return c.StatusCode == 200
}

// TestConnection checks that the resolved profile's login URL is reachable.
// Nothing is recorded.
func (s *Service) TestConnection(ctx context.Context, override string) (*ConnectionCheck, error) {
	var ssid string
	if override == "" {
		ssid = s.detectSSID(ctx)
	}

	res, err := profile.Resolve(s.Profiles, override, ssid)
	if err != nil {
		return nil, err
	}

	check := &ConnectionCheck{Profile: res.Profile}
	status, err := s.Executor.TestConnection(ctx, res.Profile.LoginURL)
	if err != nil {
		return check, err
	}
	check.StatusCode = status
	return check, nil
}

// Detection is the current network and the profile configured for it.
type Detection struct {
	SSID    string
	Profile *profile.NetworkProfile
	// Err is the detection failure, if any. It is informational only.
	Err error
}

// Detect reports the current SSID and the first profile configured for it.
func (s *Service) Detect(ctx context.Context) *Detection {
	ssid, err := s.Detector.CurrentSSID(ctx)
	d := &Detection{SSID: ssid, Err: err}
	if p, ok := s.Profiles.MatchSSID(ssid); ok {
		d.Profile = p
	}
	return d
}

// ProfileStatus is a profile annotated with whether it matches the current
// network.
type ProfileStatus struct {
	profile.NetworkProfile
	Current bool
	Default bool
}

// ListProfiles returns all profiles in configuration order along with the
// detected SSID.
func (s *Service) ListProfiles(ctx context.Context) ([]ProfileStatus, string) {
	ssid := s.detectSSID(ctx)
	var out []ProfileStatus
	for _, p := range s.Profiles.Profiles() {
		out = append(out, ProfileStatus{
			NetworkProfile: p,
			Current:        ssid != "" && p.SSID == ssid,
			Default:        p.Name == s.Profiles.DefaultNetwork,
		})
	}
	return out, ssid
}

// detectSSID returns the current SSID. Detection failures degrade to no
// SSID.
func (s *Service) detectSSID(ctx context.Context) string {
	if s.Detector == nil {
		return ""
	}
	ssid, err := s.Detector.CurrentSSID(ctx)
	if err != nil {
		var derr *detect.DetectionError
		if errors.As(err, &derr) {
			util.Warn("%v; continuing without ssid", err)
		} else {
			util.Warn("ssid detection failed: %v", err)
		}
		return ""
	}
	if ssid == "" {
		util.Debug("no wifi network detected")
	}
	return ssid
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func recordedSSID(detected string, p *profile.NetworkProfile) string {
	if detected != "" {
		return detected
	}
	return p.SSID
}
