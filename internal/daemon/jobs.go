package daemon

import (
	"context"
	"fmt"

	"github.com/user/wifiauth/internal/portal"
	"github.com/user/wifiauth/internal/util"
)

// WatchJobName names the re-authentication job.
const WatchJobName = "reauth"

// Prober reports whether the network reaches the internet without the
// captive portal intercepting.
type Prober interface {
	Online(ctx context.Context, probeURL string) (bool, error)
}

// Authenticator performs one login.
type Authenticator interface {
	Login(ctx context.Context, override string) (*portal.Outcome, error)
}

func (d *Daemon) registerJobs() {
	d.scheduler.AddJob(&Job{
		Name:     WatchJobName,
		Interval: d.opts.Interval,
		Run:      d.runReauth,
	})
}

// runReauth logs in when the connectivity probe says the portal is
// intercepting. A probe error counts as offline.
func (d *Daemon) runReauth(ctx context.Context) error {
	online, err := d.opts.Prober.Online(ctx, d.opts.ProbeURL)
	if err != nil {
		util.Debug("Connectivity probe failed: %v", err)
	}
	if online {
		util.Debug("Connectivity OK, no login needed")
		return nil
	}

	util.Info("Captive portal detected, logging in")
	outcome, err := d.opts.Authenticator.Login(ctx, d.opts.Network)
	if err != nil {
		return err
	}

	d.setLastOutcome(outcome)
	name := outcome.Resolution.Profile.Name
	if !outcome.Result.Success() {
		return fmt.Errorf("login to %s failed: %s %s", name, outcome.Result.Status, outcome.Result.Message)
	}

	util.Info("Logged in to %s: %s", name, outcome.Result.Message)
	return nil
}
