package profile

import (
	"fmt"
	"strings"
)

// ConfigError reports a malformed or incomplete configuration document.
type ConfigError struct {
	Profile string
	Field   string
	Msg     string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Profile != "" {
		fmt.Fprintf(&b, ": profile %q", e.Profile)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NotFoundError is returned when an explicitly requested profile does not
// exist.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("network profile %q not found (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}

// ResolutionError is returned when no profile can be chosen automatically.
type ResolutionError struct {
	SSID string
}

func (e *ResolutionError) Error() string {
	if e.SSID != "" {
		return fmt.Sprintf("no matching network profile for SSID %q; specify one explicitly", e.SSID)
	}
	return "no matching network profile; specify one explicitly"
}
