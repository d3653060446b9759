package profile

// Rule names the resolution step that selected a profile.
type Rule string

const (
	RuleOverride Rule = "override"
	RuleSSID     Rule = "ssid"
	RuleDefault  Rule = "default"
	RuleSole     Rule = "sole"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Profile *NetworkProfile
	Rule    Rule
}

// Resolve selects the profile for a login. An override always wins and is
// never ignored. Otherwise the first profile whose SSID equals detectedSSID
// exactly is chosen, then a resolvable default_network, then the only
// profile when there is exactly one.
func Resolve(cfg *Config, override, detectedSSID string) (*Resolution, error) {
	if override != "" {
		p, ok := cfg.Get(override)
		if !ok {
			return nil, &NotFoundError{Name: override, Available: cfg.Names()}
		}
		return &Resolution{Profile: p, Rule: RuleOverride}, nil
	}

	if p, ok := cfg.MatchSSID(detectedSSID); ok {
		return &Resolution{Profile: p, Rule: RuleSSID}, nil
	}

	if p, ok := cfg.Default(); ok {
		return &Resolution{Profile: p, Rule: RuleDefault}, nil
	}

	if cfg.Len() == 1 {
		p, _ := cfg.Get(cfg.order[0])
		return &Resolution{Profile: p, Rule: RuleSole}, nil
	}

	return nil, &ResolutionError{SSID: detectedSSID}
}

// MatchSSID returns the first profile, in insertion order, whose SSID equals
// ssid. Comparison is case-sensitive with no trimming.
func (c *Config) MatchSSID(ssid string) (*NetworkProfile, bool) {
	if ssid == "" {
		return nil, false
	}
	for _, name := range c.order {
		if c.byName[name].SSID == ssid {
			return c.Get(name)
		}
	}
	return nil, false
}
