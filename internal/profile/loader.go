// Package profile normalizes network profiles from the configuration
// document and resolves which profile a login should use.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LegacyName is the reserved name of the profile synthesized from top-level
// single-network fields.
const LegacyName = "legacy"

// DefaultProductType is forwarded to the portal when a profile sets none.
const DefaultProductType = "0"

// Recognized document keys.
const (
	keyDefaultNetwork = "default_network"
	keyNetworks       = "networks"

	keySSID        = "ssid"
	keyLoginURL    = "login_url"
	keyWifiURL     = "wifi_url"
	keyUsername    = "username"
	keyPassword    = "password"
	keyProductType = "product_type"
	keyDescription = "description"
)

// legacyKeys mark a document as carrying a top-level single-network profile.
var legacyKeys = []string{keyWifiURL, keyLoginURL, keyUsername, keyPassword, keyProductType}

var profileKeys = map[string]bool{
	keySSID:        true,
	keyLoginURL:    true,
	keyWifiURL:     true,
	keyUsername:    true,
	keyPassword:    true,
	keyProductType: true,
	keyDescription: true,
}

// NetworkProfile is a named bundle of network identity and credentials.
type NetworkProfile struct {
	Name        string `yaml:"-" json:"name"`
	SSID        string `yaml:"ssid,omitempty" json:"ssid"`
	LoginURL    string `yaml:"login_url" json:"login_url"`
	Username    string `yaml:"username" json:"username"`
	Password    string `yaml:"password" json:"-"`
	ProductType string `yaml:"product_type,omitempty" json:"product_type"`
	Description string `yaml:"description,omitempty" json:"description"`
	// Legacy marks the profile synthesized from top-level fields.
	Legacy bool `yaml:"-" json:"legacy"`
}

// Config is the normalized set of profiles. Profile order is the order of
// the source document, with the legacy profile last.
type Config struct {
	DefaultNetwork string
	// Warnings lists non-fatal problems found while loading.
	Warnings []string

	order  []string
	byName map[string]*NetworkProfile
}

// New builds a normalized config from already constructed profiles,
// applying the same validation as Parse.
func New(defaultNetwork string, profiles ...NetworkProfile) (*Config, error) {
	cfg := newConfig(defaultNetwork)
	for i := range profiles {
		p := profiles[i]
		if err := cfg.add(&p); err != nil {
			return nil, err
		}
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and normalizes the configuration document at path.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, &ConfigError{Msg: "no configuration file found; run 'wifiauth setup' or pass --config"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Msg: "cannot read " + path, Err: err}
	}
	return Parse(data)
}

// Parse normalizes a configuration document. Legacy single-network fields
// and a networks mapping may coexist.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Msg: "document is not valid YAML or JSON", Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &ConfigError{Msg: "document is empty"}
	}

	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Msg: "top level must be a mapping"}
	}

	var (
		networks       *yaml.Node
		defaultNetwork string
		legacy         = make(map[string]string)
	)

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, deref(root.Content[i+1])
		switch {
		case key == keyDefaultNetwork:
			s, err := scalar(value)
			if err != nil {
				return nil, &ConfigError{Field: keyDefaultNetwork, Err: err}
			}
			defaultNetwork = s
		case key == keyNetworks:
			networks = value
		case profileKeys[key]:
			s, err := scalar(value)
			if err != nil {
				return nil, &ConfigError{Profile: LegacyName, Field: key, Err: err}
			}
			legacy[key] = s
		}
	}

	cfg := newConfig(defaultNetwork)

	if networks != nil && !isNull(networks) {
		if networks.Kind != yaml.MappingNode {
			return nil, &ConfigError{Field: keyNetworks, Msg: "must be a mapping of profile name to settings"}
		}
		for i := 0; i+1 < len(networks.Content); i += 2 {
			name := networks.Content[i].Value
			p, err := parseProfile(name, deref(networks.Content[i+1]))
			if err != nil {
				return nil, err
			}
			if err := cfg.add(p); err != nil {
				return nil, err
			}
		}
	}

	if hasLegacy(legacy) {
		if _, taken := cfg.byName[LegacyName]; taken {
			return nil, &ConfigError{
				Profile: LegacyName,
				Msg:     "name is reserved for the top-level single-network settings",
			}
		}
		p := profileFromFields(LegacyName, legacy)
		p.Legacy = true
		if p.Description == "" {
			p.Description = "Legacy configuration"
		}
		if err := cfg.add(p); err != nil {
			return nil, err
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseProfile(name string, node *yaml.Node) (*NetworkProfile, error) {
	if name == "" {
		return nil, &ConfigError{Field: keyNetworks, Msg: "profile name must not be empty"}
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigError{Profile: name, Msg: "profile must be a mapping"}
	}

	fields := make(map[string]string)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !profileKeys[key] {
			continue
		}
		s, err := scalar(deref(node.Content[i+1]))
		if err != nil {
			return nil, &ConfigError{Profile: name, Field: key, Err: err}
		}
		fields[key] = s
	}

	return profileFromFields(name, fields), nil
}

func profileFromFields(name string, fields map[string]string) *NetworkProfile {
	p := &NetworkProfile{
		Name:        name,
		SSID:        fields[keySSID],
		LoginURL:    fields[keyLoginURL],
		Username:    fields[keyUsername],
		Password:    fields[keyPassword],
		ProductType: fields[keyProductType],
		Description: fields[keyDescription],
	}
	if p.LoginURL == "" {
		p.LoginURL = fields[keyWifiURL]
	}
	return p
}

func hasLegacy(fields map[string]string) bool {
	for _, k := range legacyKeys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func newConfig(defaultNetwork string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		byName:         make(map[string]*NetworkProfile),
	}
}

func (c *Config) add(p *NetworkProfile) error {
	if p.Name == "" {
		return &ConfigError{Msg: "profile name must not be empty"}
	}
	if _, dup := c.byName[p.Name]; dup {
		return &ConfigError{Profile: p.Name, Msg: "duplicate profile name"}
	}
	if err := validate(p); err != nil {
		return err
	}
	if p.ProductType == "" {
		p.ProductType = DefaultProductType
	}
	if p.SSID == "" {
		c.Warnings = append(c.Warnings, fmt.Sprintf(
			"profile %q has no ssid; it is only used when named explicitly, as default_network or as the only profile", p.Name))
	}
	c.byName[p.Name] = p
	c.order = append(c.order, p.Name)
	return nil
}

func (c *Config) finish() error {
	if len(c.order) == 0 {
		return &ConfigError{Msg: "no network profiles configured"}
	}
	if c.DefaultNetwork != "" {
		if _, ok := c.byName[c.DefaultNetwork]; !ok {
			c.Warnings = append(c.Warnings, fmt.Sprintf(
				"default_network %q does not name a configured profile; ignoring it", c.DefaultNetwork))
		}
	}
	return nil
}

func validate(p *NetworkProfile) error {
	required := []struct {
		field string
		value string
	}{
		{keyLoginURL, p.LoginURL},
		{keyUsername, p.Username},
		{keyPassword, p.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return &ConfigError{Profile: p.Name, Field: r.field, Msg: "is required"}
		}
	}
	return nil
}

// Len returns the number of profiles.
func (c *Config) Len() int {
	return len(c.order)
}

// Names returns profile names in insertion order.
func (c *Config) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Profiles returns copies of all profiles in insertion order.
func (c *Config) Profiles() []NetworkProfile {
	out := make([]NetworkProfile, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.byName[name])
	}
	return out
}

// Get returns the profile with the given name.
func (c *Config) Get(name string) (*NetworkProfile, bool) {
	p, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Default returns the default_network profile when it is set and exists.
func (c *Config) Default() (*NetworkProfile, bool) {
	if c.DefaultNetwork == "" {
		return nil, false
	}
	return c.Get(c.DefaultNetwork)
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected a single value")
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}
