package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/user/wifiauth/internal/profile"
	"github.com/user/wifiauth/internal/util"
)

var (
	setupOutput string
	setupForce  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a configuration interactively",
	Long: `Ask for one or more network profiles and the dashboard credentials,
then write them as a YAML config document.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVarP(&setupOutput, "output", "o", "",
		"config file to write (default <data_dir>/config.yaml)")
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "overwrite an existing config file")
}

// setupNetwork is one profile as written to the config document.
type setupNetwork struct {
	Name        string `yaml:"-"`
	SSID        string `yaml:"ssid,omitempty"`
	LoginURL    string `yaml:"login_url"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	ProductType string `yaml:"product_type,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// orderedNetworks keeps profiles in the order they were entered, which is
// the SSID matching order.
type orderedNetworks []setupNetwork

// MarshalYAML implements yaml.Marshaler.
func (n orderedNetworks) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, nw := range n {
		var value yaml.Node
		if err := value.Encode(nw); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: nw.Name}, &value)
	}
	return node, nil
}

type setupDashboard struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type setupDocument struct {
	DefaultNetwork string          `yaml:"default_network,omitempty"`
	Networks       orderedNetworks `yaml:"networks"`
	Dashboard      setupDashboard  `yaml:"dashboard"`
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := setupOutput
	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	if util.FileExists(path) && !setupForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	fmt.Println(titleStyle.Render("wifiauth setup"))
	doc, err := runWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if err := writeSetup(path, doc); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ Configuration written to " + path))
	return nil
}

// prompter reads answers line by line.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *prompter) required(question, def string) (string, error) {
	for {
		v, err := p.ask(question, def)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		fmt.Fprintln(p.out, "  a value is required")
	}
}

func (p *prompter) confirm(question string, def bool) (bool, error) {
	d := "y/N"
	if def {
		d = "Y/n"
	}
	v, err := p.ask(question+" ("+d+")", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// runWizard collects a configuration document from in.
func runWizard(in io.Reader, out io.Writer) (*setupDocument, error) {
	p := &prompter{in: bufio.NewReader(in), out: out}
	doc := &setupDocument{}

	multi, err := p.confirm("Configure multiple networks?", false)
	if err != nil {
		return nil, err
	}

	for {
		nw, err := askNetwork(p, doc.Networks, multi)
		if err != nil {
			return nil, err
		}
		doc.Networks = append(doc.Networks, nw)

		if !multi {
			break
		}
		more, err := p.confirm("Add another network?", false)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	doc.DefaultNetwork = doc.Networks[0].Name
	if len(doc.Networks) > 1 {
		for {
			name, err := p.ask("Default network", doc.DefaultNetwork)
			if err != nil {
				return nil, err
			}
			if hasNetwork(doc.Networks, name) {
				doc.DefaultNetwork = name
				break
			}
			fmt.Fprintf(out, "  unknown network %q\n", name)
		}
	}

	defaults := util.DefaultConfig().Dashboard
	doc.Dashboard = setupDashboard{Host: defaults.Host, Port: defaults.Port}
	if doc.Dashboard.Username, err = p.ask("Dashboard username", defaults.Username); err != nil {
		return nil, err
	}
	if doc.Dashboard.Password, err = p.ask("Dashboard password", defaults.Password); err != nil {
		return nil, err
	}
	hash, err := p.confirm("Store the dashboard password as a bcrypt hash?", true)
	if err != nil {
		return nil, err
	}
	if hash {
		h, err := bcrypt.GenerateFromPassword([]byte(doc.Dashboard.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		doc.Dashboard.Password = string(h)
	}

	return doc, nil
}

func askNetwork(p *prompter, existing orderedNetworks, multi bool) (setupNetwork, error) {
	var (
		nw  setupNetwork
		err error
	)

	defName := "default"
	if multi {
		defName = "network" + strconv.Itoa(len(existing)+1)
		fmt.Fprintf(p.out, "\nNetwork %d\n", len(existing)+1)
	}
	for {
		if nw.Name, err = p.required("Profile name", defName); err != nil {
			return nw, err
		}
		if nw.Name == profile.LegacyName {
			fmt.Fprintf(p.out, "  %q is reserved\n", profile.LegacyName)
			continue
		}
		if hasNetwork(existing, nw.Name) {
			fmt.Fprintf(p.out, "  %q is already configured\n", nw.Name)
			continue
		}
		break
	}

	if nw.SSID, err = p.ask("WiFi SSID", ""); err != nil {
		return nw, err
	}
	if nw.LoginURL, err = p.required("Login URL", ""); err != nil {
		return nw, err
	}
	if nw.Username, err = p.required("Username", ""); err != nil {
		return nw, err
	}
	if nw.Password, err = p.required("Password", ""); err != nil {
		return nw, err
	}
	if nw.ProductType, err = p.ask("Product type", profile.DefaultProductType); err != nil {
		return nw, err
	}
	if nw.Description, err = p.ask("Description", ""); err != nil {
		return nw, err
	}
	return nw, nil
}

func hasNetwork(networks orderedNetworks, name string) bool {
	for _, nw := range networks {
		if nw.Name == name {
			return true
		}
	}
	return false
}

// writeSetup writes doc to path after checking that it loads back.
func writeSetup(path string, doc *setupDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if _, err := profile.Parse(data); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	// The document holds portal passwords.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
