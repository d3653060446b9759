// Package tui provides a terminal view of the login history.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	domain "github.com/user/wifiauth/internal/model"
)

const recentLimit = 15

// Source reads the attempt log.
type Source interface {
	Summary() (*domain.AttemptStats, error)
	AggregateByNetwork() ([]domain.NetworkStats, error)
	Recent(limit int, network string) ([]domain.LoginAttempt, error)
}

// App is the main TUI application.
type App struct {
	source Source
}

// NewApp creates a new TUI application.
func NewApp(source Source) *App {
	return &App{source: source}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newModel(a.source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type model struct {
	source    Source
	dashboard *Dashboard
	spinner   spinner.Model
	// filter is the network whose attempts are listed; empty lists all.
	filter string
	ready  bool
	width  int
	height int
	err    error
}

func newModel(source Source) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)

	return model{
		source:  source,
		spinner: s,
		width:   80,
	}
}

// Init initializes the model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadData(m.source, m.filter),
	)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadData(m.source, m.filter)
		case "n":
			m.filter = m.nextFilter()
			return m, loadData(m.source, m.filter)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}

	case dataMsg:
		m.ready = true
		m.err = nil
		m.dashboard = NewDashboard(msg.Data, m.width, m.height)

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// nextFilter cycles through all networks and then back to none.
func (m model) nextFilter() string {
	if m.dashboard == nil {
		return ""
	}
	var names []string
	for _, ns := range m.dashboard.data.Networks {
		if !ns.Legacy {
			names = append(names, ns.NetworkName)
		}
	}
	if len(names) == 0 {
		return ""
	}
	if m.filter == "" {
		return names[0]
	}
	for i, name := range names {
		if name == m.filter && i+1 < len(names) {
			return names[i+1]
		}
	}
	return ""
}

// View renders the UI.
func (m model) View() string {
	if m.err != nil {
		return ErrorStyle.Render("Error: "+m.err.Error()) + "\n" +
			HelpStyle.Render("Press 'r' to retry • 'q' to quit")
	}

	if !m.ready {
		return LoadingStyle.Render(m.spinner.View() + " Loading...")
	}

	return m.dashboard.View()
}

type dataMsg struct {
	Data *DashboardData
}

type errMsg struct {
	err error
}

func loadData(source Source, filter string) tea.Cmd {
	return func() tea.Msg {
		data, err := fetchDashboardData(source, filter)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{Data: data}
	}
}

func fetchDashboardData(source Source, filter string) (*DashboardData, error) {
	stats, err := source.Summary()
	if err != nil {
		return nil, err
	}
	networks, err := source.AggregateByNetwork()
	if err != nil {
		return nil, err
	}
	recent, err := source.Recent(recentLimit, filter)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		Stats:    *stats,
		Networks: networks,
		Recent:   recent,
		Filter:   filter,
	}, nil
}
