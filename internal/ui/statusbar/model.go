package statusbar

import (
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#00A5E0")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#555555")).
				Foreground(lipgloss.Color("#CCCCCC")).
				Padding(0, 1)

	regionStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)
)

// Tab identifies a dashboard screen.
type Tab int

const (
	TabConnections Tab = iota
	TabGraph
	TabLogbook
)

var tabs = []struct {
	label string
	tab   Tab
}{
	{"Patients", TabConnections},
	{"Graph", TabGraph},
	{"Logbook", TabLogbook},
}

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	activeTab  Tab
	baseURL    string
	statusText string
	alertText  string
}

// New creates a status bar.
func New() Model {
	return Model{activeTab: TabConnections}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetActiveTab highlights the active screen.
func (m *Model) SetActiveTab(t Tab) {
	m.activeTab = t
}

// SetBaseURL records the regional endpoint shown on the right.
func (m *Model) SetBaseURL(u string) {
	m.baseURL = u
}

// SetStatus sets a transient status message.
func (m *Model) SetStatus(text string) {
	m.statusText = text
}

// SetAlert sets (or clears, with "") the out-of-range alert.
func (m *Model) SetAlert(text string) {
	m.alertText = text
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var tabsStr string
	for _, t := range tabs {
		if t.tab == m.activeTab {
			tabsStr += activeTabStyle.Render(t.label)
		} else {
			tabsStr += inactiveTabStyle.Render(t.label)
		}
	}

	var right string
	if m.alertText != "" {
		right += alertStyle.Render(m.alertText)
	}
	if m.statusText != "" {
		right += statusTextStyle.Render(m.statusText)
	}
	if m.baseURL != "" {
		right += regionStyle.Render(hostAndRegion(m.baseURL))
	}

	gap := m.width - lipgloss.Width(tabsStr) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}

func hostAndRegion(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	return u.Host + u.Path
}
