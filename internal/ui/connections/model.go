package connections

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"lluview/internal/llu"
	"lluview/internal/ui/messages"
)

// Model is the patient list view.
type Model struct {
	list    list.Model
	client  *llu.Client
	loading bool
	width   int
	height  int
}

// New creates the patient list.
func New(client *llu.Client) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = "Patients"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{list: l, client: client}
}

// SetClient swaps the session after a login performed elsewhere.
func (m *Model) SetClient(client *llu.Client) {
	m.client = client
}

// Init loads the connection list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ConnectionsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Error: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Connections))
		for i, conn := range msg.Connections {
			items = append(items, Item{Connection: conn, Index: i})
		}
		m.list.SetItems(items)
		m.list.Title = "Patients"
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg {
					return messages.OpenGraphMsg{PatientID: item.Connection.PatientID}
				}
			}
		case "l":
			if item, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg {
					return messages.OpenLogbookMsg{PatientID: item.Connection.PatientID}
				}
			}
		case "r", "ctrl+r":
			m.loading = true
			m.list.Title = "Patients (refreshing...)"
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m Model) View() string {
	return m.list.View()
}

// Selected returns the currently selected connection, if any.
func (m Model) Selected() (llu.Connection, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return llu.Connection{}, false
	}
	return item.Connection, true
}

func (m Model) load() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		conns, err := client.ListConnections(context.Background())
		return messages.ConnectionsLoadedMsg{Connections: conns, Err: err}
	}
}
