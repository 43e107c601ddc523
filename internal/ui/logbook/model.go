package logbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lluview/internal/llu"
	"lluview/internal/render"
	"lluview/internal/ui/messages"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	alarmStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true)
)

// Model is the scrolling logbook view for one patient.
type Model struct {
	patientID string
	client    *llu.Client
	viewport  viewport.Model
	entries   []llu.LogbookEntry
	loading   bool
	err       error
	width     int
	height    int
}

// New creates a logbook view for the given patient.
func New(patientID string, client *llu.Client) Model {
	return Model{
		patientID: patientID,
		client:    client,
		viewport:  viewport.New(0, 0),
		loading:   true,
	}
}

// Init fetches the logbook.
func (m Model) Init() tea.Cmd {
	client := m.client
	patientID := m.patientID
	return func() tea.Msg {
		entries, err := client.GetPatientLogbook(context.Background(), patientID)
		return messages.LogbookLoadedMsg{PatientID: patientID, Entries: entries, Err: err}
	}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 2 // header line + spacing
	m.viewport.SetContent(m.content())
}

// PatientID returns the patient this view shows.
func (m Model) PatientID() string { return m.patientID }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.LogbookLoadedMsg:
		if msg.PatientID != m.patientID {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		m.entries = msg.Entries
		m.viewport.SetContent(m.content())
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" || msg.String() == "ctrl+r" {
			m.loading = true
			m.err = nil
			return m, m.Init()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the logbook.
func (m Model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Logbook — %s", m.patientID))
	return header + "\n\n" + m.viewport.View()
}

func (m Model) content() string {
	switch {
	case m.err != nil:
		return errStyle.Render("Error: " + m.err.Error())
	case m.loading:
		return metaStyle.Render("Loading...")
	case len(m.entries) == 0:
		return metaStyle.Render("No logbook entries.")
	}

	var sb strings.Builder
	for _, e := range m.entries {
		line := fmt.Sprintf("%-22s %s", e.Timestamp, render.FormatReading(e.GlucoseMeasurement))
		if e.Alarm != "" {
			line += "  " + alarmStyle.Render(e.Alarm)
		} else if e.IsLow {
			line += "  " + alarmStyle.Render("LOW")
		} else if e.IsHigh {
			line += "  " + alarmStyle.Render("HIGH")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
