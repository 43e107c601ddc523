package graphview

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lluview/internal/cache"
	"lluview/internal/llu"
	"lluview/internal/render"
	"lluview/internal/ui/messages"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	bigStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// historyWindow is how many cached readings seed the chart before the
// first fetch completes.
const historyWindow = 96

// Model is the glucose chart view for one patient.
type Model struct {
	patientID string
	client    *llu.Client
	cache     *cache.DB

	graph   *llu.Graph
	history []llu.GlucoseMeasurement
	loading bool
	err     error

	width  int
	height int
}

// New creates a graph view for the given patient.
func New(patientID string, client *llu.Client, db *cache.DB) Model {
	m := Model{
		patientID: patientID,
		client:    client,
		cache:     db,
		loading:   true,
	}
	// Seed the chart from the local cache so something renders while the
	// fetch is in flight.
	if cached, err := db.GetReadings(patientID, historyWindow); err == nil {
		m.history = cached
	}
	return m
}

// Init fetches the graph.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// PatientID returns the patient this view shows.
func (m Model) PatientID() string { return m.patientID }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.GraphLoadedMsg:
		if msg.PatientID != m.patientID {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.graph = msg.Graph
		if len(msg.Graph.GraphData) > 0 {
			m.history = msg.Graph.GraphData
		}
		return m, nil

	case messages.NewReadingMsg:
		if msg.PatientID != m.patientID {
			return m, nil
		}
		if m.graph != nil {
			r := msg.Reading
			m.graph.Current = &r
		}
		m.history = append(m.history, msg.Reading)
		if len(m.history) > historyWindow {
			m.history = m.history[len(m.history)-historyWindow:]
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "ctrl+r":
			m.loading = true
			m.err = nil
			return m, m.load()
		case "l":
			patientID := m.patientID
			return m, func() tea.Msg {
				return messages.OpenLogbookMsg{PatientID: patientID}
			}
		}
	}
	return m, nil
}

// View renders the chart.
func (m Model) View() string {
	var sb strings.Builder

	name := m.patientID
	var targetLow, targetHigh float64
	if m.graph != nil {
		name = m.graph.Connection.Name()
		targetLow = m.graph.Connection.TargetLow
		targetHigh = m.graph.Connection.TargetHigh
	}
	sb.WriteString(headerStyle.Render("Glucose — " + name))
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	case m.loading && m.graph == nil:
		sb.WriteString(metaStyle.Render("Loading..."))
		sb.WriteString("\n")
	}

	if m.graph != nil && m.graph.Current != nil {
		cur := *m.graph.Current
		style := render.LevelStyle(cur, targetLow, targetHigh)
		sb.WriteString(bigStyle.Inherit(style).Render(render.FormatReading(cur)))
		sb.WriteString("\n")
		if cur.TrendMessage != "" {
			sb.WriteString(metaStyle.Render(cur.TrendMessage))
			sb.WriteString("\n")
		}
		sb.WriteString(metaStyle.Render("as of " + render.TimeAgo(cur.Time())))
		sb.WriteString("\n")
	}

	if targetLow > 0 || targetHigh > 0 {
		sb.WriteString(metaStyle.Render(fmt.Sprintf("Target range: %.0f-%.0f mg/dL", targetLow, targetHigh)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if len(m.history) > 0 {
		width := m.width - 4
		if width < 10 {
			width = 10
		}
		values := make([]float64, len(m.history))
		for i, r := range m.history {
			values[i] = r.Value
		}
		sb.WriteString(render.Sparkline(values, width))
		sb.WriteString("\n")
		sb.WriteString(metaStyle.Render(summarize(m.history)))
		sb.WriteString("\n")
	} else if !m.loading {
		sb.WriteString(metaStyle.Render("No readings yet."))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(metaStyle.Render("r: refresh  l: logbook  esc: back"))
	return sb.String()
}

func (m Model) load() tea.Cmd {
	client := m.client
	db := m.cache
	patientID := m.patientID
	return func() tea.Msg {
		graph, err := client.GetPatientGraph(context.Background(), patientID)
		if err == nil && len(graph.GraphData) > 0 {
			db.PutReadings(patientID, graph.GraphData)
		}
		return messages.GraphLoadedMsg{PatientID: patientID, Graph: graph, Err: err}
	}
}

func summarize(readings []llu.GlucoseMeasurement) string {
	lo, hi, sum := readings[0].Value, readings[0].Value, 0.0
	for _, r := range readings {
		if r.Value < lo {
			lo = r.Value
		}
		if r.Value > hi {
			hi = r.Value
		}
		sum += r.Value
	}
	units := readings[len(readings)-1].GlucoseUnits
	return fmt.Sprintf("%d readings | min %s | avg %s | max %s",
		len(readings),
		render.FormatValue(lo, units),
		render.FormatValue(sum/float64(len(readings)), units),
		render.FormatValue(hi, units))
}
