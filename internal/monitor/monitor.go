// Package monitor polls the graph endpoint for the selected patient and
// feeds new readings to the UI.
package monitor

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"lluview/internal/cache"
	"lluview/internal/config"
	"lluview/internal/llu"
	"lluview/internal/ui/messages"
)

// Monitor is the background polling loop. One reading per tick at most;
// errors are logged and retried on the next tick.
type Monitor struct {
	client  *llu.Client
	cache   *cache.DB
	cfg     config.Config
	log     zerolog.Logger
	program *tea.Program
	stopCh  chan struct{}

	mu        sync.Mutex
	patientID string
	lastSeen  string
}

// New creates a monitor.
func New(cfg config.Config, client *llu.Client, db *cache.DB, log zerolog.Logger) *Monitor {
	return &Monitor{
		client: client,
		cache:  db,
		cfg:    cfg,
		log:    log,
		stopCh: make(chan struct{}),
	}
}

// Start begins polling for the given patient.
func (m *Monitor) Start(program *tea.Program, patientID string) {
	m.program = program
	m.SetPatient(patientID)
	go m.loop()
}

// Stop halts polling. Safe to call more than once.
func (m *Monitor) Stop() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

// SetPatient switches which patient is polled.
func (m *Monitor) SetPatient(patientID string) {
	m.mu.Lock()
	if m.patientID != patientID {
		m.patientID = patientID
		m.lastSeen = ""
	}
	m.mu.Unlock()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	m.mu.Lock()
	patientID := m.patientID
	m.mu.Unlock()
	if patientID == "" || !m.client.Authenticated() {
		return
	}

	graph, err := m.client.GetPatientGraph(context.Background(), patientID)
	if err != nil {
		m.log.Warn().Err(err).Str("patient_id", patientID).Msg("poll failed")
		return
	}
	if graph.Current == nil {
		return
	}

	if len(graph.GraphData) > 0 {
		if err := m.cache.PutReadings(patientID, graph.GraphData); err != nil {
			m.log.Warn().Err(err).Msg("caching readings failed")
		}
	}

	reading := *graph.Current
	m.mu.Lock()
	fresh := reading.Timestamp != m.lastSeen && m.patientID == patientID
	if fresh {
		m.lastSeen = reading.Timestamp
	}
	m.mu.Unlock()
	if !fresh || m.program == nil {
		return
	}

	m.cache.PutReadings(patientID, []llu.GlucoseMeasurement{reading})
	m.program.Send(messages.NewReadingMsg{PatientID: patientID, Reading: reading})

	conn := graph.Connection
	outOfRange := reading.IsLow || reading.IsHigh ||
		(conn.TargetLow > 0 && reading.ValueInMgPerDl > 0 && reading.ValueInMgPerDl < conn.TargetLow) ||
		(conn.TargetHigh > 0 && reading.ValueInMgPerDl > conn.TargetHigh)
	if outOfRange {
		m.program.Send(messages.GlucoseAlertMsg{PatientID: patientID, Reading: reading})
	}
}
