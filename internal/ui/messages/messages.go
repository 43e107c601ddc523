// Package messages holds the tea.Msg types shared between views.
package messages

import "lluview/internal/llu"

// View transition messages.
type (
	OpenGraphMsg   struct{ PatientID string }
	OpenLogbookMsg struct{ PatientID string }
	GoBackMsg      struct{}
)

// Data messages.
type (
	// AuthResultMsg reports the outcome of Authenticate, whether driven
	// by the login form or by environment credentials. Client is the
	// session that performed the login.
	AuthResultMsg struct {
		Client  *llu.Client
		Ticket  *llu.AuthTicket
		BaseURL string
		Err     error
	}

	// SessionRestoredMsg reports that a persisted session was still
	// valid and login was skipped.
	SessionRestoredMsg struct {
		BaseURL string
	}

	ConnectionsLoadedMsg struct {
		Connections []llu.Connection
		Err         error
	}

	GraphLoadedMsg struct {
		PatientID string
		Graph     *llu.Graph
		Err       error
	}

	LogbookLoadedMsg struct {
		PatientID string
		Entries   []llu.LogbookEntry
		Err       error
	}

	// NewReadingMsg carries a fresh measurement from the background
	// monitor.
	NewReadingMsg struct {
		PatientID string
		Reading   llu.GlucoseMeasurement
	}

	// GlucoseAlertMsg fires when a new reading is outside the patient's
	// target range.
	GlucoseAlertMsg struct {
		PatientID string
		Reading   llu.GlucoseMeasurement
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
