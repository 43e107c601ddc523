package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lluview/internal/llu"
	"lluview/internal/ui/messages"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A5E0"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A5E0")).Bold(true).
			Padding(1, 0)
)

// NewClientFunc builds a client for the entered credentials. Credentials
// are fixed at construction, so each login attempt gets a fresh client.
type NewClientFunc func(email, password string) *llu.Client

// Model is the credentials form shown when the environment supplies none.
type Model struct {
	emailInput    textinput.Model
	passwordInput textinput.Model
	focusIndex    int
	err           string
	submitting    bool
	newClient     NewClientFunc
	width         int
	height        int
}

// New creates the login form.
func New(newClient NewClientFunc) Model {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.Focus()
	emailInput.Width = 40

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.Width = 40

	return Model{
		emailInput:    emailInput,
		passwordInput: passwordInput,
		newClient:     newClient,
	}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			if m.focusIndex == 0 {
				m.focusIndex = 1
				m.emailInput.Blur()
				m.passwordInput.Focus()
			} else {
				m.focusIndex = 0
				m.passwordInput.Blur()
				m.emailInput.Focus()
			}
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}
			email := strings.TrimSpace(m.emailInput.Value())
			password := m.passwordInput.Value()
			if email == "" || password == "" {
				m.err = "Email and password required"
				return m, nil
			}
			m.submitting = true
			m.err = ""
			client := m.newClient(email, password)
			return m, func() tea.Msg {
				ticket, err := client.Authenticate(context.Background())
				return messages.AuthResultMsg{Client: client, Ticket: ticket, BaseURL: client.BaseURL(), Err: err}
			}
		}

	case messages.AuthResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Connect to LibreLinkUp"))
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("Email:"))
	sb.WriteString("\n")
	sb.WriteString(m.emailInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("Password:"))
	sb.WriteString("\n")
	sb.WriteString(m.passwordInput.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n\n")
	}

	if m.submitting {
		sb.WriteString("Signing in...")
	} else {
		sb.WriteString(focusedStyle.Render("Enter") + " to sign in, " + focusedStyle.Render("Ctrl+C") + " to quit")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
