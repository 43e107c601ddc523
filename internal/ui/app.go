// Package ui is the bubbletea dashboard.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lluview/internal/cache"
	"lluview/internal/config"
	"lluview/internal/llu"
	"lluview/internal/monitor"
	"lluview/internal/ui/connections"
	"lluview/internal/ui/graphview"
	"lluview/internal/ui/logbook"
	"lluview/internal/ui/login"
	"lluview/internal/ui/messages"
	"lluview/internal/ui/statusbar"
)

// prefetchConcurrency bounds the warm-up fan-out after the patient list
// loads. Only read-only queries run concurrently; authentication has
// already completed by then.
const prefetchConcurrency = 4

// ViewType identifies the active view.
type ViewType int

const (
	ViewLogin ViewType = iota
	ViewConnections
	ViewGraph
	ViewLogbook
)

// App is the root Bubble Tea model.
type App struct {
	activeView    ViewType
	previousViews []ViewType

	connList  connections.Model
	graphView graphview.Model
	logView   logbook.Model
	loginForm login.Model
	statusBar statusbar.Model

	cfg     config.Config
	client  *llu.Client
	cache   *cache.DB
	log     zerolog.Logger
	monitor *monitor.Monitor

	width  int
	height int

	program *tea.Program
}

// NewApp creates the root model. client may be nil when the environment
// supplied no credentials; the login form then builds one.
func NewApp(cfg config.Config, client *llu.Client, db *cache.DB, log zerolog.Logger) *App {
	a := &App{
		activeView: ViewLogin,
		cfg:        cfg,
		client:     client,
		cache:      db,
		log:        log,
		statusBar:  statusbar.New(),
	}
	a.loginForm = login.New(func(email, password string) *llu.Client {
		return llu.NewClient(email, password, a.clientConfig(), log)
	})
	// client may still be nil here; the list is rebuilt with the real
	// session once login succeeds.
	a.connList = connections.New(client)
	return a
}

func (a *App) clientConfig() llu.Config {
	return llu.Config{
		BaseURL: a.cfg.BaseURL,
		Region:  a.cfg.Region,
		Version: a.cfg.Version,
		Product: a.cfg.Product,
		Timeout: a.cfg.Timeout,
	}
}

// SetProgram stores the tea.Program reference for the background monitor.
func (a *App) SetProgram(p *tea.Program) {
	a.program = p
}

// Init kicks off authentication: a restored session skips login, env
// credentials log in silently, otherwise the form is shown.
func (a *App) Init() tea.Cmd {
	switch {
	case a.client != nil && a.client.Authenticated():
		baseURL := a.client.BaseURL()
		return func() tea.Msg {
			return messages.SessionRestoredMsg{BaseURL: baseURL}
		}
	case a.client != nil:
		client := a.client
		return func() tea.Msg {
			ticket, err := client.Authenticate(context.Background())
			return messages.AuthResultMsg{Client: client, Ticket: ticket, BaseURL: client.BaseURL(), Err: err}
		}
	default:
		return nil
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 1 // status bar
		a.connList.SetSize(msg.Width, contentHeight)
		a.loginForm.SetSize(msg.Width, contentHeight)
		a.statusBar.SetSize(msg.Width)
		switch a.activeView {
		case ViewGraph:
			a.graphView.SetSize(msg.Width, contentHeight)
		case ViewLogbook:
			a.logView.SetSize(msg.Width, contentHeight)
		}
		return a, nil

	case tea.KeyMsg:
		if a.activeView != ViewLogin {
			switch msg.String() {
			case "ctrl+c":
				a.stopMonitor()
				return a, tea.Quit
			case "q":
				if a.activeView == ViewConnections {
					a.stopMonitor()
					return a, tea.Quit
				}
				return a, a.goBack()
			case "esc":
				if a.activeView != ViewConnections {
					return a, a.goBack()
				}
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case messages.SessionRestoredMsg:
		a.statusBar.SetBaseURL(msg.BaseURL)
		a.statusBar.SetStatus("session restored")
		a.activeView = ViewConnections
		return a, a.connList.Init()

	case messages.AuthResultMsg:
		if msg.Err != nil {
			a.log.Error().Err(msg.Err).Msg("authentication failed")
			if a.activeView != ViewLogin {
				a.activeView = ViewLogin
				a.statusBar.SetStatus("login failed")
			}
			// Let the form show the error.
			break
		}
		if msg.Client != nil {
			a.client = msg.Client
			a.connList = connections.New(msg.Client)
			a.connList.SetSize(a.width, a.height-1)
		}
		if msg.Ticket != nil {
			if e := a.cache.SaveSession(*msg.Ticket, msg.BaseURL); e != nil {
				a.log.Warn().Err(e).Msg("persisting session failed")
			}
		}
		a.statusBar.SetBaseURL(msg.BaseURL)
		a.activeView = ViewConnections
		a.previousViews = nil
		return a, a.connList.Init()

	case messages.ConnectionsLoadedMsg:
		if msg.Err == nil && a.program != nil {
			go a.prefetch(msg.Connections)
		}

	case messages.OpenGraphMsg:
		a.pushView(ViewGraph)
		a.graphView = graphview.New(msg.PatientID, a.client, a.cache)
		a.graphView.SetSize(a.width, a.height-1)
		a.statusBar.SetActiveTab(statusbar.TabGraph)
		a.startMonitor(msg.PatientID)
		return a, a.graphView.Init()

	case messages.OpenLogbookMsg:
		a.pushView(ViewLogbook)
		a.logView = logbook.New(msg.PatientID, a.client)
		a.logView.SetSize(a.width, a.height-1)
		a.statusBar.SetActiveTab(statusbar.TabLogbook)
		return a, a.logView.Init()

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.NewReadingMsg:
		if !msg.Reading.IsLow && !msg.Reading.IsHigh {
			a.statusBar.SetAlert("")
		}
		a.statusBar.SetStatus("updated " + msg.Reading.Timestamp)

	case messages.GlucoseAlertMsg:
		a.statusBar.SetAlert("OUT OF RANGE")

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text)
	}

	var cmd tea.Cmd
	switch a.activeView {
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
		cmds = append(cmds, cmd)
	case ViewConnections:
		a.connList, cmd = a.connList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewGraph:
		a.graphView, cmd = a.graphView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewLogbook:
		a.logView, cmd = a.logView.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewLogin:
		content = a.loginForm.View()
	case ViewConnections:
		content = a.connList.View()
	case ViewGraph:
		content = a.graphView.View()
	case ViewLogbook:
		content = a.logView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	} else if a.activeView != ViewConnections {
		a.activeView = ViewConnections
	}
	switch a.activeView {
	case ViewConnections:
		a.statusBar.SetActiveTab(statusbar.TabConnections)
	case ViewGraph:
		a.statusBar.SetActiveTab(statusbar.TabGraph)
	case ViewLogbook:
		a.statusBar.SetActiveTab(statusbar.TabLogbook)
	}
	return nil
}

func (a *App) startMonitor(patientID string) {
	if a.monitor == nil {
		a.monitor = monitor.New(a.cfg, a.client, a.cache, a.log)
		if a.program != nil {
			a.monitor.Start(a.program, patientID)
		}
		return
	}
	a.monitor.SetPatient(patientID)
}

func (a *App) stopMonitor() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
}

// prefetch warms the reading cache for every patient so graph views open
// with history already on screen. Runs off the UI goroutine.
func (a *App) prefetch(conns []llu.Connection) {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(prefetchConcurrency)

	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			graph, err := a.client.GetPatientGraph(ctx, conn.PatientID)
			if err != nil {
				// Non-fatal: individual patients can fail.
				a.log.Debug().Err(err).Str("patient_id", conn.PatientID).Msg("prefetch failed")
				return nil
			}
			if len(graph.GraphData) > 0 {
				a.cache.PutReadings(conn.PatientID, graph.GraphData)
			}
			return nil
		})
	}
	g.Wait()
}
