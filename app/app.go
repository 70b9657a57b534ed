package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bizdesk/api"
	"bizdesk/cmd"
	"bizdesk/config"
	"bizdesk/keys"
	"bizdesk/log"
	"bizdesk/ui"
	"bizdesk/ui/debounce"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options wires the shell to its backend and settings.
type Options struct {
	Config *config.Config
	// Loader, when set, is watched for edits to the config file.
	Loader *config.Loader
	// Service is the backend every page talks to.
	Service api.Service
	// Client receives token changes from a watched config. It may be nil,
	// for instance in demo mode.
	Client *api.Client
	State  config.AppState
	// Resource is the list shown first. Empty means the last one used,
	// then the configured start resource.
	Resource string
}

// Run is the main entrypoint into the application.
func Run(ctx context.Context, opts Options) error {
	h, err := newHome(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(h, tea.WithAltScreen(), tea.WithContext(ctx))
	if opts.Loader != nil {
		opts.Loader.Watch(func(cfg *config.Config, err error) {
			p.Send(configChangedMsg{cfg: cfg, err: err})
		})
	}
	_, err = p.Run()
	return err
}

// hideErrMsg clears the banner unless a newer message replaced it.
type hideErrMsg struct {
	seq uint64
}

// configChangedMsg carries a re-read config file.
type configChangedMsg struct {
	cfg *config.Config
	err error
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
)

type home struct {
	ctx context.Context

	// -- Storage and Configuration --

	svc    api.Service
	client *api.Client
	// appConfig stores the loaded application configuration
	appConfig *config.Config
	// appState stores persistent application state like seen help screens
	appState config.AppState

	// -- State --

	// hub receives every key press the shell does not handle itself
	hub    *cmd.Hub
	pages  []*page
	active int

	errSeq        uint64
	width, height int

	// -- UI Components --

	// errBox displays error and status messages
	errBox *ui.ErrBox
	// global spinner instance. we plumb this down to where it's needed
	spinner spinner.Model
}

func newHome(ctx context.Context, opts Options) (*home, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("no api service configured")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}

	m := &home{
		ctx:       ctx,
		svc:       opts.Service,
		client:    opts.Client,
		appConfig: opts.Config,
		appState:  opts.State,
		hub:       cmd.NewHub(),
		errBox:    ui.NewErrBox(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	if m.appState == nil {
		m.appState = &memoryState{}
	}

	for _, res := range cmd.Resources {
		m.pages = append(m.pages, newPage(ctx, res, m.svc, m.hub, &m.spinner, opts.Config.UI.SearchDebounce))
	}

	start := opts.Resource
	if start == "" {
		start = m.appState.GetLastResource()
	}
	if cmd.ResourceIndex(start) < 0 {
		start = opts.Config.UI.StartResource
	}
	if opts.Resource != "" && cmd.ResourceIndex(opts.Resource) < 0 {
		return nil, fmt.Errorf("unknown resource %q (have %s)", opts.Resource, strings.Join(cmd.ResourceIDs(), ", "))
	}
	m.active = max(cmd.ResourceIndex(start), 0)
	return m, nil
}

func (m *home) current() *page {
	return m.pages[m.active]
}

func (m *home) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.mountCurrent())
}

func (m *home) mountCurrent() tea.Cmd {
	p := m.current()
	c := p.mount()
	m.showHelpScreen(p)
	return c
}

// switchTo unmounts the current page and mounts the page at index i.
func (m *home) switchTo(i int) tea.Cmd {
	n := len(m.pages)
	i = ((i % n) + n) % n
	if i == m.active {
		return nil
	}
	m.current().unmount()
	m.active = i
	m.errBox.Clear()

	if err := m.appState.SetLastResource(m.current().res.ID); err != nil {
		log.WarningLog.Printf("failed to save last resource: %v", err)
	}
	return m.mountCurrent()
}

// updateHandleWindowSizeEvent sets the sizes of the components.
// The components will try to render inside their bounds.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.errBox.SetSize(int(float32(msg.Width)*0.9), 1) // error box takes 1 row
	// tab bar and error box take a row each
	for _, p := range m.pages {
		p.SetSize(msg.Width, max(msg.Height-2, 1))
	}
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case hideErrMsg:
		if msg.seq == m.errSeq {
			m.errBox.Clear()
		}
		return m, nil
	case statusMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err)
		}
		return m, m.showInfo(msg.info)
	case configChangedMsg:
		return m, m.handleConfigChange(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case debounce.FiredMsg:
		for _, p := range m.pages {
			if inner, ok := p.debouncer.Settled(msg); ok {
				return m, p.update(inner)
			}
		}
		return m, nil
	case resourceMsg:
		for _, p := range m.pages {
			if p.res.ID == msg.resourceID() {
				return m, p.update(msg)
			}
		}
		log.WarningLog.Printf("message for unknown resource %q", msg.resourceID())
		return m, nil
	case spinner.TickMsg:
		var c tea.Cmd
		m.spinner, c = m.spinner.Update(msg)
		return m, c
	}
	return m, nil
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.current()

	if msg.String() == "ctrl+c" {
		return m.handleQuit()
	}
	if !p.capturing() {
		switch {
		case key.Matches(msg, keys.Binding(keys.KeyQuit)):
			return m.handleQuit()
		case key.Matches(msg, keys.Binding(keys.KeyNextResource)):
			return m, m.switchTo(m.active + 1)
		case key.Matches(msg, keys.Binding(keys.KeyPrevResource)):
			return m, m.switchTo(m.active - 1)
		}
	}
	return m, p.handleKey(msg)
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	m.current().unmount()
	if closer, ok := m.appState.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.WarningLog.Printf("Failed to close state: %v", err)
		}
	}
	return m, tea.Quit
}

func (m *home) handleConfigChange(msg configChangedMsg) tea.Cmd {
	if msg.err != nil {
		return m.handleError(fmt.Errorf("config not reloaded: %w", msg.err))
	}
	if m.client != nil && msg.cfg.API.Token != m.appConfig.API.Token {
		m.client.SetToken(msg.cfg.API.Token)
		log.InfoLog.Printf("api token updated from config")
	}
	for _, p := range m.pages {
		p.debouncer.SetDelay(msg.cfg.UI.SearchDebounce)
	}
	m.appConfig = msg.cfg
	return m.showInfo("configuration reloaded")
}

// handleError handles all errors which get bubbled up to the app. sets the error message. We return a callback tea.Cmd that returns a hideErrMsg message
// which clears the error message after 3 seconds.
func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.errBox.SetError(err)
	return m.hideErrLater()
}

func (m *home) showInfo(info string) tea.Cmd {
	if info == "" {
		return nil
	}
	m.errBox.SetInfo(info)
	return m.hideErrLater()
}

func (m *home) hideErrLater() tea.Cmd {
	m.errSeq++
	seq := m.errSeq
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(3 * time.Second):
		}
		return hideErrMsg{seq: seq}
	}
}

func (m *home) renderTabs() string {
	tabs := make([]string, len(m.pages))
	for i, p := range m.pages {
		style := tabStyle
		if i == m.active {
			style = activeTabStyle
		}
		tabs[i] = style.Render(p.res.Name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *home) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		m.current().View(),
		m.errBox.String(),
	)
}

// memoryState keeps app state for the session only, when no state file is
// available.
type memoryState struct {
	seen uint32
	last string
}

func (s *memoryState) GetHelpScreensSeen() uint32           { return s.seen }
func (s *memoryState) SetHelpScreensSeen(seen uint32) error { s.seen = seen; return nil }
func (s *memoryState) GetLastResource() string              { return s.last }
func (s *memoryState) SetLastResource(id string) error      { s.last = id; return nil }
