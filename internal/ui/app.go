package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/duetmon/internal/logtail"
	"github.com/five82/duetmon/internal/prefs"
	"github.com/five82/duetmon/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Refresh   func() // asks the poller for an immediate cycle; may be nil
	Host      string
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	LogFile   string // tailed for recent warnings; empty disables the section
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	refresh   func()
	host      string
	prefsPath string
	prefs     prefs.Prefs
	pollTick  time.Duration
	logFile   string

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
	height   int
	ready    bool

	// Data state
	snapshot  state.Snapshot
	warnings  []logtail.Entry
	now       time.Time
	saveError error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	p := opts.Prefs
	if p.Theme == "" {
		p.Theme = prefs.DefaultTheme()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(p.Theme)

	h := help.New()
	h.ShowAll = p.FullHelp

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		refresh:   opts.Refresh,
		host:      opts.Host,
		prefsPath: prefsPath,
		prefs:     p,
		pollTick:  pollTick,
		logFile:   opts.LogFile,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      h,
		progress:  newProgress(theme),
		now:       time.Now(),
	}
}

func newProgress(t Theme) progress.Model {
	return progress.New(
		progress.WithGradient(t.Accent, t.Success),
		progress.WithoutPercentage(),
		progress.WithWidth(defaultBarWidth),
	)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logFile != "" {
		cmds = append(cmds, fetchWarningsCmd(m.logFile))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = barWidth(msg.Width)
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case warningsMsg:
		m.warnings = msg
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Connecting to " + m.host + "..."
	}
	return m.renderPanel()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		if m.refresh != nil {
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.progress = newProgress(m.theme)
		m.progress.Width = barWidth(m.width)
		m.prefs.Theme = m.theme.Name
		m.saveError = prefs.Save(m.prefsPath, m.prefs)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.prefs.FullHelp = m.help.ShowAll
		m.saveError = prefs.Save(m.prefsPath, m.prefs)
		return m, nil
	}

	return m, nil
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.now = now
	if m.ctx.Err() != nil {
		return m, tea.Quit
	}

	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logFile != "" {
		cmds = append(cmds, fetchWarningsCmd(m.logFile))
	}
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type warningsMsg []logtail.Entry

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// fetchWarningsCmd reads recent warnings; a read failure keeps the panel
// quiet rather than replacing the status view.
func fetchWarningsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Warnings(path, maxWarnings, warningScanLines)
		if err != nil {
			return warningsMsg(nil)
		}
		return warningsMsg(entries)
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
