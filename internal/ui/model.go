package ui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/five82/helios/internal/daytimes"
	"github.com/five82/helios/internal/logtail"
	"github.com/five82/helios/internal/prefs"
)

const (
	logTailLines   = 200
	logRefreshTick = time.Second
)

// Navigator receives the user's day selection. Implementations must be safe to
// call from the UI goroutine.
type Navigator interface {
	Step(delta int32)
	Today()
	Goto(offset int32)
}

// Options configures the UI.
type Options struct {
	Navigator   Navigator
	StartOffset int32
	Location    string
	HostAddr    string
	ThemeName   string
	PrefsPath   string
	LogPath     string
	Fs          afero.Fs
	Logger      *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	nav       Navigator
	location  string
	hostAddr  string
	prefsPath string
	logPath   string
	fs        afero.Fs
	logger    *slog.Logger
	keys      keyMap

	theme  Theme
	width  int
	height int
	ready  bool

	// selected tracks navigation locally so the header moves before the
	// host answers. day is only shown while its offset matches.
	selected int32
	day      daytimes.DayRecord
	status   string

	showHelp bool

	showLogs    bool
	logViewport viewport.Model
	logLines    []string

	gotoMode  bool
	gotoInput textinput.Model
	gotoErr   string
}

// StatusMsg replaces the status line.
type StatusMsg string

// DayMsg replaces the displayed day.
type DayMsg daytimes.DayRecord

type logLinesMsg []string

type logTickMsg time.Time

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	input := textinput.New()
	input.Placeholder = "offset, e.g. -3 or 7"
	input.CharLimit = 6
	input.Width = 20

	return Model{
		nav:       opts.Navigator,
		location:  opts.Location,
		hostAddr:  opts.HostAddr,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		fs:        fs,
		logger:    logger,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		selected:  opts.StartOffset,
		day:       daytimes.Pending(opts.StartOffset),
		gotoInput: input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.logHeight())
		}
		m.ready = true
		m.logViewport.Width = msg.Width
		m.logViewport.Height = m.logHeight()
		m.updateLogViewport()
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case DayMsg:
		m.day = daytimes.DayRecord(msg)
		return m, nil

	case logLinesMsg:
		m.logLines = msg
		m.updateLogViewport()
		return m, nil

	case logTickMsg:
		if !m.showLogs {
			return m, nil
		}
		return m, tea.Batch(m.readLogsCmd(), logTickCmd())
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Selected returns the offset the header shows.
func (m Model) Selected() int32 {
	return m.selected
}

// Day returns the last record received from the controller.
func (m Model) Day() daytimes.DayRecord {
	return m.day
}

// Status returns the current status line.
func (m Model) Status() string {
	return m.status
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.gotoMode {
		return m.handleGotoKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if err := prefs.Save(m.fs, m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
			m.logger.Warn("save prefs failed", slog.String("error", err.Error()))
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, tea.Batch(m.readLogsCmd(), logTickCmd())
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.showLogs = false
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.selected--
		m.navigate(func(n Navigator) { n.Step(-1) })
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.selected++
		m.navigate(func(n Navigator) { n.Step(1) })
		return m, nil

	case key.Matches(msg, m.keys.Today):
		m.selected = 0
		m.navigate(Navigator.Today)
		return m, nil

	case key.Matches(msg, m.keys.Goto):
		m.gotoMode = true
		m.gotoErr = ""
		m.gotoInput.SetValue("")
		return m, m.gotoInput.Focus()
	}

	return m, nil
}

func (m Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.gotoMode = false
		m.gotoInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		offset, err := parseOffset(m.gotoInput.Value())
		if err != nil {
			m.gotoErr = err.Error()
			return m, nil
		}
		m.gotoMode = false
		m.gotoInput.Blur()
		m.selected = offset
		m.navigate(func(n Navigator) { n.Goto(offset) })
		return m, nil

	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m Model) navigate(fn func(Navigator)) {
	if m.nav != nil {
		fn(m.nav)
	}
}

func parseOffset(value string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not a day offset: %q", strings.TrimSpace(value))
	}
	return int32(v), nil
}

func (m Model) logHeight() int {
	// Header, command bar, card and status take roughly half the screen.
	h := m.height / 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.SetContent(m.renderLogLines())
	m.logViewport.GotoBottom()
}

func (m Model) readLogsCmd() tea.Cmd {
	fs, path, logger := m.fs, m.logPath, m.logger
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg(nil)
		}
		lines, err := logtail.Read(fs, path, logTailLines)
		if err != nil {
			logger.Debug("read log failed", slog.String("error", err.Error()))
			return logLinesMsg([]string{"unable to read log: " + err.Error()})
		}
		return logLinesMsg(lines)
	}
}

func logTickCmd() tea.Cmd {
	return tea.Tick(logRefreshTick, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

// NewProgram builds the Bubble Tea program for opts. The caller wires a
// ProgramSink to it before calling Run.
func NewProgram(opts Options) *tea.Program {
	return tea.NewProgram(New(opts), tea.WithAltScreen())
}
