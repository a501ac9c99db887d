// Package tui implements the interactive "now" screen: the one slice to
// work on next, with single-key actions to finish, skip, snooze or extend it.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/lifecycle"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
	"github.com/Iron-Ham/taskstack/internal/service"
)

// Backend is what the screen needs from the engine. *service.Service
// satisfies it.
type Backend interface {
	Queue(ctx context.Context, userID string, limit int) ([]scheduler.Ranked, error)
	Act(ctx context.Context, userID string, req lifecycle.Request) (service.ActionResult, error)
	Capture(ctx context.Context, in breakdown.Input) (breakdown.Result, error)
}

var _ Backend = (*service.Service)(nil)

// upcomingShown is how many queued slices are listed under the current one.
const upcomingShown = 3

// Messages produced by backend commands.
type (
	queueLoadedMsg struct {
		queue []scheduler.Ranked
		err   error
	}
	actionDoneMsg struct {
		result service.ActionResult
		err    error
	}
	capturedMsg struct {
		result breakdown.Result
		err    error
	}
)

// Model is the Bubbletea model for the now screen
type Model struct {
	ctx           context.Context
	backend       Backend
	userID        string
	snoozeMinutes int

	keys  keyMap
	help  help.Model
	input textinput.Model

	queue   []scheduler.Ranked
	loading bool
	adding  bool
	status  string
	err     error

	width    int
	height   int
	quitting bool
}

// New creates the now screen for userID. snoozeMinutes is passed with
// every snooze; zero lets the engine apply its default.
func New(ctx context.Context, backend Backend, userID string, snoozeMinutes int) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 200
	ti.Width = 50

	return Model{
		ctx:           ctx,
		backend:       backend,
		userID:        userID,
		snoozeMinutes: snoozeMinutes,
		keys:          defaultKeyMap(),
		help:          help.New(),
		input:         ti,
		loading:       true,
	}
}

// Run starts the screen in the alternate buffer and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, backend Backend, userID string, snoozeMinutes int) error {
	p := tea.NewProgram(
		New(ctx, backend, userID, snoozeMinutes),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadQueue()
}

// Current returns the slice on screen, or nil.
func (m Model) Current() *scheduler.Ranked {
	if len(m.queue) == 0 {
		return nil
	}
	return &m.queue[0]
}

func (m Model) loadQueue() tea.Cmd {
	return func() tea.Msg {
		queue, err := m.backend.Queue(m.ctx, m.userID, 0)
		return queueLoadedMsg{queue: queue, err: err}
	}
}

func (m Model) act(action lifecycle.Action) tea.Cmd {
	cur := m.Current()
	if cur == nil {
		return nil
	}
	req := lifecycle.Request{SliceID: cur.ID, Action: action}
	if action == lifecycle.ActionSnooze {
		req.SnoozeMinutes = m.snoozeMinutes
	}
	return func() tea.Msg {
		res, err := m.backend.Act(m.ctx, cur.Task.UserID, req)
		return actionDoneMsg{result: res, err: err}
	}
}

func (m Model) capture(title string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.backend.Capture(m.ctx, breakdown.Input{Title: title, UserID: m.userID})
		return capturedMsg{result: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case queueLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.queue = msg.queue
		}
		m.keys.setActionsEnabled(len(m.queue) > 0)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.result.Message
		m.loading = true
		return m, m.loadQueue()

	case capturedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "Added " + msg.result.Task.Title + " (" + string(msg.result.Task.Category) + ")"
		m.loading = true
		return m, m.loadQueue()

	case tea.KeyMsg:
		if m.adding {
			return m.handleAddingKeypress(msg)
		}
		return m.handleKeypress(msg)
	}

	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.status = ""
		return m, m.loadQueue()

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.status = ""
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Done):
		return m, m.act(lifecycle.ActionDone)
	case key.Matches(msg, m.keys.Skip):
		return m, m.act(lifecycle.ActionSkip)
	case key.Matches(msg, m.keys.Snooze):
		return m, m.act(lifecycle.ActionSnooze)
	case key.Matches(msg, m.keys.Extend):
		return m, m.act(lifecycle.ActionExtend)
	}
	return m, nil
}

func (m Model) handleAddingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			return m, nil
		}
		m.adding = false
		m.input.Blur()
		return m, m.capture(title)

	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
