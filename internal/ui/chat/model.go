// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/comply-tui/internal/commands"
	"github.com/jeranaias/comply-tui/internal/export"
	"github.com/jeranaias/comply-tui/internal/logging"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

// inputCharLimit bounds a single prompt typed into the TUI.
const inputCharLimit = 8192

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat model.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Identity     orchestrator.Identity

	// Registry defaults to commands.NewRegistry().
	Registry *commands.Registry

	// Export configures /export.
	Export *export.Options

	// ShowRules lists triggered rules under each analysed turn.
	ShowRules bool

	// Subtitle is shown next to the title, e.g. the backend URL.
	Subtitle string

	// Context is passed to backend requests. Defaults to Background.
	Context context.Context

	Logger logrus.FieldLogger
}

// =============================================================================
// MODEL DEFINITION
// =============================================================================

// Model is the Bubble Tea model of the chat screen. All conversation state
// lives in the orchestrator; the model only renders it and routes input.
type Model struct {
	orch        *orchestrator.Orchestrator
	registry    *commands.Registry
	cmdCtx      *commands.Context
	completer   *commands.Completer
	completions *commands.CompletionState
	ctx         context.Context
	log         logrus.FieldLogger

	theme *styles.Theme
	keys  KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width    int
	height   int
	ready    bool
	quitting bool

	showHelp  bool
	showRules bool
	subtitle  string

	notice        string
	noticeIsError bool
	noticeSeq     int
}

// New creates a new chat model.
func New(opts Options, theme *styles.Theme) Model {
	if opts.Registry == nil {
		opts.Registry = commands.NewRegistry()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	log := opts.Logger.WithField("component", "chat")

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the content to generate, or /upload <path>"
	ti.CharLimit = inputCharLimit
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII frames keep the spinner one column wide everywhere.
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	return Model{
		orch:     opts.Orchestrator,
		registry: opts.Registry,
		cmdCtx: &commands.Context{
			Orchestrator: opts.Orchestrator,
			Identity:     opts.Identity,
			Export:       opts.Export,
			Log:          log,
		},
		completer:   commands.NewCompleter(opts.Registry),
		completions: commands.NewCompletionState(),
		ctx:         opts.Context,
		log:         log,
		theme:       theme,
		keys:        DefaultKeyMap(),
		viewport:    vp,
		input:       ti,
		spinner:     sp,
		showRules:   opts.ShowRules,
		subtitle:    opts.Subtitle,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case OperationDoneMsg:
		m.log.WithField("request_id", msg.RequestID).Debug("operation settled")
		m.refresh(true)
		return m, nil

	case NoticeMsg:
		cmd := m.setNotice(msg.Text, msg.IsError)
		return m, cmd

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeIsError = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.orch.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(false)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.renderChat()
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	// "> " plus the container's padding.
	m.input.Width = maxInt(m.width-6, 10)

	m.layout()
	m.refresh(false)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Dismiss, m.keys.Submit) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		m.clearCompletions()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		m.complete(false)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.complete(true)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	m.clearCompletions()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line through the command registry. The input is
// kept when the orchestrator is busy so the user can retry.
func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if strings.TrimSpace(value) == "" {
		return m, nil
	}
	m.clearCompletions()

	res, err := m.registry.Execute(m.cmdCtx, value)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrBusy):
			cmd := m.setNotice(m.orch.State().BusyLabel()+" Please wait.", true)
			return m, cmd
		case errors.Is(err, orchestrator.ErrEmptyInput):
			return m, nil
		case errors.Is(err, orchestrator.ErrPromptTooShort):
			// Reported as an error turn by the orchestrator.
			m.input.Reset()
			m.refresh(true)
			return m, nil
		}
		m.log.WithError(err).Debug("input rejected")
		cmd := m.setNotice(err.Error(), true)
		return m, cmd
	}

	m.input.Reset()
	if res.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	if res.ShowHelp {
		m.showHelp = true
	}

	var cmds []tea.Cmd
	if res.Notice != "" {
		cmds = append(cmds, m.setNotice(res.Notice, false))
	}
	if res.Operation != nil {
		cmds = append(cmds, RunOperationCmd(m.ctx, res.Operation), m.spinner.Tick)
	}
	m.refresh(true)
	return m, tea.Batch(cmds...)
}

// complete applies the next (or previous) completion to the input.
func (m *Model) complete(reverse bool) {
	if !m.completions.Active() {
		value := m.input.Value()
		comps := m.completer.Complete(value, len(value))
		if len(comps) == 0 {
			return
		}
		if len(comps) == 1 {
			m.setInput(commands.Apply(value, comps[0]))
			return
		}
		m.completions.Update(value, comps)
	} else if reverse {
		m.completions.Prev()
	} else {
		m.completions.Next()
	}

	if sel := m.completions.GetSelected(); sel != nil {
		m.setInput(commands.Apply(m.completions.OriginalInput, *sel))
	}
	m.layout()
}

func (m *Model) clearCompletions() {
	if m.completions.Active() {
		m.completions.Clear()
		m.layout()
	}
}

func (m *Model) setInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
}

func (m *Model) setNotice(text string, isError bool) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	m.noticeIsError = isError
	return expireNoticeCmd(m.noticeSeq)
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport to the space the fixed parts leave.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	fixed := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderCompletions()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())

	m.viewport.Width = maxInt(m.width, 1)
	m.viewport.Height = maxInt(m.height-fixed, 1)
}

// refresh re-renders the conversation into the viewport. The view follows
// the newest turn when follow is set or it was already at the bottom.
func (m *Model) refresh(follow bool) {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderConversation())
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}
