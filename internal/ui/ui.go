package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/donalf/yt2spot/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProgressView ViewState = iota
	ResultView
)

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	engine       *tasks.Engine
	opts         tasks.ImportOpts
	view         ViewState
	progressChan chan tasks.ProgressUpdate
	update       tasks.ProgressUpdate
	bar          progress.Model
	result       *tasks.ImportResult
	err          error
	width        int
	help         help.Model
	keys         keyMap
}

// New creates the import TUI model and wires the engine's progress channel
// into it.
func New(ctx context.Context, engine *tasks.Engine, opts tasks.ImportOpts) Model {
	progressChan := make(chan tasks.ProgressUpdate, 64)
	engine.Progress = progressChan

	return Model{
		ctx:          ctx,
		engine:       engine,
		opts:         opts,
		progressChan: progressChan,
		bar:          progress.New(progress.WithDefaultGradient()),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startRun(), m.waitForProgress())
}

// startRun executes the engine in a command goroutine; the run's outcome
// arrives as a single [MsgRunComplete].
func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Run(m.ctx, m.opts)
		return runCompleteMsg(result, err)
	}
}

// waitForProgress blocks on the next engine update and re-subscribes after
// each message.
func (m Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		return progressMsg(<-m.progressChan)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}

	case Msg:
		switch msg.kind {
		case MsgProgress:
			m.update = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()

		case MsgRunComplete:
			data := msg.data.(struct {
				result *tasks.ImportResult
				err    error
			})
			m.result = data.result
			m.err = data.err
			m.view = ResultView
			if m.err != nil {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	return m, nil
}

func (m Model) View() string {
	switch m.view {
	case ResultView:
		return m.resultView()
	default:
		return m.progressView()
	}
}

func (m Model) progressView() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Importing playlist"))
	b.WriteString("\n")

	switch m.update.Phase {
	case tasks.PhaseFetch:
		b.WriteString("Fetching source playlist...\n")
	case tasks.PhaseMatch:
		b.WriteString(fmt.Sprintf("Matching %d/%d: %s\n", m.update.Current, m.update.Total, m.update.Message))
	case tasks.PhaseAdd:
		b.WriteString(fmt.Sprintf("Adding tracks %d/%d\n", m.update.Current, m.update.Total))
	default:
		b.WriteString("Starting...\n")
	}

	if m.update.Total > 0 {
		b.WriteString(m.bar.ViewAs(float64(m.update.Current) / float64(m.update.Total)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) resultView() string {
	if m.err != nil {
		return styles.err.Render("Import failed") + "\n" + m.err.Error() + "\n"
	}
	if m.result == nil {
		return styles.warn.Render("Import cancelled") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Import complete"))
	b.WriteString("\n")

	if m.result.Target != nil {
		b.WriteString(fmt.Sprintf("Target playlist: %s\n\n", m.result.Target.Name))
	}

	b.WriteString(styles.ok.Render(fmt.Sprintf("  matched     %d", m.result.Matched)) + "\n")
	b.WriteString(styles.warn.Render(fmt.Sprintf("  ambiguous   %d", m.result.Ambiguous)) + "\n")
	b.WriteString(styles.err.Render(fmt.Sprintf("  not found   %d", m.result.NotFound)) + "\n")
	if m.result.AddFailed > 0 {
		b.WriteString(styles.err.Render(fmt.Sprintf("  add failed  %d", m.result.AddFailed)) + "\n")
	}

	b.WriteString(fmt.Sprintf("\n  %.1f%% of %d items matched\n", m.result.MatchPercentage(), len(m.result.Results)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run drives the TUI to completion and returns the import result for
// report writing.
func Run(ctx context.Context, engine *tasks.Engine, opts tasks.ImportOpts) (*tasks.ImportResult, error) {
	final, err := tea.NewProgram(New(ctx, engine, opts)).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected TUI model type")
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return nil, fmt.Errorf("import cancelled before completion")
	}

	return m.result, nil
}
