package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/console"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/selection"
	"github.com/evrenbal/mlforge/internal/session"
	"github.com/evrenbal/mlforge/internal/workflow"
)

const sidebarWidth = 24

// Deps bundles the long-lived stores the dashboard operates on. All of
// them outlive the program and are shared with the headless commands.
type Deps struct {
	Session   *session.Session
	Selection *selection.Store
	Tracker   *workflow.Tracker
	Handoff   *handoff.Store
	Log       *console.Log
	Bus       console.Broadcaster
}

// Model is the top-level dashboard: workflow sidebar, the panels of
// the active stage, and the console viewer.
type Model struct {
	deps  Deps
	theme Theme

	width    int
	height   int
	ready    bool
	quitting bool
	showHelp bool

	panels  map[workflow.Stage][]panel
	console *consoleView
	spin    spinner.Model

	// pending collects the mount commands queued by the tracker's
	// transition callback; gotoStage drains it after Goto returns.
	pending []tea.Cmd
}

// NewModel wires the dashboard around the given stores.
func NewModel(deps Deps) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		deps:    deps,
		theme:   CurrentTheme(),
		console: newConsoleView(deps.Log),
		spin:    sp,
	}

	selCtx := selection.NewContext(context.Background(), deps.Selection)

	upload := newUploadPanel(deps.Session, deps.Handoff, deps.Bus)
	preview := newPreviewPanel(deps.Session)
	features := newFeaturesPanel(selCtx, deps.Session)
	split := newSplitPanel(selCtx, deps.Session, deps.Handoff)

	m.panels = map[workflow.Stage][]panel{
		workflow.StageLoad:       {upload, preview},
		workflow.StagePreprocess: {newTypecastPanel(deps.Session)},
		workflow.StageMissing:    {newMissingPanel(deps.Session)},
		workflow.StageEncoding:   {newEncodingPanel(deps.Session)},
		workflow.StageScaling:    {newScalingPanel(deps.Session)},
		workflow.StageSummary:    {newSummaryPanel(deps.Session)},
		workflow.StageSplit:      {features, split},
		workflow.StageTrain:      {newTrainPanel(deps.Session, deps.Handoff)},
		workflow.StageTest:       {newTestPanel(deps.Session, deps.Handoff)},
		workflow.StagePredict:    {newPredictPanel(deps.Session, deps.Handoff)},
	}

	deps.Tracker.OnGoto(func(workflow.Stage) {
		m.pending = append(m.pending, m.mountActive()...)
	})
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen, tick(), m.spin.Tick}
	cmds = append(cmds, m.mountActive()...)
	return tea.Batch(cmds...)
}

func (m *Model) activePanels() []panel {
	return m.panels[m.deps.Tracker.Active()]
}

func (m *Model) mountActive() []tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.activePanels() {
		if cmd := p.mount(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) unmountActive() {
	for _, p := range m.activePanels() {
		p.unmount()
	}
}

// gotoStage leaves the current stage and asks the tracker to move.
// Mounting the target's panels happens in the OnGoto callback, so it
// only runs when the tracker actually accepted the transition.
func (m *Model) gotoStage(s workflow.Stage) tea.Cmd {
	if s == m.deps.Tracker.Active() {
		return nil
	}
	m.unmountActive()
	m.pending = nil
	m.deps.Tracker.Goto(s)
	cmds := m.pending
	m.pending = nil
	if len(cmds) == 0 {
		// The tracker refused the move; bring the old panels back.
		return tea.Batch(m.mountActive()...)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	// Everything else is panel traffic. Deliver to every panel so
	// responses for panels no longer on screen still reach their
	// generation check and get discarded there.
	var cmds []tea.Cmd
	for _, ps := range m.panels {
		for _, p := range ps {
			if cmd := p.update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch key {
		case "esc", "?":
			m.showHelp = false
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.console.expanded() {
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "esc", "c":
			m.console.toggle()
		case "up", "k":
			m.console.scrollUp()
		case "down", "j":
			m.console.scrollDown()
		case "C":
			m.deps.Log.Clear()
		}
		return m, nil
	}

	// A panel in text-entry mode owns the keyboard until it drops out
	// of it, so typed characters never trigger global bindings.
	for _, p := range m.activePanels() {
		if p.capturesInput() {
			var cmds []tea.Cmd
			for _, ap := range m.activePanels() {
				if cmd := ap.update(msg); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			return m, tea.Batch(cmds...)
		}
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "c":
		m.console.toggle()
		return m, nil
	case "tab", "n":
		return m, m.gotoStage(m.deps.Tracker.Next())
	case "shift+tab", "p":
		return m, m.gotoStage(m.deps.Tracker.Prev())
	case "r":
		return m, tea.Batch(m.mountActive()...)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "0":
		idx := int(key[0] - '1')
		if key == "0" {
			idx = 9
		}
		if idx < len(workflow.Stages) {
			return m, m.gotoStage(workflow.Stages[idx])
		}
		return m, nil
	}

	// Remaining keys belong to the focused panels.
	var cmds []tea.Cmd
	for _, p := range m.activePanels() {
		if cmd := p.update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting dashboard..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	if m.console.expanded() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.console.full(m.theme, min(m.width-4, 100), min(m.height-4, 30)))
	}

	panelWidth := m.width - sidebarWidth - 6
	if panelWidth < 30 {
		panelWidth = 30
	}

	views := make([]string, 0, 2)
	for _, p := range m.activePanels() {
		views = append(views, p.view(m.theme, panelWidth))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		lipgloss.JoinVertical(lipgloss.Left, views...),
	)

	footer := hintLine(m.theme,
		"Tab/n Next stage • Shift+Tab/p Prev • 1-9,0 Jump • r Refresh • c Console • ? Help • q Quit")
	for _, p := range m.activePanels() {
		if p.busy() {
			footer = m.spin.View() + " " + footer
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.console.strip(m.theme, m.width-2),
		footer,
	)
}

func (m *Model) renderSidebar() string {
	active := m.deps.Tracker.Active()
	lines := make([]string, 0, len(workflow.Stages)+2)

	title := lipgloss.NewStyle().
		Foreground(m.theme.Primary).
		Bold(true).
		Render(emoji.GetEmoji("model") + " Workflow")
	lines = append(lines, title, "")

	for i, s := range workflow.Stages {
		marker := "○"
		if m.deps.Tracker.Visited(s) {
			marker = "●"
		}
		label := fmt.Sprintf("%d", i+1)
		if i == 9 {
			label = "0"
		}
		text := fmt.Sprintf("%s %s %s", label, marker, s.Title())

		style := lipgloss.NewStyle().Foreground(m.theme.Secondary)
		prefix := "  "
		if s == active {
			style = lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true)
			prefix = "▶ "
		}
		lines = append(lines, style.Render(prefix+text))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1).
		Width(sidebarWidth).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelp() string {
	sections := []string{
		"Navigation:",
		"  Tab or n       Next workflow stage",
		"  Shift+Tab or p Previous stage",
		"  1-9, 0         Jump to a stage",
		"  r              Re-fetch the active panels",
		"",
		"Console:",
		"  c              Expand or collapse the console",
		"  C              Clear the console (expanded)",
		"",
		"Panels:",
		"  ↑↓ or j/k      Move within a panel",
		"  Space          Toggle a selection",
		"  Enter          Apply the panel's action",
		"  m              Cycle the panel's method",
		"",
		"  q or Ctrl+C    Quit",
	}

	title := lipgloss.NewStyle().
		Foreground(m.theme.Primary).
		Bold(true).
		Render(emoji.GetEmoji("help") + " mlforge Help")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, "", strings.Join(sections, "\n"), "",
		hintLine(m.theme, "Press Esc to go back"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Run starts the dashboard program and blocks until it exits.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
