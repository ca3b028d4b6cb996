package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

var scaleMethods = []session.ScaleMethod{
	session.ScaleMinMax,
	session.ScaleStandard,
	session.ScaleRobust,
	session.ScaleNormalizer,
	session.ScaleQuantile,
}

type scalingFactsMsg struct {
	gen  int
	cols map[string]session.NumericRange
	err  error
}

type scaleDoneMsg struct {
	gen     int
	columns []string
	applied bool
	err     error
}

// scalingPanel lists numeric columns with their ranges and scales a
// selected set of them in one request.
type scalingPanel struct {
	sess *session.Session
	st   panelState
	cur  cursor

	names    []string
	ranges   map[string]session.NumericRange
	selected map[string]bool
	method   int
	note     string
}

func newScalingPanel(sess *session.Session) *scalingPanel {
	return &scalingPanel{sess: sess, selected: make(map[string]bool)}
}

func (p *scalingPanel) title() string {
	return emoji.GetEmoji("scale") + " Scale Numeric"
}

func (p *scalingPanel) capturesInput() bool { return false }

func (p *scalingPanel) busy() bool { return p.st.loading }

func (p *scalingPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		cols, err := sess.NumericColumns(context.Background())
		return scalingFactsMsg{gen: gen, cols: cols, err: err}
	}
}

func (p *scalingPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

// scaleTargets is the selected set, or the highlighted column when
// nothing is selected.
func (p *scalingPanel) scaleTargets() []string {
	targets := make([]string, 0, len(p.selected))
	for _, name := range p.names {
		if p.selected[name] {
			targets = append(targets, name)
		}
	}
	if len(targets) == 0 && p.cur.idx < len(p.names) {
		targets = append(targets, p.names[p.cur.idx])
	}
	return targets
}

func (p *scalingPanel) scale() tea.Cmd {
	targets := p.scaleTargets()
	if len(targets) == 0 {
		return nil
	}
	method := scaleMethods[p.method]

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		applied, err := sess.Scale(context.Background(), targets, method, nil)
		return scaleDoneMsg{gen: gen, columns: targets, applied: applied, err: err}
	}
}

func (p *scalingPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case scalingFactsMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.ranges = msg.cols
			p.names = make([]string, 0, len(msg.cols))
			for name := range msg.cols {
				p.names = append(p.names, name)
			}
			sort.Strings(p.names)
			p.cur.clamp(len(p.names))
		}
		return nil

	case scaleDoneMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err != nil {
			return nil
		}
		if !msg.applied {
			p.note = "Scaling already in progress for " + strings.Join(msg.columns, ", ")
			return nil
		}
		p.note = ""
		p.selected = make(map[string]bool)
		return p.mount()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.cur.up()
		case "down", "j":
			p.cur.down(len(p.names))
		case " ":
			if p.cur.idx < len(p.names) {
				name := p.names[p.cur.idx]
				p.selected[name] = !p.selected[name]
			}
		case "m":
			p.method = (p.method + 1) % len(scaleMethods)
		case "enter":
			return p.scale()
		}
	}
	return nil
}

func (p *scalingPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to list numeric columns"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	lines := make([]string, 0, len(p.names)+4)
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.note != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Warning).Render(p.note))
	}
	for i, name := range p.names {
		mark := "[ ]"
		if p.selected[name] {
			mark = "[x]"
		}
		r := p.ranges[name]
		text := fmt.Sprintf("%s %-20s %s", mark, name,
			lipgloss.NewStyle().Foreground(th.Muted).Render(fmt.Sprintf("%.3g … %.3g", r.Min, r.Max)))
		lines = append(lines, cursorLine(th, i == p.cur.idx, text))
	}
	lines = append(lines, "",
		"Method: "+lipgloss.NewStyle().Foreground(th.Accent).Bold(true).Render(string(scaleMethods[p.method])),
		hintLine(th, "Space Select • Enter Scale selection • m Cycle method"))

	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
