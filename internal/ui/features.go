package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/selection"
	"github.com/evrenbal/mlforge/internal/session"
)

type featureColumnsMsg struct {
	gen  int
	cols []session.ColumnType
	err  error
}

// featuresPanel picks the feature set and target column into the
// shared selection store.
type featuresPanel struct {
	sess *session.Session
	sel  *selection.Store
	st   panelState
	cur  cursor

	names []string
}

// newFeaturesPanel resolves the shared store from the selection scope
// the dashboard runs under. A ctx built outside selection.NewContext
// panics here, at wiring time, instead of silently splitting state.
func newFeaturesPanel(ctx context.Context, sess *session.Session) *featuresPanel {
	return &featuresPanel{sess: sess, sel: selection.FromContext(ctx)}
}

func (p *featuresPanel) title() string {
	return emoji.GetEmoji("column") + " Features & Target"
}

func (p *featuresPanel) capturesInput() bool { return false }

func (p *featuresPanel) busy() bool { return p.st.loading }

func (p *featuresPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		cols, err := sess.ColumnTypes(context.Background())
		return featureColumnsMsg{gen: gen, cols: cols, err: err}
	}
}

func (p *featuresPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *featuresPanel) toggleFeature() {
	if p.cur.idx >= len(p.names) {
		return
	}
	name := p.names[p.cur.idx]
	features := p.sel.Features()
	for i, f := range features {
		if f == name {
			p.sel.SetFeatures(append(features[:i], features[i+1:]...))
			return
		}
	}
	p.sel.SetFeatures(append(features, name))
}

func (p *featuresPanel) setTarget() {
	if p.cur.idx >= len(p.names) {
		return
	}
	name := p.names[p.cur.idx]
	if p.sel.Target() == name {
		p.sel.SetTarget("")
		return
	}
	p.sel.SetTarget(name)
}

func (p *featuresPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case featureColumnsMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.names = make([]string, 0, len(msg.cols))
			for _, c := range msg.cols {
				p.names = append(p.names, c.Name)
			}
			p.cur.clamp(len(p.names))
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.cur.up()
		case "down", "j":
			p.cur.down(len(p.names))
		case " ":
			p.toggleFeature()
		case "t":
			p.setTarget()
		case "x":
			p.sel.Clear()
		}
	}
	return nil
}

func (p *featuresPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to pick features"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	features := p.sel.Features()
	isFeature := make(map[string]bool, len(features))
	for _, f := range features {
		isFeature[f] = true
	}
	target := p.sel.Target()

	lines := make([]string, 0, len(p.names)+4)
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	for i, name := range p.names {
		mark := "[ ]"
		suffix := ""
		switch {
		case name == target:
			mark = "[T]"
			suffix = lipgloss.NewStyle().Foreground(th.Accent).Render("  target")
		case isFeature[name]:
			mark = "[x]"
		}
		lines = append(lines, cursorLine(th, i == p.cur.idx, mark+" "+name+suffix))
	}

	summary := "Features: "
	if len(features) == 0 {
		summary += "none"
	} else {
		summary += strings.Join(features, ", ")
	}
	summary += "   Target: "
	if target == "" {
		summary += "none"
	} else {
		summary += target
	}

	lines = append(lines, "",
		lipgloss.NewStyle().Foreground(th.Secondary).Render(summary),
		hintLine(th, "Space Toggle feature • t Set target • x Clear all"))

	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
