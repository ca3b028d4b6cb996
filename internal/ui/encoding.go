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

var encodeMethods = []session.EncodeMethod{
	session.EncodeLabel,
	session.EncodeOneHot,
	session.EncodeBinary,
	session.EncodeFrequency,
	session.EncodeTarget,
}

type encodingFactsMsg struct {
	gen  int
	cols map[string][]string
	err  error
}

type encodeDoneMsg struct {
	gen     int
	column  string
	applied bool
	err     error
}

// encodingPanel lists categorical columns and encodes the highlighted
// one with a cyclable method.
type encodingPanel struct {
	sess *session.Session
	st   panelState
	cur  cursor

	names  []string
	values map[string][]string
	method int
	note   string
}

func newEncodingPanel(sess *session.Session) *encodingPanel {
	return &encodingPanel{sess: sess}
}

func (p *encodingPanel) title() string {
	return emoji.GetEmoji("encode") + " Encode Categorical"
}

func (p *encodingPanel) capturesInput() bool { return false }

func (p *encodingPanel) busy() bool { return p.st.loading }

func (p *encodingPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		cols, err := sess.CategoricalColumns(context.Background())
		return encodingFactsMsg{gen: gen, cols: cols, err: err}
	}
}

func (p *encodingPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *encodingPanel) encode() tea.Cmd {
	if p.cur.idx >= len(p.names) {
		return nil
	}
	column := p.names[p.cur.idx]
	method := encodeMethods[p.method]

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		applied, err := sess.Encode(context.Background(), column, method)
		return encodeDoneMsg{gen: gen, column: column, applied: applied, err: err}
	}
}

func (p *encodingPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case encodingFactsMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.values = msg.cols
			p.names = make([]string, 0, len(msg.cols))
			for name := range msg.cols {
				p.names = append(p.names, name)
			}
			sort.Strings(p.names)
			p.cur.clamp(len(p.names))
		}
		return nil

	case encodeDoneMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err != nil {
			return nil
		}
		if !msg.applied {
			p.note = fmt.Sprintf("Encoding of %q already in progress", msg.column)
			return nil
		}
		p.note = ""
		return p.mount()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.cur.up()
		case "down", "j":
			p.cur.down(len(p.names))
		case "m":
			p.method = (p.method + 1) % len(encodeMethods)
		case "enter", " ":
			return p.encode()
		}
	}
	return nil
}

func (p *encodingPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to list categorical columns"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	lines := make([]string, 0, len(p.names)+4)
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.note != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Warning).Render(p.note))
	}
	if len(p.names) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Muted).Render("No categorical columns"))
	}
	for i, name := range p.names {
		vals := p.values[name]
		preview := strings.Join(vals, ", ")
		if len(preview) > 40 {
			preview = preview[:37] + "..."
		}
		text := fmt.Sprintf("%-20s %s", name, lipgloss.NewStyle().Foreground(th.Muted).Render(preview))
		lines = append(lines, cursorLine(th, i == p.cur.idx, text))
	}
	lines = append(lines, "",
		"Method: "+lipgloss.NewStyle().Foreground(th.Accent).Bold(true).Render(string(encodeMethods[p.method])),
		hintLine(th, "Enter Encode highlighted column • m Cycle method"))

	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
