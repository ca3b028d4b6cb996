package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

type typecastMsg struct {
	gen  int
	cols []session.ColumnType
	err  error
}

type typecastAppliedMsg struct {
	gen     int
	column  string
	deleted bool
	applied bool
	err     error
}

// typecastPanel lists column dtypes with the server's suggestions and
// applies casts or deletes columns.
type typecastPanel struct {
	sess *session.Session
	st   panelState
	cur  cursor

	cols []session.ColumnType
	note string
}

func newTypecastPanel(sess *session.Session) *typecastPanel {
	return &typecastPanel{sess: sess}
}

func (p *typecastPanel) title() string {
	return emoji.GetEmoji("column") + " Column Types"
}

func (p *typecastPanel) capturesInput() bool { return false }

func (p *typecastPanel) busy() bool { return p.st.loading }

func (p *typecastPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		cols, err := sess.ColumnTypes(context.Background())
		return typecastMsg{gen: gen, cols: cols, err: err}
	}
}

func (p *typecastPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *typecastPanel) apply() tea.Cmd {
	if p.cur.idx >= len(p.cols) {
		return nil
	}
	col := p.cols[p.cur.idx]
	if col.SuggestedType == "" || col.SuggestedType == col.CurrentType {
		p.note = fmt.Sprintf("No cast suggested for %q", col.Name)
		return nil
	}

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		applied, err := sess.UpdateColumnType(context.Background(), col.Name, col.SuggestedType)
		return typecastAppliedMsg{gen: gen, column: col.Name, applied: applied, err: err}
	}
}

func (p *typecastPanel) deleteColumn() tea.Cmd {
	if p.cur.idx >= len(p.cols) {
		return nil
	}
	col := p.cols[p.cur.idx]

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		applied, err := sess.DeleteColumn(context.Background(), col.Name)
		return typecastAppliedMsg{gen: gen, column: col.Name, deleted: true, applied: applied, err: err}
	}
}

func (p *typecastPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case typecastMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.cols = msg.cols
			p.cur.clamp(len(p.cols))
		}
		return nil

	case typecastAppliedMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err != nil {
			return nil
		}
		if !msg.applied {
			p.note = fmt.Sprintf("Change to %q already in progress", msg.column)
			return nil
		}
		p.note = ""
		return p.mount()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.cur.up()
		case "down", "j":
			p.cur.down(len(p.cols))
		case "enter", " ":
			return p.apply()
		case "d":
			return p.deleteColumn()
		}
	}
	return nil
}

func (p *typecastPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to inspect column types"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	lines := make([]string, 0, len(p.cols)+3)
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.note != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Warning).Render(p.note))
	}
	for i, c := range p.cols {
		text := fmt.Sprintf("%-20s %-10s", c.Name, c.CurrentType)
		if c.SuggestedType != "" && c.SuggestedType != c.CurrentType {
			text += lipgloss.NewStyle().Foreground(th.Accent).Render(" → " + c.SuggestedType)
		}
		lines = append(lines, cursorLine(th, i == p.cur.idx, text))
	}
	lines = append(lines, "", hintLine(th, "Enter Apply suggested cast • d Delete column"))

	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
