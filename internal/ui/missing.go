package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

var imputeMethods = []session.ImputeMethod{
	session.ImputeMean,
	session.ImputeMedian,
	session.ImputeMode,
	session.ImputeRemove,
}

type missingFactsMsg struct {
	gen    int
	counts []session.MissingCount
	err    error
}

type imputeDoneMsg struct {
	gen     int
	column  string
	applied bool
	err     error
}

// missingPanel shows per-column missing counts and imputes the
// highlighted column with a cyclable method.
type missingPanel struct {
	sess *session.Session
	st   panelState
	cur  cursor

	counts []session.MissingCount
	method int
	note   string
}

func newMissingPanel(sess *session.Session) *missingPanel {
	return &missingPanel{sess: sess}
}

func (p *missingPanel) title() string {
	return emoji.GetEmoji("missing") + " Missing Values"
}

func (p *missingPanel) capturesInput() bool { return false }

func (p *missingPanel) busy() bool { return p.st.loading }

func (p *missingPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		counts, err := sess.MissingValues(context.Background())
		return missingFactsMsg{gen: gen, counts: counts, err: err}
	}
}

func (p *missingPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *missingPanel) impute() tea.Cmd {
	if p.cur.idx >= len(p.counts) {
		return nil
	}
	column := p.counts[p.cur.idx].Column
	method := imputeMethods[p.method]

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		applied, err := sess.HandleMissing(context.Background(), column, method)
		return imputeDoneMsg{gen: gen, column: column, applied: applied, err: err}
	}
}

func (p *missingPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case missingFactsMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.counts = msg.counts
			p.cur.clamp(len(p.counts))
		}
		return nil

	case imputeDoneMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err != nil {
			return nil
		}
		if !msg.applied {
			p.note = fmt.Sprintf("Imputation of %q already in progress", msg.column)
			return nil
		}
		p.note = ""
		return p.mount()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.cur.up()
		case "down", "j":
			p.cur.down(len(p.counts))
		case "m":
			p.method = (p.method + 1) % len(imputeMethods)
		case "enter", " ":
			return p.impute()
		}
	}
	return nil
}

func (p *missingPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to inspect missing values"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	lines := make([]string, 0, len(p.counts)+4)
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.note != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Warning).Render(p.note))
	}
	for i, c := range p.counts {
		style := lipgloss.NewStyle()
		if c.MissingCount > 0 {
			style = style.Foreground(th.Warning)
		}
		text := style.Render(fmt.Sprintf("%-20s %d missing", c.Column, c.MissingCount))
		lines = append(lines, cursorLine(th, i == p.cur.idx, text))
	}
	lines = append(lines, "",
		"Method: "+lipgloss.NewStyle().Foreground(th.Accent).Bold(true).Render(string(imputeMethods[p.method])),
		hintLine(th, "Enter Impute highlighted column • m Cycle method"))

	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
