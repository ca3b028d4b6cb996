package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

type summaryMsg struct {
	gen  int
	desc session.Description
	err  error
}

// summaryPanel shows the dataset's summary statistics.
type summaryPanel struct {
	sess *session.Session
	st   panelState

	desc session.Description
}

func newSummaryPanel(sess *session.Session) *summaryPanel {
	return &summaryPanel{sess: sess}
}

func (p *summaryPanel) title() string {
	return emoji.GetEmoji("dataset") + " Summary Statistics"
}

func (p *summaryPanel) capturesInput() bool { return false }

func (p *summaryPanel) busy() bool { return p.st.loading }

func (p *summaryPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		desc, err := sess.Describe(context.Background())
		return summaryMsg{gen: gen, desc: desc, err: err}
	}
}

func (p *summaryPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *summaryPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case summaryMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.desc = msg.desc
		}
	}
	return nil
}

func (p *summaryPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to see its statistics"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	headers := append([]string{""}, p.desc.Columns...)
	rows := make([][]string, 0, len(p.desc.Rows))
	for i, r := range p.desc.Rows {
		stat := ""
		if i < len(p.desc.Index) {
			stat = p.desc.Index[i]
		}
		cells := make([]string, 0, len(headers))
		cells = append(cells, stat)
		for _, col := range p.desc.Columns {
			cells = append(cells, formatStat(r[col]))
		}
		rows = append(rows, cells)
	}

	body := renderGrid(th, headers, rows)
	if p.st.err != nil {
		body = errorLine(th, p.st.err) + "\n" + body
	}
	return panelBox(th, width, p.title(), body)
}

func formatStat(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.3f", n)
	case nil:
		return "-"
	default:
		return fmt.Sprintf("%v", v)
	}
}
