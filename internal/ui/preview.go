package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

const previewRows = 5

type previewMsg struct {
	gen    int
	window session.RowWindow
	err    error
}

// previewPanel shows a head or tail window of the loaded dataset.
type previewPanel struct {
	sess *session.Session
	st   panelState

	window session.RowWindow
	tail   bool
}

func newPreviewPanel(sess *session.Session) *previewPanel {
	return &previewPanel{sess: sess}
}

func (p *previewPanel) title() string {
	side := "Head"
	if p.tail {
		side = "Tail"
	}
	return emoji.GetEmoji("dataset") + " Preview (" + side + ")"
}

func (p *previewPanel) capturesInput() bool { return false }

func (p *previewPanel) busy() bool { return p.st.loading }

func (p *previewPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	tail := p.tail
	return func() tea.Msg {
		var (
			w   session.RowWindow
			err error
		)
		if tail {
			w, err = sess.Tail(context.Background(), previewRows)
		} else {
			w, err = sess.Head(context.Background(), previewRows)
		}
		return previewMsg{gen: gen, window: w, err: err}
	}
}

func (p *previewPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *previewPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case previewMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.window = msg.window
		}
		return nil

	case uploadDoneMsg:
		if msg.err == nil {
			return p.mount()
		}
		return nil

	case tea.KeyMsg:
		if msg.String() == "t" {
			p.tail = !p.tail
			return p.mount()
		}
		return nil
	}
	return nil
}

func (p *previewPanel) view(th Theme, width int) string {
	if body := statusBody(th, &p.st, "Upload a dataset to preview its rows"); body != "" {
		return panelBox(th, width, p.title(), body)
	}

	rows := make([][]string, 0, len(p.window.Rows))
	for _, r := range p.window.Rows {
		cells := make([]string, len(p.window.Columns))
		for i, col := range p.window.Columns {
			cells[i] = fmt.Sprintf("%v", r[col])
		}
		rows = append(rows, cells)
	}

	body := renderGrid(th, p.window.Columns, rows)
	if p.st.err != nil {
		body = errorLine(th, p.st.err) + "\n" + body
	}
	body += "\n\n" + hintLine(th, "t Toggle head/tail")
	return panelBox(th, width, p.title(), body)
}
