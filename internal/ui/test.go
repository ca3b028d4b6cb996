package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/session"
)

type evaluateDoneMsg struct {
	gen     int
	metrics session.Metrics
	err     error
}

// testPanel evaluates the trained model against the persisted test
// split.
type testPanel struct {
	sess  *session.Session
	store *handoff.Store
	st    panelState

	metrics session.Metrics
	done    bool
}

func newTestPanel(sess *session.Session, store *handoff.Store) *testPanel {
	return &testPanel{sess: sess, store: store}
}

func (p *testPanel) title() string {
	return emoji.GetEmoji("model") + " Evaluate Model"
}

func (p *testPanel) capturesInput() bool { return false }

func (p *testPanel) busy() bool { return p.st.loading }

func (p *testPanel) mount() tea.Cmd { return nil }

func (p *testPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *testPanel) evaluate() tea.Cmd {
	artifact, err := p.store.Load()
	if err != nil {
		p.st.err = err
		return nil
	}
	if !artifact.TestReady() {
		p.st.err = backend.NewPreconditionError("No test data found. Please split your dataset first.")
		return nil
	}

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		metrics, err := sess.Evaluate(context.Background(), artifact.TestMatrix(), artifact.YTest)
		return evaluateDoneMsg{gen: gen, metrics: metrics, err: err}
	}
}

func (p *testPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case evaluateDoneMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.metrics = msg.metrics
			p.done = true
		}
		return nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return p.evaluate()
		}
	}
	return nil
}

func (p *testPanel) view(th Theme, width int) string {
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	lines := make([]string, 0, 12)
	if p.st.loading {
		lines = append(lines, muted.Render("Evaluating..."))
	}
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}

	if p.done {
		lines = append(lines, renderMetrics(th, p.metrics)...)
	} else if p.st.err == nil && !p.st.loading {
		lines = append(lines, muted.Render("Press Enter to evaluate the trained model"))
	}

	lines = append(lines, "", hintLine(th, "Enter Evaluate"))
	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderMetrics(th Theme, m session.Metrics) []string {
	accent := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)

	var lines []string
	add := func(name string, value float64) {
		if value != 0 {
			lines = append(lines, fmt.Sprintf("%-12s %s", name, accent.Render(fmt.Sprintf("%.4f", value))))
		}
	}
	add("Accuracy", m.Accuracy)
	add("Precision", m.Precision)
	add("Recall", m.Recall)
	add("F1", m.F1)
	add("MSE", m.MSE)
	add("R²", m.R2)

	if len(m.ConfusionMatrix) > 0 {
		lines = append(lines, "", "Confusion matrix:")
		for _, row := range m.ConfusionMatrix {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = fmt.Sprintf("%5d", v)
			}
			lines = append(lines, "  "+strings.Join(cells, " "))
		}
	}
	return lines
}
