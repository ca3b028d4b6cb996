package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/session"
)

type predictDoneMsg struct {
	gen    int
	result session.PredictResult
	err    error
}

// predictPanel feeds one hand-typed sample to the trained model.
type predictPanel struct {
	sess  *session.Session
	store *handoff.Store
	st    panelState

	input   textinput.Model
	editing bool
	result  session.PredictResult
	done    bool
}

func newPredictPanel(sess *session.Session, store *handoff.Store) *predictPanel {
	ti := textinput.New()
	ti.Placeholder = "comma-separated feature values"
	ti.CharLimit = 512
	return &predictPanel{sess: sess, store: store, input: ti}
}

func (p *predictPanel) title() string {
	return emoji.GetEmoji("predict") + " Predict"
}

func (p *predictPanel) capturesInput() bool { return p.editing }

func (p *predictPanel) busy() bool { return p.st.loading }

func (p *predictPanel) mount() tea.Cmd { return nil }

func (p *predictPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *predictPanel) predict(raw string) tea.Cmd {
	artifact, err := p.store.Load()
	if err != nil {
		p.st.err = err
		return nil
	}
	if !artifact.TrainReady() {
		p.st.err = backend.NewPreconditionError("No training data found. Please split your dataset first.")
		return nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != len(artifact.Features) {
		p.st.err = backend.NewPreconditionError(fmt.Sprintf(
			"expected %d values for features %s, got %d",
			len(artifact.Features), strings.Join(artifact.Features, ", "), len(parts)))
		return nil
	}
	row := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			p.st.err = backend.NewPreconditionError("invalid numeric value: " + strings.TrimSpace(part))
			return nil
		}
		row[i] = v
	}

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		result, err := sess.Predict(context.Background(), [][]float64{row}, artifact.Features)
		return predictDoneMsg{gen: gen, result: result, err: err}
	}
}

func (p *predictPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case predictDoneMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.result = msg.result
			p.done = true
		}
		return nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.editing {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}
	return nil
}

func (p *predictPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.editing {
		switch msg.String() {
		case "esc":
			p.editing = false
			p.input.Blur()
			return nil
		case "enter":
			raw := p.input.Value()
			p.editing = false
			p.input.Blur()
			if raw == "" {
				return nil
			}
			return p.predict(raw)
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	if msg.String() == "enter" || msg.String() == "e" {
		p.editing = true
		return p.input.Focus()
	}
	return nil
}

func (p *predictPanel) view(th Theme, width int) string {
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	lines := make([]string, 0, 8)
	if p.editing {
		lines = append(lines, "Sample values:", p.input.View(), "",
			hintLine(th, "Enter Predict • Esc Cancel"))
		return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	if p.st.loading {
		lines = append(lines, muted.Render("Predicting..."))
	}
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.done {
		preds := make([]string, len(p.result.Predictions))
		for i, v := range p.result.Predictions {
			preds[i] = fmt.Sprintf("%v", v)
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Success).Render(
			fmt.Sprintf("%s Prediction: %s", emoji.GetEmoji("success"), strings.Join(preds, ", "))))
	} else if p.st.err == nil && !p.st.loading {
		lines = append(lines, muted.Render("Enter one sample to run through the model"))
	}

	lines = append(lines, "", hintLine(th, "Enter/e Type a sample"))
	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
