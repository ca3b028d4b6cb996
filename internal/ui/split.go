package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/selection"
	"github.com/evrenbal/mlforge/internal/session"
)

type splitDoneMsg struct {
	gen    int
	result session.SplitResult
	err    error
}

// splitPanel runs the train/test split and persists the resulting
// artifact for the model stages.
type splitPanel struct {
	sess  *session.Session
	sel   *selection.Store
	store *handoff.Store
	st    panelState

	testSize    float64
	randomState int
	shuffle     bool
	stratify    bool

	result session.SplitResult
	done   bool
}

func newSplitPanel(ctx context.Context, sess *session.Session, store *handoff.Store) *splitPanel {
	return &splitPanel{
		sess:        sess,
		sel:         selection.FromContext(ctx),
		store:       store,
		testSize:    0.2,
		randomState: 42,
		shuffle:     true,
	}
}

func (p *splitPanel) title() string {
	return emoji.GetEmoji("split") + " Train/Test Split"
}

func (p *splitPanel) capturesInput() bool { return false }

func (p *splitPanel) busy() bool { return p.st.loading }

func (p *splitPanel) mount() tea.Cmd { return nil }

func (p *splitPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *splitPanel) split() tea.Cmd {
	features := p.sel.Features()
	target := p.sel.Target()
	if len(features) == 0 {
		p.st.err = backend.NewPreconditionError("No features selected. Please select features first.")
		return nil
	}
	if target == "" {
		p.st.err = backend.NewPreconditionError("No target selected. Please select a target variable first.")
		return nil
	}

	req := session.SplitRequest{
		Features:    features,
		Target:      target,
		TestSize:    p.testSize,
		RandomState: p.randomState,
		Shuffle:     p.shuffle,
		Stratify:    p.stratify,
	}

	gen := p.st.begin()
	sess := p.sess
	store := p.store
	return func() tea.Msg {
		result, err := sess.Split(context.Background(), req)
		if err != nil {
			return splitDoneMsg{gen: gen, err: err}
		}
		artifact := handoff.Artifact{
			XTrain:    result.XTrain,
			XTest:     result.XTest,
			YTrain:    result.YTrain,
			YTest:     result.YTest,
			Features:  features,
			Target:    target,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Save(artifact); err != nil {
			return splitDoneMsg{gen: gen, err: err}
		}
		return splitDoneMsg{gen: gen, result: result}
	}
}

func (p *splitPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case splitDoneMsg:
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
		switch msg.String() {
		case "+", "=":
			if p.testSize < 0.9 {
				p.testSize += 0.05
			}
		case "-":
			if p.testSize > 0.1 {
				p.testSize -= 0.05
			}
		case "s":
			p.shuffle = !p.shuffle
		case "f":
			p.stratify = !p.stratify
		case "enter":
			return p.split()
		}
	}
	return nil
}

func (p *splitPanel) view(th Theme, width int) string {
	accent := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	lines := make([]string, 0, 8)
	if p.st.loading {
		lines = append(lines, muted.Render("Splitting..."))
	}
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.done {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Success).Render(
			fmt.Sprintf("%s Split done: %d train / %d test rows",
				emoji.GetEmoji("success"), p.result.TrainSize, p.result.TestSize)))
	}

	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	lines = append(lines,
		fmt.Sprintf("Test size:    %s", accent.Render(fmt.Sprintf("%.0f%%", p.testSize*100))),
		fmt.Sprintf("Random state: %s", accent.Render(fmt.Sprintf("%d", p.randomState))),
		fmt.Sprintf("Shuffle:      %s   Stratify: %s", accent.Render(onOff(p.shuffle)), accent.Render(onOff(p.stratify))),
	)

	features := p.sel.Features()
	if len(features) > 0 {
		lines = append(lines, muted.Render("Features: "+strings.Join(features, ", ")))
	}
	if target := p.sel.Target(); target != "" {
		lines = append(lines, muted.Render("Target:   "+target))
	}

	lines = append(lines, "", hintLine(th, "Enter Split • +/- Test size • s Shuffle • f Stratify"))
	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
