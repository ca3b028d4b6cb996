package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/session"
)

// algorithmChoice is one trainable model per task type.
type algorithmChoice struct {
	id   string
	name string
}

var algorithmCatalog = map[session.TaskType][]algorithmChoice{
	session.TaskClassification: {
		{id: "logistic", name: "Logistic Regression"},
		{id: "decision_tree", name: "Decision Tree"},
		{id: "random_forest", name: "Random Forest"},
		{id: "svm", name: "SVM"},
	},
	session.TaskRegression: {
		{id: "linear", name: "Linear Regression"},
		{id: "decision_tree", name: "Decision Tree"},
		{id: "random_forest", name: "Random Forest"},
		{id: "svm", name: "SVR"},
	},
}

type trainDoneMsg struct {
	gen    int
	result session.TrainResult
	err    error
}

// trainPanel initializes and trains a model from the persisted split
// artifact.
type trainPanel struct {
	sess  *session.Session
	store *handoff.Store
	st    panelState
	cur   cursor

	task   session.TaskType
	result session.TrainResult
	done   bool
}

func newTrainPanel(sess *session.Session, store *handoff.Store) *trainPanel {
	return &trainPanel{sess: sess, store: store, task: session.TaskClassification}
}

func (p *trainPanel) title() string {
	return emoji.GetEmoji("model") + " Train Model"
}

func (p *trainPanel) capturesInput() bool { return false }

func (p *trainPanel) busy() bool { return p.st.loading }

func (p *trainPanel) mount() tea.Cmd { return nil }

func (p *trainPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *trainPanel) algorithms() []algorithmChoice {
	return algorithmCatalog[p.task]
}

func (p *trainPanel) train() tea.Cmd {
	algos := p.algorithms()
	if p.cur.idx >= len(algos) {
		return nil
	}
	algo := algos[p.cur.idx]
	task := p.task

	artifact, err := p.store.Load()
	if err != nil {
		p.st.err = err
		return nil
	}
	if !artifact.TrainReady() {
		p.st.err = backend.NewPreconditionError("No training data found. Please split your dataset first.")
		return nil
	}

	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		ctx := context.Background()
		if err := sess.InitModel(ctx, algo.id, task, nil); err != nil {
			return trainDoneMsg{gen: gen, err: err}
		}
		result, err := sess.Train(ctx, artifact.TrainMatrix(), artifact.YTrain, artifact.Features)
		return trainDoneMsg{gen: gen, result: result, err: err}
	}
}

func (p *trainPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case trainDoneMsg:
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
		case "up", "k":
			p.cur.up()
		case "down", "j":
			p.cur.down(len(p.algorithms()))
		case "t":
			if p.task == session.TaskClassification {
				p.task = session.TaskRegression
			} else {
				p.task = session.TaskClassification
			}
			p.cur.clamp(len(p.algorithms()))
		case "enter":
			return p.train()
		}
	}
	return nil
}

func (p *trainPanel) view(th Theme, width int) string {
	accent := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	lines := make([]string, 0, 10)
	if p.st.loading {
		lines = append(lines, muted.Render("Training..."))
	}
	if p.st.err != nil {
		lines = append(lines, errorLine(th, p.st.err))
	}
	if p.done {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Success).Render(
			fmt.Sprintf("%s Trained on %d samples (%d features)",
				emoji.GetEmoji("success"), p.result.TrainingSamples, p.result.FeatureCount)))
	}

	lines = append(lines, "Task: "+accent.Render(string(p.task)), "")
	for i, a := range p.algorithms() {
		lines = append(lines, cursorLine(th, i == p.cur.idx, a.name))
	}

	lines = append(lines, "", hintLine(th, "Enter Train • t Switch task"))
	return panelBox(th, width, p.title(), lipgloss.JoinVertical(lipgloss.Left, lines...))
}
