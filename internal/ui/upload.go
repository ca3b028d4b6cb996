package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/console"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/session"
)

// staleSplitWarning is broadcast when a new dataset lands while a
// train/test split saved from an earlier dataset still exists.
const staleSplitWarning = "A saved train/test split predates this dataset. Run the split again before training."

type uploadShapeMsg struct {
	gen   int
	shape session.Shape
	err   error
}

// uploadDoneMsg is broadcast through the dashboard after a dataset
// upload settles; the preview panel re-fetches on success.
type uploadDoneMsg struct {
	gen      int
	filename string
	shape    session.Shape
	err      error
}

// uploadPanel uploads a dataset file and shows the loaded shape.
type uploadPanel struct {
	sess  *session.Session
	store *handoff.Store
	bus   console.Broadcaster
	st    panelState

	input    textinput.Model
	editing  bool
	filename string
	shape    session.Shape
}

func newUploadPanel(sess *session.Session, store *handoff.Store, bus console.Broadcaster) *uploadPanel {
	ti := textinput.New()
	ti.Placeholder = "path/to/dataset.csv"
	ti.CharLimit = 512
	return &uploadPanel{sess: sess, store: store, bus: bus, input: ti}
}

func (p *uploadPanel) title() string {
	return emoji.GetEmoji("upload") + " Upload Dataset"
}

func (p *uploadPanel) capturesInput() bool { return p.editing }

func (p *uploadPanel) busy() bool { return p.st.loading }

func (p *uploadPanel) mount() tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		shape, err := sess.Shape(context.Background())
		return uploadShapeMsg{gen: gen, shape: shape, err: err}
	}
}

func (p *uploadPanel) unmount() {
	p.st.gen.invalidate()
	p.st.loading = false
}

func (p *uploadPanel) upload(path string) tea.Cmd {
	gen := p.st.begin()
	sess := p.sess
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{gen: gen, err: err}
		}
		defer func() { _ = f.Close() }()

		name := filepath.Base(path)
		if err := sess.Load(context.Background(), name, f); err != nil {
			return uploadDoneMsg{gen: gen, err: err}
		}
		p.warnStaleSplit()
		shape, err := sess.Shape(context.Background())
		return uploadDoneMsg{gen: gen, filename: name, shape: shape, err: err}
	}
}

// warnStaleSplit flags a split artifact left over from a previous
// dataset. The artifact is kept; the model stages would otherwise
// train on rows that no longer match what the panels show.
func (p *uploadPanel) warnStaleSplit() {
	if p.store == nil || p.bus == nil {
		return
	}
	artifact, err := p.store.Load()
	if err != nil || artifact.Empty() {
		return
	}
	p.bus.Broadcast(staleSplitWarning)
}

func (p *uploadPanel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case uploadShapeMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		// A missing dataset is the normal starting state, not an
		// error worth pinning to the panel.
		p.st.loading = false
		if msg.err == nil {
			p.shape = msg.shape
			p.st.loaded = true
		}
		return nil

	case uploadDoneMsg:
		if !p.st.gen.matches(msg.gen) {
			return nil
		}
		p.st.finish(msg.err)
		if msg.err == nil {
			p.filename = msg.filename
			p.shape = msg.shape
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

func (p *uploadPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.editing {
		switch msg.String() {
		case "esc":
			p.editing = false
			p.input.Blur()
			return nil
		case "enter":
			path := p.input.Value()
			p.editing = false
			p.input.Blur()
			if path == "" {
				return nil
			}
			return p.upload(path)
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

func (p *uploadPanel) view(th Theme, width int) string {
	var body string
	switch {
	case p.editing:
		body = "File path:\n" + p.input.View() + "\n\n" +
			hintLine(th, "Enter Upload • Esc Cancel")
	case p.st.loading:
		body = lipgloss.NewStyle().Foreground(th.Muted).Render("Uploading...")
	default:
		lines := ""
		if p.st.err != nil {
			lines += errorLine(th, p.st.err) + "\n"
		}
		if p.st.loaded {
			name := p.filename
			if name == "" {
				name = "current dataset"
			}
			lines += lipgloss.NewStyle().Foreground(th.Success).Render(
				fmt.Sprintf("%s %s: %d rows × %d columns",
					emoji.GetEmoji("success"), name, p.shape.Rows, p.shape.Columns)) + "\n"
		} else if p.st.err == nil {
			lines += lipgloss.NewStyle().Foreground(th.Muted).Render("No dataset loaded yet") + "\n"
		}
		lines += "\n" + hintLine(th, "Enter/e Choose a file")
		body = lines
	}
	return panelBox(th, width, p.title(), body)
}
