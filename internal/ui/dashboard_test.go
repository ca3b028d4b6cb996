package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/console"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/selection"
	"github.com/evrenbal/mlforge/internal/session"
	"github.com/evrenbal/mlforge/internal/workflow"
)

func newTestSession(t *testing.T, handler http.Handler) (*session.Session, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := backend.New(server.URL, nil)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	return session.New(client), server
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPreviewPanelDiscardsSupersededResponse(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":["a"],"data":[{"a":1}]}`))
	}))
	p := newPreviewPanel(sess)

	first := p.mount()
	staleMsg := first()

	// A refresh arrives before the first response is consumed.
	second := p.mount()

	if cmd := p.update(staleMsg); cmd != nil {
		t.Fatal("stale response should not trigger follow-up commands")
	}
	if p.st.loaded {
		t.Error("stale response must be discarded, not applied")
	}

	if p.update(second()); !p.st.loaded {
		t.Error("current response should be applied")
	}
}

func TestPreviewPanelIgnoresResponsesAfterUnmount(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":["a"],"data":[]}`))
	}))
	p := newPreviewPanel(sess)

	cmd := p.mount()
	msg := cmd()
	p.unmount()

	p.update(msg)
	if p.st.loaded {
		t.Error("response arriving after unmount must be discarded")
	}
}

func TestTrainPanelRequiresSplitBeforeAnyRequest(t *testing.T) {
	var calls atomic.Int64
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	store := handoff.NewStore(t.TempDir())
	p := newTrainPanel(sess, store)

	if cmd := p.update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("training without a split should not produce a command")
	}

	if !backend.IsPreconditionError(p.st.err) {
		t.Fatalf("expected precondition error, got %v", p.st.err)
	}
	want := "No training data found. Please split your dataset first."
	if p.st.err.Error() != want {
		t.Errorf("error = %q, want %q", p.st.err.Error(), want)
	}
	if calls.Load() != 0 {
		t.Errorf("expected zero requests, server saw %d", calls.Load())
	}
}

func TestTestPanelRequiresTestSplit(t *testing.T) {
	var calls atomic.Int64
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	store := handoff.NewStore(t.TempDir())
	p := newTestPanel(sess, store)

	p.update(tea.KeyMsg{Type: tea.KeyEnter})

	want := "No test data found. Please split your dataset first."
	if p.st.err == nil || p.st.err.Error() != want {
		t.Errorf("error = %v, want %q", p.st.err, want)
	}
	if calls.Load() != 0 {
		t.Errorf("expected zero requests, server saw %d", calls.Load())
	}
}

func TestSplitPanelSelectionPreconditions(t *testing.T) {
	var calls atomic.Int64
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	sel := selection.NewStore()
	p := newSplitPanel(selection.NewContext(context.Background(), sel), sess, handoff.NewStore(t.TempDir()))

	p.update(tea.KeyMsg{Type: tea.KeyEnter})
	want := "No features selected. Please select features first."
	if p.st.err == nil || p.st.err.Error() != want {
		t.Errorf("error = %v, want %q", p.st.err, want)
	}

	sel.SetFeatures([]string{"age"})
	p.update(tea.KeyMsg{Type: tea.KeyEnter})
	want = "No target selected. Please select a target variable first."
	if p.st.err == nil || p.st.err.Error() != want {
		t.Errorf("error = %v, want %q", p.st.err, want)
	}

	if calls.Load() != 0 {
		t.Errorf("expected zero requests, server saw %d", calls.Load())
	}
}

func TestFeaturesPanelTogglesSelection(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":[{"name":"age","current_type":"int64"},{"name":"label","current_type":"object"}]}`))
	}))
	sel := selection.NewStore()
	p := newFeaturesPanel(selection.NewContext(context.Background(), sel), sess)

	p.update(p.mount()())
	if len(p.names) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(p.names))
	}

	p.update(keyRune(' '))
	if got := sel.Features(); len(got) != 1 || got[0] != "age" {
		t.Fatalf("features = %v, want [age]", got)
	}

	p.update(keyRune(' '))
	if got := sel.Features(); len(got) != 0 {
		t.Fatalf("second toggle should deselect, got %v", got)
	}

	p.update(keyRune('j'))
	p.update(keyRune('t'))
	if sel.Target() != "label" {
		t.Errorf("target = %q, want label", sel.Target())
	}
}

func TestDashboardStageSwitchRemountsPanels(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	m := NewModel(Deps{
		Session:   sess,
		Selection: selection.NewStore(),
		Tracker:   workflow.NewTracker(),
		Handoff:   handoff.NewStore(t.TempDir()),
		Log:       console.NewLog(),
	})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(*Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Error("moving to the next stage should mount its panels")
	}
	if got := m.deps.Tracker.Active(); got != workflow.StagePreprocess {
		t.Errorf("active stage = %q after tab", got)
	}
}

func TestPanelsRequireSelectionScope(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	defer func() {
		if recover() == nil {
			t.Error("building a selection panel outside a selection scope should panic")
		}
	}()
	newFeaturesPanel(context.Background(), sess)
}

// busRecorder captures broadcasts for assertions.
type busRecorder struct {
	messages []string
}

func (b *busRecorder) Broadcast(text string) {
	b.messages = append(b.messages, text)
}

func TestUploadPanelWarnsAboutStaleSplit(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows":3,"columns":2}`))
	}))

	dir := t.TempDir()
	csv := filepath.Join(dir, "iris.csv")
	if err := os.WriteFile(csv, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	store := handoff.NewStore(dir)
	bus := &busRecorder{}

	// A fresh workspace uploads without a warning.
	p := newUploadPanel(sess, store, bus)
	if msg := p.upload(csv)(); msg.(uploadDoneMsg).err != nil {
		t.Fatalf("upload: %v", msg.(uploadDoneMsg).err)
	}
	if len(bus.messages) != 0 {
		t.Fatalf("no artifact saved yet, got broadcasts %v", bus.messages)
	}

	if err := store.Save(handoff.Artifact{
		XTrain:   []map[string]float64{{"a": 1}},
		YTrain:   []float64{0},
		Features: []string{"a"},
		Target:   "b",
	}); err != nil {
		t.Fatalf("save artifact: %v", err)
	}

	if msg := p.upload(csv)(); msg.(uploadDoneMsg).err != nil {
		t.Fatalf("upload: %v", msg.(uploadDoneMsg).err)
	}
	if len(bus.messages) != 1 || bus.messages[0] != staleSplitWarning {
		t.Errorf("expected the stale split warning once, got %v", bus.messages)
	}
}

func TestDashboardMountsThroughTrackerCallback(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	m := NewModel(Deps{
		Session:   sess,
		Selection: selection.NewStore(),
		Tracker:   workflow.NewTracker(),
		Handoff:   handoff.NewStore(t.TempDir()),
		Log:       console.NewLog(),
	})

	if cmd := m.gotoStage(workflow.StageLoad); cmd != nil {
		t.Error("moving to the already-active stage should be a no-op")
	}

	if cmd := m.gotoStage(workflow.StageSummary); cmd == nil {
		t.Error("an accepted transition should mount the target's panels")
	}
	if got := m.deps.Tracker.Active(); got != workflow.StageSummary {
		t.Errorf("active stage = %q, want %q", got, workflow.StageSummary)
	}
	if len(m.pending) != 0 {
		t.Errorf("mount queue should be drained, has %d entries", len(m.pending))
	}
}
