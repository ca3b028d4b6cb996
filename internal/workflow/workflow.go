// Package workflow tracks the user's position in the dataset pipeline.
// The tracker is advisory: it records where the user is and where they
// have been, but it never blocks out-of-order navigation.
package workflow

import "sync"

// Stage is a pipeline stage shown in the navigation sidebar.
type Stage string

const (
	StageLoad       Stage = "load"
	StagePreprocess Stage = "preprocess"
	StageMissing    Stage = "missing"
	StageEncoding   Stage = "encoding"
	StageScaling    Stage = "scaling"
	StageSummary    Stage = "summary"
	StageSplit      Stage = "split"
	StageTrain      Stage = "train"
	StageTest       Stage = "test"
	StagePredict    Stage = "predict"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageLoad,
	StagePreprocess,
	StageMissing,
	StageEncoding,
	StageScaling,
	StageSummary,
	StageSplit,
	StageTrain,
	StageTest,
	StagePredict,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Title returns the stage's display name.
func (s Stage) Title() string {
	switch s {
	case StageLoad:
		return "Load Dataset"
	case StagePreprocess:
		return "Preprocess"
	case StageMissing:
		return "Missing Values"
	case StageEncoding:
		return "Encoding"
	case StageScaling:
		return "Scaling"
	case StageSummary:
		return "Summary"
	case StageSplit:
		return "Train/Test Split"
	case StageTrain:
		return "Model Training"
	case StageTest:
		return "Model Testing"
	case StagePredict:
		return "Predictions"
	default:
		return string(s)
	}
}

// Tracker holds the active stage and the monotonically growing visited
// set. Exactly one stage is active at a time; the visited set never
// shrinks within a session.
type Tracker struct {
	mu      sync.Mutex
	active  Stage
	visited map[Stage]bool

	// onGoto is invoked after every successful transition, with the
	// target stage. The dashboard uses it to mount the target stage's
	// panels.
	onGoto func(Stage)
}

// NewTracker creates a tracker positioned at the first stage.
func NewTracker() *Tracker {
	return &Tracker{
		active:  StageLoad,
		visited: map[Stage]bool{StageLoad: true},
	}
}

// OnGoto registers the transition callback. Passing nil removes it.
func (t *Tracker) OnGoto(fn func(Stage)) {
	t.mu.Lock()
	t.onGoto = fn
	t.mu.Unlock()
}

// Goto makes the given stage active and marks it visited, then fires
// the transition callback. Unknown stages are ignored. Any stage may
// be entered at any time; ordering is never enforced.
func (t *Tracker) Goto(s Stage) {
	if !s.Valid() {
		return
	}

	t.mu.Lock()
	t.active = s
	t.visited[s] = true
	fn := t.onGoto
	t.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// Active returns the currently active stage.
func (t *Tracker) Active() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Visited reports whether the stage has ever been active this session.
func (t *Tracker) Visited(s Stage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visited[s]
}

// Next returns the stage after the active one, or the active stage
// when it is already last.
func (t *Tracker) Next() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range Stages {
		if s == t.active && i+1 < len(Stages) {
			return Stages[i+1]
		}
	}
	return t.active
}

// Prev returns the stage before the active one, or the active stage
// when it is already first.
func (t *Tracker) Prev() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range Stages {
		if s == t.active && i > 0 {
			return Stages[i-1]
		}
	}
	return t.active
}
