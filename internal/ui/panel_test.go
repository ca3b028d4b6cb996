package ui

import (
	"errors"
	"testing"
)

func TestRequestGenMatching(t *testing.T) {
	var g requestGen

	first := g.next()
	if !g.matches(first) {
		t.Error("current generation should match")
	}

	second := g.next()
	if g.matches(first) {
		t.Error("superseded generation should not match")
	}
	if !g.matches(second) {
		t.Error("latest generation should match")
	}

	g.invalidate()
	if g.matches(second) {
		t.Error("invalidate should supersede outstanding requests")
	}
}

func TestPanelStateKeepsFactsOnFailedRefresh(t *testing.T) {
	var st panelState

	st.begin()
	st.finish(nil)
	if !st.loaded {
		t.Fatal("expected loaded after successful fetch")
	}

	st.begin()
	st.finish(errors.New("server went away"))

	if !st.loaded {
		t.Error("failed refresh should keep previously loaded facts visible")
	}
	if st.err == nil {
		t.Error("failed refresh should surface its error")
	}
	if st.loading {
		t.Error("controls should be re-enabled after a failure")
	}
}

func TestPanelStateClearsErrorOnNewFetch(t *testing.T) {
	var st panelState

	st.begin()
	st.finish(errors.New("boom"))

	st.begin()
	if st.err != nil {
		t.Error("starting a fetch should clear the previous error")
	}
	if !st.loading {
		t.Error("begin should mark the panel loading")
	}
}
