package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// panel is one independently mounted view in the dashboard. A panel
// owns its own fetch lifecycle: mount kicks off the loads it needs,
// unmount invalidates any response still in flight.
type panel interface {
	title() string

	// mount is called when the panel becomes visible. The returned
	// command performs the panel's initial fetches.
	mount() tea.Cmd

	// unmount is called when the panel stops being visible. In-flight
	// responses arriving afterwards must be discarded.
	unmount()

	// update handles panel-scoped messages and key presses while the
	// panel is focused.
	update(msg tea.Msg) tea.Cmd

	// capturesInput reports whether the panel is in a text-entry mode
	// that needs every key forwarded, bypassing the global bindings.
	capturesInput() bool

	// busy reports whether the panel has a request in flight.
	busy() bool

	view(th Theme, width int) string
}

// requestGen matches asynchronous responses to the fetch that asked
// for them. Every new fetch bumps the generation; a response carrying
// an older generation is stale and must be dropped.
type requestGen struct {
	n int
}

func (g *requestGen) next() int {
	g.n++
	return g.n
}

func (g *requestGen) matches(n int) bool {
	return g.n == n
}

// invalidate supersedes every outstanding request without issuing a
// new one.
func (g *requestGen) invalidate() {
	g.n++
}

// panelState carries the loading/error lifecycle every panel shares.
// A failed refresh keeps the previously loaded facts visible; err is
// shown alongside them until the next successful load.
type panelState struct {
	gen     requestGen
	loading bool
	err     error
	loaded  bool
}

func (s *panelState) begin() int {
	s.loading = true
	s.err = nil
	return s.gen.next()
}

func (s *panelState) finish(err error) {
	s.loading = false
	if err != nil {
		s.err = err
		return
	}
	s.err = nil
	s.loaded = true
}

// cursor tracks the highlighted row of a navigable list.
type cursor struct {
	idx int
}

func (c *cursor) up() {
	if c.idx > 0 {
		c.idx--
	}
}

func (c *cursor) down(n int) {
	if c.idx < n-1 {
		c.idx++
	}
}

func (c *cursor) clamp(n int) {
	if n == 0 {
		c.idx = 0
	} else if c.idx >= n {
		c.idx = n - 1
	}
}

func (s *panelState) reset() {
	s.gen.invalidate()
	s.loading = false
	s.err = nil
	s.loaded = false
}
