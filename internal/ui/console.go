package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbal/mlforge/internal/console"
	"github.com/evrenbal/mlforge/internal/emoji"
)

// consoleView renders the shared console log either as a one-line
// strip with an unread badge or as a scrollable expanded viewer.
type consoleView struct {
	log     *console.Log
	vp      viewport.Model
	lastLen int
}

func newConsoleView(log *console.Log) *consoleView {
	vp := viewport.New(0, 0)
	return &consoleView{log: log, vp: vp}
}

func (c *consoleView) toggle() {
	c.log.SetExpanded(!c.log.Expanded())
}

func (c *consoleView) expanded() bool {
	return c.log.Expanded()
}

func (c *consoleView) resize(width, height int) {
	c.vp.Width = width
	c.vp.Height = height
}

func (c *consoleView) scrollUp()   { c.vp.LineUp(1) }
func (c *consoleView) scrollDown() { c.vp.LineDown(1) }

// strip is the collapsed one-line rendering: latest message plus the
// count of messages arrived since the viewer was last expanded.
func (c *consoleView) strip(th Theme, width int) string {
	msgs := c.log.Messages()
	latest := "No console messages yet"
	if len(msgs) > 0 {
		latest = msgs[len(msgs)-1].Text
	}
	if len(latest) > width-12 && width > 15 {
		latest = latest[:width-15] + "..."
	}

	line := emoji.GetEmoji("console") + " " + latest
	if unread := c.log.Unread(); unread > 0 {
		badge := lipgloss.NewStyle().
			Foreground(th.Warning).
			Bold(true).
			Render(fmt.Sprintf(" (%d new)", unread))
		line += badge
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Border).
		Padding(0, 1).
		Width(width).
		Render(line)
}

// full is the expanded rendering backed by a viewport pinned to the
// newest message.
func (c *consoleView) full(th Theme, width, height int) string {
	c.resize(width-4, height-4)

	msgs := c.log.Messages()
	lines := make([]string, 0, len(msgs))
	timeStyle := lipgloss.NewStyle().Foreground(th.Muted)
	for _, m := range msgs {
		lines = append(lines, timeStyle.Render(m.Timestamp.Format("15:04:05"))+" "+m.Text)
	}
	if len(lines) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Muted).Render("Console is empty"))
	}

	// Re-pin to the newest message only when one arrived, so manual
	// scrolling survives the periodic re-render.
	c.vp.SetContent(strings.Join(lines, "\n"))
	if len(msgs) != c.lastLen {
		c.lastLen = len(msgs)
		c.vp.GotoBottom()
	}

	title := lipgloss.NewStyle().
		Foreground(th.Primary).
		Bold(true).
		Render(emoji.GetEmoji("console") + " Console")
	hints := hintLine(th, "↑↓ Scroll • C Clear • c/Esc Close")

	content := lipgloss.JoinVertical(lipgloss.Left, title, c.vp.View(), hints)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Primary).
		Padding(0, 1).
		Width(width).
		Render(content)
}
