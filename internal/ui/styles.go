package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickMsg drives periodic re-renders so console broadcasts arriving
// between panel messages become visible without a key press.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// panelBox draws a titled rounded box around a panel body.
func panelBox(th Theme, width int, title, body string) string {
	titleLine := lipgloss.NewStyle().
		Foreground(th.Primary).
		Bold(true).
		Render(title)

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, "", body)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Border).
		Padding(0, 1).
		Width(width).
		Render(content)
}

// statusBody renders the loading or placeholder body for a panel that
// has nothing to show yet. Returns "" once real facts are loaded.
func statusBody(th Theme, st *panelState, placeholder string) string {
	muted := lipgloss.NewStyle().Foreground(th.Muted)
	if st.loading && !st.loaded {
		return muted.Render("Loading...")
	}
	if !st.loaded {
		if st.err != nil {
			return errorLine(th, st.err) + "\n" + muted.Render(placeholder)
		}
		return muted.Render(placeholder)
	}
	return ""
}

func errorLine(th Theme, err error) string {
	return lipgloss.NewStyle().Foreground(th.Error).Render("✗ " + err.Error())
}

func hintLine(th Theme, hint string) string {
	return lipgloss.NewStyle().Foreground(th.Secondary).Render(hint)
}

// renderGrid lays out rows under a header with per-column padding.
func renderGrid(th Theme, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	pad := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = cell + strings.Repeat(" ", w-len(cell))
		}
		return strings.Join(parts, "  ")
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, lipgloss.NewStyle().Foreground(th.Accent).Bold(true).Render(pad(headers)))
	for _, row := range rows {
		lines = append(lines, pad(row))
	}
	return strings.Join(lines, "\n")
}

// cursorLine styles one row of a navigable list.
func cursorLine(th Theme, selected bool, text string) string {
	if selected {
		return lipgloss.NewStyle().
			Background(th.Selected).
			Bold(true).
			Render("▶ " + text)
	}
	return "  " + text
}
