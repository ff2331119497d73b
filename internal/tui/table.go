// Package tui renders terminal output with lipgloss.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxCellWidth is the widest a cell may render before it is truncated.
const MaxCellWidth = 60

var asciiBorder = lipgloss.Border{
	Top:         "-",
	Bottom:      "-",
	Left:        "|",
	Right:       "|",
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
}

type tableStyles struct {
	container lipgloss.Style
	title     lipgloss.Style
	header    lipgloss.Style
	cell      lipgloss.Style
	footer    lipgloss.Style
}

func newTableStyles() tableStyles {
	return tableStyles{
		container: lipgloss.NewStyle().
			Border(asciiBorder).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		cell: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

// Table is a titled grid of text cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  string
}

// Render lays the table out in fixed-width columns inside a border.
func (t Table) Render() string {
	styles := newTableStyles()

	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = cleanCell(h)
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		rows[r] = make([]string, len(headers))
		for c := range headers {
			if c < len(row) {
				rows[r][c] = cleanCell(row[c])
			}
		}
	}

	widths := make([]int, len(headers))
	for c, h := range headers {
		widths[c] = lipgloss.Width(h)
		for _, row := range rows {
			widths[c] = max(widths[c], lipgloss.Width(row[c]))
		}
	}

	var lines []string
	if t.Title != "" {
		lines = append(lines, styles.title.Render(t.Title), "")
	}
	lines = append(lines, renderRow(styles.header, headers, widths))

	rule := make([]string, len(widths))
	for c, w := range widths {
		rule[c] = strings.Repeat("-", w)
	}
	lines = append(lines, strings.Join(rule, "-+-"))

	for _, row := range rows {
		lines = append(lines, renderRow(styles.cell, row, widths))
	}
	if len(rows) == 0 {
		lines = append(lines, styles.footer.Render("(no rows)"))
	}
	if t.Footer != "" {
		lines = append(lines, "", styles.footer.Render(t.Footer))
	}

	return styles.container.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderRow(style lipgloss.Style, cells []string, widths []int) string {
	rendered := make([]string, len(cells))
	for c, cell := range cells {
		pad := widths[c] - lipgloss.Width(cell)
		rendered[c] = style.Render(cell + strings.Repeat(" ", pad))
	}
	return strings.Join(rendered, " | ")
}

// cleanCell flattens whitespace and truncates to MaxCellWidth.
func cleanCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > MaxCellWidth {
		return string(runes[:MaxCellWidth-3]) + "..."
	}
	return s
}
