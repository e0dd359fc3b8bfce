package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn describes one column. Width is a minimum; MaxWidth, when set,
// truncates longer cells with an ellipsis.
type TableColumn struct {
	Header   string
	Width    int
	MaxWidth int
	Align    string // "left", "right", "center"
}

// Table renders rows of plain strings with aligned columns
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

// NewTable creates a new table with specified columns
func NewTable(columns []TableColumn) *Table {
	return &Table{Columns: columns}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells []string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table as a string
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		rows[r] = make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(row) {
				rows[r][i] = Truncate(row[i], t.Columns[i].MaxWidth)
			}
		}
	}
	widths := t.widths(rows)

	var b strings.Builder
	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = padString(col.Header, widths[i], "left")
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(StyleTableHeader.Render(strings.Join(header, "  ")) + "\n")
	b.WriteString(StyleTableBorder.Render(strings.Join(rule, "  ")) + "\n")

	for idx, row := range rows {
		parts := make([]string, len(t.Columns))
		for i, cell := range row {
			parts[i] = padString(cell, widths[i], t.Columns[i].Align)
		}
		style := StyleTableRow
		if idx%2 == 1 {
			style = StyleTableRowAlt
		}
		b.WriteString(style.Render(strings.Join(parts, "  ")) + "\n")
	}
	return b.String()
}

func (t *Table) widths(rows [][]string) []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = max(lipgloss.Width(col.Header), col.Width)
		if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
			widths[i] = col.MaxWidth
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

// padString pads s to width display cells
func padString(s string, width int, align string) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}

	switch align {
	case "right":
		return strings.Repeat(" ", padding) + s
	case "center":
		left := padding / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", padding-left)
	default:
		return s + strings.Repeat(" ", padding)
	}
}

// Truncate shortens s to max runes, ending with "...". max <= 0 means no limit.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// RenderKeyValue renders a key-value pair
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", StyleAccent.Render(key), value)
}
