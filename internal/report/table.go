// SPDX-License-Identifier: MPL-2.0

package report

import (
	"strconv"

	"github.com/cargotally/cargotally/internal/tally"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7C3AED")).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableCountStyle = tableCellStyle.
			Align(lipgloss.Right)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280"))
)

// Table renders entries as a bordered terminal table.
func Table(entries []tally.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{string(e.Group), e.Name, strconv.Itoa(e.Count)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("GROUP", "NAME", "COUNT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 2:
				return tableCountStyle
			default:
				return tableCellStyle
			}
		})

	return t.Render()
}
