package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws a rounded table with left-aligned headers. Column
// numbers in rightAlign get right-aligned cells, for counts.
func renderTable(headers table.Row, rows []table.Row, rightAlign ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(headers)
	tw.AppendRows(rows)

	configs := make([]table.ColumnConfig, 0, len(rightAlign))
	for _, column := range rightAlign {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
