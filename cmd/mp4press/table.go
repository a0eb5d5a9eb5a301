package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Check status labels rendered in status columns.
const (
	statusOK   = "OK"
	statusWarn = "WARN"
	statusFail = "FAIL"
)

var statusColors = map[string]text.Colors{
	statusOK:   {text.FgGreen},
	statusWarn: {text.FgYellow},
	statusFail: {text.FgRed, text.Bold},
}

// column describes one table column. Status columns hold check labels and are
// coloured when the table is rendered for a terminal.
type column struct {
	header string
	align  text.Align
	status bool
}

func leftColumn(header string) column { return column{header: header, align: text.AlignLeft} }
func rightColumn(header string) column { return column{header: header, align: text.AlignRight} }
func statusColumn(header string) column {
	return column{header: header, align: text.AlignLeft, status: true}
}

// renderTable draws rows under columns. Short rows are padded with blanks and
// extra cells are dropped.
func renderTable(columns []column, rows [][]string, colorize bool) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.header)
		cfg := table.ColumnConfig{Number: i + 1, Align: col.align, AlignHeader: text.AlignLeft}
		if col.status && colorize {
			cfg.Transformer = colorStatus
		}
		configs = append(configs, cfg)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func colorStatus(val any) string {
	label := fmt.Sprint(val)
	if colors, ok := statusColors[label]; ok {
		return colors.Sprint(label)
	}
	return label
}

// checkStatus maps a check outcome to its label.
func checkStatus(passed, optional bool) string {
	switch {
	case passed:
		return statusOK
	case optional:
		return statusWarn
	default:
		return statusFail
	}
}
