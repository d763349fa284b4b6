package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"starbank/internal/bank"
	"starbank/internal/mapinfo"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderMapTable(entries []mapinfo.MapEntry) string {
	headers := []string{"#", "Name", "Author", "Modified", "Protected", "Banks"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		banks := "-"
		if entry.Banks != nil {
			banks = itoa(len(entry.Banks))
		}
		rows = append(rows, []string{
			itoa(i + 1),
			entry.Name,
			authorLabel(entry),
			formatModified(entry.DateModified),
			protectionLabel(entry.IsProtected),
			banks,
		})
	}
	return renderTable(headers, rows, aligns)
}

func renderBankTable(records []bank.Record) string {
	headers := []string{"Bank", "Player", "Function", "Line"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{record.Name, record.Player, record.Native, itoa(record.Line)})
	}
	return renderTable(headers, rows, aligns)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
