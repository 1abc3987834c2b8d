// Package report formats the final migration summary: four columns,
// each padded to its column's widest value, separated by "  |  ", with a
// horizontal rule after every row. Built the way the teacher's
// internal/output/summary.go formatter builds its tables, with
// strings.Builder and fmt.Fprintf instead of a templating library.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"mysql2pg/internal/core"
)

var header = [4]string{"TABLE", "RECORDS", "FAILED", "DATA LOAD TIME"}

// Format renders rows as the padded four-column table.
func Format(rows []core.SummaryRow) string {
	cells := make([][4]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, r := range rows {
		cells = append(cells, [4]string{
			r.QualifiedTableName,
			strconv.FormatInt(r.RowsAttempted, 10),
			strconv.FormatInt(r.RowsFailed, 10),
			fmt.Sprintf("%.2fs", r.ElapsedSeconds),
		})
	}

	widths := columnWidths(cells)

	var b strings.Builder
	for _, row := range cells {
		writeRow(&b, row, widths)
	}
	return b.String()
}

func columnWidths(cells [][4]string) [4]int {
	var widths [4]int
	for _, row := range cells {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func writeRow(b *strings.Builder, row [4]string, widths [4]int) {
	for i, cell := range row {
		if i > 0 {
			b.WriteString("  |  ")
		}
		fmt.Fprintf(b, "%-*s", widths[i], cell)
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", ruleWidth(widths)))
	b.WriteByte('\n')
}

func ruleWidth(widths [4]int) int {
	total := widths[0] + widths[1] + widths[2] + widths[3]
	return total + len("  |  ")*3
}
