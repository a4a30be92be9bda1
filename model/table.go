package model

import "strings"

// Table is an opaque table payload carried from the source document to the
// floats group.
type Table struct {
	Rows      []TableRow
	ColWidths []float64 // percentages of the total width, may be empty
}

// TableRow is a single table row.
type TableRow struct {
	Cells  []TableCell
	Header bool
}

// TableCell is a single cell. Continuation cells of a vertical merge are not
// stored; the starting cell carries the RowSpan.
type TableCell struct {
	Text    string
	ColSpan int
	RowSpan int
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of grid columns covered by the widest row.
func (t *Table) ColCount() int {
	if len(t.ColWidths) > 0 {
		return len(t.ColWidths)
	}
	count := 0
	for _, row := range t.Rows {
		n := 0
		for _, c := range row.Cells {
			n += max(c.ColSpan, 1)
		}
		count = max(count, n)
	}
	return count
}

// GetText returns a tab separated text rendering of the table.
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row.Cells {
			sb.WriteString(cell.Text)
			if j < len(row.Cells)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// IsEmpty reports whether no cell holds any text.
func (t *Table) IsEmpty() bool {
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			if strings.TrimSpace(c.Text) != "" {
				return false
			}
		}
	}
	return true
}
