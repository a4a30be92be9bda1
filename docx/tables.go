package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/jatskit/model"
)

// TableParser handles parsing of DOCX tables.
type TableParser struct {
	styleResolver *StyleResolver
}

// NewTableParser creates a new table parser.
func NewTableParser(resolver *StyleResolver) *TableParser {
	return &TableParser{
		styleResolver: resolver,
	}
}

// parsedCell is a cell before vertical merges are folded.
type parsedCell struct {
	model.TableCell
	continuation bool
}

// ParseTable parses a table XML element into a model table. Vertically
// merged continuation cells are folded into the RowSpan of the cell that
// starts the merge.
func (tp *TableParser) ParseTable(tbl tableXML) *model.Table {
	rows := make([][]parsedCell, 0, len(tbl.Rows))
	headers := make([]bool, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		cells := make([]parsedCell, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, tp.parseCell(cell))
		}
		rows = append(rows, cells)
		headers = append(headers, row.Properties.Header.set() && row.Properties.Header.on())
	}

	tp.processVerticalMerges(rows)

	table := &model.Table{ColWidths: tp.parseTableGrid(tbl.Grid)}
	for i, cells := range rows {
		out := model.TableRow{Header: headers[i]}
		for _, c := range cells {
			if c.continuation {
				continue
			}
			out.Cells = append(out.Cells, c.TableCell)
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}

// parseTableGrid converts grid column widths to percentages of the total.
func (tp *TableParser) parseTableGrid(grid tableGridXML) []float64 {
	widths := make([]float64, len(grid.Cols))
	total := 0.0
	for i, col := range grid.Cols {
		widths[i] = parseTwips(col.W)
		total += widths[i]
	}
	if total <= 0 {
		return nil
	}
	for i := range widths {
		widths[i] = widths[i] / total * 100
	}
	return widths
}

// parseCell parses a table cell.
func (tp *TableParser) parseCell(cell tableCellXML) parsedCell {
	parsed := parsedCell{TableCell: model.TableCell{ColSpan: 1, RowSpan: 1}}

	props := cell.Properties

	if props.GridSpan.Val != "" {
		if span, err := strconv.Atoi(props.GridSpan.Val); err == nil && span > 0 {
			parsed.ColSpan = span
		}
	}

	// An empty or "continue" val continues a vertical merge.
	if props.VMerge.XMLName.Local == "vMerge" && props.VMerge.Val != "restart" {
		parsed.continuation = true
	}

	var textParts []string
	for _, para := range cell.Paragraphs {
		if text := strings.TrimSpace(tp.paragraphText(para)); text != "" {
			textParts = append(textParts, text)
		}
	}
	parsed.Text = strings.Join(textParts, "\n")

	return parsed
}

// paragraphText extracts the plain text of a paragraph inside a cell.
func (tp *TableParser) paragraphText(p paragraphXML) string {
	var sb strings.Builder
	for _, run := range p.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// processVerticalMerges calculates row spans for vertically merged cells.
func (tp *TableParser) processVerticalMerges(rows [][]parsedCell) {
	type origin struct{ row, cell int }
	// Most recent non-continuation cell starting at each grid column.
	starts := make(map[int]origin)

	for r, cells := range rows {
		col := 0
		for c := range cells {
			cell := &rows[r][c]
			if cell.continuation {
				if o, ok := starts[col]; ok {
					rows[o.row][o.cell].RowSpan++
				} else {
					// Nothing to merge into; keep the cell.
					cell.continuation = false
					starts[col] = origin{r, c}
				}
			} else {
				starts[col] = origin{r, c}
			}
			col += cell.ColSpan
		}
	}
}
