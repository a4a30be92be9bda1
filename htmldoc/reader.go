// Package htmldoc extracts ordered manuscript blocks from HTML, such as
// manuscripts saved from a word processor as "Web Page".
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/jatskit/model"
)

// Reader provides access to HTML document content.
type Reader struct {
	doc     *html.Node
	title   string
	exclude *exclusionChecker
	blocks  []model.Block
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenBytes parses HTML held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return OpenReader(bytes.NewReader(data))
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{doc: doc}
	if title := findElement(doc, "title"); title != nil {
		reader.title = getTextContent(title)
	}

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	reader.exclude = newExclusionChecker(body)
	reader.traverseNode(body)

	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	return nil
}

// Title returns the document <title>, which is not part of the manuscript
// body.
func (r *Reader) Title() string {
	return r.title
}

// Blocks returns the manuscript paragraphs and tables in reading order.
func (r *Reader) Blocks() []model.Block {
	out := make([]model.Block, len(r.blocks))
	copy(out, r.blocks)
	return out
}

// traverseNode recursively processes DOM nodes, emitting one block per
// leaf block element.
func (r *Reader) traverseNode(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) || r.exclude.shouldExclude(n) {
			return
		}

		switch n.Data {
		case "table":
			r.addTable(n)
			return
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "div", "blockquote", "pre", "dd", "dt":
			if !isBlockContainer(n) {
				r.addParagraph(n)
				return
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.traverseNode(c)
	}
}

// addParagraph appends a paragraph block for a leaf block element.
func (r *Reader) addParagraph(n *html.Node) {
	r.blocks = append(r.blocks, model.Block{
		Index: len(r.blocks),
		Style: styleName(n),
		Runs:  collectRuns(n),
	})
}

// addTable appends the table caption, when present, and the table payload.
func (r *Reader) addTable(n *html.Node) {
	if caption := findChild(n, "caption"); caption != nil {
		r.blocks = append(r.blocks, model.Block{
			Index: len(r.blocks),
			Style: "Caption",
			Runs:  collectRuns(caption),
		})
	}
	r.blocks = append(r.blocks, model.Block{
		Index: len(r.blocks),
		Table: parseTable(n),
	})
}

// styleName resolves the paragraph style name of a block element. An
// explicit data-style attribute wins, then the first class name with any
// word-processor "Mso" prefix removed, then a name derived from the tag.
func styleName(n *html.Node) string {
	if s := strings.TrimSpace(getAttr(n, "data-style")); s != "" {
		return s
	}
	if fields := strings.Fields(getAttr(n, "class")); len(fields) > 0 {
		if name := strings.TrimPrefix(fields[0], "Mso"); name != "" {
			return name
		}
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "Heading " + n.Data[1:]
	case "li":
		return "List Paragraph"
	default:
		return "Normal"
	}
}

// runState is the inline formatting in effect while walking a paragraph.
type runState struct {
	bold, italic, sup, sub bool
}

// collectRuns flattens the inline content of n into formatted runs.
// Whitespace is collapsed the way a browser renders it.
func collectRuns(n *html.Node) []model.Run {
	var runs []model.Run
	var walk func(*html.Node, runState)
	walk = func(n *html.Node, st runState) {
		switch n.Type {
		case html.TextNode:
			appendRun(&runs, collapseSpace(n.Data), st)
			return
		case html.ElementNode:
			if shouldSkipElement(n.Data) {
				return
			}
			switch n.Data {
			case "br":
				appendRun(&runs, "\n", st)
				return
			case "b", "strong":
				st.bold = true
			case "i", "em":
				st.italic = true
			case "sup":
				st.sup, st.sub = true, false
			case "sub":
				st.sub, st.sup = true, false
			}
			applyInlineStyle(&st, getAttr(n, "style"))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, st)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, runState{})
	}

	// Trim the paragraph edges.
	for len(runs) > 0 {
		runs[0].Text = strings.TrimLeft(runs[0].Text, " \n")
		if runs[0].Text != "" {
			break
		}
		runs = runs[1:]
	}
	for len(runs) > 0 {
		last := &runs[len(runs)-1]
		last.Text = strings.TrimRight(last.Text, " \n")
		if last.Text != "" {
			break
		}
		runs = runs[:len(runs)-1]
	}
	return model.SplitSuperscripts(runs)
}

// applyInlineStyle honours the CSS properties word processors use in place
// of semantic tags.
func applyInlineStyle(st *runState, style string) {
	if style == "" {
		return
	}
	css := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch {
	case strings.Contains(css, "vertical-align:super"):
		st.sup, st.sub = true, false
	case strings.Contains(css, "vertical-align:sub"):
		st.sub, st.sup = true, false
	}
	if strings.Contains(css, "font-weight:bold") || strings.Contains(css, "font-weight:700") {
		st.bold = true
	}
	if strings.Contains(css, "font-style:italic") {
		st.italic = true
	}
}

// appendRun adds text to the run list, merging with the previous run when
// the formatting matches.
func appendRun(runs *[]model.Run, text string, st runState) {
	if text == "" {
		return
	}
	run := model.Run{Text: text, Bold: st.bold, Italic: st.italic, Superscript: st.sup, Subscript: st.sub}
	if n := len(*runs); n > 0 {
		prev := &(*runs)[n-1]
		if prev.Bold == run.Bold && prev.Italic == run.Italic && prev.Superscript == run.Superscript && prev.Subscript == run.Subscript {
			if strings.HasSuffix(prev.Text, " ") && strings.HasPrefix(text, " ") {
				text = text[1:]
			}
			prev.Text += text
			return
		}
	}
	*runs = append(*runs, run)
}

// collapseSpace replaces each run of HTML whitespace with a single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

// parseTable extracts a table from an HTML table element.
func parseTable(tableNode *html.Node) *model.Table {
	table := &model.Table{}

	var addRows func(section *html.Node, header bool)
	addRows = func(section *html.Node, header bool) {
		for c := section.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				addRows(c, true)
			case "tbody", "tfoot":
				addRows(c, false)
			case "tr":
				if row, ok := parseTableRow(c, header); ok {
					table.Rows = append(table.Rows, row)
				}
			}
		}
	}
	addRows(tableNode, false)

	return table
}

// parseTableRow parses a single table row. A row made only of <th> cells
// counts as a header row.
func parseTableRow(tr *html.Node, header bool) (model.TableRow, bool) {
	row := model.TableRow{Header: header}
	allTH := true

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		if c.Data != "th" {
			allTH = false
		}
		row.Cells = append(row.Cells, model.TableCell{
			Text:    getTextContent(c),
			RowSpan: spanAttr(c, "rowspan"),
			ColSpan: spanAttr(c, "colspan"),
		})
	}

	if len(row.Cells) == 0 {
		return row, false
	}
	row.Header = row.Header || allTH
	return row, true
}

// spanAttr parses a rowspan or colspan attribute, defaulting to 1.
func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(getAttr(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "head":
		return true
	}
	return false
}

// isBlockContainer returns true if the element is a block container with block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "article", "section", "dl":
				return true
			}
		}
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// findChild finds a direct child element with the given tag name.
func findChild(n *html.Node, tagName string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tagName {
			return c
		}
	}
	return nil
}

// getTextContent extracts all text content from a node and its descendants,
// with whitespace collapsed.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.Join(strings.Fields(result.String()), " ")
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode && shouldSkipElement(n.Data) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "br", "tr":
			result.WriteString(" ")
		}
	}
}
