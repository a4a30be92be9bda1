// Package docx extracts ordered manuscript blocks from DOCX (Office Open XML)
// documents.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/tsawler/jatskit/model"
)

// Reader provides access to DOCX document content.
type Reader struct {
	zipReader *zip.Reader
	closer    io.Closer
	styles    *stylesXML
	resolver  *StyleResolver
	tables    *TableParser
	blocks    []model.Block
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r, err := newReader(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.closer = zr
	return r, nil
}

// OpenBytes reads a DOCX document held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zipReader: zr}

	if err := r.validate(); err != nil {
		return nil, err
	}

	// Styles are optional; without them style IDs stand in for names.
	if err := r.parseStyles(); err != nil {
		r.styles = nil
	}
	r.resolver = NewStyleResolver(r.styles)
	r.tables = NewTableParser(r.resolver)

	if err := r.parseDocument(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return r, nil
}

// Close releases resources associated with the reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Blocks returns the document's paragraphs and tables in reading order.
// Block indices are zero-based positions in the returned slice.
func (r *Reader) Blocks() []model.Block {
	out := make([]model.Block, len(r.blocks))
	copy(out, r.blocks)
	return out
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}

	for _, name := range required {
		if !r.hasFile(name) {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

// hasFile checks if a file exists in the ZIP archive.
func (r *Reader) hasFile(name string) bool {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// getFileContent reads a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseStyles parses word/styles.xml.
func (r *Reader) parseStyles() error {
	data, err := r.getFileContent("word/styles.xml")
	if err != nil {
		return err
	}

	r.styles = &stylesXML{}
	return xml.Unmarshal(data, r.styles)
}

// parseDocument walks word/document.xml body content in order, producing
// one block per paragraph and per top-level table.
func (r *Reader) parseDocument() error {
	data, err := r.getFileContent("word/document.xml")
	if err != nil {
		return err
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	inBody := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "body":
			inBody = true
		case "p":
			if !inBody {
				continue
			}
			var p paragraphXML
			if err := d.DecodeElement(&p, &start); err != nil {
				return err
			}
			r.blocks = append(r.blocks, r.paragraphBlock(p))
		case "tbl":
			if !inBody {
				continue
			}
			var tbl tableXML
			if err := d.DecodeElement(&tbl, &start); err != nil {
				return err
			}
			r.blocks = append(r.blocks, model.Block{
				Index: len(r.blocks),
				Table: r.tables.ParseTable(tbl),
			})
		case "sdt", "sdtContent", "customXml":
			// Content controls wrap ordinary body content; descend.
		default:
			if inBody {
				if err := d.Skip(); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// paragraphBlock converts a paragraph into a block with resolved run
// formatting. Adjacent runs with identical formatting are merged.
func (r *Reader) paragraphBlock(p paragraphXML) model.Block {
	styleID := p.Properties.Style.Val
	if styleID == "" {
		styleID = r.resolver.DefaultParagraphStyle()
	}

	block := model.Block{Index: len(r.blocks), Style: r.resolver.StyleName(styleID)}
	if p.Properties.Style.Val == "" && p.Properties.OutlineLvl.Val != "" {
		if lvl := parseOutlineLevel(p.Properties.OutlineLvl.Val); lvl >= 0 {
			block.Style = "Heading " + strconv.Itoa(lvl+1)
		}
	}

	for _, run := range p.Runs {
		text := run.Text
		if text == "" {
			continue
		}
		formatted := r.resolver.ResolveRun(styleID, run.Properties)
		formatted.Text = text
		if n := len(block.Runs); n > 0 && sameFormat(block.Runs[n-1], formatted) {
			block.Runs[n-1].Text += text
			continue
		}
		block.Runs = append(block.Runs, formatted)
	}
	block.Runs = model.SplitSuperscripts(block.Runs)

	return block
}

// sameFormat reports whether two runs share every formatting flag.
func sameFormat(a, b model.Run) bool {
	a.Text, b.Text = "", ""
	return a == b
}

// parseSymbolChar decodes a <w:sym> character code. Symbol fonts map their
// glyphs into the private use area at F000.
func parseSymbolChar(hex string) rune {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0
	}
	if v >= 0xF000 && v <= 0xF0FF {
		v -= 0xF000
	}
	return rune(v)
}

// parseOutlineLevel parses outline level value.
func parseOutlineLevel(s string) int {
	level, err := strconv.Atoi(s)
	if err != nil || level < 0 || level > 8 {
		return -1
	}
	return level
}
