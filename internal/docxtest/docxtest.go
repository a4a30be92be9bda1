// Package docxtest builds small in-memory DOCX manuscripts for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// Document accumulates body content and the paragraph styles it uses.
type Document struct {
	body   strings.Builder
	styles map[string]string // style ID -> display name
}

// New returns an empty document.
func New() *Document {
	return &Document{styles: make(map[string]string)}
}

// R returns a plain run.
func R(text string) string {
	return run("", text)
}

// Sup returns a superscript run.
func Sup(text string) string {
	return run(`<w:vertAlign w:val="superscript"/>`, text)
}

// B returns a bold run.
func B(text string) string {
	return run(`<w:b/>`, text)
}

// I returns an italic run.
func I(text string) string {
	return run(`<w:i/>`, text)
}

func run(props, text string) string {
	var esc bytes.Buffer
	xml.EscapeText(&esc, []byte(text))
	if props != "" {
		props = "<w:rPr>" + props + "</w:rPr>"
	}
	return `<w:r>` + props + `<w:t xml:space="preserve">` + esc.String() + `</w:t></w:r>`
}

// StyleID derives the style ID Word would assign to a display name.
func StyleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// P appends a paragraph in the named style built from raw run XML.
func (d *Document) P(style string, runs ...string) *Document {
	d.body.WriteString(`<w:p>`)
	if style != "" {
		id := StyleID(style)
		d.styles[id] = style
		fmt.Fprintf(&d.body, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, id)
	}
	for _, r := range runs {
		d.body.WriteString(r)
	}
	d.body.WriteString(`</w:p>`)
	return d
}

// Text appends a paragraph holding a single plain run.
func (d *Document) Text(style, text string) *Document {
	return d.P(style, R(text))
}

// Table appends a table. The first row is marked as a header row.
func (d *Document) Table(rows ...[]string) *Document {
	d.body.WriteString(`<w:tbl>`)
	if len(rows) > 0 {
		d.body.WriteString(`<w:tblGrid>`)
		for range rows[0] {
			d.body.WriteString(`<w:gridCol w:w="2000"/>`)
		}
		d.body.WriteString(`</w:tblGrid>`)
	}
	for i, row := range rows {
		d.body.WriteString(`<w:tr>`)
		if i == 0 {
			d.body.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
		}
		for _, cell := range row {
			d.body.WriteString(`<w:tc><w:p>` + R(cell) + `</w:p></w:tc>`)
		}
		d.body.WriteString(`</w:tr>`)
	}
	d.body.WriteString(`</w:tbl>`)
	return d
}

// Raw appends body XML verbatim.
func (d *Document) Raw(xmlText string) *Document {
	d.body.WriteString(xmlText)
	return d
}

// Bytes packages the document as a DOCX archive.
func (d *Document) Bytes() []byte {
	ids := make([]string, 0, len(d.styles))
	for id := range d.styles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var styles strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&styles, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/></w:style>`, id, d.styles[id])
	}
	return Build(d.body.String(), styles.String())
}

// Build packages raw body and styles XML fragments as a DOCX archive.
// styles.xml is omitted when styles is empty.
func Build(body, styles string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)

	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)

	write("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>`+body+`</w:body>
</w:document>`)

	if styles != "" {
		write("word/styles.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+styles+`</w:styles>`)
	}

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
