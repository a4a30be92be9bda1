package docx

import (
	"encoding/xml"
	"strings"
)

// paragraphXML represents a paragraph element (<w:p>).
// Runs are collected in document order, including runs nested in
// hyperlinks, tracked insertions, smart tags and simple fields.
type paragraphXML struct {
	Properties paragraphPropsXML
	Runs       []runXML
}

// runContainers are inline wrappers whose runs belong to the paragraph.
var runContainers = map[string]bool{
	"hyperlink":  true,
	"ins":        true,
	"smartTag":   true,
	"fldSimple":  true,
	"sdt":        true,
	"sdtContent": true,
	"customXml":  true,
}

// UnmarshalXML decodes a paragraph while keeping run order across wrappers.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return p.decodeChildren(d, start.Name.Local)
}

func (p *paragraphXML) decodeChildren(d *xml.Decoder, endLocal string) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "pPr":
				if err := d.DecodeElement(&p.Properties, &t); err != nil {
					return err
				}
			case t.Name.Local == "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case runContainers[t.Name.Local]:
				if err := p.decodeChildren(d, t.Name.Local); err != nil {
					return err
				}
			default:
				// Deleted text, bookmarks, proofing marks and the like.
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == endLocal {
				return nil
			}
		}
	}
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style      styleRefXML   `xml:"pStyle"`
	OutlineLvl outlineLvlXML `xml:"outlineLvl"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// outlineLvlXML represents outline level.
type outlineLvlXML struct {
	Val string `xml:"val,attr"`
}

// runXML represents a text run (<w:r>). Text holds the run's characters
// in document order: text, symbols, tabs, line breaks and the fallback text
// of alternate content.
type runXML struct {
	Properties runPropsXML
	Text       string
}

// UnmarshalXML decodes a run, appending each content element as it appears.
func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Properties, &t); err != nil {
					return err
				}
			case "t":
				var text textXML
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				sb.WriteString(text.Value)
			case "sym":
				var sym symXML
				if err := d.DecodeElement(&sym, &t); err != nil {
					return err
				}
				if ch := parseSymbolChar(sym.Char); ch != 0 {
					sb.WriteRune(ch)
				}
			case "tab":
				sb.WriteByte('\t')
				if err := d.Skip(); err != nil {
					return err
				}
			case "br":
				var br breakXML
				if err := d.DecodeElement(&br, &t); err != nil {
					return err
				}
				// Page and column breaks carry no text.
				if br.Type == "" || br.Type == "textWrapping" {
					sb.WriteByte('\n')
				}
			case "cr":
				sb.WriteByte('\n')
				if err := d.Skip(); err != nil {
					return err
				}
			case "AlternateContent":
				var ac alternateContentXML
				if err := d.DecodeElement(&ac, &t); err != nil {
					return err
				}
				for _, text := range ac.Fallback.Text {
					sb.WriteString(text.Value)
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				r.Text = sb.String()
				return nil
			}
		}
	}
}

// symXML represents a symbol character (<w:sym>).
type symXML struct {
	Font string `xml:"font,attr"`
	Char string `xml:"char,attr"` // Hex character code
}

// alternateContentXML represents mc:AlternateContent for emoji fallbacks.
type alternateContentXML struct {
	Fallback fallbackXML `xml:"Fallback"`
}

// fallbackXML represents mc:Fallback containing text.
type fallbackXML struct {
	Text []textXML `xml:"t"`
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style     styleRefXML  `xml:"rStyle"`
	Bold      boolXML      `xml:"b"`
	Italic    boolXML      `xml:"i"`
	VertAlign vertAlignXML `xml:"vertAlign"`
}

// boolXML represents a boolean toggle. Presence means true unless
// val is "false" or "0".
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// set reports whether the toggle element was present.
func (b boolXML) set() bool {
	return b.XMLName.Local != ""
}

// on reports the toggle value.
func (b boolXML) on() bool {
	return b.Val != "false" && b.Val != "0" && b.Val != "off"
}

// vertAlignXML represents vertical alignment (superscript/subscript).
type vertAlignXML struct {
	Val string `xml:"val,attr"` // superscript, subscript, baseline
}

// textXML represents text content (<w:t>).
type textXML struct {
	XMLName xml.Name `xml:"t"`
	Space   string   `xml:"space,attr"` // preserve
	Value   string   `xml:",chardata"`
}

// breakXML represents a break (line or page).
type breakXML struct {
	XMLName xml.Name `xml:"br"`
	Type    string   `xml:"type,attr"` // page, column, textWrapping
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	XMLName    xml.Name      `xml:"tbl"`
	Properties tablePropsXML `xml:"tblPr"`
	Grid       tableGridXML  `xml:"tblGrid"`
	Rows       []tableRowXML `xml:"tr"`
}

// tablePropsXML represents table properties.
type tablePropsXML struct {
	Style styleRefXML `xml:"tblStyle"`
}

// tableGridXML represents table grid definition.
type tableGridXML struct {
	Cols []gridColXML `xml:"gridCol"`
}

// gridColXML represents a grid column.
type gridColXML struct {
	W string `xml:"w,attr"` // Width in twips
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	XMLName    xml.Name       `xml:"tr"`
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	Header boolXML `xml:"tblHeader"` // Is this a header row?
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	XMLName    xml.Name       `xml:"tc"`
	Properties cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan gridSpanXML `xml:"gridSpan"`
	VMerge   vMergeXML   `xml:"vMerge"`
}

// gridSpanXML represents column span.
type gridSpanXML struct {
	Val string `xml:"val,attr"` // Number of columns spanned
}

// vMergeXML represents vertical merge.
type vMergeXML struct {
	XMLName xml.Name `xml:"vMerge"`
	Val     string   `xml:"val,attr"` // "restart" or empty (continue)
}
