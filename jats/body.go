package jats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/samber/lo"

	"github.com/tsawler/jatskit/extract"
	"github.com/tsawler/jatskit/model"
)

var (
	// citationRun matches superscript runs that carry only citation numbers.
	citationRun = regexp.MustCompile(`^[\d,\s\-–]+$`)
	digitsOrNot = regexp.MustCompile(`\d+|[^\d]+`)
)

func (s *serializer) body(body *etree.Element) {
	s.nodes(body, s.article.Body.Children)
}

func (s *serializer) nodes(parent *etree.Element, nodes []model.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *model.Paragraph:
			s.paragraph(parent, v)
		case *model.Section:
			sec := parent.CreateElement("sec")
			if v.SecType != "" {
				sec.CreateAttr("sec-type", v.SecType)
			}
			textElement(sec, "title", v.Title)
			s.nodes(sec, v.Children)
		}
	}
}

func (s *serializer) paragraph(parent *etree.Element, p *model.Paragraph) {
	if !p.HasContent() {
		return
	}
	el := parent.CreateElement("p")
	s.runs(el, p.Runs)
}

// runs renders inline content. Superscript numerals become bibliography
// cross-references when the reference exists.
func (s *serializer) runs(parent *etree.Element, runs []model.Run) {
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if strings.TrimSpace(r.Text) == "" {
			parent.CreateText(r.Text)
			continue
		}

		if r.Superscript {
			sup := parent.CreateElement("sup")
			if citationRun.MatchString(strings.TrimSpace(r.Text)) {
				s.citations(sup, r.Text)
			} else {
				sup.CreateText(r.Text)
			}
			continue
		}

		target := parent
		if r.Bold {
			target = target.CreateElement("bold")
		}
		if r.Italic {
			target = target.CreateElement("italic")
		}
		if r.Subscript {
			target = target.CreateElement("sub")
		}
		s.text(target, r.Text)
	}
}

// citations writes a numeral list such as "1,3-5", linking every number
// that names an existing reference.
func (s *serializer) citations(parent *etree.Element, text string) {
	for _, tok := range digitsOrNot.FindAllString(text, -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			parent.CreateText(tok)
			continue
		}
		ref := s.article.Back.Reference(n)
		if ref == nil {
			parent.CreateText(tok)
			continue
		}
		x := parent.CreateElement("xref")
		x.CreateAttr("ref-type", "bibr")
		x.CreateAttr("rid", ref.ID())
		x.SetText(tok)
	}
}

// text writes plain text, linking "Table N" mentions to their floats.
func (s *serializer) text(parent *etree.Element, text string) {
	last := 0
	for _, m := range extract.Mentions(text) {
		f, ok := s.floats[m.Number]
		if !ok {
			continue
		}
		if m.Start > last {
			parent.CreateText(text[last:m.Start])
		}
		x := parent.CreateElement("xref")
		x.CreateAttr("ref-type", "table")
		x.CreateAttr("rid", f.ID)
		x.SetText(text[m.Start:m.End])
		last = m.End
	}
	if last < len(text) {
		parent.CreateText(text[last:])
	}
}

func (s *serializer) back(back *etree.Element) {
	rl := back.CreateElement("ref-list")
	textElement(rl, "title", "References")

	for _, r := range s.article.Back.References {
		if !r.HasContent() {
			continue
		}
		ref := rl.CreateElement("ref")
		ref.CreateAttr("id", r.ID())
		textElement(ref, "label", fmt.Sprintf("%d.", r.Number))

		if r.Parsed == nil {
			if mc := textElement(ref, "mixed-citation", r.Raw); mc != nil && r.DOI != "" && !strings.Contains(r.Raw, r.DOI) {
				mc.CreateText(" ")
				id := mc.CreateElement("pub-id")
				id.CreateAttr("pub-id-type", "doi")
				id.SetText(r.DOI)
			}
			continue
		}
		elementCitation(ref, r)
	}
}

func elementCitation(ref *etree.Element, r *model.ReferenceEntry) {
	c := r.Parsed
	ec := ref.CreateElement("element-citation")
	pubType := c.PubType
	if pubType == "" {
		pubType = "journal"
	}
	ec.CreateAttr("publication-type", pubType)

	if len(c.Authors) > 0 {
		pg := ec.CreateElement("person-group")
		pg.CreateAttr("person-group-type", "author")
		for _, a := range c.Authors {
			name := pg.CreateElement("name")
			name.CreateAttr("name-style", "western")
			textElement(name, "surname", a.Surname)
			textElement(name, "given-names", a.GivenNames)
			typedElement(pg, "contrib-id", a.ORCID, "contrib-id-type", "orcid")
		}
		if c.EtAl {
			pg.CreateElement("etal")
		}
	}

	textElement(ec, "article-title", c.Title)
	textElement(ec, "source", c.Source)
	if y := textElement(ec, "year", c.Year); y != nil {
		y.CreateAttr("iso-8601-date", c.Year)
	}
	textElement(ec, "volume", c.Volume)
	textElement(ec, "issue", c.Issue)
	textElement(ec, "fpage", c.FirstPage)
	textElement(ec, "lpage", c.LastPage)
	if d := textElement(ec, "pub-id", r.DOI); d != nil {
		d.CreateAttr("pub-id-type", "doi")
	}
}

func (s *serializer) floatsGroup(fg *etree.Element) {
	for _, f := range s.article.Floats {
		tw := fg.CreateElement("table-wrap")
		tw.CreateAttr("id", f.ID)
		tw.CreateAttr("position", "float")
		tw.CreateAttr("orientation", "portrait")
		textElement(tw, "label", f.Label)
		if f.Caption != "" {
			textElement(tw.CreateElement("caption"), "title", f.Caption)
		}
		if f.Table != nil && !f.Table.IsEmpty() {
			table(tw.CreateElement("table"), f.Table)
		}
	}
}

// table renders the payload: colgroup, a thead for the leading header rows
// (the first row when none are marked) and a tbody for the rest.
func table(el *etree.Element, t *model.Table) {
	el.CreateAttr("rules", "all")
	el.CreateAttr("frame", "box")

	widths := t.ColWidths
	if len(widths) == 0 {
		if n := t.ColCount(); n > 0 {
			widths = make([]float64, n)
			for i := range widths {
				widths[i] = 100 / float64(n)
			}
		}
	}
	if len(widths) > 0 {
		cg := el.CreateElement("colgroup")
		for _, w := range widths {
			cg.CreateElement("col").CreateAttr("width", strconv.FormatFloat(w, 'f', 2, 64)+"%")
		}
	}

	rows := lo.Filter(t.Rows, func(r model.TableRow, _ int) bool { return len(r.Cells) > 0 })
	if len(rows) == 0 {
		return
	}

	head := 0
	for head < len(rows) && rows[head].Header {
		head++
	}
	if head == 0 {
		head = 1
	}

	thead := el.CreateElement("thead")
	for _, row := range rows[:head] {
		tableRow(thead.CreateElement("tr"), row, "th")
	}
	if head < len(rows) {
		tbody := el.CreateElement("tbody")
		for _, row := range rows[head:] {
			tableRow(tbody.CreateElement("tr"), row, "td")
		}
	}
}

// tableRow writes one row. Cell text goes in a paragraph, bold for header
// cells, with a break per line; blank cells stay empty.
func tableRow(tr *etree.Element, row model.TableRow, tag string) {
	for _, cell := range row.Cells {
		c := tr.CreateElement(tag)
		if cell.ColSpan > 1 {
			c.CreateAttr("colspan", strconv.Itoa(cell.ColSpan))
		}
		if cell.RowSpan > 1 {
			c.CreateAttr("rowspan", strconv.Itoa(cell.RowSpan))
		}
		c.CreateAttr("align", "left")
		if strings.TrimSpace(cell.Text) == "" {
			continue
		}

		content := c.CreateElement("p")
		if tag == "th" {
			content = content.CreateElement("bold")
		}
		for i, line := range strings.Split(cell.Text, "\n") {
			if i > 0 {
				content.CreateElement("break")
			}
			if line != "" {
				content.CreateText(line)
			}
		}
	}
}
