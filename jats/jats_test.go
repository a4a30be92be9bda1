package jats

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/tsawler/jatskit/model"
)

func testMeta() Metadata {
	return Metadata{
		Journal:        "Journal of Tests",
		Publisher:      "Test Press",
		ISSNPrint:      "1234-5678",
		ISSNElectronic: "8765-4321",
		DOI:            "10.1234/jot.2024.001",
		Volume:         "7",
		Issue:          "2",
		Year:           "2024",
		Month:          "3",
	}.WithDefaults()
}

func testArticle() *model.Article {
	a := model.NewArticle()
	a.Front.Title = "A Study"
	a.Front.Authors = []*model.Author{{
		Name:            model.PersonName{Surname: "Doe", GivenNames: "Jane"},
		AffiliationRefs: []string{"1"},
		Corresponding:   true,
	}}
	a.Front.Affiliations = []*model.Affiliation{{ID: "1", Text: "Department of Surgery, City Hospital, Springfield, USA"}}
	a.Front.Abstract = []*model.AbstractSection{{Title: "Background", Paragraphs: []string{"Something."}}}
	a.Front.Keywords = []string{"surgery", "outcomes"}

	results := &model.Section{Title: "Results", Level: 1, SecType: "results"}
	results.Append(&model.Paragraph{Index: 9, Runs: []model.Run{
		{Text: "See "},
		{Text: "this", Italic: true},
		{Text: " and Table 1."},
		{Text: "1,2", Superscript: true},
	}})
	a.Body.Children = []model.Node{results}

	a.Back.References = []*model.ReferenceEntry{
		{Number: 1, Raw: "Smith J. First. J Test. 2020;1:1-2.", Parsed: &model.Citation{
			Authors: []model.PersonName{{Surname: "Smith", GivenNames: "J"}},
			Title:   "First", Source: "J Test", Year: "2020", Volume: "1", FirstPage: "1", LastPage: "2", PubType: "journal",
		}},
		{Number: 2, Raw: "Unparseable reference text"},
	}

	a.Floats = []*model.FloatItem{{
		ID: "T1", Seq: 1, Number: 1, Label: "Table 1", Caption: "Baseline",
		Table: &model.Table{Rows: []model.TableRow{
			{Cells: []model.TableCell{{Text: "Group"}, {Text: "N"}}, Header: true},
			{Cells: []model.TableCell{{Text: "A"}, {Text: ""}}},
		}},
		CaptionIndex: 10, FirstRef: 9,
	}}
	return a
}

func encode(t *testing.T, a *model.Article, m Metadata) (*etree.Document, []byte) {
	t.Helper()
	out, err := Encode(a, m)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}
	return doc, out
}

func TestEncodeTopLevelOrder(t *testing.T) {
	doc, out := encode(t, testArticle(), testMeta())

	if !bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Errorf("missing XML declaration: %q", out[:40])
	}
	if !bytes.Contains(out, []byte("<!DOCTYPE article PUBLIC")) {
		t.Error("missing DOCTYPE")
	}

	root := doc.Root()
	var tags []string
	for _, el := range root.ChildElements() {
		tags = append(tags, el.Tag)
	}
	if got := strings.Join(tags, ","); got != "front,body,back,floats-group" {
		t.Errorf("top-level order = %s", got)
	}
	if root.SelectAttrValue("article-type", "") != "research-article" || root.SelectAttrValue("xml:lang", "") != "en" {
		t.Errorf("article attributes = %v", root.Attr)
	}
}

func TestEncodeOmitsEmptyGroups(t *testing.T) {
	a := testArticle()
	a.Floats = nil
	a.Back.References = nil
	a.Front.Keywords = nil

	doc, _ := encode(t, a, testMeta())

	for _, path := range []string{"//floats-group", "//back", "//kwd-group", "//history"} {
		if doc.FindElement(path) != nil {
			t.Errorf("%s should be omitted", path)
		}
	}
}

func TestEncodeCrossReferences(t *testing.T) {
	doc, out := encode(t, testArticle(), testMeta())

	bibr := doc.FindElements("//xref[@ref-type='bibr']")
	if len(bibr) != 2 || bibr[0].SelectAttrValue("rid", "") != "B1" || bibr[1].SelectAttrValue("rid", "") != "B2" {
		t.Errorf("bibr xrefs = %d", len(bibr))
	}

	table := doc.FindElement("//xref[@ref-type='table']")
	if table == nil || table.SelectAttrValue("rid", "") != "T1" || table.Text() != "Table 1" {
		t.Fatalf("table xref = %v", table)
	}

	want := `<p>See <italic>this</italic> and <xref ref-type="table" rid="T1">Table 1</xref>.<sup><xref ref-type="bibr" rid="B1">1</xref>,<xref ref-type="bibr" rid="B2">2</xref></sup></p>`
	if !bytes.Contains(out, []byte(want)) {
		t.Errorf("inline content not preserved; output:\n%s", out)
	}
}

func TestEncodeFrontMatter(t *testing.T) {
	doc, _ := encode(t, testArticle(), testMeta())

	checks := []struct {
		path string
		want string
	}{
		{"//article-meta/article-id[@pub-id-type='doi']", "10.1234/jot.2024.001"},
		{"//subj-group/subject", "Original Research Article"},
		{"//contrib[@corresp='yes']/name/surname", "Doe"},
		{"//contrib/xref[@ref-type='aff']/sup", "1"},
		{"//aff[@id='aff1']/institution[@content-type='dept']", "Department of Surgery"},
		{"//aff[@id='aff1']/addr-line", "Springfield"},
		{"//aff[@id='aff1']/country", "USA"},
		{"//author-notes/corresp[@id='cor1']/bold", "Corresponding Author:"},
		{"//abstract/sec/title", "Background"},
		{"//kwd-group/kwd", "surgery"},
		{"//permissions/copyright-year", "2024"},
		{"//pub-date[@publication-format='electronic']/month", "03"},
	}

	for _, c := range checks {
		el := doc.FindElement(c.path)
		if el == nil {
			t.Errorf("%s not found", c.path)
			continue
		}
		if got := el.Text(); got != c.want {
			t.Errorf("%s = %q, want %q", c.path, got, c.want)
		}
	}

	if n := len(doc.FindElements("//pub-date")); n != 2 {
		t.Errorf("pub-date count = %d, want 2", n)
	}
	if n := len(doc.FindElements("//author-notes/corresp")); n != 1 {
		t.Errorf("corresp count = %d, want 1", n)
	}
}

func TestEncodeBlankOptionalMetadata(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Metadata)
		absent string
		path   string
		want   string
	}{
		{
			name:   "blank print ISSN",
			mutate: func(m *Metadata) { m.ISSNPrint = "  " },
			absent: "//issn[@publication-format='print']",
			path:   "//issn[@publication-format='electronic']",
			want:   "8765-4321",
		},
		{
			name:   "blank journal abbreviation",
			mutate: func(m *Metadata) { m.JournalAbbrev = " " },
			absent: "//journal-id[@journal-id-type='nlm-ta']",
			path:   "//journal-id[@journal-id-type='publisher-id']",
			want:   "Test Press",
		},
		{
			name:   "blank journal id falls back to publisher",
			mutate: func(m *Metadata) { m.JournalID = "\t" },
			absent: "//abbrev-journal-title",
			path:   "//journal-id[@journal-id-type='publisher-id']",
			want:   "Test Press",
		},
		{
			name:   "blank journal URL",
			mutate: func(m *Metadata) { m.JournalURL = "  " },
			absent: "//journal-meta/self-uri",
			path:   "//journal-title-group/journal-title",
			want:   "Journal of Tests",
		},
		{
			name:   "padded values are trimmed",
			mutate: func(m *Metadata) {
				m.JournalAbbrev = " J Tests "
				m.JournalURL = " https://jot.example/ "
			},
			path:   "//journal-id[@journal-id-type='nlm-ta']",
			want:   "J Tests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMeta()
			tt.mutate(&m)
			if err := ValidateMetadata(m); err != nil {
				t.Fatalf("ValidateMetadata() error = %v", err)
			}
			doc, _ := encode(t, testArticle(), m)

			if tt.absent != "" && doc.FindElement(tt.absent) != nil {
				t.Errorf("%s should be omitted", tt.absent)
			}
			el := doc.FindElement(tt.path)
			if el == nil || el.Text() != tt.want {
				t.Errorf("%s = %v, want %q", tt.path, el, tt.want)
			}
			if uri := doc.FindElement("//journal-meta/self-uri"); uri != nil && uri.SelectAttrValue("xlink:href", "") != strings.TrimSpace(m.JournalURL) {
				t.Errorf("self-uri href = %q", uri.SelectAttrValue("xlink:href", ""))
			}
		})
	}
}

func TestEncodeLicense(t *testing.T) {
	tests := []struct {
		code string
		url  string
	}{
		{"cc-by-4.0", "https://creativecommons.org/licenses/by/4.0/"},
		{"cc-by-nc-4.0", "https://creativecommons.org/licenses/by-nc/4.0/"},
		{"cc-by-nc-nd-4.0", "https://creativecommons.org/licenses/by-nc-nd/4.0/"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			m := testMeta()
			m.License = tt.code
			doc, _ := encode(t, testArticle(), m)

			lic := doc.FindElement("//permissions/license")
			if lic == nil || lic.SelectAttrValue("xlink:href", "") != tt.url {
				t.Errorf("license = %v", lic)
			}
		})
	}
}

func TestEncodeRejectsUnknownLicense(t *testing.T) {
	m := testMeta()
	m.License = "mit"

	out, err := Encode(testArticle(), m)
	var le *model.InvalidLicenseCodeError
	if !errors.As(err, &le) || le.Code != "mit" {
		t.Fatalf("Encode() error = %v, want InvalidLicenseCodeError", err)
	}
	if out != nil {
		t.Error("no output expected on error")
	}
}

func TestEncodeReferences(t *testing.T) {
	doc, _ := encode(t, testArticle(), testMeta())

	refs := doc.FindElements("//ref-list/ref")
	if len(refs) != 2 {
		t.Fatalf("refs = %d", len(refs))
	}
	if refs[0].SelectAttrValue("id", "") != "B1" || refs[0].FindElement("label").Text() != "1." {
		t.Errorf("first ref = %v", refs[0])
	}
	if refs[0].FindElement("element-citation/person-group/name/surname").Text() != "Smith" {
		t.Error("element-citation author missing")
	}
	if mc := refs[1].FindElement("mixed-citation"); mc == nil || mc.Text() != "Unparseable reference text" {
		t.Errorf("second ref should be a mixed citation")
	}
}

func TestEncodeORCID(t *testing.T) {
	const id = "0000-0002-1825-0097"
	a := testArticle()
	a.Front.Authors[0].Name.ORCID = id
	a.Back.References[0].Parsed.Authors[0].ORCID = id
	doc, _ := encode(t, a, testMeta())

	tests := []struct {
		name   string
		parent string
		before string
		after  string
	}{
		{"contributor", "//contrib-group/contrib", "", "name"},
		{"cited author", "//element-citation/person-group", "name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := doc.FindElement(tt.parent)
			if parent == nil {
				t.Fatalf("%s not found", tt.parent)
			}
			kids := parent.ChildElements()
			at := -1
			for i, el := range kids {
				if el.Tag == "contrib-id" {
					at = i
				}
			}
			if at < 0 {
				t.Fatalf("%s has no contrib-id", tt.parent)
			}
			el := kids[at]
			if el.Text() != id || el.SelectAttrValue("contrib-id-type", "") != "orcid" {
				t.Errorf("contrib-id = %q %v", el.Text(), el.Attr)
			}
			if tt.before != "" && (at == 0 || kids[at-1].Tag != tt.before) {
				t.Errorf("contrib-id should follow %s", tt.before)
			}
			if tt.after != "" && (at+1 >= len(kids) || kids[at+1].Tag != tt.after) {
				t.Errorf("contrib-id should precede %s", tt.after)
			}
		})
	}

	if n := len(doc.FindElements("//contrib-id")); n != 2 {
		t.Errorf("contrib-id count = %d, want 2", n)
	}
}

func TestEncodeFloats(t *testing.T) {
	a := testArticle()
	a.Floats = append(a.Floats, &model.FloatItem{ID: "T2", Seq: 2, Number: 2, Label: "Table 2", Caption: "No payload", CaptionIndex: 11, FirstRef: -1})
	doc, _ := encode(t, a, testMeta())

	wraps := doc.FindElements("//floats-group/table-wrap")
	if len(wraps) != 2 {
		t.Fatalf("table-wrap count = %d", len(wraps))
	}
	first := wraps[0]
	if first.SelectAttrValue("id", "") != "T1" || first.SelectAttrValue("position", "") != "float" || first.SelectAttrValue("orientation", "") != "portrait" {
		t.Errorf("table-wrap attrs = %v", first.Attr)
	}
	if len(first.FindElements("table/colgroup/col")) != 2 {
		t.Error("expected two col elements")
	}
	if th := first.FindElement("table/thead/tr/th/p/bold"); th == nil || th.Text() != "Group" {
		t.Error("thead missing first row")
	}
	if len(first.FindElements("table/tbody/tr")) != 1 {
		t.Error("tbody should hold the remaining row")
	}
	cells := first.FindElements("table/tbody/tr/td")
	if len(cells) != 2 || cells[0].FindElement("p").Text() != "A" || len(cells[1].Child) != 0 {
		t.Errorf("body cells = %v", cells)
	}
	if wraps[1].FindElement("table") != nil || wraps[1].FindElement("caption/title").Text() != "No payload" {
		t.Error("float without payload should carry only label and caption")
	}
}

func TestTableCellContent(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		text string
		want string
	}{
		{"body cell", "td", "12", `<td align="left"><p>12</p></td>`},
		{"header cell", "th", "Group", `<th align="left"><p><bold>Group</bold></p></th>`},
		{"multi-line body cell", "td", "line one\nline two", `<td align="left"><p>line one<break/>line two</p></td>`},
		{"multi-line header cell", "th", "Age\n(years)", `<th align="left"><p><bold>Age<break/>(years)</bold></p></th>`},
		{"blank cell", "td", "  ", `<td align="left"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := etree.NewDocument()
			tr := doc.CreateElement("tr")
			tableRow(tr, model.TableRow{Cells: []model.TableCell{{Text: tt.text}}}, tt.tag)

			got, err := doc.WriteToString()
			if err != nil {
				t.Fatal(err)
			}
			if want := "<tr>" + tt.want + "</tr>"; got != want {
				t.Errorf("row = %s, want %s", got, want)
			}
		})
	}
}

func TestEncodeAbstractUntitled(t *testing.T) {
	a := testArticle()
	a.Front.Abstract = []*model.AbstractSection{
		{Paragraphs: []string{"Plain opening."}},
		{Title: "Methods", Paragraphs: []string{"Did it."}},
	}
	doc, _ := encode(t, a, testMeta())

	abs := doc.FindElement("//abstract")
	kids := abs.ChildElements()
	if len(kids) != 2 || kids[0].Tag != "p" || kids[1].Tag != "sec" {
		t.Errorf("abstract children = %v", kids)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	_, first := encode(t, testArticle(), testMeta())
	_, second := encode(t, testArticle(), testMeta())
	if !bytes.Equal(first, second) {
		t.Error("identical input produced different output")
	}
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name     string
		build    func(root *etree.Element)
		wantPath string
	}{
		{
			name: "empty paragraph",
			build: func(root *etree.Element) {
				root.CreateElement("body").CreateElement("p")
			},
			wantPath: "article/body[1]/p[1]",
		},
		{
			name: "sec without body",
			build: func(root *etree.Element) {
				sec := root.CreateElement("body").CreateElement("sec")
				sec.CreateElement("title").SetText("Lonely")
			},
			wantPath: "article/body[1]/sec[1]",
		},
		{
			name: "xref without rid",
			build: func(root *etree.Element) {
				p := root.CreateElement("body").CreateElement("p")
				p.CreateElement("xref").SetText("1")
			},
			wantPath: "article/body[1]/p[1]/xref[1]",
		},
		{
			name: "etal and col are fine",
			build: func(root *etree.Element) {
				root.CreateElement("etal")
				root.CreateElement("col")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := etree.NewElement("article")
			root.CreateAttr("article-type", "research-article")
			tt.build(root)

			err := checkInvariants(root)
			if tt.wantPath == "" {
				if err != nil {
					t.Errorf("checkInvariants() error = %v", err)
				}
				return
			}
			var se *model.SerializationInvariantError
			if !errors.As(err, &se) {
				t.Fatalf("checkInvariants() error = %v, want SerializationInvariantError", err)
			}
			if se.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", se.Path, tt.wantPath)
			}
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(m *Metadata)
		wantField string
		wantType  string
	}{
		{"valid", func(m *Metadata) {}, "", ""},
		{"unknown license", func(m *Metadata) { m.License = "mit" }, "", "license"},
		{"bad doi", func(m *Metadata) { m.DOI = "doi:10.1/x" }, "", "doi"},
		{"missing journal", func(m *Metadata) { m.Journal = " " }, "journal", "metadata"},
		{"missing issn", func(m *Metadata) { m.ISSNPrint, m.ISSNElectronic = "", "" }, "issn", "metadata"},
		{"month out of range", func(m *Metadata) { m.Month = "13" }, "month", "metadata"},
		{"day not numeric", func(m *Metadata) { m.Day = "first" }, "day", "metadata"},
		{"bad pub format", func(m *Metadata) { m.PubFormats = []string{"web"} }, "pub_formats", "metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMeta()
			tt.mutate(&m)
			err := ValidateMetadata(m)

			var (
				le *model.InvalidLicenseCodeError
				de *model.InvalidDOIFormatError
				me *model.InvalidMetadataError
			)
			switch tt.wantType {
			case "":
				if err != nil {
					t.Errorf("ValidateMetadata() error = %v", err)
				}
			case "license":
				if !errors.As(err, &le) {
					t.Errorf("error = %v, want InvalidLicenseCodeError", err)
				}
			case "doi":
				if !errors.As(err, &de) {
					t.Errorf("error = %v, want InvalidDOIFormatError", err)
				}
			case "metadata":
				if !errors.As(err, &me) || me.Field != tt.wantField {
					t.Errorf("error = %v, want InvalidMetadataError for %s", err, tt.wantField)
				}
			}
		})
	}
}

func TestWithDefaults(t *testing.T) {
	m := Metadata{PubFormats: []string{"print", "print"}}.WithDefaults()

	if m.ArticleType != DefaultArticleType || m.License != DefaultLicense {
		t.Errorf("defaults = %+v", m)
	}
	if len(m.PubFormats) != 1 || m.PubFormats[0] != "print" {
		t.Errorf("PubFormats = %v", m.PubFormats)
	}
	if m.Crossref {
		t.Error("Crossref should default to false")
	}

	if got := (Metadata{}).WithDefaults().PubFormats; len(got) != 2 {
		t.Errorf("default PubFormats = %v", got)
	}
}

func TestSubjectLabel(t *testing.T) {
	if got := SubjectLabel("case-report"); got != "Case Report" {
		t.Errorf("SubjectLabel(case-report) = %q", got)
	}
	if got := SubjectLabel("commentary"); got != "commentary" {
		t.Errorf("SubjectLabel(commentary) = %q", got)
	}
}
