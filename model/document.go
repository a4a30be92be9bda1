package model

import (
	"fmt"
	"strings"
)

// Article is the aggregate root of a converted manuscript.
type Article struct {
	Front  Front
	Body   Body
	Back   Back
	Floats []*FloatItem
}

// Front holds the article front matter.
type Front struct {
	Title        string
	Authors      []*Author
	Affiliations []*Affiliation
	Abstract     []*AbstractSection
	Keywords     []string
	History      History
	Notes        []*AuthorNote

	// Correspondence is the text of an asterisk-led affiliation line,
	// e.g. "Corresponding author: jane@example.org".
	Correspondence string
}

// Body is the root of the section tree.
type Body struct {
	Children []Node
}

// Back holds the back matter.
type Back struct {
	References []*ReferenceEntry
}

// NewArticle creates an empty article.
func NewArticle() *Article {
	return &Article{}
}

// PersonName is a western-style name split into surname and given names.
type PersonName struct {
	Surname    string
	GivenNames string
	ORCID      string // bare identifier, e.g. 0000-0002-1825-0097
}

// String returns "Given Surname".
func (n PersonName) String() string {
	return strings.TrimSpace(n.GivenNames + " " + n.Surname)
}

// Author is a contributor listed in the front matter.
type Author struct {
	Name            PersonName
	AffiliationRefs []string // affiliation numerals in reading order
	Corresponding   bool
	Markers         []string // footnote marker symbols, e.g. "†"
	Index           int      // source block index
}

// Affiliation is an institution line referenced by authors.
type Affiliation struct {
	ID   string // numeral, e.g. "1"
	Text string
	Last bool // came from a last-affiliation line
}

// AuthorNote is a footnote in the author-notes group.
type AuthorNote struct {
	ID     string
	Type   string // JATS fn-type
	Marker string // source marker symbol, empty for declarations
	Title  string
	Text   string
}

// AbstractSection is one titled part of a structured abstract. An empty
// Title denotes unlabelled abstract text.
type AbstractSection struct {
	Title      string
	Paragraphs []string
}

// HasContent reports whether any paragraph holds non-whitespace text.
func (s *AbstractSection) HasContent() bool {
	for _, p := range s.Paragraphs {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// Date is a calendar date with optional month and day.
type Date struct {
	Year  string
	Month string
	Day   string
}

// IsZero reports whether no part of the date is set.
func (d Date) IsZero() bool {
	return d.Year == "" && d.Month == "" && d.Day == ""
}

// ISO returns the YYYY-MM-DD form, or "" when any part is missing.
func (d Date) ISO() string {
	if d.Year == "" || d.Month == "" || d.Day == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", d.Year, pad2(d.Month), pad2(d.Day))
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// History holds the editorial dates found in the manuscript.
type History struct {
	Received Date
	Accepted Date
}

// Node is an element of the body tree: *Section or *Paragraph.
type Node interface {
	node()
	HasContent() bool
}

// Paragraph is a body paragraph with its source runs.
type Paragraph struct {
	Index int
	Runs  []Run
}

func (*Paragraph) node() {}

// Text returns the paragraph text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// HasContent reports whether the paragraph has non-whitespace text.
func (p *Paragraph) HasContent() bool {
	return strings.TrimSpace(p.Text()) != ""
}

// Section is a titled body section. Level is 1 or 2.
type Section struct {
	Title    string
	Level    int
	SecType  string // empty when unresolved
	Index    int    // source block index of the heading
	Children []Node
}

func (*Section) node() {}

// HasContent reports whether the section has a title and at least one child
// with content.
func (s *Section) HasContent() bool {
	if strings.TrimSpace(s.Title) == "" {
		return false
	}
	for _, c := range s.Children {
		if c.HasContent() {
			return true
		}
	}
	return false
}

// Append adds a child node.
func (s *Section) Append(n Node) {
	s.Children = append(s.Children, n)
}

// Citation holds best-effort parsed reference fields.
type Citation struct {
	Authors   []PersonName
	EtAl      bool
	Title     string
	Source    string
	Year      string
	Volume    string
	Issue     string
	FirstPage string
	LastPage  string
	PubType   string // journal, thesis, book
}

// ReferenceEntry is one numbered citation in the reference list.
type ReferenceEntry struct {
	Number int
	Raw    string
	DOI    string
	Index  int // source block index
	Parsed *Citation
}

// ID returns the stable element id of the reference.
func (r *ReferenceEntry) ID() string {
	return fmt.Sprintf("B%d", r.Number)
}

// HasContent reports whether the entry has non-whitespace text.
func (r *ReferenceEntry) HasContent() bool {
	return strings.TrimSpace(r.Raw) != ""
}

// FloatItem is a table collected into the floats group.
type FloatItem struct {
	ID           string // "T" + sequence number
	Seq          int
	Number       int // number used in the label and in-body mentions
	Label        string
	Caption      string
	Table        *Table
	CaptionIndex int // source block index of the caption, -1 when absent
	FirstRef     int // block index of the first in-body mention, -1 when none
}

// HasContent reports whether the float has a caption or table content.
func (f *FloatItem) HasContent() bool {
	return strings.TrimSpace(f.Caption) != "" || (f.Table != nil && !f.Table.IsEmpty())
}

// CorrespondingAuthor returns the author flagged as corresponding, or nil.
func (a *Article) CorrespondingAuthor() *Author {
	for _, au := range a.Front.Authors {
		if au.Corresponding {
			return au
		}
	}
	return nil
}

// Affiliation returns the affiliation with the given numeral, or nil.
func (f *Front) Affiliation(id string) *Affiliation {
	for _, af := range f.Affiliations {
		if af.ID == id {
			return af
		}
	}
	return nil
}

// Reference returns the reference with the given number, or nil.
func (b *Back) Reference(n int) *ReferenceEntry {
	for _, r := range b.References {
		if r.Number == n {
			return r
		}
	}
	return nil
}

// Sections returns the top-level sections of the body.
func (b *Body) Sections() []*Section {
	var out []*Section
	for _, c := range b.Children {
		if s, ok := c.(*Section); ok {
			out = append(out, s)
		}
	}
	return out
}

// Paragraphs returns every body paragraph in document order.
func (b *Body) Paragraphs() []*Paragraph {
	var out []*Paragraph
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch v := n.(type) {
			case *Paragraph:
				out = append(out, v)
			case *Section:
				walk(v.Children)
			}
		}
	}
	walk(b.Children)
	return out
}

// NoteFor returns the author note created for a footnote marker, or nil.
func (f *Front) NoteFor(marker string) *AuthorNote {
	for _, n := range f.Notes {
		if n.Marker == marker {
			return n
		}
	}
	return nil
}
