package model

import "strings"

// BlockKind is the semantic role of a manuscript block.
type BlockKind int

const (
	KindUnclassified BlockKind = iota
	KindTitle
	KindAuthorName
	KindAffiliationLine
	KindLastAffiliationLine
	KindAbstractHeading
	KindAbstractBody
	KindKeywords
	KindHeading1
	KindHeading2
	KindBodyParagraph
	KindTableCaption
	KindReferenceEntry
)

var kindNames = [...]string{
	KindUnclassified:        "Unclassified",
	KindTitle:               "Title",
	KindAuthorName:          "AuthorName",
	KindAffiliationLine:     "AffiliationLine",
	KindLastAffiliationLine: "LastAffiliationLine",
	KindAbstractHeading:     "AbstractHeading",
	KindAbstractBody:        "AbstractBody",
	KindKeywords:            "Keywords",
	KindHeading1:            "Heading1",
	KindHeading2:            "Heading2",
	KindBodyParagraph:       "BodyParagraph",
	KindTableCaption:        "TableCaption",
	KindReferenceEntry:      "ReferenceEntry",
}

func (k BlockKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unclassified"
	}
	return kindNames[k]
}

// ParseKind returns the BlockKind whose String form matches name,
// ignoring case.
func ParseKind(name string) (BlockKind, bool) {
	for i, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return BlockKind(i), true
		}
	}
	return KindUnclassified, false
}

// Run is a contiguous span of text sharing the same formatting.
type Run struct {
	Text        string
	Superscript bool
	Subscript   bool
	Bold        bool
	Italic      bool
}

// Block is one ordered unit of manuscript input.
type Block struct {
	Index int
	Style string
	Runs  []Run
	Table *Table // non-nil for table payload blocks
}

// Text returns the concatenated text of all runs.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsBlank reports whether the block has neither text nor a table payload.
func (b Block) IsBlank() bool {
	return b.Table == nil && strings.TrimSpace(b.Text()) == ""
}

// Snippet returns a short, single-line excerpt of the block text for
// error messages.
func (b Block) Snippet() string {
	return Snippet(b.Text(), 60)
}

// Snippet collapses whitespace in s and truncates it to at most n runes.
func Snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Classified pairs a block with its resolved kind.
type Classified struct {
	Block
	Kind BlockKind
}
