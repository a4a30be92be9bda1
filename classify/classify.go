// Package classify maps manuscript paragraph style names to semantic block
// kinds.
//
// The lookup table is built once and never mutated, so a [Table] may be
// shared by any number of concurrent conversions.
package classify

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/tsawler/jatskit/model"
)

// builtinStyles lists the style names used by the journal's manuscript
// template and common word-processor defaults.
var builtinStyles = map[string]model.BlockKind{
	"Title":         model.KindTitle,
	"Article Title": model.KindTitle,

	"Author Name": model.KindAuthorName,
	"Authors":     model.KindAuthorName,
	"Author":      model.KindAuthorName,

	"Authors affiliation":      model.KindAffiliationLine,
	"Author affiliation":       model.KindAffiliationLine,
	"Affiliation":              model.KindAffiliationLine,
	"Last Authors affiliation": model.KindLastAffiliationLine,
	"Last Author affiliation":  model.KindLastAffiliationLine,
	"Last Affiliation":         model.KindLastAffiliationLine,

	"Abstract Heading": model.KindAbstractHeading,
	"Abstract Title":   model.KindAbstractHeading,
	"Abstract":         model.KindAbstractBody,
	"Abstract Body":    model.KindAbstractBody,
	"Abstract Text":    model.KindAbstractBody,

	"Keywords": model.KindKeywords,
	"Keyword":  model.KindKeywords,

	"Heading 1": model.KindHeading1,
	"Heading 2": model.KindHeading2,

	"Paragraph 1":    model.KindBodyParagraph,
	"2nd Para":       model.KindBodyParagraph,
	"List Paragraph": model.KindBodyParagraph,
	"Normal":         model.KindBodyParagraph,
	"Normal (Web)":   model.KindBodyParagraph,
	"Body Text":      model.KindBodyParagraph,

	"Table caption": model.KindTableCaption,
	"Caption":       model.KindTableCaption,

	"Reference":    model.KindReferenceEntry,
	"References":   model.KindReferenceEntry,
	"Bibliography": model.KindReferenceEntry,
}

// Table is an immutable style-name lookup table.
type Table struct {
	kinds map[string]model.BlockKind
}

// Default is the table built from the built-in style names.
var Default = mustTable(nil)

// Classify resolves a style name with the Default table.
func Classify(style string) (model.BlockKind, bool) {
	return Default.Classify(style)
}

// NewTable returns a table holding the built-in styles plus extra aliases.
// Each alias maps a style name to a BlockKind name such as "Heading1".
func NewTable(extra map[string]string) (*Table, error) {
	t := &Table{kinds: make(map[string]model.BlockKind, len(builtinStyles)+len(extra))}
	for name, kind := range builtinStyles {
		t.kinds[Normalize(name)] = kind
	}
	for name, kindName := range extra {
		kind, ok := model.ParseKind(kindName)
		if !ok || kind == model.KindUnclassified {
			return nil, fmt.Errorf("style alias %q: unknown block kind %q", name, kindName)
		}
		key := Normalize(name)
		if key == "" {
			return nil, fmt.Errorf("style alias %q: empty style name", name)
		}
		t.kinds[key] = kind
	}
	return t, nil
}

func mustTable(extra map[string]string) *Table {
	t, err := NewTable(extra)
	if err != nil {
		panic(err)
	}
	return t
}

// Classify returns the kind for a style name. The second result is false
// when the name is not in the table, in which case the kind is
// KindUnclassified.
func (t *Table) Classify(style string) (model.BlockKind, bool) {
	kind, ok := t.kinds[Normalize(style)]
	if !ok {
		return model.KindUnclassified, false
	}
	return kind, true
}

// ClassifyAll classifies blocks in order. Unknown style names produce one
// warning per block.
func (t *Table) ClassifyAll(blocks []model.Block) ([]model.Classified, []model.Warning) {
	out := make([]model.Classified, 0, len(blocks))
	var warnings []model.Warning
	for _, b := range blocks {
		if b.Table != nil {
			// Table payloads have no style role of their own.
			out = append(out, model.Classified{Block: b, Kind: model.KindUnclassified})
			continue
		}
		kind, ok := t.Classify(b.Style)
		if !ok && !b.IsBlank() {
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnUnclassifiedStyle,
				Index:   b.Index,
				Message: fmt.Sprintf("style %q is not recognized", b.Style),
			})
		}
		out = append(out, model.Classified{Block: b, Kind: kind})
	}
	return out, warnings
}

// Len returns the number of distinct normalized style names.
func (t *Table) Len() int {
	return len(t.kinds)
}

// Normalize case-folds a style name and drops everything that is not a
// letter or digit, so "Heading 1", "heading1" and "HEADING_1" share a key.
func Normalize(style string) string {
	// Casers carry state, so each call gets its own.
	folded := cases.Fold().String(style)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, folded)
}
