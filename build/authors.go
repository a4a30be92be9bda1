package build

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/tsawler/jatskit/model"
)

// noteTypes maps author footnote markers to fn-type values.
var noteTypes = map[string]string{
	"†": "equal",
	"#": "equal",
	"‡": "present-address",
	"§": "other",
	"¶": "other",
}

// equalContribution is the note text used when an equal-contribution marker
// has no explanatory line.
const equalContribution = "These authors contributed equally to this work."

var (
	authorSeparator = regexp.MustCompile(`(?i)\s*(?:[,;&]|\band\b)\s*`)
	numeralPattern  = regexp.MustCompile(`\d+`)
	leadingNumeral  = regexp.MustCompile(`^\s*(\d+)[\s\p{Pd}.:)\]]*`)
)

// pendingAuthor accumulates one author while scanning name runs.
type pendingAuthor struct {
	name    strings.Builder
	refs    []string
	corr    bool
	markers []string
	index   int
}

// linker collects author and affiliation blocks and resolves the edges
// between them once the affiliation list is complete.
type linker struct {
	authors      []*pendingAuthor
	affiliations []*model.Affiliation
	affIndex     map[string]int // numeral -> block index
	markerText   map[string]string
	corrText     string
	closed       bool // a LastAffiliationLine has been seen
}

func newLinker() *linker {
	return &linker{
		affIndex:   make(map[string]int),
		markerText: make(map[string]string),
	}
}

// addAuthors scans one AuthorName block. A block may list several authors
// separated by commas, semicolons, "and" or "&".
func (l *linker) addAuthors(b model.Block) {
	var cur *pendingAuthor
	startNew := true

	attach := func(fn func(a *pendingAuthor)) {
		if cur == nil && len(l.authors) > 0 {
			cur = l.authors[len(l.authors)-1]
		}
		if cur != nil {
			fn(cur)
		}
	}

	for _, run := range b.Runs {
		if run.Superscript {
			for _, n := range numeralPattern.FindAllString(run.Text, -1) {
				attach(func(a *pendingAuthor) { a.refs = append(a.refs, n) })
			}
			applySymbols(run.Text, attach)
			continue
		}

		for i, part := range authorSeparator.Split(run.Text, -1) {
			if i > 0 {
				startNew = true
			}
			if name := stripSymbols(part); strings.TrimSpace(name) != "" {
				if startNew || cur == nil {
					cur = &pendingAuthor{index: b.Index}
					l.authors = append(l.authors, cur)
					startNew = false
				}
				cur.name.WriteString(name)
			}
			applySymbols(part, attach)
		}
	}
}

// applySymbols applies the corresponding mark and footnote markers found
// in text to the current author.
func applySymbols(text string, attach func(func(*pendingAuthor))) {
	for _, r := range text {
		s := string(r)
		if s == "*" {
			attach(func(a *pendingAuthor) { a.corr = true })
			continue
		}
		if _, ok := noteTypes[s]; ok {
			attach(func(a *pendingAuthor) {
				if !lo.Contains(a.markers, s) {
					a.markers = append(a.markers, s)
				}
			})
		}
	}
}

// stripSymbols removes the corresponding mark and footnote markers.
func stripSymbols(text string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := noteTypes[string(r)]; ok || r == '*' {
			return -1
		}
		return r
	}, text)
}

// addAffiliation records one affiliation block. Lines that begin with a
// footnote marker or an asterisk supply note text instead.
func (l *linker) addAffiliation(b model.Block, last bool) error {
	text := strings.TrimSpace(b.Text())
	if text == "" {
		return nil
	}

	if r, size := utf8.DecodeRuneInString(text); size > 0 {
		first := string(r)
		if first == "*" {
			l.corrText = strings.TrimSpace(strings.TrimLeft(text, "*"))
			return nil
		}
		if _, ok := noteTypes[first]; ok {
			l.markerText[first] = strings.TrimSpace(strings.TrimPrefix(text, first))
			return nil
		}
	}

	if l.closed {
		return &model.StructuralOrderError{
			Index:   b.Index,
			Kind:    kindOf(last),
			State:   stateAffiliations.String(),
			Snippet: b.Snippet(),
		}
	}

	id, text := affiliationNumeral(b)
	if id == "" {
		id = strconv.Itoa(len(l.affiliations) + 1)
	}
	if _, dup := l.affIndex[id]; dup {
		return &model.DuplicateAffiliationError{Index: b.Index, Numeral: id}
	}
	l.affIndex[id] = b.Index
	l.affiliations = append(l.affiliations, &model.Affiliation{ID: id, Text: text, Last: last})
	if last {
		l.closed = true
	}
	return nil
}

func kindOf(last bool) model.BlockKind {
	if last {
		return model.KindLastAffiliationLine
	}
	return model.KindAffiliationLine
}

// affiliationNumeral reads the numeral from a leading superscript run, or
// from leading digits, and returns it with the remaining institution text.
func affiliationNumeral(b model.Block) (string, string) {
	runs := b.Runs
	for len(runs) > 0 && strings.TrimSpace(runs[0].Text) == "" {
		runs = runs[1:]
	}
	if len(runs) > 0 && runs[0].Superscript {
		if n := numeralPattern.FindString(runs[0].Text); n != "" {
			var sb strings.Builder
			for _, r := range runs[1:] {
				sb.WriteString(r.Text)
			}
			return n, cleanAffiliation(sb.String())
		}
	}

	text := b.Text()
	if m := leadingNumeral.FindStringSubmatchIndex(text); m != nil {
		return text[m[2]:m[3]], cleanAffiliation(text[m[1]:])
	}
	return "", cleanAffiliation(text)
}

func cleanAffiliation(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || strings.ContainsRune("-–—.:)]", r)
	})
	return strings.Join(strings.Fields(s), " ")
}

// link resolves author numerals against the affiliation list, settles the
// corresponding author and builds marker notes.
func (l *linker) link(front *model.Front) ([]model.Warning, error) {
	front.Affiliations = l.affiliations
	front.Correspondence = l.corrText

	var warnings []model.Warning
	for _, p := range l.authors {
		name := strings.Trim(strings.Join(strings.Fields(p.name.String()), " "), " ,;")
		a := &model.Author{
			Name:            model.ParsePersonName(name),
			AffiliationRefs: lo.Uniq(p.refs),
			Corresponding:   p.corr,
			Markers:         p.markers,
			Index:           p.index,
		}
		for _, ref := range a.AffiliationRefs {
			if _, ok := l.affIndex[ref]; !ok {
				return nil, &model.UnresolvedAffiliationError{Index: p.index, Author: name, Numeral: ref}
			}
		}
		front.Authors = append(front.Authors, a)
	}

	flagged := lo.Filter(front.Authors, func(a *model.Author, _ int) bool { return a.Corresponding })
	switch {
	case len(flagged) == 1:
	case len(flagged) == 0 && len(front.Authors) == 1:
		front.Authors[0].Corresponding = true
	default:
		names := lo.Map(front.Authors, func(a *model.Author, _ int) string { return a.Name.String() })
		if len(flagged) > 0 {
			names = lo.Map(flagged, func(a *model.Author, _ int) string { return a.Name.String() })
		}
		return nil, &model.CorrespondingAuthorAmbiguityError{Found: len(flagged), Authors: names}
	}

	dropped := make(map[string]bool)
	for _, a := range front.Authors {
		for _, m := range a.Markers {
			if front.NoteFor(m) != nil || dropped[m] {
				continue
			}
			text := l.markerText[m]
			if text == "" && noteTypes[m] == "equal" {
				text = equalContribution
			}
			if text == "" {
				dropped[m] = true
				warnings = append(warnings, model.Warning{
					Kind:    model.WarnDroppedEmpty,
					Index:   a.Index,
					Message: fmt.Sprintf("footnote marker %s has no note text", m),
				})
				continue
			}
			front.Notes = append(front.Notes, &model.AuthorNote{
				ID:     fmt.Sprintf("fn%d", len(front.Notes)+1),
				Type:   noteTypes[m],
				Marker: m,
				Text:   text,
			})
		}
	}
	if len(dropped) > 0 {
		for _, a := range front.Authors {
			a.Markers = lo.Reject(a.Markers, func(m string, _ int) bool { return dropped[m] })
		}
	}

	return warnings, nil
}
