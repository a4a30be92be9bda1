package build

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/tsawler/jatskit/model"
)

var (
	abstractLabel = regexp.MustCompile(`(?i)^\s*(background|introduction|objectives?|aims?|purpose|methods?|results?|discussion|conclusions?|summary)\s*[:.]\s*`)
	boilerplate   = regexp.MustCompile(`(?i)^\s*(?:open access\b|for reprints\b)|\breprints?\b`)

	keywordsPrefix = regexp.MustCompile(`(?i)^\s*key\s*words?\s*[:.\-–]?\s*`)
	receivedDate   = regexp.MustCompile(`(?i)\breceived\s*(?:on)?\s*[:\-–]?\s*([0-9./\-]+)`)
	acceptedDate   = regexp.MustCompile(`(?i)\baccepted\s*(?:on)?\s*[:\-–]?\s*([0-9./\-]+)`)
	isoDate        = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
	dmyDate        = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
)

// abstractBuilder assembles the structured abstract.
type abstractBuilder struct {
	sections []*model.AbstractSection
	indices  []int // block index that opened each section
	cur      *model.AbstractSection
}

// heading opens a titled section. A bare "Abstract" heading only marks the
// start of the abstract.
func (a *abstractBuilder) heading(b model.Block) {
	title := strings.TrimRight(strings.TrimSpace(b.Text()), ":.")
	if strings.EqualFold(title, "abstract") {
		a.cur = nil
		return
	}
	a.open(title, b.Index)
}

// body appends a paragraph. A leading label such as "Methods:" opens a
// section of that name; unlabelled text with no open section opens an
// untitled one. It reports false for boilerplate lines that were skipped.
func (a *abstractBuilder) body(b model.Block) bool {
	text := strings.Join(strings.Fields(b.Text()), " ")
	if boilerplate.MatchString(text) {
		return false
	}
	if m := abstractLabel.FindStringSubmatchIndex(text); m != nil {
		a.open(text[m[2]:m[3]], b.Index)
		text = text[m[1]:]
	} else if a.cur == nil {
		a.open("", b.Index)
	}
	if text != "" {
		a.cur.Paragraphs = append(a.cur.Paragraphs, text)
	}
	return true
}

func (a *abstractBuilder) open(title string, index int) {
	a.cur = &model.AbstractSection{Title: title}
	a.sections = append(a.sections, a.cur)
	a.indices = append(a.indices, index)
}

// finish drops sections without text and returns the rest.
func (a *abstractBuilder) finish() ([]*model.AbstractSection, []model.Warning) {
	var kept []*model.AbstractSection
	var warnings []model.Warning
	for i, s := range a.sections {
		if s.HasContent() {
			kept = append(kept, s)
			continue
		}
		warnings = append(warnings, droppedEmpty(a.indices[i], "abstract section "+strconv.Quote(s.Title)))
	}
	return kept, warnings
}

// addKeywords reads a Keywords block: either history dates or a keyword
// list. Malformed dates are reported as dropped.
func addKeywords(front *model.Front, b model.Block) []model.Warning {
	text := strings.TrimSpace(b.Text())
	received := receivedDate.FindStringSubmatch(text)
	accepted := acceptedDate.FindStringSubmatch(text)

	if received == nil && accepted == nil {
		front.Keywords = mergeKeywords(front.Keywords, splitKeywords(text))
		return nil
	}

	var warnings []model.Warning
	for _, m := range []struct {
		match []string
		dst   *model.Date
		label string
	}{
		{received, &front.History.Received, "received"},
		{accepted, &front.History.Accepted, "accepted"},
	} {
		if m.match == nil {
			continue
		}
		d, ok := ParseDate(m.match[1])
		if !ok {
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnDroppedBlock,
				Index:   b.Index,
				Message: m.label + " date " + strconv.Quote(m.match[1]) + " is not a valid date",
			})
			continue
		}
		*m.dst = d
	}
	return warnings
}

// splitKeywords splits a keyword line on commas and semicolons.
func splitKeywords(text string) []string {
	text = keywordsPrefix.ReplaceAllString(text, "")
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' })
	out := lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.TrimRight(strings.Join(strings.Fields(p), " "), ".")
		return p, p != ""
	})
	return out
}

// mergeKeywords appends keywords not already present, ignoring case.
func mergeKeywords(have, add []string) []string {
	return lo.UniqBy(append(have, add...), strings.ToLower)
}

// ParseDate reads YYYY-MM-DD or DD-MM-YYYY with -, / or . separators.
func ParseDate(s string) (model.Date, bool) {
	s = strings.TrimRight(s, ".")
	var y, m, d string
	if p := isoDate.FindStringSubmatch(s); p != nil {
		y, m, d = p[1], p[2], p[3]
	} else if p := dmyDate.FindStringSubmatch(s); p != nil {
		d, m, y = p[1], p[2], p[3]
	} else {
		return model.Date{}, false
	}

	mi, _ := strconv.Atoi(m)
	di, _ := strconv.Atoi(d)
	if mi < 1 || mi > 12 || di < 1 || di > 31 {
		return model.Date{}, false
	}
	return model.Date{Year: y, Month: m, Day: d}, true
}
