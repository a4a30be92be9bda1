// Package extract collects reference entries and table floats from
// classified manuscript blocks.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tsawler/jatskit/model"
)

var (
	// doiPattern matches a bare DOI anywhere in text.
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s"<>]+`)

	// manualNumber matches leading "1.", "[1]", "(1)" or "1)" numbering.
	manualNumber = regexp.MustCompile(`^\s*(?:\[\d+\]|\(\d+\)|\d+[.)])\s*`)

	// urlOnly matches a block that is nothing but a link.
	urlOnly = regexp.MustCompile(`(?i)^\s*(?:https?://\S+|www\.\S+|doi:\s*\S+)\s*$`)
)

// FindDOI returns the first DOI in s with trailing punctuation removed.
func FindDOI(s string) string {
	doi := doiPattern.FindString(s)
	return strings.TrimRight(doi, ".,;:)]")
}

// References numbers reference entries in order of appearance.
type References struct {
	entries  []*model.ReferenceEntry
	warnings []model.Warning
}

// NewReferences creates an empty collector.
func NewReferences() *References {
	return &References{}
}

// Add records one ReferenceEntry block. Manual numbering is stripped. A
// block holding only a link contributes its DOI to the previous entry.
// Blocks with no text left are dropped with a warning.
func (c *References) Add(b model.Block) {
	text := strings.Join(strings.Fields(b.Text()), " ")

	if urlOnly.MatchString(text) && len(c.entries) > 0 {
		prev := c.entries[len(c.entries)-1]
		if doi := FindDOI(text); doi != "" && prev.DOI == "" {
			prev.DOI = doi
		}
		return
	}

	text = strings.TrimSpace(manualNumber.ReplaceAllString(text, ""))
	if text == "" {
		c.warnings = append(c.warnings, model.Warning{
			Kind:    model.WarnDroppedEmpty,
			Index:   b.Index,
			Message: "empty reference entry dropped",
		})
		return
	}

	c.entries = append(c.entries, &model.ReferenceEntry{
		Number: len(c.entries) + 1,
		Raw:    text,
		DOI:    FindDOI(text),
		Index:  b.Index,
		Parsed: ParseCitation(text),
	})
}

// Entries returns the collected entries.
func (c *References) Entries() []*model.ReferenceEntry {
	return c.entries
}

// Warnings returns the warnings raised while collecting.
func (c *References) Warnings() []model.Warning {
	return c.warnings
}

var (
	yearPattern    = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})[a-z]?\b`)
	volumePattern  = regexp.MustCompile(`(\d+)\s*(?:\(([^)]+)\))?\s*:\s*([A-Za-z]?\d+)(?:\s*[-–]\s*([A-Za-z]?\d+))?`)
	etAlPattern    = regexp.MustCompile(`(?i),?\s*\bet\.?\s+al\.?`)
	thesisPattern  = regexp.MustCompile(`(?i)\b(thesis|dissertation)\b`)
	trailingLinkRe = regexp.MustCompile(`(?i)\s*(?:doi:?\s*|https?://(?:dx\.)?doi\.org/)10\.\S+.*$|\s*https?://\S+\s*$|\s*\[?(?:cited|accessed)[^\]]*\]?\.?\s*$`)
)

// ParseCitation makes a best-effort parse of a Vancouver-style reference:
//
//	Smith J, Doe AB, et al. Title of the work. J Abbrev. 2020;12(3):45-67.
//
// It returns nil when the text does not split into at least authors, a
// title and a year; such references are emitted as mixed citations.
func ParseCitation(raw string) *model.Citation {
	text := strings.TrimSpace(trailingLinkRe.ReplaceAllString(raw, ""))
	segments := splitSentences(text)
	if len(segments) < 2 {
		return nil
	}

	c := &model.Citation{}
	if m := yearPattern.FindStringSubmatch(text); m != nil {
		c.Year = m[1]
	}
	if c.Year == "" {
		return nil
	}

	authors := segments[0]
	if etAlPattern.MatchString(authors) {
		c.EtAl = true
		authors = etAlPattern.ReplaceAllString(authors, "")
	}
	for _, part := range strings.Split(authors, ",") {
		if name := model.ParsePersonName(part); name.Surname != "" {
			c.Authors = append(c.Authors, name)
		}
	}
	if len(c.Authors) == 0 {
		return nil
	}

	c.Title = segments[1]

	rest := strings.Join(segments[2:], ". ")
	if m := volumePattern.FindStringSubmatchIndex(rest); m != nil {
		c.Volume = rest[m[2]:m[3]]
		if m[4] >= 0 {
			c.Issue = strings.TrimSpace(rest[m[4]:m[5]])
		}
		c.FirstPage = rest[m[6]:m[7]]
		if m[8] >= 0 {
			c.LastPage = expandPage(c.FirstPage, rest[m[8]:m[9]])
		}
	}

	if len(segments) > 2 {
		source := segments[2]
		if loc := yearPattern.FindStringIndex(source); loc != nil {
			source = source[:loc[0]]
		}
		c.Source = strings.Trim(source, " .;,")
	}

	switch {
	case thesisPattern.MatchString(text):
		c.PubType = "thesis"
	case c.Volume != "" && c.Source != "":
		c.PubType = "journal"
	default:
		c.PubType = "book"
	}

	return c
}

// splitSentences splits reference text on ". " boundaries and drops empty
// pieces.
func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ". ") {
		s = strings.Trim(s, " .")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// expandPage turns abbreviated page ranges such as 123-9 into 129.
func expandPage(first, last string) string {
	if len(last) >= len(first) || first == "" || last == "" {
		return last
	}
	if first[0] < '0' || first[0] > '9' || last[0] < '0' || last[0] > '9' {
		return last
	}
	return fmt.Sprintf("%s%s", first[:len(first)-len(last)], last)
}
