package build

import (
	"strings"

	"github.com/blevesearch/segment"
	"github.com/surgebase/porter2"
)

// secTypes maps title phrases to JATS sec-type values. Entries are checked
// in order; longer phrases come first so "materials and methods" wins over
// "methods".
var secTypes = []struct {
	phrase  string
	secType string
}{
	{"materials and methods", "methods"},
	{"material and methods", "methods"},
	{"methodology", "methods"},
	{"methods", "methods"},
	{"introduction", "intro"},
	{"results", "results"},
	{"discussion", "discussion"},
	{"conclusions", "conclusions"},
	{"conclusion", "conclusions"},
	{"acknowledgements", "acknowledgments"},
	{"acknowledgments", "acknowledgments"},
	{"acknowledgement", "acknowledgments"},
	{"acknowledgment", "acknowledgments"},
	{"supplementary", "supplementary-material"},
	{"abbreviations", "abbreviations"},
	{"case report", "cases"},
	{"case presentation", "cases"},
}

// stemTypes maps porter2 stems of single title words to sec-type values.
var stemTypes = map[string]string{
	porter2.Stem("introduction"):   "intro",
	porter2.Stem("method"):         "methods",
	porter2.Stem("methodology"):    "methods",
	porter2.Stem("result"):         "results",
	porter2.Stem("discussion"):     "discussion",
	porter2.Stem("conclusion"):     "conclusions",
	porter2.Stem("acknowledgment"): "acknowledgments",
	porter2.Stem("supplementary"):  "supplementary-material",
	porter2.Stem("abbreviation"):   "abbreviations",
}

// SecType returns the controlled sec-type for a section title, or "" when
// the title does not name a standard section.
func SecType(title string) string {
	lc := strings.ToLower(strings.Join(strings.Fields(title), " "))
	if lc == "" {
		return ""
	}
	for _, st := range secTypes {
		if strings.Contains(lc, st.phrase) {
			return st.secType
		}
	}

	seg := segment.NewWordSegmenter(strings.NewReader(lc))
	for seg.Segment() {
		if seg.Type() != segment.Letter {
			continue
		}
		if t, ok := stemTypes[porter2.Stem(string(seg.Bytes()))]; ok {
			return t
		}
	}
	return ""
}
