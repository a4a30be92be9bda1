package extract

import (
	"testing"

	"github.com/tsawler/jatskit/model"
)

func block(index int, text string) model.Block {
	return model.Block{Index: index, Style: "Reference", Runs: []model.Run{{Text: text}}}
}

func TestReferencesNumbering(t *testing.T) {
	c := NewReferences()
	c.Add(block(10, "1. Smith J. First paper. J Test. 2020;1(2):3-4."))
	c.Add(block(11, "[2] Doe A. Second paper. J Test. 2021;5:10-12."))
	c.Add(block(12, "(3) Roe B. Third. Publisher; 2019."))
	c.Add(block(13, "4)   Poe E. Fourth. Other; 2018."))

	entries := c.Entries()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	wantRaw := []string{
		"Smith J. First paper. J Test. 2020;1(2):3-4.",
		"Doe A. Second paper. J Test. 2021;5:10-12.",
		"Roe B. Third. Publisher; 2019.",
		"Poe E. Fourth. Other; 2018.",
	}
	for i, e := range entries {
		if e.Number != i+1 {
			t.Errorf("entry %d Number = %d", i, e.Number)
		}
		if e.Raw != wantRaw[i] {
			t.Errorf("entry %d Raw = %q, want %q", i, e.Raw, wantRaw[i])
		}
		if e.Index != 10+i {
			t.Errorf("entry %d Index = %d", i, e.Index)
		}
		if e.ID() != "B"+string(rune('1'+i)) {
			t.Errorf("entry %d ID = %q", i, e.ID())
		}
	}
}

func TestReferencesURLOnlyAttachesDOI(t *testing.T) {
	c := NewReferences()
	c.Add(block(0, "Smith J. A paper. J Test. 2020;1:1-2."))
	c.Add(block(1, "https://doi.org/10.1000/xyz123."))
	c.Add(block(2, "Doe A. Another. J Test. 2021;2:3-4."))

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (URL line is not numbered)", len(entries))
	}
	if entries[0].DOI != "10.1000/xyz123" {
		t.Errorf("DOI = %q, want 10.1000/xyz123", entries[0].DOI)
	}
	if entries[1].Number != 2 {
		t.Errorf("second entry Number = %d, want 2", entries[1].Number)
	}
}

func TestReferencesURLOnlyFirstBlock(t *testing.T) {
	c := NewReferences()
	c.Add(block(0, "https://example.org/report"))

	if len(c.Entries()) != 1 {
		t.Fatalf("a leading URL line should become an entry")
	}
}

func TestReferencesEmptyDropped(t *testing.T) {
	c := NewReferences()
	c.Add(block(3, "7."))
	c.Add(block(4, "Real. Entry. 2020."))

	if len(c.Entries()) != 1 || c.Entries()[0].Number != 1 {
		t.Errorf("entries = %+v", c.Entries())
	}
	w := c.Warnings()
	if len(w) != 1 || w[0].Kind != model.WarnDroppedEmpty || w[0].Index != 3 {
		t.Errorf("warnings = %+v", w)
	}
}

func TestFindDOI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"doi:10.1234/abc.def.", "10.1234/abc.def"},
		{"see https://doi.org/10.5555/x-y_z), end", "10.5555/x-y_z"},
		{"no doi here", ""},
		{"10.12/too-short-prefix", ""},
	}

	for _, tt := range tests {
		if got := FindDOI(tt.in); got != tt.want {
			t.Errorf("FindDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCitationJournal(t *testing.T) {
	raw := "Smith JA, van der Berg P, Lee K, et al. Outcomes of early surgery. J Clin Res. 2019;12(3):145-52. doi:10.1234/jcr.2019.145"

	c := ParseCitation(raw)
	if c == nil {
		t.Fatal("ParseCitation() = nil")
	}

	if len(c.Authors) != 3 || !c.EtAl {
		t.Errorf("authors = %+v, etal = %v", c.Authors, c.EtAl)
	}
	if c.Authors[1] != (model.PersonName{Surname: "van der Berg", GivenNames: "P"}) {
		t.Errorf("author 2 = %+v", c.Authors[1])
	}

	checks := []struct {
		field, got, want string
	}{
		{"Title", c.Title, "Outcomes of early surgery"},
		{"Source", c.Source, "J Clin Res"},
		{"Year", c.Year, "2019"},
		{"Volume", c.Volume, "12"},
		{"Issue", c.Issue, "3"},
		{"FirstPage", c.FirstPage, "145"},
		{"LastPage", c.LastPage, "152"},
		{"PubType", c.PubType, "journal"},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %q, want %q", ch.field, ch.got, ch.want)
		}
	}
}

func TestParseCitationThesis(t *testing.T) {
	c := ParseCitation("Khan M. Heart failure in rural clinics [PhD thesis]. University of Lagos; 2017.")
	if c == nil {
		t.Fatal("ParseCitation() = nil")
	}
	if c.PubType != "thesis" || c.Year != "2017" {
		t.Errorf("citation = %+v", c)
	}
}

func TestParseCitationUnparseable(t *testing.T) {
	tests := []string{
		"Just some words without structure",
		"Smith J. No year anywhere. Somewhere.",
		"",
	}

	for _, raw := range tests {
		if c := ParseCitation(raw); c != nil {
			t.Errorf("ParseCitation(%q) = %+v, want nil", raw, c)
		}
	}
}

func TestExpandPage(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"145", "52", "152"},
		{"145", "152", "152"},
		{"9", "12", "12"},
		{"e12", "4", "4"},
	}

	for _, tt := range tests {
		if got := expandPage(tt.first, tt.last); got != tt.want {
			t.Errorf("expandPage(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
