package classify

import (
	"sync"
	"testing"

	"github.com/tsawler/jatskit/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		style  string
		want   model.BlockKind
		wantOK bool
	}{
		{"Title", model.KindTitle, true},
		{"Author Name", model.KindAuthorName, true},
		{"AuthorName", model.KindAuthorName, true},
		{"Authors affiliation", model.KindAffiliationLine, true},
		{"Last Authors affiliation", model.KindLastAffiliationLine, true},
		{"Abstract Heading", model.KindAbstractHeading, true},
		{"Abstract", model.KindAbstractBody, true},
		{"Keywords", model.KindKeywords, true},
		{"Heading 1", model.KindHeading1, true},
		{"heading1", model.KindHeading1, true},
		{"HEADING_2", model.KindHeading2, true},
		{"2nd Para", model.KindBodyParagraph, true},
		{"Normal", model.KindBodyParagraph, true},
		{"Table caption", model.KindTableCaption, true},
		{"Reference", model.KindReferenceEntry, true},
		{"Footnote Text", model.KindUnclassified, false},
		{"", model.KindUnclassified, false},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			got, ok := Classify(tt.style)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Classify(%q) = %v, %v; want %v, %v", tt.style, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	first, _ := Classify("Heading 2")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got, _ := Classify("Heading 2"); got != first {
					t.Errorf("Classify changed result: %v != %v", got, first)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Heading 1", "heading1"},
		{"Last Authors affiliation", "lastauthorsaffiliation"},
		{"Normal (Web)", "normalweb"},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewTableAliases(t *testing.T) {
	tbl, err := NewTable(map[string]string{
		"Article Heading": "Heading1",
		"Ref List":        "ReferenceEntry",
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	if got, ok := tbl.Classify("article heading"); !ok || got != model.KindHeading1 {
		t.Errorf("Classify(alias) = %v, %v; want Heading1", got, ok)
	}
	if got, _ := tbl.Classify("Ref List"); got != model.KindReferenceEntry {
		t.Errorf("Classify(Ref List) = %v, want ReferenceEntry", got)
	}
	if _, ok := Default.Classify("Ref List"); ok {
		t.Error("alias leaked into Default table")
	}
	if tbl.Len() != Default.Len()+2 {
		t.Errorf("Len() = %d, want %d", tbl.Len(), Default.Len()+2)
	}
}

func TestNewTableRejectsUnknownKind(t *testing.T) {
	tests := []map[string]string{
		{"Foo": "Heading9"},
		{"Foo": "Unclassified"},
		{"--": "Title"},
	}

	for _, extra := range tests {
		if _, err := NewTable(extra); err == nil {
			t.Errorf("NewTable(%v) expected error", extra)
		}
	}
}

func TestClassifyAll(t *testing.T) {
	blocks := []model.Block{
		{Index: 0, Style: "Title", Runs: []model.Run{{Text: "Foo"}}},
		{Index: 1, Style: "Mystery", Runs: []model.Run{{Text: "text"}}},
		{Index: 2, Style: "Mystery", Runs: []model.Run{{Text: " "}}},
		{Index: 3, Table: &model.Table{}},
	}

	got, warnings := Default.ClassifyAll(blocks)
	if len(got) != 4 {
		t.Fatalf("ClassifyAll() returned %d blocks, want 4", len(got))
	}
	if got[0].Kind != model.KindTitle || got[1].Kind != model.KindUnclassified {
		t.Errorf("kinds = %v, %v", got[0].Kind, got[1].Kind)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1 (blank and table blocks are silent)", len(warnings))
	}
	if warnings[0].Index != 1 || warnings[0].Kind != model.WarnUnclassifiedStyle {
		t.Errorf("warning = %+v", warnings[0])
	}
}
