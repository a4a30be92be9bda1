package docx

import (
	"encoding/xml"
	"testing"

	"github.com/tsawler/jatskit/model"
)

func on(name string) boolXML {
	return boolXML{XMLName: xml.Name{Local: name}}
}

func TestNewStyleResolver_Nil(t *testing.T) {
	sr := NewStyleResolver(nil)
	if sr == nil {
		t.Fatal("NewStyleResolver(nil) returned nil")
	}

	style := sr.Resolve("")
	if style.Bold || style.Italic || style.VertAlign != "" {
		t.Errorf("default style has formatting: %+v", style)
	}
	if sr.DefaultParagraphStyle() != "" {
		t.Error("DefaultParagraphStyle() should be empty without styles")
	}
}

func TestStyleResolver_StyleName(t *testing.T) {
	sr := NewStyleResolver(&stylesXML{Styles: []styleDefXML{
		{StyleID: "AuthorsAff", Type: "paragraph", Name: styleNameXML{Val: "Authors affiliation"}},
		{StyleID: "NoName", Type: "paragraph"},
	}})

	tests := []struct {
		id, want string
	}{
		{"AuthorsAff", "Authors affiliation"},
		{"NoName", "NoName"},
		{"Heading2", "Heading 2"},
		{"heading1", "Heading 1"},
		{"Missing", "Missing"},
	}

	for _, tt := range tests {
		if got := sr.StyleName(tt.id); got != tt.want {
			t.Errorf("StyleName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestStyleResolver_Inheritance(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "Base",
				Type:    "paragraph",
				Default: "1",
				RPr:     runPropsXML{Italic: on("i")},
			},
			{
				StyleID: "Derived",
				Type:    "paragraph",
				BasedOn: basedOnXML{Val: "Base"},
				RPr:     runPropsXML{Bold: on("b")},
			},
			{
				StyleID: "Plain",
				Type:    "paragraph",
				BasedOn: basedOnXML{Val: "Derived"},
				RPr:     runPropsXML{Italic: boolXML{XMLName: xml.Name{Local: "i"}, Val: "0"}},
			},
		},
	}

	sr := NewStyleResolver(styles)

	derived := sr.Resolve("Derived")
	if !derived.Bold || !derived.Italic {
		t.Errorf("Derived = %+v, want bold and italic", derived)
	}

	plain := sr.Resolve("Plain")
	if !plain.Bold || plain.Italic {
		t.Errorf("Plain = %+v, want bold only", plain)
	}

	if got := sr.DefaultParagraphStyle(); got != "Base" {
		t.Errorf("DefaultParagraphStyle() = %q, want Base", got)
	}
}

func TestStyleResolver_InheritanceCycle(t *testing.T) {
	sr := NewStyleResolver(&stylesXML{Styles: []styleDefXML{
		{StyleID: "A", BasedOn: basedOnXML{Val: "B"}},
		{StyleID: "B", BasedOn: basedOnXML{Val: "A"}, RPr: runPropsXML{Bold: on("b")}},
	}})

	if chain := sr.buildInheritanceChain("A"); len(chain) != 2 {
		t.Errorf("chain = %v, want two entries", chain)
	}
	if !sr.Resolve("A").Bold {
		t.Error("bold from cyclic parent not applied")
	}
}

func TestStyleResolver_ResolveRun(t *testing.T) {
	sr := NewStyleResolver(&stylesXML{
		DocDefaults: docDefaultsXML{RPrDefault: rPrDefaultXML{RPr: runPropsXML{}}},
		Styles: []styleDefXML{
			{StyleID: "Strong", Type: "paragraph", RPr: runPropsXML{Bold: on("b")}},
			{StyleID: "Ref", Type: "character", RPr: runPropsXML{VertAlign: vertAlignXML{Val: "superscript"}}},
		},
	})

	tests := []struct {
		name  string
		style string
		props runPropsXML
		want  model.Run
	}{
		{"inherits paragraph bold", "Strong", runPropsXML{}, model.Run{Bold: true}},
		{"direct override", "Strong", runPropsXML{Bold: boolXML{XMLName: xml.Name{Local: "b"}, Val: "false"}}, model.Run{}},
		{"direct superscript", "", runPropsXML{VertAlign: vertAlignXML{Val: "superscript"}}, model.Run{Superscript: true}},
		{"subscript", "", runPropsXML{VertAlign: vertAlignXML{Val: "subscript"}}, model.Run{Subscript: true}},
		{"character style", "", runPropsXML{Style: styleRefXML{Val: "Ref"}}, model.Run{Superscript: true}},
		{"baseline cancels character style", "", runPropsXML{Style: styleRefXML{Val: "Ref"}, VertAlign: vertAlignXML{Val: "baseline"}}, model.Run{}},
		{"italic", "", runPropsXML{Italic: on("i")}, model.Run{Italic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sr.ResolveRun(tt.style, tt.props); got != tt.want {
				t.Errorf("ResolveRun() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTwips(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"240", 12},
		{"1440", 72},
		{"0", 0},
		{"invalid", 0},
	}

	for _, tt := range tests {
		if got := parseTwips(tt.input); got != tt.want {
			t.Errorf("parseTwips(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDetectBuiltInHeading(t *testing.T) {
	tests := []struct {
		styleID   string
		wantOK    bool
		wantLevel int
	}{
		{"Heading1", true, 1},
		{"heading9", true, 9},
		{"Heading10", false, 0},
		{"Title", false, 0},
		{"Normal", false, 0},
	}

	for _, tt := range tests {
		ok, level := detectBuiltInHeading(tt.styleID)
		if ok != tt.wantOK || level != tt.wantLevel {
			t.Errorf("detectBuiltInHeading(%q) = %v, %d; want %v, %d", tt.styleID, ok, level, tt.wantOK, tt.wantLevel)
		}
	}
}
