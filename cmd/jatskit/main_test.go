package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/tsawler/jatskit"
	"github.com/tsawler/jatskit/config"
	"github.com/tsawler/jatskit/internal/docxtest"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Metadata = jatskit.Metadata{
		Journal:    "Config Journal",
		Publisher:  "Config Press",
		Volume:     "1",
		License:    "cc-by-4.0",
		PubFormats: []string{"electronic"},
	}
	cfg.Indent = 4
	cfg.Crossref.Mailto = "config@example.org"
	return cfg
}

func TestConvertFlagsResolve(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		journal   string
		publisher string
		volume    string
		formats   string
		indent    int
		mailto    string
		crossref  bool
	}{
		{"config fills unset flags", nil, "Config Journal", "Config Press", "1", "electronic", 4, "config@example.org", false},
		{"metadata flags win", []string{"--journal", "Flag Journal", "--volume", "9"}, "Flag Journal", "Config Press", "9", "electronic", 4, "config@example.org", false},
		{"explicit zero indent wins", []string{"--indent", "0"}, "Config Journal", "Config Press", "1", "electronic", 0, "config@example.org", false},
		{"mailto flag wins", []string{"--mailto", "me@example.org"}, "Config Journal", "Config Press", "1", "electronic", 4, "me@example.org", false},
		{"publication formats flag replaces config list", []string{"--pub-format", "print,electronic"}, "Config Journal", "Config Press", "1", "print,electronic", 4, "config@example.org", false},
		{"crossref flag", []string{"--crossref"}, "Config Journal", "Config Press", "1", "electronic", 4, "config@example.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "convert"}
			var flags convertFlags
			flags.bind(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}

			cfg := testConfig()
			meta := flags.resolve(cmd, cfg)

			if meta.Journal != tt.journal || meta.Publisher != tt.publisher || meta.Volume != tt.volume {
				t.Errorf("metadata = %q %q %q, want %q %q %q",
					meta.Journal, meta.Publisher, meta.Volume, tt.journal, tt.publisher, tt.volume)
			}
			if got := strings.Join(meta.PubFormats, ","); got != tt.formats {
				t.Errorf("PubFormats = %s, want %s", got, tt.formats)
			}
			if cfg.Indent != tt.indent {
				t.Errorf("Indent = %d, want %d", cfg.Indent, tt.indent)
			}
			if cfg.Crossref.Mailto != tt.mailto {
				t.Errorf("Mailto = %q, want %q", cfg.Crossref.Mailto, tt.mailto)
			}
			if meta.Crossref != tt.crossref {
				t.Errorf("Crossref = %v, want %v", meta.Crossref, tt.crossref)
			}
		})
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	manuscript := filepath.Join(dir, "paper.docx")
	raw := docxtest.New().
		Text("Title", "Outcomes of Surgery").
		P("Author Name", docxtest.R("Jane Doe"), docxtest.Sup("1")).
		Text("Authors affiliation", "1 Department of Surgery, City Hospital, Springfield, USA").
		Text("Abstract Heading", "Background").
		Text("Abstract", "Surgery helps.").
		Bytes()
	if err := os.WriteFile(manuscript, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "journal.yaml")
	err := os.WriteFile(cfgPath, []byte(`
metadata:
  journal: Config Journal
  publisher: Config Press
  issn_electronic: 8765-4321
  doi: 10.1234/cfg.2024.1
  volume: "1"
  issue: "2"
  year: "2024"
indent: 4
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		journal  string
		volume   string
		indented bool
	}{
		{"config only", nil, "Config Journal", "1", true},
		{"flags override config", []string{"--journal", "Flag Journal", "--volume", "9", "--indent", "0"}, "Flag Journal", "9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "paper.xml")
			root := newRootCmd()
			root.SetArgs(append([]string{"convert", manuscript, "--config", cfgPath, "-o", output}, tt.args...))
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			out, err := os.ReadFile(output)
			if err != nil {
				t.Fatal(err)
			}
			doc := etree.NewDocument()
			if err := doc.ReadFromBytes(out); err != nil {
				t.Fatalf("output is not well-formed XML: %v", err)
			}

			if got := doc.FindElement("//journal-title").Text(); got != tt.journal {
				t.Errorf("journal-title = %q, want %q", got, tt.journal)
			}
			if got := doc.FindElement("//article-meta/volume").Text(); got != tt.volume {
				t.Errorf("volume = %q, want %q", got, tt.volume)
			}
			if got := doc.FindElement("//publisher-name").Text(); got != "Config Press" {
				t.Errorf("publisher-name = %q", got)
			}
			if got := bytes.Contains(out, []byte("\n    <front>")); got != tt.indented {
				t.Errorf("four-space indentation = %v, want %v", got, tt.indented)
			}
		})
	}
}
