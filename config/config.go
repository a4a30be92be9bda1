// Package config loads jatskit settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/jatskit/classify"
	"github.com/tsawler/jatskit/jats"
)

// Config holds the full jatskit configuration.
type Config struct {
	Metadata jats.Metadata     `yaml:"metadata"`
	Styles   map[string]string `yaml:"styles"` // style name -> block kind
	Crossref CrossrefConfig    `yaml:"crossref"`
	Indent   int               `yaml:"indent"`
}

// CrossrefConfig configures reference enrichment.
type CrossrefConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Mailto   string        `yaml:"mailto"`
	CacheDir string        `yaml:"cache_dir"`
	Timeout  time.Duration `yaml:"timeout"`
	MinScore float64       `yaml:"min_score"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Indent: 2,
		Crossref: CrossrefConfig{
			Timeout:  10 * time.Second,
			MinScore: 40,
		},
	}
}

// Load reads and parses a YAML config file on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that do not depend on the manuscript.
func (c *Config) Validate() error {
	if _, err := classify.NewTable(c.Styles); err != nil {
		return fmt.Errorf("styles: %w", err)
	}
	if c.Metadata.License != "" {
		if _, err := jats.LookupLicense(c.Metadata.License); err != nil {
			return err
		}
	}
	if c.Crossref.Timeout < 0 {
		return fmt.Errorf("crossref.timeout must not be negative")
	}
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative")
	}
	return nil
}

// Classifier returns the style table with the configured aliases.
func (c *Config) Classifier() (*classify.Table, error) {
	if len(c.Styles) == 0 {
		return classify.Default, nil
	}
	return classify.NewTable(c.Styles)
}

// Apply fills every empty field of meta from the configured metadata.
// Fields already set on meta win.
func (c *Config) Apply(meta jats.Metadata) jats.Metadata {
	d := c.Metadata
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&meta.Journal, d.Journal},
		{&meta.JournalAbbrev, d.JournalAbbrev},
		{&meta.JournalID, d.JournalID},
		{&meta.JournalURL, d.JournalURL},
		{&meta.Publisher, d.Publisher},
		{&meta.ISSNPrint, d.ISSNPrint},
		{&meta.ISSNElectronic, d.ISSNElectronic},
		{&meta.DOI, d.DOI},
		{&meta.Volume, d.Volume},
		{&meta.Issue, d.Issue},
		{&meta.Year, d.Year},
		{&meta.Month, d.Month},
		{&meta.Day, d.Day},
		{&meta.FirstPage, d.FirstPage},
		{&meta.LastPage, d.LastPage},
		{&meta.ArticleType, d.ArticleType},
		{&meta.License, d.License},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}
	if len(meta.PubFormats) == 0 {
		meta.PubFormats = append([]string(nil), d.PubFormats...)
	}
	meta.Crossref = meta.Crossref || d.Crossref || c.Crossref.Enabled
	return meta
}
