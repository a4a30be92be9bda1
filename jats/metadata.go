package jats

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/tsawler/jatskit/model"
)

// Metadata is the bibliographic data supplied by the caller. The converter
// never reads these values from the manuscript.
type Metadata struct {
	Journal        string   `yaml:"journal"`
	JournalAbbrev  string   `yaml:"journal_abbrev"`
	JournalID      string   `yaml:"journal_id"`
	JournalURL     string   `yaml:"journal_url"`
	Publisher      string   `yaml:"publisher"`
	ISSNPrint      string   `yaml:"issn_print"`
	ISSNElectronic string   `yaml:"issn_electronic"`
	DOI            string   `yaml:"doi"`
	Volume         string   `yaml:"volume"`
	Issue          string   `yaml:"issue"`
	Year           string   `yaml:"year"`
	Month          string   `yaml:"month"`
	Day            string   `yaml:"day"`
	FirstPage      string   `yaml:"fpage"`
	LastPage       string   `yaml:"lpage"`
	ArticleType    string   `yaml:"article_type"`
	License        string   `yaml:"license"`
	PubFormats     []string `yaml:"pub_formats"` // publication-format of each pub-date
	Crossref       bool     `yaml:"crossref"`
}

// Defaults applied by WithDefaults.
const (
	DefaultArticleType = "research-article"
	DefaultLicense     = "cc-by-nc-4.0"
)

// DefaultPubFormats lists the pub-date formats emitted when none are set.
var DefaultPubFormats = []string{"electronic", "print"}

// WithDefaults returns a copy of m with empty optional fields filled in.
func (m Metadata) WithDefaults() Metadata {
	if m.ArticleType == "" {
		m.ArticleType = DefaultArticleType
	}
	if m.License == "" {
		m.License = DefaultLicense
	}
	if len(m.PubFormats) == 0 {
		m.PubFormats = DefaultPubFormats
	}
	m.PubFormats = lo.Uniq(m.PubFormats)
	return m
}

// License describes one supported open-access license.
type License struct {
	Code   string
	URL    string
	Name   string
	Permit string
}

// licenses is the fixed license table.
var licenses = map[string]License{
	"cc-by-nc-4.0": {
		Code:   "cc-by-nc-4.0",
		URL:    "https://creativecommons.org/licenses/by-nc/4.0/",
		Name:   "Creative Commons Attribution-NonCommercial 4.0 International License",
		Permit: "which permits unrestricted non-commercial use, distribution, and reproduction in any medium, provided the original work is properly cited.",
	},
	"cc-by-4.0": {
		Code:   "cc-by-4.0",
		URL:    "https://creativecommons.org/licenses/by/4.0/",
		Name:   "Creative Commons Attribution 4.0 International License",
		Permit: "which permits unrestricted use, distribution, and reproduction in any medium, provided the original work is properly cited.",
	},
	"cc-by-nc-nd-4.0": {
		Code:   "cc-by-nc-nd-4.0",
		URL:    "https://creativecommons.org/licenses/by-nc-nd/4.0/",
		Name:   "Creative Commons Attribution-NonCommercial-NoDerivatives 4.0 International License",
		Permit: "which permits non-commercial use and distribution in any medium, provided the original work is properly cited and is not modified.",
	},
}

// LookupLicense returns the license for a code.
func LookupLicense(code string) (License, error) {
	l, ok := licenses[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return License{}, &model.InvalidLicenseCodeError{Code: code}
	}
	return l, nil
}

// LicenseCodes returns the supported license codes in sorted order.
func LicenseCodes() []string {
	return []string{"cc-by-4.0", "cc-by-nc-4.0", "cc-by-nc-nd-4.0"}
}

// typeLabels maps article types to the subject heading shown in
// article-categories.
var typeLabels = map[string]string{
	"research-article":  "Original Research Article",
	"review-article":    "Review Article",
	"case-report":       "Case Report",
	"letter":            "Letter",
	"editorial":         "Editorial",
	"brief-report":      "Brief Report",
	"systematic-review": "Systematic Review",
}

// SubjectLabel returns the heading for an article type, or the type itself
// when it has no label.
func SubjectLabel(articleType string) string {
	if l, ok := typeLabels[articleType]; ok {
		return l
	}
	return articleType
}

var doiFormat = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// ValidateMetadata checks caller metadata before any conversion work. It
// expects defaults to have been applied.
func ValidateMetadata(m Metadata) error {
	if _, err := LookupLicense(m.License); err != nil {
		return err
	}
	if m.DOI != "" && !doiFormat.MatchString(m.DOI) {
		return &model.InvalidDOIFormatError{DOI: m.DOI}
	}

	required := []struct {
		field, value string
	}{
		{"journal", m.Journal},
		{"publisher", m.Publisher},
		{"doi", m.DOI},
		{"volume", m.Volume},
		{"issue", m.Issue},
		{"year", m.Year},
		{"article_type", m.ArticleType},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &model.InvalidMetadataError{Field: r.field, Reason: "is required"}
		}
	}
	if strings.TrimSpace(m.ISSNPrint) == "" && strings.TrimSpace(m.ISSNElectronic) == "" {
		return &model.InvalidMetadataError{Field: "issn", Reason: "a print or electronic ISSN is required"}
	}

	if err := checkNumber("year", m.Year, 1000, 9999); err != nil {
		return err
	}
	if err := checkNumber("month", m.Month, 1, 12); err != nil {
		return err
	}
	if err := checkNumber("day", m.Day, 1, 31); err != nil {
		return err
	}

	for _, f := range m.PubFormats {
		if f != "print" && f != "electronic" {
			return &model.InvalidMetadataError{Field: "pub_formats", Reason: strconv.Quote(f) + " is not print or electronic"}
		}
	}
	return nil
}

// checkNumber validates an optional numeric date part.
func checkNumber(field, value string, low, high int) error {
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return &model.InvalidMetadataError{Field: field, Reason: strconv.Quote(value) + " is not a number"}
	}
	if n < low || n > high {
		return &model.InvalidMetadataError{Field: field, Reason: strconv.Quote(value) + " is out of range"}
	}
	return nil
}
