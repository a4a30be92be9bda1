// Package jatskit converts journal manuscripts written in DOCX or HTML into
// JATS 1.2 journal-publishing XML.
//
// Basic usage:
//
//	xml, warnings, err := jatskit.Convert(raw, meta)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", jatskit.FormatWarnings(warnings))
//	}
//
// With options:
//
//	xml, _, err := jatskit.Open("manuscript.docx").
//	    Metadata(meta).
//	    Logger(logger).
//	    Enricher(crossref.NewClient("ops@example.org", 0)).
//	    XML()
//
// Metadata is validated before the manuscript is read. Every fatal error is
// a typed value from the model package naming the offending block.
package jatskit

import (
	"github.com/tsawler/jatskit/jats"
	"github.com/tsawler/jatskit/model"
)

// Warning is a non-fatal event collected during conversion.
type Warning = model.Warning

// Metadata is the caller-supplied bibliographic data.
type Metadata = jats.Metadata

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	return model.FormatWarnings(warnings)
}

// Convert turns a DOCX or HTML manuscript into JATS XML. Defaults are
// applied to meta before validation.
func Convert(raw []byte, meta Metadata) ([]byte, []Warning, error) {
	return FromBytes(raw).Metadata(meta).XML()
}

// Open returns a Converter reading the manuscript at filename. The file is
// read by the terminal operation.
//
// Example:
//
//	xml, warnings, err := jatskit.Open("manuscript.docx").Metadata(meta).XML()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns a Converter for a manuscript held in memory.
func FromBytes(raw []byte) *Converter {
	return &Converter{
		data:    raw,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is like Must for terminals that also return warnings, which
// it discards.
//
// Example:
//
//	xml := jatskit.MustResult(jatskit.Open("manuscript.docx").Metadata(meta).XML())
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
