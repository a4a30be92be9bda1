package model

import (
	"fmt"
	"strings"
)

// StructuralOrderError reports a block that cannot follow the current parse
// state.
type StructuralOrderError struct {
	Index   int
	Kind    BlockKind
	State   string
	Snippet string
}

func (e *StructuralOrderError) Error() string {
	return fmt.Sprintf("block %d: %s cannot appear in state %s (%q)", e.Index, e.Kind, e.State, e.Snippet)
}

// MissingTitleError reports a manuscript without a title block.
type MissingTitleError struct{}

func (e *MissingTitleError) Error() string {
	return "manuscript has no Title block"
}

// MissingAbstractError reports a manuscript without a non-empty abstract
// section.
type MissingAbstractError struct {
	Index int // block index where the abstract was expected, -1 at end of input
}

func (e *MissingAbstractError) Error() string {
	if e.Index < 0 {
		return "manuscript has no abstract heading/body pair"
	}
	return fmt.Sprintf("block %d: abstract heading/body pair expected before this block", e.Index)
}

// HeadingWithoutParentError reports a second-level heading that has no open
// first-level section.
type HeadingWithoutParentError struct {
	Index   int
	Snippet string
}

func (e *HeadingWithoutParentError) Error() string {
	return fmt.Sprintf("block %d: Heading2 %q has no preceding Heading1", e.Index, e.Snippet)
}

// UnresolvedAffiliationError reports an author affiliation numeral with no
// matching affiliation.
type UnresolvedAffiliationError struct {
	Index   int
	Author  string
	Numeral string
}

func (e *UnresolvedAffiliationError) Error() string {
	return fmt.Sprintf("block %d: author %q references affiliation %q which does not exist", e.Index, e.Author, e.Numeral)
}

// DuplicateAffiliationError reports two affiliation lines with the same
// numeral.
type DuplicateAffiliationError struct {
	Index   int
	Numeral string
}

func (e *DuplicateAffiliationError) Error() string {
	return fmt.Sprintf("block %d: affiliation %q is defined twice", e.Index, e.Numeral)
}

// CorrespondingAuthorAmbiguityError reports zero or several corresponding
// authors.
type CorrespondingAuthorAmbiguityError struct {
	Found   int
	Authors []string
}

func (e *CorrespondingAuthorAmbiguityError) Error() string {
	if e.Found == 0 {
		return fmt.Sprintf("no corresponding author marked among %d authors", len(e.Authors))
	}
	return fmt.Sprintf("%d corresponding authors marked (%s), exactly one is required", e.Found, strings.Join(e.Authors, ", "))
}

// InvalidLicenseCodeError reports an unknown license code.
type InvalidLicenseCodeError struct {
	Code string
}

func (e *InvalidLicenseCodeError) Error() string {
	return fmt.Sprintf("invalid license code %q", e.Code)
}

// InvalidDOIFormatError reports a malformed DOI.
type InvalidDOIFormatError struct {
	DOI string
}

func (e *InvalidDOIFormatError) Error() string {
	return fmt.Sprintf("invalid DOI %q: expected 10.<registrant>/<suffix>", e.DOI)
}

// InvalidMetadataError reports a missing or malformed metadata field.
type InvalidMetadataError struct {
	Field  string
	Reason string
}

func (e *InvalidMetadataError) Error() string {
	return fmt.Sprintf("metadata field %s: %s", e.Field, e.Reason)
}

// SerializationInvariantError reports an invariant violated while rendering.
type SerializationInvariantError struct {
	Path   string
	Reason string
}

func (e *SerializationInvariantError) Error() string {
	return fmt.Sprintf("serialization invariant violated at %s: %s", e.Path, e.Reason)
}

// UnsupportedFormatError reports input that is neither DOCX nor HTML.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported manuscript format: %s", e.Format)
}
