// Package model provides the intermediate representation shared by every
// stage of the manuscript conversion pipeline.
//
// # Input
//
// Block extractors produce an ordered sequence of [Block] values. Each block
// carries the human-authored style name of the source paragraph and its
// [Run] values with inline formatting flags:
//
//	b := model.Block{Index: 0, Style: "Title", Runs: []model.Run{{Text: "Foo"}}}
//
// A block may instead carry a [Table] payload, which is passed through to the
// output unchanged.
//
// # Classification
//
// Every block is classified into exactly one [BlockKind]. Unknown style names
// become [KindUnclassified].
//
// # Article
//
// The [Article] type is the aggregate root built from classified blocks:
//
//   - [Front] - title, authors, affiliations, abstract, keywords, history, notes
//   - [Body] - the section tree ([Section], [Paragraph])
//   - [Back] - the numbered [ReferenceEntry] list
//   - Floats - the ordered [FloatItem] inventory
//
// # Errors and warnings
//
// Fatal conditions are reported with the typed errors in errors.go and can be
// matched with errors.As. Non-fatal conditions are collected as [Warning]
// values and returned next to the output.
package model
