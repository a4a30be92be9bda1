package jatskit

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tsawler/jatskit/build"
	"github.com/tsawler/jatskit/classify"
	"github.com/tsawler/jatskit/crossref"
	"github.com/tsawler/jatskit/docx"
	"github.com/tsawler/jatskit/format"
	"github.com/tsawler/jatskit/htmldoc"
	"github.com/tsawler/jatskit/jats"
	"github.com/tsawler/jatskit/model"
)

// Converter provides a fluent interface for converting a manuscript.
// Each configuration method returns a new Converter, so a partly configured
// Converter can be shared and extended safely.
type Converter struct {
	// Source
	filename string
	data     []byte

	// Configuration
	options convertOptions
}

// clone creates a copy of the Converter with a deep copy of options. The
// manuscript bytes are never modified and are shared.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		data:     c.data,
		options:  c.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Metadata sets the bibliographic metadata. Defaults for article type,
// license and publication formats are applied by the terminal operation.
func (c *Converter) Metadata(meta Metadata) *Converter {
	newConv := c.clone()
	newConv.options.meta = meta
	newConv.options.meta.PubFormats = append([]string(nil), meta.PubFormats...)
	return newConv
}

// Logger sets the logger used for stage diagnostics.
func (c *Converter) Logger(l *zap.Logger) *Converter {
	newConv := c.clone()
	if l == nil {
		l = zap.NewNop()
	}
	newConv.options.log = l
	return newConv
}

// Classifier replaces the style table, e.g. one with journal-specific
// aliases from classify.NewTable.
func (c *Converter) Classifier(t *classify.Table) *Converter {
	newConv := c.clone()
	if t == nil {
		t = classify.Default
	}
	newConv.options.classifier = t
	return newConv
}

// Enricher sets the reference enricher. It only runs when the metadata
// Crossref flag is set.
func (c *Converter) Enricher(e crossref.Enricher) *Converter {
	newConv := c.clone()
	newConv.options.enricher = e
	return newConv
}

// Indent sets the number of spaces per nesting level in the XML output.
// Zero writes the document without indentation.
func (c *Converter) Indent(spaces int) *Converter {
	newConv := c.clone()
	newConv.options.indent = max(spaces, 0)
	return newConv
}

// Context sets the context passed to the enricher.
func (c *Converter) Context(ctx context.Context) *Converter {
	newConv := c.clone()
	if ctx == nil {
		ctx = context.Background()
	}
	newConv.options.ctx = ctx
	return newConv
}

// ============================================================================
// Terminal Operations
// ============================================================================

// XML runs the full conversion and returns the serialized document. On
// error no output is returned.
func (c *Converter) XML() ([]byte, []Warning, error) {
	meta, err := c.metadata()
	if err != nil {
		return nil, nil, err
	}

	article, warnings, err := c.article(meta)
	if err != nil {
		return nil, nil, err
	}

	out, err := jats.Encode(article, meta,
		jats.WithLogger(c.options.log),
		jats.WithIndent(c.options.indent),
	)
	if err != nil {
		return nil, nil, err
	}

	c.options.log.Debug("conversion finished",
		zap.Int("bytes", len(out)),
		zap.Int("warnings", len(warnings)),
	)
	return out, warnings, nil
}

// Article runs extraction and model building without serializing. Metadata
// is still validated because it decides whether references are enriched.
func (c *Converter) Article() (*model.Article, []Warning, error) {
	meta, err := c.metadata()
	if err != nil {
		return nil, nil, err
	}
	return c.article(meta)
}

// Blocks returns the classified manuscript blocks with the classification
// warnings. Metadata is not needed.
func (c *Converter) Blocks() ([]model.Classified, []Warning, error) {
	blocks, err := c.readBlocks()
	if err != nil {
		return nil, nil, err
	}
	classified, warnings := c.options.classifier.ClassifyAll(blocks)
	return classified, warnings, nil
}

// metadata applies defaults and validates before any manuscript work.
func (c *Converter) metadata() (Metadata, error) {
	meta := c.options.meta.WithDefaults()
	if err := jats.ValidateMetadata(meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (c *Converter) article(meta Metadata) (*model.Article, []Warning, error) {
	log := c.options.log

	classified, warnings, err := c.Blocks()
	if err != nil {
		return nil, nil, err
	}
	log.Debug("blocks classified",
		zap.Int("blocks", len(classified)),
		zap.Int("unclassified", len(warnings)),
	)

	article, buildWarnings, err := build.Build(classified, build.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, buildWarnings...)

	if meta.Crossref && c.options.enricher != nil && len(article.Back.References) > 0 {
		warnings = append(warnings, c.options.enricher.Enrich(c.options.ctx, article.Back.References)...)
	}
	return article, warnings, nil
}

// readBlocks loads the manuscript and extracts its blocks with the reader
// for its format.
func (c *Converter) readBlocks() ([]model.Block, error) {
	data := c.data
	if data == nil {
		if c.filename == "" {
			return nil, fmt.Errorf("no manuscript specified")
		}
		var err error
		data, err = os.ReadFile(c.filename)
		if err != nil {
			return nil, fmt.Errorf("reading manuscript: %w", err)
		}
	}

	f := format.DetectFromMagic(data)
	if f == format.Unknown && c.filename != "" {
		f = format.Detect(c.filename)
	}
	c.options.log.Debug("manuscript format detected",
		zap.String("format", f.String()),
		zap.Int("bytes", len(data)),
	)

	switch f {
	case format.DOCX:
		r, err := docx.OpenBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to open DOCX: %w", err)
		}
		defer r.Close()
		return r.Blocks(), nil

	case format.HTML:
		r, err := htmldoc.OpenBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTML: %w", err)
		}
		defer r.Close()
		return r.Blocks(), nil

	default:
		return nil, &model.UnsupportedFormatError{Format: f.String()}
	}
}
