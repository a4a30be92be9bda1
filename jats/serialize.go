// Package jats renders an Article as JATS 1.2 journal-publishing XML.
//
// The tree is built with etree in DTD order: front, body, back and
// floats-group. Elements are only created when they have content; a final
// pass rejects any empty element that slipped through.
package jats

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/tsawler/jatskit/model"
)

const (
	doctype = `DOCTYPE article PUBLIC "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.2 20190208//EN" "JATS-journalpublishing1-2.dtd"`
	xlinkNS = "http://www.w3.org/1999/xlink"
)

// Option configures serialization.
type Option func(*settings)

type settings struct {
	log    *zap.Logger
	indent int
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIndent sets the number of spaces per nesting level. Zero disables
// indentation.
func WithIndent(spaces int) Option {
	return func(s *settings) {
		s.indent = max(spaces, 0)
	}
}

// serializer holds per-call rendering state.
type serializer struct {
	article *model.Article
	meta    Metadata
	license License
	floats  map[int]*model.FloatItem // by label number
}

// Serialize builds the JATS document for an article. Metadata must already
// carry defaults; it is validated again here so the serializer never emits
// an unknown license.
func Serialize(a *model.Article, meta Metadata, opts ...Option) (*etree.Document, error) {
	s := settings{log: zap.NewNop(), indent: 2}
	for _, opt := range opts {
		opt(&s)
	}

	if err := ValidateMetadata(meta); err != nil {
		return nil, err
	}
	lic, _ := LookupLicense(meta.License)

	sr := &serializer{
		article: a,
		meta:    meta,
		license: lic,
		floats:  make(map[int]*model.FloatItem, len(a.Floats)),
	}
	for _, f := range a.Floats {
		if _, dup := sr.floats[f.Number]; !dup {
			sr.floats[f.Number] = f
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateText("\n")
	doc.CreateDirective(doctype)
	doc.CreateText("\n")

	root := doc.CreateElement("article")
	root.CreateAttr("xmlns:xlink", xlinkNS)
	root.CreateAttr("article-type", meta.ArticleType)
	root.CreateAttr("dtd-version", "1.2")
	root.CreateAttr("xml:lang", "en")

	sr.front(root.CreateElement("front"))
	if len(a.Body.Children) > 0 {
		sr.body(root.CreateElement("body"))
	}
	if len(a.Back.References) > 0 {
		sr.back(root.CreateElement("back"))
	}
	if len(a.Floats) > 0 {
		sr.floatsGroup(root.CreateElement("floats-group"))
	}

	if err := checkInvariants(root); err != nil {
		return nil, err
	}
	if s.indent > 0 {
		indent(root, 0, strings.Repeat(" ", s.indent))
	}
	doc.CreateText("\n")

	s.log.Debug("jats document serialized",
		zap.Int("sections", len(a.Body.Sections())),
		zap.Int("references", len(a.Back.References)),
		zap.Int("floats", len(a.Floats)),
	)
	return doc, nil
}

// Encode serializes an article to XML bytes.
func Encode(a *model.Article, meta Metadata, opts ...Option) ([]byte, error) {
	doc, err := Serialize(a, meta, opts...)
	if err != nil {
		return nil, err
	}
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("writing JATS document: %w", err)
	}
	return out, nil
}

// textElement adds a child with text, or nothing when text is blank.
func textElement(parent *etree.Element, tag, text string) *etree.Element {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// typedElement is textElement with one attribute. Blank text writes nothing.
func typedElement(parent *etree.Element, tag, text, key, value string) *etree.Element {
	el := textElement(parent, tag, text)
	if el != nil {
		el.CreateAttr(key, value)
	}
	return el
}
