// Package build turns classified manuscript blocks into an Article tree.
//
// The builder is a forward-only state machine:
//
//	START → TITLE → AUTHORS* → AFFILIATIONS* → ABSTRACT* → KEYWORDS* → BODY* → REFERENCES* → END
//
// Each block kind maps to one state; a block is accepted when its state is
// not behind the current one. Front matter links authors to affiliations
// once the affiliation list is complete.
package build

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/jatskit/extract"
	"github.com/tsawler/jatskit/model"
)

type state int

const (
	stateStart state = iota
	stateTitle
	stateAuthors
	stateAffiliations
	stateAbstract
	stateKeywords
	stateBody
	stateReferences
	stateEnd
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "START"
	case stateTitle:
		return "TITLE"
	case stateAuthors:
		return "AUTHORS"
	case stateAffiliations:
		return "AFFILIATIONS"
	case stateAbstract:
		return "ABSTRACT"
	case stateKeywords:
		return "KEYWORDS"
	case stateBody:
		return "BODY"
	case stateReferences:
		return "REFERENCES"
	case stateEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// kindStates maps each block kind to the state it belongs to.
var kindStates = map[model.BlockKind]state{
	model.KindTitle:               stateTitle,
	model.KindAuthorName:          stateAuthors,
	model.KindAffiliationLine:     stateAffiliations,
	model.KindLastAffiliationLine: stateAffiliations,
	model.KindAbstractHeading:     stateAbstract,
	model.KindAbstractBody:        stateAbstract,
	model.KindKeywords:            stateKeywords,
	model.KindHeading1:            stateBody,
	model.KindHeading2:            stateBody,
	model.KindBodyParagraph:       stateBody,
	model.KindTableCaption:        stateBody,
	model.KindReferenceEntry:      stateReferences,
}

// referenceTitles are Heading1 titles that open the reference list.
var referenceTitles = map[string]bool{
	"references":       true,
	"reference":        true,
	"reference list":   true,
	"bibliography":     true,
	"literature cited": true,
}

// declarations maps declaration heading phrases to author-note types.
var declarations = []struct {
	phrase string
	fnType string
}{
	{"conflict of interest", "conflict"},
	{"conflicts of interest", "conflict"},
	{"competing interest", "conflict"},
	{"source of funding", "financial-disclosure"},
	{"funding", "financial-disclosure"},
	{"ethical approval", "other"},
	{"patient consent", "other"},
}

// Option configures a build.
type Option func(*builder)

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.log = l
		}
	}
}

type builder struct {
	log      *zap.Logger
	article  *model.Article
	state    state
	warnings []model.Warning

	linker   *linker
	linked   bool
	abstract abstractBuilder
	absDone  bool

	h1, h2    *model.Section
	note      *model.AuthorNote // declaration being captured
	noteIndex map[*model.AuthorNote]int
	refs      *extract.References
	floats    *extract.Floats
}

// Build runs the state machine over classified blocks. Warnings are returned
// alongside the article; the first structural problem aborts the build.
func Build(blocks []model.Classified, opts ...Option) (*model.Article, []model.Warning, error) {
	b := &builder{
		log:       zap.NewNop(),
		article:   model.NewArticle(),
		linker:    newLinker(),
		noteIndex: make(map[*model.AuthorNote]int),
		refs:      extract.NewReferences(),
		floats:    extract.NewFloats(),
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, c := range blocks {
		if c.Table == nil && c.IsBlank() {
			continue
		}
		if err := b.consume(c); err != nil {
			b.log.Debug("build aborted", zap.Int("block", c.Index), zap.Error(err))
			return nil, b.warnings, err
		}
	}
	if err := b.finish(); err != nil {
		return nil, b.warnings, err
	}

	a := b.article
	b.log.Debug("document model built",
		zap.Int("blocks", len(blocks)),
		zap.Int("authors", len(a.Front.Authors)),
		zap.Int("affiliations", len(a.Front.Affiliations)),
		zap.Int("sections", len(a.Body.Sections())),
		zap.Int("references", len(a.Back.References)),
		zap.Int("floats", len(a.Floats)),
		zap.Int("warnings", len(b.warnings)),
	)
	return a, b.warnings, nil
}

func (b *builder) consume(c model.Classified) error {
	if b.state == stateStart {
		if c.Table != nil || c.Kind != model.KindTitle {
			return b.orderError(c)
		}
		b.article.Front.Title = strings.Join(strings.Fields(c.Text()), " ")
		b.state = stateTitle
		return nil
	}

	// Table payloads belong with the floats wherever the body may appear.
	if c.Table != nil {
		if err := b.advance(c, stateBody, true); err != nil {
			return err
		}
		b.floats.AddTable(c.Block)
		return nil
	}

	if c.Kind == model.KindUnclassified {
		b.warn(model.WarnDroppedBlock, c.Index, fmt.Sprintf("unclassified block dropped (style %q)", c.Style))
		return nil
	}
	if c.Kind == model.KindTitle {
		return b.orderError(c)
	}

	if c.Kind == model.KindHeading1 {
		title := headingTitle(c.Block)
		if referenceTitles[strings.ToLower(title)] {
			b.h1, b.h2, b.note = nil, nil, nil
			return b.advance(c, stateReferences, true)
		}
		if fnType := declarationType(title); fnType != "" {
			if err := b.advance(c, stateBody, true); err != nil {
				return err
			}
			b.h1, b.h2 = nil, nil
			b.note = &model.AuthorNote{Type: fnType, Title: title}
			b.noteIndex[b.note] = c.Index
			b.article.Front.Notes = append(b.article.Front.Notes, b.note)
			return nil
		}
	}

	if c.Kind == model.KindBodyParagraph && b.note != nil {
		if err := b.advance(c, stateBody, true); err != nil {
			return err
		}
		b.note.Text = strings.TrimSpace(b.note.Text + " " + strings.Join(strings.Fields(c.Text()), " "))
		return nil
	}

	target := kindStates[c.Kind]
	if err := b.advance(c, target, c.Kind == model.KindTableCaption); err != nil {
		return err
	}

	switch c.Kind {
	case model.KindAuthorName:
		b.linker.addAuthors(c.Block)
	case model.KindAffiliationLine, model.KindLastAffiliationLine:
		return b.linker.addAffiliation(c.Block, c.Kind == model.KindLastAffiliationLine)
	case model.KindAbstractHeading:
		b.abstract.heading(c.Block)
	case model.KindAbstractBody:
		if !b.abstract.body(c.Block) {
			b.warn(model.WarnDroppedBlock, c.Index, "abstract boilerplate dropped: "+c.Snippet())
		}
	case model.KindKeywords:
		b.warnings = append(b.warnings, addKeywords(&b.article.Front, c.Block)...)
	case model.KindHeading1:
		b.note = nil
		b.h1 = &model.Section{Title: headingTitle(c.Block), Level: 1, Index: c.Index}
		b.h1.SecType = SecType(b.h1.Title)
		b.h2 = nil
		b.article.Body.Children = append(b.article.Body.Children, b.h1)
	case model.KindHeading2:
		b.note = nil
		if b.h1 == nil {
			return &model.HeadingWithoutParentError{Index: c.Index, Snippet: c.Snippet()}
		}
		b.h2 = &model.Section{Title: headingTitle(c.Block), Level: 2, Index: c.Index}
		b.h2.SecType = SecType(b.h2.Title)
		b.h1.Append(b.h2)
	case model.KindBodyParagraph:
		p := &model.Paragraph{Index: c.Index, Runs: c.Runs}
		switch {
		case b.h2 != nil:
			b.h2.Append(p)
		case b.h1 != nil:
			b.h1.Append(p)
		default:
			b.article.Body.Children = append(b.article.Body.Children, p)
		}
	case model.KindTableCaption:
		b.floats.AddCaption(c.Block)
	case model.KindReferenceEntry:
		b.note = nil
		b.refs.Add(c.Block)
	}
	return nil
}

// advance moves the machine to target. With lateBody set, a body-level
// block seen in the reference region is accepted without moving back.
func (b *builder) advance(c model.Classified, target state, lateBody bool) error {
	if lateBody && target == stateBody && b.state == stateReferences {
		return nil
	}
	if target < b.state {
		return b.orderError(c)
	}
	if target > stateAffiliations && !b.linked {
		if err := b.link(); err != nil {
			return err
		}
	}
	if target > stateAbstract && !b.absDone {
		if err := b.finishAbstract(c.Index); err != nil {
			return err
		}
	}
	b.state = target
	return nil
}

func (b *builder) link() error {
	b.linked = true
	warnings, err := b.linker.link(&b.article.Front)
	b.warnings = append(b.warnings, warnings...)
	return err
}

func (b *builder) finishAbstract(index int) error {
	b.absDone = true
	sections, warnings := b.abstract.finish()
	b.warnings = append(b.warnings, warnings...)
	if len(sections) == 0 {
		return &model.MissingAbstractError{Index: index}
	}
	b.article.Front.Abstract = sections
	return nil
}

// finish closes the machine: it settles front matter still pending, prunes
// empty content and anchors floats to their first mention.
func (b *builder) finish() error {
	if b.state == stateStart {
		return &model.MissingTitleError{}
	}
	if !b.linked {
		if err := b.link(); err != nil {
			return err
		}
	}
	if !b.absDone {
		if err := b.finishAbstract(-1); err != nil {
			return err
		}
	}
	b.state = stateEnd

	a := b.article
	a.Body.Children = b.prune(a.Body.Children)

	notes := a.Front.Notes[:0]
	for _, n := range a.Front.Notes {
		if strings.TrimSpace(n.Text) == "" {
			b.warn(model.WarnDroppedEmpty, b.noteIndex[n], fmt.Sprintf("declaration %q has no text", n.Title))
			continue
		}
		notes = append(notes, n)
	}
	for i, n := range notes {
		n.ID = fmt.Sprintf("fn%d", i+1)
	}
	a.Front.Notes = notes

	a.Back.References = b.refs.Entries()
	b.warnings = append(b.warnings, b.refs.Warnings()...)

	a.Floats = b.floats.Items()
	extract.Anchor(a.Floats, a.Body.Paragraphs())
	return nil
}

// prune removes sections without content, depth first.
func (b *builder) prune(nodes []model.Node) []model.Node {
	var out []model.Node
	for _, n := range nodes {
		if s, ok := n.(*model.Section); ok {
			s.Children = b.prune(s.Children)
		}
		if !n.HasContent() {
			if s, ok := n.(*model.Section); ok {
				b.warn(model.WarnDroppedEmpty, s.Index, fmt.Sprintf("section %q has no content", s.Title))
			}
			continue
		}
		out = append(out, n)
	}
	return out
}

func (b *builder) orderError(c model.Classified) error {
	return &model.StructuralOrderError{
		Index:   c.Index,
		Kind:    c.Kind,
		State:   b.state.String(),
		Snippet: c.Snippet(),
	}
}

func (b *builder) warn(kind model.WarningKind, index int, msg string) {
	b.warnings = append(b.warnings, model.Warning{Kind: kind, Index: index, Message: msg})
}

func droppedEmpty(index int, what string) model.Warning {
	return model.Warning{Kind: model.WarnDroppedEmpty, Index: index, Message: what + " has no content"}
}

func headingTitle(b model.Block) string {
	return strings.TrimRight(strings.Join(strings.Fields(b.Text()), " "), ":")
}

// declarationType returns the note type for a declaration heading, or "".
func declarationType(title string) string {
	lc := strings.ToLower(title)
	for _, d := range declarations {
		if strings.Contains(lc, d.phrase) {
			return d.fnType
		}
	}
	return ""
}
