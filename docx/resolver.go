package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/jatskit/model"
)

// ResolvedStyle contains the fully resolved properties for a style.
type ResolvedStyle struct {
	// Identity
	ID   string
	Name string
	Type string // paragraph, character, table

	// Run/character properties
	Bold      bool
	Italic    bool
	VertAlign string // superscript, subscript or empty
}

// StyleResolver resolves styles with inheritance support.
type StyleResolver struct {
	styles   map[string]*styleDefXML
	defaults runPropsXML
	resolved map[string]*ResolvedStyle
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:   make(map[string]*styleDefXML),
		resolved: make(map[string]*ResolvedStyle),
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		sr.styles[style.StyleID] = style
	}
	sr.defaults = styles.DocDefaults.RPrDefault.RPr

	return sr
}

// DefaultParagraphStyle returns the ID of the paragraph style marked as
// default, or "" when styles.xml declares none.
func (sr *StyleResolver) DefaultParagraphStyle() string {
	for id, def := range sr.styles {
		if def.Type == "paragraph" && (def.Default == "1" || def.Default == "true") {
			return id
		}
	}
	return ""
}

// StyleName returns the display name for a style ID. Styles missing from
// styles.xml fall back to their ID, which for built-ins such as "Heading1"
// is still recognizable.
func (sr *StyleResolver) StyleName(styleID string) string {
	if def, ok := sr.styles[styleID]; ok && def.Name.Val != "" {
		return def.Name.Val
	}
	if ok, level := detectBuiltInHeading(styleID); ok {
		return "Heading " + strconv.Itoa(level)
	}
	return styleID
}

// Resolve returns the fully resolved style for the given style ID.
// If the style doesn't exist, returns a style carrying only the defaults.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	resolved := &ResolvedStyle{ID: styleID, Name: sr.StyleName(styleID)}
	applyRunProps(resolved, sr.defaults)

	if def, ok := sr.styles[styleID]; ok {
		resolved.Type = def.Type
		for _, sid := range sr.buildInheritanceChain(styleID) {
			if d, ok := sr.styles[sid]; ok {
				applyRunProps(resolved, d.RPr)
			}
		}
	}

	sr.resolved[styleID] = resolved
	return resolved
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		chain = append([]string{current}, chain...) // Prepend

		if def, ok := sr.styles[current]; ok {
			current = def.BasedOn.Val
		} else {
			break
		}
	}

	return chain
}

// applyRunProps overlays explicit run properties onto a resolved style.
func applyRunProps(resolved *ResolvedStyle, rpr runPropsXML) {
	if rpr.Bold.set() {
		resolved.Bold = rpr.Bold.on()
	}
	if rpr.Italic.set() {
		resolved.Italic = rpr.Italic.on()
	}
	if rpr.VertAlign.Val != "" {
		resolved.VertAlign = rpr.VertAlign.Val
		if resolved.VertAlign == "baseline" {
			resolved.VertAlign = ""
		}
	}
}

// ResolveRun resolves run formatting. Paragraph style is applied first, then
// the run's character style, then direct formatting.
func (sr *StyleResolver) ResolveRun(paragraphStyle string, runProps runPropsXML) model.Run {
	base := *sr.Resolve(paragraphStyle)
	if runProps.Style.Val != "" {
		if def, ok := sr.styles[runProps.Style.Val]; ok {
			for _, sid := range sr.buildInheritanceChain(def.StyleID) {
				if d, ok := sr.styles[sid]; ok {
					applyRunProps(&base, d.RPr)
				}
			}
		}
	}
	applyRunProps(&base, runProps)

	return model.Run{
		Bold:        base.Bold,
		Italic:      base.Italic,
		Superscript: base.VertAlign == "superscript",
		Subscript:   base.VertAlign == "subscript",
	}
}

// detectBuiltInHeading checks for Word's built-in heading style IDs.
func detectBuiltInHeading(styleID string) (bool, int) {
	id := strings.ToLower(styleID)
	if !strings.HasPrefix(id, "heading") {
		return false, 0
	}
	level, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(id, "heading")))
	if err != nil || level < 1 || level > 9 {
		return false, 0
	}
	return true, level
}

// parseTwips parses a size in twips to points.
// 1 point = 20 twips.
func parseTwips(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 20
}
