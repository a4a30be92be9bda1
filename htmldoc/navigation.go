package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// boilerplatePattern matches class and id values of site chrome that can
// surround a manuscript exported from a submission system.
var boilerplatePattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget)([^a-z]|$)`)

// exclusionChecker decides which elements are page chrome rather than
// manuscript content.
type exclusionChecker struct {
	bodyNode        *html.Node
	topLevelWrapper *html.Node // Single wrapper div/main if present
}

// newExclusionChecker creates a checker for the given body element.
func newExclusionChecker(body *html.Node) *exclusionChecker {
	return &exclusionChecker{
		bodyNode:        body,
		topLevelWrapper: detectTopLevelWrapper(body),
	}
}

// detectTopLevelWrapper finds a single structural wrapper element if one exists.
// This handles the common pattern of <body><div id="wrapper">...</div></body>
// and the WordSection1 div word processors emit.
func detectTopLevelWrapper(body *html.Node) *html.Node {
	var structuralChildren []*html.Node

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "main":
				structuralChildren = append(structuralChildren, c)
			case "script", "style", "noscript", "template":
				// Ignore these
			default:
				return nil
			}
		}
	}

	if len(structuralChildren) == 1 {
		return structuralChildren[0]
	}
	return nil
}

// shouldExclude reports whether n is navigation or page chrome.
func (ec *exclusionChecker) shouldExclude(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		return ec.isTopLevel(n)
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return ec.isTopLevel(n)
	}

	// Only containers; a paragraph's class is its style name.
	switch n.Data {
	case "div", "section", "ul", "ol":
		class, id := getAttr(n, "class"), getAttr(n, "id")
		return (class != "" && boilerplatePattern.MatchString(class)) ||
			(id != "" && boilerplatePattern.MatchString(id))
	}
	return false
}

// isTopLevel returns true if the node is a direct child of body or a single top-level wrapper.
func (ec *exclusionChecker) isTopLevel(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	return parent == ec.bodyNode || (ec.topLevelWrapper != nil && parent == ec.topLevelWrapper)
}

// getAttr returns the value of an attribute on a node, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
