package jats

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/tsawler/jatskit/model"
)

// emptyAllowed lists elements that are legitimately empty.
var emptyAllowed = map[string]bool{
	"etal":     true,
	"col":      true,
	"break":    true,
	"td":       true,
	"th":       true,
	"self-uri": true,
}

// requiredAttrs lists attributes without which an element is invalid.
var requiredAttrs = map[string][]string{
	"article":    {"article-type"},
	"xref":       {"ref-type", "rid"},
	"aff":        {"id"},
	"ref":        {"id"},
	"fn":         {"id"},
	"corresp":    {"id"},
	"table-wrap": {"id"},
	"contrib":    {"contrib-type"},
	"license":    {"xlink:href"},
	"self-uri":   {"xlink:href"},
	"pub-date":   {"publication-format"},
}

// checkInvariants walks the tree and reports the first element that is
// empty, lacks a required attribute, or is a sec without a title and body.
func checkInvariants(root *etree.Element) error {
	return checkElement(root, root.Tag)
}

func checkElement(el *etree.Element, path string) error {
	for _, attr := range requiredAttrs[el.Tag] {
		if el.SelectAttrValue(attr, "") == "" {
			return &model.SerializationInvariantError{Path: path, Reason: "missing required attribute " + attr}
		}
	}

	kids := el.ChildElements()
	if len(kids) == 0 && !emptyAllowed[el.Tag] && strings.TrimSpace(allText(el)) == "" {
		return &model.SerializationInvariantError{Path: path, Reason: "element has no content"}
	}

	if el.Tag == "sec" {
		if len(kids) < 2 || kids[0].Tag != "title" {
			return &model.SerializationInvariantError{Path: path, Reason: "sec needs a title and at least one child"}
		}
	}

	seen := make(map[string]int)
	for _, k := range kids {
		seen[k.Tag]++
		if err := checkElement(k, fmt.Sprintf("%s/%s[%d]", path, k.Tag, seen[k.Tag])); err != nil {
			return err
		}
	}
	return nil
}

// allText concatenates the direct character data of an element.
func allText(el *etree.Element) string {
	var sb strings.Builder
	for _, t := range el.Child {
		if cd, ok := t.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

// indent inserts newline indentation between the children of structural
// elements. Elements holding character data are mixed content and are left
// untouched so inline markup keeps its exact spacing.
func indent(el *etree.Element, depth int, unit string) {
	kids := el.ChildElements()
	if len(kids) == 0 || isMixed(el) {
		return
	}

	pad := "\n" + strings.Repeat(unit, depth+1)
	for i := len(kids) - 1; i >= 0; i-- {
		el.InsertChildAt(i, etree.NewText(pad))
	}
	el.CreateText("\n" + strings.Repeat(unit, depth))

	for _, k := range kids {
		indent(k, depth+1, unit)
	}
}

// mixedTags are elements whose content model allows text, even when a
// particular instance happens to hold only elements.
var mixedTags = map[string]bool{
	"p":              true,
	"title":          true,
	"article-title":  true,
	"corresp":        true,
	"license-p":      true,
	"mixed-citation": true,
	"td":             true,
	"th":             true,
	"sup":            true,
	"bold":           true,
	"italic":         true,
	"xref":           true,
}

func isMixed(el *etree.Element) bool {
	if mixedTags[el.Tag] {
		return true
	}
	for _, t := range el.Child {
		if _, ok := t.(*etree.CharData); ok {
			return true
		}
	}
	return false
}
