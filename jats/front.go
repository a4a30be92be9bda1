package jats

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/tsawler/jatskit/model"
)

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	correspPrefix = regexp.MustCompile(`(?i)^\s*(?:\*\s*)?(?:address\s+for\s+)?correspond(?:ing|ence)(?:\s+author)?\s*[:.\-–]?\s*`)
)

func (s *serializer) front(front *etree.Element) {
	s.journalMeta(front.CreateElement("journal-meta"))
	s.articleMeta(front.CreateElement("article-meta"))
}

func (s *serializer) journalMeta(jm *etree.Element) {
	m := s.meta

	id := m.JournalID
	if strings.TrimSpace(id) == "" {
		id = m.Publisher
	}
	typedElement(jm, "journal-id", m.JournalAbbrev, "journal-id-type", "nlm-ta")
	typedElement(jm, "journal-id", id, "journal-id-type", "publisher-id")

	tg := jm.CreateElement("journal-title-group")
	textElement(tg, "journal-title", m.Journal)
	typedElement(tg, "abbrev-journal-title", m.JournalAbbrev, "abbrev-type", "publisher")

	typedElement(jm, "issn", m.ISSNPrint, "publication-format", "print")
	typedElement(jm, "issn", m.ISSNElectronic, "publication-format", "electronic")

	pub := jm.CreateElement("publisher")
	textElement(pub, "publisher-name", m.Publisher)

	if url := strings.TrimSpace(m.JournalURL); url != "" {
		jm.CreateElement("self-uri").CreateAttr("xlink:href", url)
	}
}

func (s *serializer) articleMeta(am *etree.Element) {
	f := &s.article.Front
	m := s.meta

	typedElement(am, "article-id", m.DOI, "pub-id-type", "doi")

	sg := am.CreateElement("article-categories").CreateElement("subj-group")
	sg.CreateAttr("subj-group-type", "heading")
	textElement(sg, "subject", SubjectLabel(m.ArticleType))

	textElement(am.CreateElement("title-group"), "article-title", f.Title)

	if len(f.Authors) > 0 || len(f.Affiliations) > 0 {
		s.contribGroup(am.CreateElement("contrib-group"))
	}
	s.authorNotes(am)

	for _, format := range m.PubFormats {
		pd := am.CreateElement("pub-date")
		pd.CreateAttr("date-type", "pub")
		pd.CreateAttr("publication-format", format)
		dateParts(pd, model.Date{Year: m.Year, Month: m.Month, Day: m.Day})
	}

	textElement(am, "volume", m.Volume)
	textElement(am, "issue", m.Issue)
	textElement(am, "fpage", m.FirstPage)
	textElement(am, "lpage", m.LastPage)

	s.history(am)
	s.permissions(am.CreateElement("permissions"))
	s.abstract(am)

	if len(f.Keywords) > 0 {
		kg := am.CreateElement("kwd-group")
		kg.CreateAttr("kwd-group-type", "author-generated")
		textElement(kg, "title", "Keywords")
		for _, k := range f.Keywords {
			textElement(kg, "kwd", k)
		}
	}
}

func (s *serializer) contribGroup(cg *etree.Element) {
	f := &s.article.Front

	for _, a := range f.Authors {
		c := cg.CreateElement("contrib")
		c.CreateAttr("contrib-type", "author")
		if a.Corresponding {
			c.CreateAttr("corresp", "yes")
		}

		typedElement(c, "contrib-id", a.Name.ORCID, "contrib-id-type", "orcid")
		name := c.CreateElement("name")
		name.CreateAttr("name-style", "western")
		textElement(name, "surname", a.Name.Surname)
		textElement(name, "given-names", a.Name.GivenNames)

		for _, ref := range a.AffiliationRefs {
			x := c.CreateElement("xref")
			x.CreateAttr("ref-type", "aff")
			x.CreateAttr("rid", "aff"+ref)
			x.CreateElement("sup").SetText(ref)
		}
		if a.Corresponding {
			x := c.CreateElement("xref")
			x.CreateAttr("ref-type", "corresp")
			x.CreateAttr("rid", "cor1")
			x.SetText("*")
		}
		for _, marker := range a.Markers {
			note := f.NoteFor(marker)
			if note == nil {
				continue
			}
			x := c.CreateElement("xref")
			x.CreateAttr("ref-type", "fn")
			x.CreateAttr("rid", note.ID)
			x.CreateElement("sup").SetText(marker)
		}
	}

	for _, af := range f.Affiliations {
		aff := cg.CreateElement("aff")
		aff.CreateAttr("id", "aff"+af.ID)
		textElement(aff, "label", af.ID)
		affiliationParts(aff, af.Text)
	}
}

// affiliationParts splits "Dept, Institution, City, Country" into tagged
// parts. Short lines keep the whole text as the institution.
func affiliationParts(aff *etree.Element, text string) {
	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch n := len(parts); {
	case n == 0:
		return
	case n == 1:
		textElement(aff, "institution", parts[0])
	case n == 2:
		typedElement(aff, "institution", parts[0], "content-type", "dept")
		textElement(aff, "institution", parts[1])
	case n == 3:
		typedElement(aff, "institution", parts[0], "content-type", "dept")
		textElement(aff, "institution", parts[1])
		textElement(aff, "country", parts[2])
	default:
		typedElement(aff, "institution", parts[0], "content-type", "dept")
		textElement(aff, "institution", strings.Join(parts[1:n-2], ", "))
		textElement(aff, "addr-line", parts[n-2])
		textElement(aff, "country", parts[n-1])
	}
}

func (s *serializer) authorNotes(am *etree.Element) {
	ca := s.article.CorrespondingAuthor()
	if ca == nil && len(s.article.Front.Notes) == 0 {
		return
	}
	an := am.CreateElement("author-notes")

	if ca != nil {
		c := an.CreateElement("corresp")
		c.CreateAttr("id", "cor1")
		c.CreateElement("bold").SetText("Corresponding Author:")
		c.CreateText(" " + ca.Name.String())

		detail := strings.TrimSpace(correspPrefix.ReplaceAllString(s.article.Front.Correspondence, ""))
		if detail != "" {
			c.CreateText(", ")
			appendEmails(c, detail)
		}
	}

	for _, n := range s.article.Front.Notes {
		fn := an.CreateElement("fn")
		fn.CreateAttr("id", n.ID)
		fn.CreateAttr("fn-type", n.Type)
		textElement(fn, "label", n.Marker)
		textElement(fn, "p", n.Text)
	}
}

// appendEmails writes text, wrapping e-mail addresses in <email>.
func appendEmails(parent *etree.Element, text string) {
	last := 0
	for _, m := range emailPattern.FindAllStringIndex(text, -1) {
		if m[0] > last {
			parent.CreateText(text[last:m[0]])
		}
		parent.CreateElement("email").SetText(text[m[0]:m[1]])
		last = m[1]
	}
	if last < len(text) {
		parent.CreateText(text[last:])
	}
}

func (s *serializer) history(am *etree.Element) {
	h := s.article.Front.History
	if h.Received.IsZero() && h.Accepted.IsZero() {
		return
	}
	hist := am.CreateElement("history")
	for _, d := range []struct {
		typ  string
		date model.Date
	}{
		{"received", h.Received},
		{"accepted", h.Accepted},
	} {
		if d.date.IsZero() {
			continue
		}
		el := hist.CreateElement("date")
		el.CreateAttr("date-type", d.typ)
		dateParts(el, d.date)
	}
}

// dateParts writes day, month and year children, skipping empty parts.
func dateParts(parent *etree.Element, d model.Date) {
	textElement(parent, "day", pad2(d.Day))
	textElement(parent, "month", pad2(d.Month))
	textElement(parent, "year", d.Year)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func (s *serializer) permissions(p *etree.Element) {
	year := s.meta.Year
	textElement(p, "copyright-statement", "© "+year+" The Author(s)")
	textElement(p, "copyright-year", year)

	lic := p.CreateElement("license")
	lic.CreateAttr("license-type", "open-access")
	lic.CreateAttr("xlink:href", s.license.URL)

	lp := lic.CreateElement("license-p")
	lp.CreateText("This is an Open Access article distributed under the terms of the " + s.license.Name + " (")
	link := lp.CreateElement("ext-link")
	link.CreateAttr("ext-link-type", "uri")
	link.CreateAttr("xlink:href", s.license.URL)
	link.SetText(s.license.URL)
	lp.CreateText("), " + s.license.Permit)
}

// abstract renders the structured abstract. Untitled text becomes bare
// paragraphs; text that follows a titled part joins that part.
func (s *serializer) abstract(am *etree.Element) {
	sections := s.article.Front.Abstract
	if len(sections) == 0 {
		return
	}
	abs := am.CreateElement("abstract")

	var last *etree.Element
	for _, sec := range sections {
		target := abs
		switch {
		case sec.Title != "":
			last = abs.CreateElement("sec")
			textElement(last, "title", sec.Title)
			target = last
		case last != nil:
			target = last
		}
		for _, p := range sec.Paragraphs {
			textElement(target, "p", p)
		}
	}
}
