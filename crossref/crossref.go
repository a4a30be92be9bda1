// Package crossref enriches parsed references with bibliographic data from
// the CrossRef REST API.
//
// Enrichment is opt-in and best effort. A reference that cannot be looked up
// is left as it was and reported as a warning; existing fields are never
// overwritten.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tsawler/jatskit/model"
)

// DefaultBaseURL is the public CrossRef API endpoint.
const DefaultBaseURL = "https://api.crossref.org"

// Doer performs HTTP requests. *http.Client and *CachingDoer satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Enricher fills missing reference fields in place and returns one warning
// per reference it could not enrich.
type Enricher interface {
	Enrich(ctx context.Context, refs []*model.ReferenceEntry) []model.Warning
}

// Client queries the CrossRef works endpoint.
type Client struct {
	Doer    Doer
	BaseURL string
	Mailto  string // identifies the caller for the polite pool

	// MinScore is the relevance score a free-text match must reach to be
	// used. DOI lookups are exact and ignore it.
	MinScore float64

	Log *zap.Logger
}

// NewClient returns a client for the public API with a bounded timeout.
func NewClient(mailto string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		Doer:     &http.Client{Timeout: timeout},
		BaseURL:  DefaultBaseURL,
		Mailto:   mailto,
		MinScore: 40,
	}
}

// Work is the subset of a CrossRef work record used for enrichment.
type Work struct {
	DOI            string        `json:"DOI"`
	Title          []string      `json:"title"`
	ContainerTitle []string      `json:"container-title"`
	ShortContainer []string      `json:"short-container-title"`
	Author         []Contributor `json:"author"`
	Volume         string        `json:"volume"`
	Issue          string        `json:"issue"`
	Page           string        `json:"page"`
	Type           string        `json:"type"`
	Issued         dateParts     `json:"issued"`
	Published      *dateParts    `json:"published-print"`
	Score          float64       `json:"score"`
}

// Contributor is a work author.
type Contributor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	ORCID  string `json:"ORCID"`
}

// BareORCID returns the ORCID without its orcid.org URI prefix.
func (c Contributor) BareORCID() string {
	id := strings.TrimSpace(c.ORCID)
	for _, prefix := range []string{"https://orcid.org/", "http://orcid.org/"} {
		id = strings.TrimPrefix(id, prefix)
	}
	return id
}

type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

func (d dateParts) year() string {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == 0 {
		return ""
	}
	return strconv.Itoa(d.DateParts[0][0])
}

// Year returns the print publication year, falling back to the issue year.
func (w *Work) Year() string {
	if w.Published != nil {
		if y := w.Published.year(); y != "" {
			return y
		}
	}
	return w.Issued.year()
}

// StatusError reports a non-200 API response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("crossref: %s returned status %d", e.URL, e.StatusCode)
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func (c *Client) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// Lookup returns the best match for a free-text citation, or nil when the
// search has no results.
func (c *Client) Lookup(ctx context.Context, query string) (*Work, error) {
	q := url.Values{}
	q.Set("query.bibliographic", query)
	q.Set("rows", "1")
	if c.Mailto != "" {
		q.Set("mailto", c.Mailto)
	}

	var resp struct {
		Message struct {
			Items []*Work `json:"items"`
		} `json:"message"`
	}
	if err := c.get(ctx, c.base()+"/works?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Message.Items) == 0 {
		return nil, nil
	}
	return resp.Message.Items[0], nil
}

// LookupDOI fetches the work registered under doi.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*Work, error) {
	u := c.base() + "/works/" + url.PathEscape(doi)
	if c.Mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	var resp struct {
		Message *Work `json:"message"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

func (c *Client) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("crossref: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	ua := "jatskit"
	if c.Mailto != "" {
		ua += " (mailto:" + c.Mailto + ")"
	}
	req.Header.Set("User-Agent", ua)

	doer := c.Doer
	if doer == nil {
		doer = http.DefaultClient
	}
	resp, err := doer.Do(req)
	if err != nil {
		return fmt.Errorf("crossref: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("crossref: decoding response: %w", err)
	}
	return nil
}

// Enrich looks up every reference and fills the fields it is missing.
// References with a DOI are fetched directly; the rest are searched by
// their raw text.
func (c *Client) Enrich(ctx context.Context, refs []*model.ReferenceEntry) []model.Warning {
	var warnings []model.Warning
	enriched := 0

	for _, r := range refs {
		if ctx.Err() != nil {
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnEnrichment,
				Index:   r.Index,
				Message: fmt.Sprintf("reference %d not enriched: %v", r.Number, ctx.Err()),
			})
			continue
		}

		var (
			w   *Work
			err error
		)
		if r.DOI != "" {
			w, err = c.LookupDOI(ctx, r.DOI)
		} else {
			w, err = c.Lookup(ctx, r.Raw)
			if w != nil && w.Score < c.MinScore {
				c.logger().Debug("crossref match below threshold",
					zap.Int("reference", r.Number),
					zap.Float64("score", w.Score))
				w = nil
			}
		}

		switch {
		case err != nil:
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnEnrichment,
				Index:   r.Index,
				Message: fmt.Sprintf("reference %d not enriched: %v", r.Number, err),
			})
		case w == nil:
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnEnrichment,
				Index:   r.Index,
				Message: fmt.Sprintf("reference %d has no CrossRef match", r.Number),
			})
		default:
			merge(r, w)
			enriched++
		}
	}

	c.logger().Debug("crossref enrichment finished",
		zap.Int("references", len(refs)),
		zap.Int("enriched", enriched),
		zap.Int("warnings", len(warnings)),
	)
	return warnings
}

// attachORCIDs gives parsed authors the ORCID of the contributor with the
// same surname.
func attachORCIDs(authors []model.PersonName, contributors []Contributor) {
	for i := range authors {
		if authors[i].ORCID != "" {
			continue
		}
		match, ok := lo.Find(contributors, func(c Contributor) bool {
			return c.ORCID != "" && strings.EqualFold(c.Family, authors[i].Surname)
		})
		if ok {
			authors[i].ORCID = match.BareORCID()
		}
	}
}

// merge copies work fields into empty reference fields.
func merge(r *model.ReferenceEntry, w *Work) {
	if r.DOI == "" {
		r.DOI = w.DOI
	}
	if r.Parsed == nil {
		r.Parsed = &model.Citation{}
	}
	c := r.Parsed

	if len(c.Authors) == 0 {
		c.Authors = lo.FilterMap(w.Author, func(a Contributor, _ int) (model.PersonName, bool) {
			return model.PersonName{Surname: a.Family, GivenNames: a.Given, ORCID: a.BareORCID()}, a.Family != ""
		})
	} else {
		attachORCIDs(c.Authors, w.Author)
	}
	fill(&c.Title, first(w.Title))
	fill(&c.Source, first(w.ShortContainer))
	fill(&c.Source, first(w.ContainerTitle))
	fill(&c.Year, w.Year())
	fill(&c.Volume, w.Volume)
	fill(&c.Issue, w.Issue)

	if c.FirstPage == "" && w.Page != "" {
		fp, lp, _ := strings.Cut(w.Page, "-")
		c.FirstPage = strings.TrimSpace(fp)
		fill(&c.LastPage, strings.TrimSpace(lp))
	}
	if c.PubType == "" {
		switch w.Type {
		case "book", "monograph", "book-chapter":
			c.PubType = "book"
		case "dissertation":
			c.PubType = "thesis"
		default:
			c.PubType = "journal"
		}
	}
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
