// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doicheck verifies the dataset's DOIs: that each one resolves at
// doi.org, and that the Crossref metadata behind it matches the record it
// is attached to. Mismatches usually mean a copy-paste slip in the dataset.
package doicheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/cremarco/sti-survey-engine/internal/httputil"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// doiPrefixPattern matches the resolver prefixes that canonicalize to
// https://doi.org/: plain http, and the legacy dx.doi.org host.
var doiPrefixPattern = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)

// Base endpoints. Declared as vars so tests can substitute httptest servers.
var (
	resolverBase = "https://doi.org/"
	crossrefBase = "https://api.crossref.org/works/"
)

const titleSimilarityThreshold = 0.85

// CanonicalURL normalizes a DOI value to its https://doi.org/ form. Legacy
// dx.doi.org and plain-http links are rewritten, bare DOIs gain the prefix,
// and URLs that are not DOI links pass through unchanged.
func CanonicalURL(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	if doiPrefixPattern.MatchString(doi) {
		return doiPrefixPattern.ReplaceAllString(doi, "https://doi.org/")
	}
	if !strings.HasPrefix(strings.ToLower(doi), "http") {
		return "https://doi.org/" + doi
	}
	return doi
}

// Bare returns the DOI suffix without the resolver prefix, or "" when the
// value does not canonicalize to a doi.org URL.
func Bare(doi string) string {
	canonical := CanonicalURL(doi)
	if !strings.HasPrefix(canonical, "https://doi.org/") {
		return ""
	}
	return strings.TrimPrefix(canonical, "https://doi.org/")
}

// Outcome classifies one record's DOI check.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeMismatch   Outcome = "mismatch"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeMissing    Outcome = "missing"
)

// Result is the check outcome for one record.
type Result struct {
	ID      string  `json:"id" yaml:"id"`
	DOI     string  `json:"doi,omitempty" yaml:"doi,omitempty"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Note    string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// Summary holds counts from a verification run.
type Summary struct {
	Checked    int
	OK         int
	Mismatched int
	Unresolved int
	Missing    int
}

// Checker verifies DOIs against the resolver and Crossref.
type Checker struct {
	Client *http.Client
	Config types.VerifyConfig
}

// Verify checks every record's DOI, writing per-record progress to w.
// Records without a DOI count as missing; the configured request delay is
// applied between records to stay polite with the public endpoints.
func (c *Checker) Verify(ctx context.Context, records []types.Record, w io.Writer) ([]Result, Summary, error) {
	var results []Result
	var summary Summary

	for i, r := range records {
		if i > 0 && c.Config.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return results, summary, ctx.Err()
			case <-time.After(c.Config.RequestDelay):
			}
		}

		res := c.verifyRecord(ctx, r)
		results = append(results, res)
		summary.Checked++

		switch res.Outcome {
		case OutcomeOK:
			summary.OK++
		case OutcomeMismatch:
			summary.Mismatched++
		case OutcomeUnresolved:
			summary.Unresolved++
		case OutcomeMissing:
			summary.Missing++
		}

		if res.Note != "" {
			fmt.Fprintf(w, "%-10s %s: %s\n", res.Outcome, res.ID, res.Note)
		} else {
			fmt.Fprintf(w, "%-10s %s\n", res.Outcome, res.ID)
		}
	}

	fmt.Fprintf(w, "\nchecked: %d, ok: %d, mismatched: %d, unresolved: %d, missing: %d\n",
		summary.Checked, summary.OK, summary.Mismatched, summary.Unresolved, summary.Missing)

	return results, summary, nil
}

func (c *Checker) verifyRecord(ctx context.Context, r types.Record) Result {
	res := Result{ID: r.ID()}

	doi := strings.TrimSpace(r.DOI())
	if doi == "" {
		res.Outcome = OutcomeMissing
		res.Note = "no doi"
		return res
	}

	res.DOI = CanonicalURL(doi)
	bare := Bare(doi)
	if bare == "" {
		res.Outcome = OutcomeUnresolved
		res.Note = "not a DOI link"
		return res
	}

	if !c.resolves(ctx, resolverBase+bare) {
		res.Outcome = OutcomeUnresolved
		res.Note = "does not resolve"
		return res
	}

	work, err := c.crossrefWork(ctx, bare)
	if err != nil {
		// Not every registrar deposits with Crossref; a resolving DOI
		// without metadata is still fine.
		res.Outcome = OutcomeOK
		res.Note = "resolves; no Crossref metadata"
		return res
	}

	if note := matchWork(r, work); note != "" {
		res.Outcome = OutcomeMismatch
		res.Note = note
		return res
	}

	res.Outcome = OutcomeOK
	return res
}

// resolves reports whether the DOI responds at the resolver. Redirects are
// followed; anything below 400 after the chain counts as resolving.
func (c *Checker) resolves(ctx context.Context, doiURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, doiURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Config.MaxRetries)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func (c *Checker) crossrefWork(ctx context.Context, bare string) (*crossrefWork, error) {
	reqURL := crossrefBase + url.PathEscape(bare)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Config.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Crossref request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crossref returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}
	return &cr.Message, nil
}

// userAgent builds the polite User-Agent Crossref asks for: tool name plus
// a mailto contact.
func (c *Checker) userAgent() string {
	ua := c.Config.UserAgent
	if ua == "" {
		ua = "sti-survey-engine/1.0"
	}
	if c.Config.ContactEmail != "" {
		ua += " (mailto:" + c.Config.ContactEmail + ")"
	}
	return ua
}

// matchWork compares a record against its Crossref metadata. It returns ""
// on a match, otherwise a note naming every disagreeing field. Fields absent
// on either side are not compared.
func matchWork(r types.Record, work *crossrefWork) string {
	var notes []string

	recTitle := normalizeTitle(r.TitleText())
	workTitle := normalizeTitle(work.title())
	if recTitle != "" && workTitle != "" {
		if titleSimilarity(recTitle, workTitle) < titleSimilarityThreshold {
			notes = append(notes, fmt.Sprintf("title mismatch (%q)", work.title()))
		}
	}

	if recYear, ok := r.Year(); ok {
		if workYear := work.year(); workYear > 0 {
			diff := recYear - workYear
			if diff < -1 || diff > 1 {
				notes = append(notes, fmt.Sprintf("year mismatch (record %d, crossref %d)", recYear, workYear))
			}
		}
	}

	if family := work.firstFamily(); family != "" && r.FirstAuthor() != "" {
		a, b := strings.ToLower(family), strings.ToLower(r.FirstAuthor())
		if a != b && !strings.Contains(a, b) && !strings.Contains(b, a) {
			notes = append(notes, fmt.Sprintf("first author mismatch (%q)", family))
		}
	}

	return strings.Join(notes, "; ")
}

// titleSimilarity is the Jaccard similarity of the two titles' token sets.
func titleSimilarity(a, b string) float64 {
	as, bs := tokenSet(a), tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	inter := 0
	for tok := range as {
		if bs[tok] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title  []string         `json:"title"`
	Author []crossrefAuthor `json:"author"`
	Issued crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (w *crossrefWork) title() string {
	if len(w.Title) > 0 {
		return w.Title[0]
	}
	return ""
}

func (w *crossrefWork) year() int {
	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		return w.Issued.DateParts[0][0]
	}
	return 0
}

func (w *crossrefWork) firstFamily() string {
	if len(w.Author) > 0 {
		return w.Author[0].Family
	}
	return ""
}
