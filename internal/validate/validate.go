// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks canonical survey records against the dataset's
// curation rules: slug format, field coherence, closed vocabularies, DOI
// form, and the cross-field constraints between declared core tasks and
// filled support tasks. Issues are data, not errors; callers decide whether
// a dirty dataset stops the pipeline.
package validate

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

var (
	slugRe = regexp.MustCompile(`^(\d{4})_([a-z0-9]+)_([a-z0-9][a-z0-9-]*)$`)
	doiRe  = regexp.MustCompile(`(?i)^https://doi\.org/.+`)
)

var venueTypes = set("conference", "journal", "workshop")
var methodTypes = set("hybrid", "supervised", "unsupervised")
var revisionTypes = set("fully automated", "semi automated", "none")
var domainKinds = set("dependent", "independent")
var techniqueTags = set("rule-based", "svm", "crf", "clustering", "embeddings", "ontology-driven", "transformer")
var tableSources = set("web", "pdf", "spreadsheet", "relational", "scientific", "wiki", "gov-open-data")

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// Issue collects the problems found in one record.
type Issue struct {
	// ID is the record slug, or "<no id>" when absent.
	ID string `json:"id" yaml:"id"`

	// Problems lists human-readable rule violations in check order.
	Problems []string `json:"problems" yaml:"problems"`
}

// Report is the outcome of validating a dataset.
type Report struct {
	// Checked is the number of records examined.
	Checked int `json:"checked" yaml:"checked"`

	// WithIssues is the number of records with at least one problem.
	WithIssues int `json:"withIssues" yaml:"withIssues"`

	// Issues holds per-record problems in dataset order.
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Clean reports whether no record had problems.
func (r Report) Clean() bool {
	return r.WithIssues == 0
}

// WriteText prints the report in the curation scripts' format: totals, then
// up to limit problem records with their issues, then an elision line.
func (r Report) WriteText(w io.Writer, limit int) {
	fmt.Fprintf(w, "Checked entries: %d\n", r.Checked)
	fmt.Fprintf(w, "Entries with issues: %d\n", r.WithIssues)
	shown := r.Issues
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, issue := range shown {
		fmt.Fprintf(w, "- %s\n", issue.ID)
		for _, p := range issue.Problems {
			fmt.Fprintf(w, "  * %s\n", p)
		}
	}
	if limit > 0 && len(r.Issues) > limit {
		fmt.Fprintf(w, "... and %d more with issues\n", len(r.Issues)-limit)
	}
}

// Check validates every record plus the dataset-level uniqueness invariant
// on id. Records must already be in canonical shape.
func Check(records []types.Record) Report {
	report := Report{Checked: len(records)}
	seen := make(map[string]bool, len(records))

	for _, r := range records {
		problems := checkRecord(r)

		if id := r.ID(); id != "" {
			if seen[id] {
				problems = append(problems, "id: duplicate of an earlier entry")
			}
			seen[id] = true
		}

		if len(problems) > 0 {
			id := r.ID()
			if id == "" {
				id = "<no id>"
			}
			report.WithIssues++
			report.Issues = append(report.Issues, Issue{ID: id, Problems: problems})
		}
	}
	return report
}

func checkRecord(r types.Record) []string {
	var problems []string

	// id slug and its coherence with year and firstAuthor.
	id := r.ID()
	m := slugRe.FindStringSubmatch(id)
	if m == nil {
		problems = append(problems, "id: invalid slug format")
	} else {
		if year, ok := r.Year(); ok {
			if strconv.Itoa(year) != m[1] {
				problems = append(problems, "id/year: mismatch")
			}
		} else {
			problems = append(problems, "year: not an integer")
		}
		fa := r.FirstAuthor()
		if fa == "" {
			problems = append(problems, "firstAuthor: missing")
		} else if strings.ToLower(fa) != m[2] {
			problems = append(problems, "id/firstAuthor: surname mismatch")
		}
	}

	// authors list and first-author coherence.
	authors := r.Authors()
	if len(authors) == 0 {
		problems = append(problems, "authors: missing or empty")
	} else if fa := r.FirstAuthor(); fa != "" {
		if !strings.EqualFold(surname(authors[0]), fa) {
			problems = append(problems, "authors[0]/firstAuthor: mismatch")
		}
	}

	// venue vocabulary.
	venue, _ := r["venue"].(map[string]any)
	if vt, _ := venue["type"].(string); !venueTypes[strings.ToLower(vt)] {
		problems = append(problems, "venue.type: invalid")
	}
	if acr, ok := venue["acronym"]; ok {
		if _, isString := acr.(string); !isString {
			problems = append(problems, "venue.acronym: invalid type")
		}
	}

	// techniqueTags closed vocabulary.
	if tags, ok := r["techniqueTags"].([]any); ok {
		for _, tag := range tags {
			s, isString := tag.(string)
			if !isString || !techniqueTags[strings.ToLower(s)] {
				problems = append(problems, "techniqueTags: contains invalid tag(s)")
				break
			}
		}
	}

	// mainMethod vocabulary and supervision coherence.
	mm, _ := r["mainMethod"].(map[string]any)
	mmType, _ := mm["type"].(string)
	if !methodTypes[strings.ToLower(mmType)] {
		problems = append(problems, "mainMethod.type: invalid")
	}
	if _, hasSupervision := mm["supervision"]; hasSupervision && !strings.EqualFold(mmType, "supervised") {
		problems = append(problems, "mainMethod.supervision: present but not supervised")
	}

	// userRevision vocabulary.
	rev, _ := r["userRevision"].(map[string]any)
	if rt, _ := rev["type"].(string); !revisionTypes[strings.ToLower(rt)] {
		problems = append(problems, "userRevision.type: invalid")
	}

	// domain vocabulary, with a qualifier required for dependent approaches.
	dom, _ := r["domain"].(map[string]any)
	domKind, _ := dom["domain"].(string)
	if !domainKinds[strings.ToLower(domKind)] {
		problems = append(problems, "domain.domain: invalid")
	}
	if strings.EqualFold(domKind, "dependent") && !filled(dom["type"]) {
		problems = append(problems, "domain.type: empty while dependent")
	}

	// inputs.
	inputs, _ := r["inputs"].(map[string]any)
	if tot, ok := inputs["typeOfTable"]; ok {
		if _, isString := tot.(string); !isString {
			problems = append(problems, "inputs.typeOfTable: invalid type")
		}
	}
	if srcs, ok := inputs["tableSources"].([]any); ok {
		for _, src := range srcs {
			s, isString := src.(string)
			if !isString || !tableSources[strings.ToLower(s)] {
				problems = append(problems, "inputs.tableSources: invalid values")
				break
			}
		}
	}

	// doi must be canonical when present.
	if doi := r.DOI(); doi != "" && !doiRe.MatchString(doi) {
		problems = append(problems, "doi: not canonical https://doi.org/")
	}

	// verification flags.
	if r["checkedByAi"] != true {
		problems = append(problems, "checkedByAi: must be true")
	}
	switch v := r["checkedByAuthor"].(type) {
	case nil, bool:
	case string:
		if v != "" {
			problems = append(problems, "checkedByAuthor: must be boolean or empty")
		}
	default:
		problems = append(problems, "checkedByAuthor: must be boolean or empty")
	}

	// citations must exist and refer to valid slugs (or nothing).
	citations := r.Citations()
	if len(citations) == 0 {
		problems = append(problems, "citations: missing or empty")
	} else {
		for i, c := range citations {
			if c.Ref != "" && !slugRe.MatchString(c.Ref) {
				problems = append(problems, fmt.Sprintf("citations[%d].ref: invalid slug", i))
			}
		}
	}

	problems = append(problems, checkTaskCoherence(r)...)

	return problems
}

// checkTaskCoherence enforces that support tasks are only filled when the
// matching core task is declared.
func checkTaskCoherence(r types.Record) []string {
	ct, ctOK := r["coreTasks"].(map[string]any)
	st, stOK := r["supportTasks"].(map[string]any)
	if !ctOK || !stOK {
		return nil
	}

	var problems []string
	flag := func(name string) bool { v, _ := ct[name].(bool); return v }

	if !flag("cta") && filled(st["typeAnnotation"]) {
		problems = append(problems, "supportTasks.typeAnnotation present but cta=false")
	}
	if !flag("cpa") && filled(st["predicateAnnotation"]) {
		problems = append(problems, "supportTasks.predicateAnnotation present but cpa=false")
	}
	if el, ok := st["entityLinking"].(map[string]any); ok && !flag("cea") {
		if filled(el["description"]) || filled(el["candidateGeneration"]) || filled(el["entityDisambiguation"]) {
			problems = append(problems, "supportTasks.entityLinking filled but cea=false")
		}
	}
	if !flag("cnea") && filled(st["nilAnnotation"]) {
		problems = append(problems, "supportTasks.nilAnnotation present but cnea=false")
	}
	return problems
}

// filled reports whether a support-task value carries content: non-empty
// strings, true booleans, non-zero numbers, and non-empty containers count.
func filled(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func surname(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
