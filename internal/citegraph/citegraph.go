// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citegraph derives the citation-map edges from canonical records:
// cite edges for dataset-internal references and evolve edges chaining one
// author's line of work chronologically. The edge list feeds the chord
// diagram data file and is fully deterministic for a given dataset.
package citegraph

import (
	"fmt"
	"sort"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// EdgeType distinguishes citation edges from work-evolution edges.
type EdgeType string

const (
	EdgeCite   EdgeType = "cite"
	EdgeEvolve EdgeType = "evolve"
)

// Edge connects two first authors in the citation map. Dates are the
// publication years as YYYY-01-01 strings, the wire form the chord diagram
// consumes.
type Edge struct {
	// Type is "cite" or "evolve".
	Type EdgeType `json:"type" yaml:"type"`

	// Source is the citing (or earlier) work's first author.
	Source string `json:"source" yaml:"source"`

	// SourceDate is the citing work's year as YYYY-01-01.
	SourceDate string `json:"source_date" yaml:"source_date"`

	// Target is the cited (or later) work's first author.
	Target string `json:"target" yaml:"target"`

	// TargetDate is the cited work's year as YYYY-01-01.
	TargetDate string `json:"target_date" yaml:"target_date"`

	// Value is the edge weight, always 1; the diagram accumulates.
	Value int `json:"value" yaml:"value"`
}

// Build derives all edges from records. Records without a first author or a
// plausible year contribute nothing; references to works outside the dataset
// are skipped. Output order is (SourceDate, TargetDate, Type, Source,
// Target), ascending.
func Build(records []types.Record) []Edge {
	byID := make(map[string]types.Record, len(records))
	for _, r := range records {
		if id := r.ID(); id != "" {
			byID[id] = r
		}
	}

	var edges []Edge
	edges = append(edges, citeEdges(records, byID)...)
	edges = append(edges, evolveEdges(records)...)

	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.SourceDate != b.SourceDate {
			return a.SourceDate < b.SourceDate
		}
		if a.TargetDate != b.TargetDate {
			return a.TargetDate < b.TargetDate
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
	return edges
}

func citeEdges(records []types.Record, byID map[string]types.Record) []Edge {
	var edges []Edge
	for _, r := range records {
		source := r.FirstAuthor()
		sourceDate := yearDate(r)
		if source == "" || sourceDate == "" {
			continue
		}
		for _, c := range r.Citations() {
			target, ok := byID[c.Ref]
			if !ok {
				continue
			}
			targetAuthor := target.FirstAuthor()
			targetDate := yearDate(target)
			if targetAuthor == "" || targetDate == "" {
				continue
			}
			edges = append(edges, Edge{
				Type:       EdgeCite,
				Source:     source,
				SourceDate: sourceDate,
				Target:     targetAuthor,
				TargetDate: targetDate,
				Value:      1,
			})
		}
	}
	return edges
}

// evolveEdges chains each author's works chronologically, keeping one work
// per year (the first by id) so a prolific year does not fan out.
func evolveEdges(records []types.Record) []Edge {
	byAuthor := make(map[string][]types.Record)
	var authors []string
	for _, r := range records {
		a := r.FirstAuthor()
		if a == "" || yearDate(r) == "" {
			continue
		}
		if _, seen := byAuthor[a]; !seen {
			authors = append(authors, a)
		}
		byAuthor[a] = append(byAuthor[a], r)
	}

	var edges []Edge
	for _, author := range authors {
		works := byAuthor[author]
		sort.Slice(works, func(i, j int) bool {
			yi, _ := works[i].Year()
			yj, _ := works[j].Year()
			if yi != yj {
				return yi < yj
			}
			return works[i].ID() < works[j].ID()
		})

		var chain []types.Record
		seenYears := make(map[int]bool)
		for _, w := range works {
			y, _ := w.Year()
			if seenYears[y] {
				continue
			}
			seenYears[y] = true
			chain = append(chain, w)
		}

		for i := 1; i < len(chain); i++ {
			edges = append(edges, Edge{
				Type:       EdgeEvolve,
				Source:     chain[i-1].FirstAuthor(),
				SourceDate: yearDate(chain[i-1]),
				Target:     chain[i].FirstAuthor(),
				TargetDate: yearDate(chain[i]),
				Value:      1,
			})
		}
	}
	return edges
}

// yearDate renders a record's year as YYYY-01-01, or "" when the year is
// absent or outside the four-digit range.
func yearDate(r types.Record) string {
	y, ok := r.Year()
	if !ok || y < 1000 || y > 9999 {
		return ""
	}
	return fmt.Sprintf("%04d-01-01", y)
}
