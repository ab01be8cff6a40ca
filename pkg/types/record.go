// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data shapes shared across the survey toolkit:
// the canonical Record, the statistics Snapshot, and stage configuration.
package types

import "strings"

// Record is one surveyed approach/paper in canonical camelCase shape.
// Records stay semi-structured because the survey schema evolved over time;
// fields are reached via dotted paths and every access must tolerate absence.
// Ingest normalization guarantees the canonical key names, nothing more.
type Record map[string]any

// ID returns the record slug (YYYY_surname_firstword), or "" when absent.
func (r Record) ID() string {
	return r.stringField("id")
}

// Year returns the publication year and whether a numeric year is present.
// JSON decoding yields float64; records built in code may carry int.
func (r Record) Year() (int, bool) {
	switch v := r["year"].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// FirstAuthor returns the display surname used as the citation-graph node key.
func (r Record) FirstAuthor() string {
	return r.stringField("firstAuthor")
}

// Authors returns the ordered author list; entries that are not strings are skipped.
func (r Record) Authors() []string {
	raw, ok := r["authors"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// TitleText returns title.text, or "" when absent.
func (r Record) TitleText() string {
	if t, ok := r["title"].(map[string]any); ok {
		if s, ok := t["text"].(string); ok {
			return s
		}
	}
	return ""
}

// VenueLabel returns the venue display string: the acronym when set,
// otherwise the full name, otherwise "".
func (r Record) VenueLabel() string {
	v, ok := r["venue"].(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := v["acronym"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if s, ok := v["name"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// DOI returns the record's DOI value, or "" when absent.
func (r Record) DOI() string {
	return r.stringField("doi")
}

// CodeURL returns the codeAvailability value, or "" when absent.
func (r Record) CodeURL() string {
	return r.stringField("codeAvailability")
}

// Citations returns the parsed citation references. Both canonical shapes are
// accepted: a plain list of {ref, title} objects, or the older
// {references: [...]} wrapper.
func (r Record) Citations() []CitationRef {
	raw := r["citations"]
	if m, ok := raw.(map[string]any); ok {
		raw = m["references"]
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]CitationRef, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		var c CitationRef
		if s, ok := m["ref"].(string); ok {
			c.Ref = s
		}
		if s, ok := m["title"].(string); ok {
			c.Title = s
		}
		out = append(out, c)
	}
	return out
}

func (r Record) stringField(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// CitationRef is one entry of a record's citations list: the title as cited
// and, when the cited work is itself in the dataset, its record slug.
type CitationRef struct {
	// Ref is the slug of the cited record, or "" for works outside the dataset.
	Ref string `json:"ref" yaml:"ref"`

	// Title is the cited work's title as it appears in the reference list.
	Title string `json:"title" yaml:"title"`
}
