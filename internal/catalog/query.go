// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Text is the FTS5 full-text search string, matched against title,
	// first author, and venue.
	Text string

	// Task filters approaches covering one core task: cta, cpa, cea, or cnea.
	Task string

	// MethodType, Domain, and Venue filter on the respective columns,
	// case-insensitively.
	MethodType string
	Domain     string
	Venue      string

	// YearFrom and YearTo bound the publication year inclusively; zero
	// means unbounded.
	YearFrom int
	YearTo   int

	// WithCode keeps only approaches that publish their code.
	WithCode bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Task == "" && q.MethodType == "" &&
		q.Domain == "" && q.Venue == "" &&
		q.YearFrom == 0 && q.YearTo == 0 && !q.WithCode
}

// Entry is one catalog row: the queryable projection of an approach.
type Entry struct {
	ID              string `json:"id" yaml:"id"`
	Year            int    `json:"year" yaml:"year"`
	FirstAuthor     string `json:"first_author" yaml:"first_author"`
	Title           string `json:"title" yaml:"title"`
	Venue           string `json:"venue,omitempty" yaml:"venue,omitempty"`
	MethodType      string `json:"method_type,omitempty" yaml:"method_type,omitempty"`
	MethodTechnique string `json:"method_technique,omitempty" yaml:"method_technique,omitempty"`
	Domain          string `json:"domain,omitempty" yaml:"domain,omitempty"`
	CTA             bool   `json:"cta" yaml:"cta"`
	CPA             bool   `json:"cpa" yaml:"cpa"`
	CEA             bool   `json:"cea" yaml:"cea"`
	CNEA            bool   `json:"cnea" yaml:"cnea"`
	RevisionType    string `json:"revision_type,omitempty" yaml:"revision_type,omitempty"`
	License         string `json:"license,omitempty" yaml:"license,omitempty"`
	TableType       string `json:"table_type,omitempty" yaml:"table_type,omitempty"`
	TripleStore     string `json:"kg_triple_store,omitempty" yaml:"kg_triple_store,omitempty"`
	CodeURL         string `json:"code_url,omitempty" yaml:"code_url,omitempty"`
	DOI             string `json:"doi,omitempty" yaml:"doi,omitempty"`
	CheckedByAuthor *bool  `json:"checked_by_author,omitempty" yaml:"checked_by_author,omitempty"`
}

// Query runs a catalog query with optional full-text search and structured
// filters. Full-text results are ranked by relevance; structured-only
// queries are sorted newest first, then by id, so output is deterministic.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	task, err := taskColumn(opts.Task)
	if err != nil {
		return nil, err
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	const cols = `a.id, a.year, a.first_author, a.title, a.venue,
		a.method_type, a.method_technique, a.domain,
		a.cta, a.cpa, a.cea, a.cnea,
		a.revision_type, a.license, a.table_type, a.kg_triple_store,
		a.code_url, a.doi, a.checked_by_author`

	if useFTS {
		qb.WriteString(`SELECT ` + cols + `
			FROM approaches_fts
			JOIN approaches a ON a.rowid = approaches_fts.rowid
			WHERE approaches_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(`SELECT ` + cols + `
			FROM approaches a
			WHERE 1=1`)
	}

	if task != "" {
		qb.WriteString(` AND a.` + task + ` = 1`)
	}
	if opts.MethodType != "" {
		qb.WriteString(` AND a.method_type = ? COLLATE NOCASE`)
		args = append(args, opts.MethodType)
	}
	if opts.Domain != "" {
		qb.WriteString(` AND a.domain = ? COLLATE NOCASE`)
		args = append(args, opts.Domain)
	}
	if opts.Venue != "" {
		qb.WriteString(` AND a.venue = ? COLLATE NOCASE`)
		args = append(args, opts.Venue)
	}
	if opts.YearFrom > 0 {
		qb.WriteString(` AND a.year >= ?`)
		args = append(args, opts.YearFrom)
	}
	if opts.YearTo > 0 {
		qb.WriteString(` AND a.year <= ?`)
		args = append(args, opts.YearTo)
	}
	if opts.WithCode {
		qb.WriteString(` AND a.code_url <> ''`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY approaches_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY a.year DESC, a.id ASC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			year    sql.NullInt64
			cta     int
			cpa     int
			cea     int
			cnea    int
			checked sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID, &year, &e.FirstAuthor, &e.Title, &e.Venue,
			&e.MethodType, &e.MethodTechnique, &e.Domain,
			&cta, &cpa, &cea, &cnea,
			&e.RevisionType, &e.License, &e.TableType, &e.TripleStore,
			&e.CodeURL, &e.DOI, &checked,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if year.Valid {
			e.Year = int(year.Int64)
		}
		e.CTA, e.CPA, e.CEA, e.CNEA = cta != 0, cpa != 0, cea != 0, cnea != 0
		if checked.Valid {
			b := checked.Int64 != 0
			e.CheckedByAuthor = &b
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Get returns the full canonical record stored for id.
func (s *Store) Get(ctx context.Context, id string) (types.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT raw FROM approaches WHERE id = ?`, id,
	).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("approach %s not found", id)
		}
		return nil, fmt.Errorf("looking up approach: %w", err)
	}

	var r types.Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decoding stored record %s: %w", id, err)
	}
	return r, nil
}

func taskColumn(task string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(task)) {
	case "":
		return "", nil
	case "cta":
		return "cta", nil
	case "cpa":
		return "cpa", nil
	case "cea":
		return "cea", nil
	case "cnea":
		return "cnea", nil
	}
	return "", fmt.Errorf("unknown task %q (want cta, cpa, cea, or cnea)", task)
}
