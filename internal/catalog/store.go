// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists the survey dataset in a queryable SQLite index:
// one row per approach with the columns curators filter on, a full-text
// index over titles, authors, and venues, and the canonical record JSON so
// single approaches can be pulled back out intact.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cremarco/sti-survey-engine/internal/stats"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the catalog database at cfg.Path. It creates
// the parent directory and the schema if they do not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path not configured")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS approaches (
			id TEXT PRIMARY KEY,
			year INTEGER,
			first_author TEXT,
			title TEXT,
			venue TEXT,
			method_type TEXT,
			method_technique TEXT,
			domain TEXT,
			cta INTEGER NOT NULL DEFAULT 0,
			cpa INTEGER NOT NULL DEFAULT 0,
			cea INTEGER NOT NULL DEFAULT 0,
			cnea INTEGER NOT NULL DEFAULT 0,
			revision_type TEXT,
			license TEXT,
			table_type TEXT,
			kg_triple_store TEXT,
			code_url TEXT,
			doi TEXT,
			checked_by_author INTEGER,
			raw TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_approaches_year ON approaches(year)`,
		`CREATE INDEX IF NOT EXISTS idx_approaches_method_type ON approaches(method_type)`,
		`CREATE INDEX IF NOT EXISTS idx_approaches_domain ON approaches(domain)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='approaches_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE approaches_fts USING fts5(title, first_author, venue, content=approaches, content_rowid=rowid)`,
			`CREATE TRIGGER approaches_ai AFTER INSERT ON approaches BEGIN
				INSERT INTO approaches_fts(rowid, title, first_author, venue)
				VALUES (new.rowid, new.title, new.first_author, new.venue);
			END`,
			`CREATE TRIGGER approaches_ad AFTER DELETE ON approaches BEGIN
				INSERT INTO approaches_fts(approaches_fts, rowid, title, first_author, venue)
				VALUES('delete', old.rowid, old.title, old.first_author, old.venue);
			END`,
			`CREATE TRIGGER approaches_au AFTER UPDATE ON approaches BEGIN
				INSERT INTO approaches_fts(approaches_fts, rowid, title, first_author, venue)
				VALUES('delete', old.rowid, old.title, old.first_author, old.venue);
				INSERT INTO approaches_fts(rowid, title, first_author, venue)
				VALUES (new.rowid, new.title, new.first_author, new.venue);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// LoadSummary holds counts from a catalog load run.
type LoadSummary struct {
	Indexed int
	Updated int
	Failed  int
}

// Total returns the number of records processed.
func (s LoadSummary) Total() int {
	return s.Indexed + s.Updated + s.Failed
}

// Load upserts the given records into the catalog in one transaction,
// reporting per-record progress to w. Records without an id are counted as
// failed and skipped; everything else is indexed or, when the id already
// exists, updated in place. The FTS index stays in sync via triggers.
func (s *Store) Load(ctx context.Context, records []types.Record, w io.Writer) (LoadSummary, error) {
	var summary LoadSummary

	existing := make(map[string]bool)
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM approaches`)
	if err != nil {
		return summary, fmt.Errorf("listing existing approaches: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return summary, fmt.Errorf("scanning id: %w", err)
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("listing existing approaches: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO approaches (id, year, first_author, title, venue,
			method_type, method_technique, domain,
			cta, cpa, cea, cnea,
			revision_type, license, table_type, kg_triple_store,
			code_url, doi, checked_by_author, raw)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			year=excluded.year, first_author=excluded.first_author,
			title=excluded.title, venue=excluded.venue,
			method_type=excluded.method_type, method_technique=excluded.method_technique,
			domain=excluded.domain,
			cta=excluded.cta, cpa=excluded.cpa, cea=excluded.cea, cnea=excluded.cnea,
			revision_type=excluded.revision_type, license=excluded.license,
			table_type=excluded.table_type, kg_triple_store=excluded.kg_triple_store,
			code_url=excluded.code_url, doi=excluded.doi,
			checked_by_author=excluded.checked_by_author, raw=excluded.raw`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id := r.ID()
		if id == "" {
			fmt.Fprintf(w, "failed  <no id>: record has no id\n")
			summary.Failed++
			continue
		}

		raw, err := json.Marshal(r)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		var year any
		if y, ok := r.Year(); ok {
			year = y
		}

		if _, err := stmt.ExecContext(ctx,
			id, year, r.FirstAuthor(), r.TitleText(), r.VenueLabel(),
			columnText(stats.Resolve(r, stats.FieldMainMethodType)),
			columnText(stats.Resolve(r, stats.FieldMainMethodTechnique)),
			columnText(stats.Resolve(r, stats.FieldDomain)),
			boolInt(stats.Truthy(stats.Resolve(r, stats.FieldCoreTaskCTA))),
			boolInt(stats.Truthy(stats.Resolve(r, stats.FieldCoreTaskCPA))),
			boolInt(stats.Truthy(stats.Resolve(r, stats.FieldCoreTaskCEA))),
			boolInt(stats.Truthy(stats.Resolve(r, stats.FieldCoreTaskCNEA))),
			columnText(stats.Resolve(r, stats.FieldUserRevisionType)),
			columnText(stats.Resolve(r, stats.FieldLicense)),
			columnText(stats.Resolve(r, stats.FieldInputTypeOfTable)),
			columnText(stats.Resolve(r, stats.FieldKGTripleStore)),
			strings.TrimSpace(r.CodeURL()), r.DOI(),
			checkedColumn(stats.Resolve(r, stats.FieldCheckedByAuthor)),
			string(raw),
		); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if existing[id] {
			fmt.Fprintf(w, "updated %s\n", id)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", id)
			summary.Indexed++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing load: %w", err)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Failed)

	return summary, nil
}

// columnText renders a resolved field value for a TEXT column. Only strings
// carry over; structured or numeric oddities read as empty, validation
// reports them separately.
func columnText(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// checkedColumn maps the tri-state author verification onto the nullable
// column: true and false store 1 and 0, anything else stays NULL.
func checkedColumn(v any) any {
	if b, ok := v.(bool); ok {
		return boolInt(b)
	}
	return nil
}
