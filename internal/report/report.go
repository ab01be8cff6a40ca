// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders derived statistics and catalog queries for people:
// a Markdown overview of the survey, fixed-width tables for query results,
// and CSL-YAML bibliographies for reference managers.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cremarco/sti-survey-engine/internal/catalog"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// venueRowLimit caps the venue table; the long tail of one-off venues adds
// noise without information.
const venueRowLimit = 15

// Overview renders the snapshot as a Markdown report. Distributions are
// shown largest bucket first; the snapshot itself stays in first-seen order.
func Overview(snap *types.Snapshot) string {
	var b strings.Builder

	b.WriteString("# STI Survey Overview\n\n")
	fmt.Fprintf(&b, "%d approaches surveyed", snap.TotalEntries)
	if snap.YearRange.Valid {
		fmt.Fprintf(&b, ", %d-%d", snap.YearRange.Min, snap.YearRange.Max)
	}
	b.WriteString(".\n")

	b.WriteString("\n## Completeness\n\n")
	fmt.Fprintf(&b, "- Entries with missing fields: %d\n", snap.EntriesWithMissingFields)
	fmt.Fprintf(&b, "- Total missing fields: %d\n", snap.TotalMissingFields)
	fmt.Fprintf(&b, "- Most missing field: %s\n", snap.MostMissingField)

	var missing []types.FieldCount
	for _, fc := range snap.MissingFields {
		if fc.Count > 0 {
			missing = append(missing, fc)
		}
	}
	if len(missing) > 0 {
		b.WriteString("\n| Field | Missing |\n|---|---|\n")
		for _, fc := range missing {
			fmt.Fprintf(&b, "| %s | %d |\n", fc.Path, fc.Count)
		}
	}

	writeDistribution(&b, "Methods", snap.MainMethodType, 0)
	writeDistribution(&b, "Domains", snap.Domain, 0)
	writeDistribution(&b, "Table types", snap.InputTypeOfTable, 0)
	writeDistribution(&b, "User revision", snap.UserRevisionType, 0)
	writeDistribution(&b, "Licenses", snap.License, 0)
	writeDistribution(&b, "Venues", snap.Venue, venueRowLimit)

	b.WriteString("\n## Core tasks\n\n")
	fmt.Fprintf(&b, "- CTA: %d (%.1f%%)\n", snap.TaskCounts.CTA, snap.TaskPercentages.CTA)
	fmt.Fprintf(&b, "- CPA: %d (%.1f%%)\n", snap.TaskCounts.CPA, snap.TaskPercentages.CPA)
	fmt.Fprintf(&b, "- CEA: %d (%.1f%%)\n", snap.TaskCounts.CEA, snap.TaskPercentages.CEA)
	fmt.Fprintf(&b, "- CNEA: %d (%.1f%%)\n", snap.TaskCounts.CNEA, snap.TaskPercentages.CNEA)

	b.WriteString("\n## Pipeline steps\n\n")
	for _, sc := range snap.StepsCoverage {
		fmt.Fprintf(&b, "- %s: %d\n", sc.Step, sc.Count)
	}

	b.WriteString("\n## Knowledge graphs\n\n")
	fmt.Fprintf(&b, "- Triple store configured: %d\n", snap.KGUsage.TripleStore)
	fmt.Fprintf(&b, "- Index configured: %d\n", snap.KGUsage.Index)

	b.WriteString("\n## Code\n\n")
	fmt.Fprintf(&b, "- %d approaches publish code (%.1f%%)\n",
		snap.ApproachesWithCode, snap.CodePercentage)

	b.WriteString("\n## Author verification\n\n")
	fmt.Fprintf(&b, "- Verified: %d\n", snap.AuthorVerification.Verified)
	fmt.Fprintf(&b, "- Not verified: %d\n", snap.AuthorVerification.NotVerified)
	fmt.Fprintf(&b, "- Unreported: %d\n", snap.AuthorVerification.Missing)

	return b.String()
}

func writeDistribution(b *strings.Builder, title string, dist types.Distribution, limit int) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(dist) == 0 {
		b.WriteString("No data.\n")
		return
	}

	rows := dist.ByCountDesc()
	more := 0
	if limit > 0 && len(rows) > limit {
		more = len(rows) - limit
		rows = rows[:limit]
	}

	b.WriteString("| Value | Count | Share |\n|---|---|---|\n")
	for _, bucket := range rows {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", bucket.Value, bucket.Count, bucket.Percentage)
	}
	if more > 0 {
		fmt.Fprintf(b, "\nand %d more.\n", more)
	}
}

// FormatTable writes catalog entries as a human-readable table to w.
func FormatTable(entries []catalog.Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No approaches found.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-4s  %-14s  %-44s  %-14s  %-4s  %s\n",
		"ID", "Year", "Author", "Title", "Venue", "Code", "Tasks")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, e := range entries {
		year := ""
		if e.Year > 0 {
			year = strconv.Itoa(e.Year)
		}
		code := ""
		if e.CodeURL != "" {
			code = "yes"
		}
		fmt.Fprintf(w, "%-24s  %-4s  %-14s  %-44s  %-14s  %-4s  %s\n",
			truncate(e.ID, 24), year, truncate(e.FirstAuthor, 14),
			truncate(e.Title, 44), truncate(e.Venue, 14), code, taskList(e))
	}

	fmt.Fprintf(w, "\n%d approaches\n", len(entries))
}

func taskList(e catalog.Entry) string {
	var tasks []string
	if e.CTA {
		tasks = append(tasks, "cta")
	}
	if e.CPA {
		tasks = append(tasks, "cpa")
	}
	if e.CEA {
		tasks = append(tasks, "cea")
	}
	if e.CNEA {
		tasks = append(tasks, "cnea")
	}
	return strings.Join(tasks, ",")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
