// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cremarco/sti-survey-engine/internal/catalog"
	"github.com/cremarco/sti-survey-engine/internal/report"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the queryable approach catalog (load, query, export)",
	Long: `Catalog maintains a local SQLite index of the surveyed approaches with
full-text search over titles, authors, and venues. Use subcommands to load
the dataset into the catalog, query it, or export filtered subsets.`,
}

// --- load subcommand ---

var catalogLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Index the dataset into the catalog",
	Long: `Load ingests every dataset record into the SQLite catalog, indexing the
searchable columns and keeping the full record alongside. Reloading after
dataset edits updates rows in place.`,
	RunE: runCatalogLoad,
}

func runCatalogLoad(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	store, err := catalogStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Load(context.Background(), records, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Search the catalog with full-text search and filters",
	Long: `Query searches the catalog using full-text search over titles, authors,
and venues, structured filters (task, method type, domain, venue, years,
code availability), or a combination of both.

Use --id to fetch one approach's full record instead of searching.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	store, err := catalogStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	// Lookup mode: print the full stored record for one approach.
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		record, err := store.Get(context.Background(), id)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	opts := catalogOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --task, --method-type, --domain, --venue, a year bound, or --with-code")
	}

	entries, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	report.FormatTable(entries, os.Stdout)
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the full catalog (or a filtered subset) to a YAML or JSON
file. Supports the same filter flags as query for partial exports.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := catalogStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := catalogOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if output == "" {
			output = "catalog/export.yaml"
		}
		if err := store.ExportYAML(context.Background(), opts, output); err != nil {
			return err
		}
	case "json":
		if output == "" {
			output = "catalog/export.json"
		}
		if err := store.ExportJSON(context.Background(), opts, output); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", output)
	return nil
}

// --- shared helpers ---

func catalogStore(cmd *cobra.Command) (*catalog.Store, error) {
	path := stringSetting(cmd, "catalog-path", "catalog.path", "catalog/sti-survey.db")

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = viper.GetInt("catalog.max-results")
	}

	return catalog.NewStore(types.CatalogConfig{
		Path:       path,
		MaxResults: maxResults,
	})
}

func catalogOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	task, _ := cmd.Flags().GetString("task")
	methodType, _ := cmd.Flags().GetString("method-type")
	domain, _ := cmd.Flags().GetString("domain")
	venue, _ := cmd.Flags().GetString("venue")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	withCode, _ := cmd.Flags().GetBool("with-code")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Text:       queryText,
		Task:       task,
		MethodType: methodType,
		Domain:     domain,
		Venue:      venue,
		YearFrom:   yearFrom,
		YearTo:     yearTo,
		WithCode:   withCode,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-path", "", "catalog database file (default: catalog/sti-survey.db)")
	catalogCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (0 = config or 20)")

	// Query flags.
	catalogQueryCmd.Flags().String("query", "", "full-text search over title, author, and venue")
	catalogQueryCmd.Flags().String("task", "", "filter by core task: cta, cpa, cea, or cnea")
	catalogQueryCmd.Flags().String("method-type", "", "filter by method type (sup, unsup, hybrid)")
	catalogQueryCmd.Flags().String("domain", "", "filter by domain (dependent, independent)")
	catalogQueryCmd.Flags().String("venue", "", "filter by venue")
	catalogQueryCmd.Flags().Int("year-from", 0, "earliest publication year")
	catalogQueryCmd.Flags().Int("year-to", 0, "latest publication year")
	catalogQueryCmd.Flags().Bool("with-code", false, "only approaches with published code")
	catalogQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().String("id", "", "fetch one approach's full record by id")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("output", "", "export file (default: catalog/export.<format>)")
	catalogExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	catalogExportCmd.Flags().String("task", "", "filter by core task for partial export")
	catalogExportCmd.Flags().String("method-type", "", "filter by method type for partial export")
	catalogExportCmd.Flags().String("domain", "", "filter by domain for partial export")
	catalogExportCmd.Flags().String("venue", "", "filter by venue for partial export")
	catalogExportCmd.Flags().Int("year-from", 0, "earliest publication year for partial export")
	catalogExportCmd.Flags().Int("year-to", 0, "latest publication year for partial export")
	catalogExportCmd.Flags().Bool("with-code", false, "only approaches with published code")
	catalogExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogLoadCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
