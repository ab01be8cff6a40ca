package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/cremarco/sti-survey-engine/internal/ingest"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite legacy field shapes and shorthand values",
	Long: `Normalize canonicalizes the dataset in place: legacy kebab-case keys
become camelCase, single-string venues become venue objects, and — with
--canonical-values — shorthand category values (unsup, dependent,
semi-automated) become their display forms.

Without --write the command only reports which records would change. With
--write it backs up the dataset file first, then rewrites it.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().Bool("write", false, "rewrite the dataset file (a timestamped backup is kept)")
	normalizeCmd.Flags().Bool("canonical-values", false, "also rewrite shorthand category values to display forms")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	path := datasetPath(cmd)

	// Decode without normalizing so shape-only rewrites are visible in the diff.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	canonicalValues, _ := cmd.Flags().GetBool("canonical-values")

	changed := 0
	records := make([]types.Record, len(raw))
	for i, m := range raw {
		normalized := ingest.Normalize(m)
		if canonicalValues {
			normalized = ingest.NormalizeValues(normalized)
		}
		if !reflect.DeepEqual(map[string]any(normalized), m) {
			changed++
			fmt.Printf("rewrite %s\n", normalized.ID())
		}
		records[i] = normalized
	}

	write, _ := cmd.Flags().GetBool("write")
	if !write {
		fmt.Printf("\n%d record(s) would change; rerun with --write to apply\n", changed)
		return nil
	}

	backup, err := ingest.Backup(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Backed up dataset to", backup)

	if err := ingest.Write(path, records); err != nil {
		return err
	}
	fmt.Printf("\nrewrote %d record(s) in %s\n", changed, path)
	return nil
}
