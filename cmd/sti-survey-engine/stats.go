package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/cremarco/sti-survey-engine/internal/report"
	"github.com/cremarco/sti-survey-engine/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute the survey statistics snapshot",
	Long: `Stats aggregates the whole dataset in one pass and reports the derived
statistics: completeness per required field, method and domain distributions,
core task counts, pipeline step coverage, knowledge graph usage, code
availability, and author verification status.

The text format is a readable Markdown overview; json and yaml emit the
full snapshot for downstream tooling.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	statsCmd.Flags().String("output", "", "write to a file instead of stdout")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}
	snap := stats.Aggregate(records)

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var data []byte
	switch format {
	case "text", "":
		data = []byte(report.Overview(snap))
	case "json":
		data, err = json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling snapshot: %w", err)
		}
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshaling snapshot: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}

	return writeOutput(output, data)
}
