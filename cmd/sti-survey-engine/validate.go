package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cremarco/sti-survey-engine/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every record against the survey schema",
	Long: `Validate checks each record for missing required fields, malformed ids,
unknown category values, and task flags that contradict the described
approach. The command exits non-zero when any record has issues, so it can
gate dataset commits.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("format", "text", "output format: text or json")
	validateCmd.Flags().Int("limit", 0, "show at most this many problem records (0 = all)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}
	report := validate.Check(records)

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		limit, _ := cmd.Flags().GetInt("limit")
		report.WriteText(os.Stdout, limit)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use text or json", format)
	}

	if !report.Clean() {
		return fmt.Errorf("%d record(s) with issues", report.WithIssues)
	}
	return nil
}
