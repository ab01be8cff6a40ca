package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cremarco/sti-survey-engine/internal/report"
)

var bibliographyCmd = &cobra.Command{
	Use:   "bibliography",
	Short: "Export the surveyed approaches as a CSL-YAML bibliography",
	Long: `Bibliography writes every approach as a CSL item (id, type, title,
authors, venue, year, DOI) in CSL-YAML, ready for pandoc-driven citation
rendering in the survey manuscript.`,
	RunE: runBibliography,
}

func init() {
	bibliographyCmd.Flags().String("output", "", "write to a file instead of stdout")

	rootCmd.AddCommand(bibliographyCmd)
}

func runBibliography(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return report.FormatCSL(records, os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer f.Close()

	if err := report.FormatCSL(records, f); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Wrote", output)
	return nil
}
