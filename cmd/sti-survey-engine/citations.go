package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/cremarco/sti-survey-engine/internal/citegraph"
)

var citationsCmd = &cobra.Command{
	Use:   "citations",
	Short: "Build the citation and lineage graph",
	Long: `Citations builds the directed graph of in-dataset references: cite edges
between approaches that reference each other, and evolve edges chaining each
first author's approaches through the years. Edges carry the publication
dates both ends, ready for timeline visualization.`,
	RunE: runCitations,
}

func init() {
	citationsCmd.Flags().String("format", "json", "output format: json or yaml")
	citationsCmd.Flags().String("output", "", "write to a file instead of stdout")

	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}
	edges := citegraph.Build(records)

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var data []byte
	switch format {
	case "json", "":
		data, err = json.MarshalIndent(edges, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling graph: %w", err)
		}
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(edges)
		if err != nil {
			return fmt.Errorf("marshaling graph: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}

	return writeOutput(output, data)
}
