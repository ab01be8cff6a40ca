package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cremarco/sti-survey-engine/internal/httputil"
	"github.com/cremarco/sti-survey-engine/internal/ingest"
	"github.com/cremarco/sti-survey-engine/internal/licenses"
	"github.com/cremarco/sti-survey-engine/internal/secrets"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

var licensesCmd = &cobra.Command{
	Use:   "licenses",
	Short: "Look up code licenses on the hosting platform",
	Long: `Licenses fetches the declared license for every GitHub repository linked
from the dataset and proposes updates where the recorded license disagrees.
A github-token secret (or GITHUB_TOKEN) raises the API rate limit.

Without --write the command only prints the proposed changes. With --write
it backs up the dataset file first, then applies them.`,
	RunE: runLicenses,
}

func init() {
	licensesCmd.Flags().Bool("write", false, "apply proposed changes to the dataset (a timestamped backup is kept)")

	rootCmd.AddCommand(licensesCmd)
}

func runLicenses(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	cfg := types.LicenseConfig{
		HTTPConfig: httpSettings(),
		Token:      secrets.GitHubToken(loadedSecrets),
	}
	client := &licenses.Client{
		HTTP:   httputil.NewClient(cfg.Timeout),
		Config: cfg,
	}

	changes, _, err := client.Lookup(context.Background(), records, os.Stdout)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	write, _ := cmd.Flags().GetBool("write")
	if !write {
		fmt.Printf("\nrerun with --write to apply %d change(s)\n", len(changes))
		return nil
	}

	path := datasetPath(cmd)
	backup, err := ingest.Backup(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Backed up dataset to", backup)

	applied := licenses.Apply(records, changes)
	if err := ingest.Write(path, records); err != nil {
		return err
	}
	fmt.Printf("\napplied %d license change(s) to %s\n", applied, path)
	return nil
}
