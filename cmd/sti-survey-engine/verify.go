package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/cremarco/sti-survey-engine/internal/doicheck"
	"github.com/cremarco/sti-survey-engine/internal/httputil"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// defaultVerifyDelay spaces DOI lookups so the resolver and Crossref's
// polite pool are not hammered.
const defaultVerifyDelay = 1 * time.Second

var verifyCmd = &cobra.Command{
	Use:   "verify-dois",
	Short: "Check every DOI against the resolver and Crossref",
	Long: `Verify canonicalizes each record's DOI, checks that it resolves, and
compares the record's title, year, and first author against Crossref
metadata. Records whose metadata disagrees are reported as mismatches.

Set contact-email (config or secrets) to use the polite API pools.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Duration("delay", 0, "delay between DOI lookups (default 1s)")
	verifyCmd.Flags().String("output", "", "write per-record results to a YAML file")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	records, err := loadDataset(cmd)
	if err != nil {
		return err
	}

	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = viper.GetDuration("verify.delay")
	}
	if delay == 0 {
		delay = defaultVerifyDelay
	}

	cfg := types.VerifyConfig{
		HTTPConfig:   httpSettings(),
		RequestDelay: delay,
		ContactEmail: contactEmail(),
	}
	checker := &doicheck.Checker{
		Client: httputil.NewClient(cfg.Timeout),
		Config: cfg,
	}

	results, summary, err := checker.Verify(context.Background(), records, os.Stdout)
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		data, err := yaml.Marshal(results)
		if err != nil {
			return fmt.Errorf("marshaling results: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintln(os.Stderr, "Wrote", output)
	}

	if problems := summary.Mismatched + summary.Unresolved; problems > 0 {
		return fmt.Errorf("%d DOI problem(s) found", problems)
	}
	return nil
}
