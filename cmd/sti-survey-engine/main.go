// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sti-survey-engine CLI.
//
// The CLI curates the semantic table interpretation survey dataset:
// validate and normalize records, compute the statistics snapshot, build
// the citation graph, maintain the queryable approach catalog, and verify
// DOIs and code licenses against external services.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cremarco/sti-survey-engine/internal/ingest"
	"github.com/cremarco/sti-survey-engine/internal/secrets"
	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the sti-survey-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "sti-survey-engine",
	Short: "Curation toolkit for the semantic table interpretation survey",
	Long: `sti-survey-engine maintains the semantic table interpretation survey
dataset. It validates records against the survey schema, normalizes legacy
field shapes, computes the derived statistics snapshot, builds the citation
graph, and keeps a queryable SQLite catalog of the surveyed approaches.

The verify and licenses commands cross-check the dataset against external
services: DOI resolution and Crossref metadata, and the licenses declared
by linked code repositories.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sti-survey-engine.yaml or ~/.config/sti-survey-engine/config.yaml)")
	rootCmd.PersistentFlags().String("dataset", "", "path to the survey dataset JSON (default: data/sti-survey.json)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding API token files")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sti-survey-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sti-survey-engine"))
		}
	}

	viper.SetEnvPrefix("STI_SURVEY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a string setting through the flag, then the config
// file or environment, then the built-in fallback.
func stringSetting(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return fallback
}

// datasetPath returns the dataset file location for the current invocation.
func datasetPath(cmd *cobra.Command) string {
	return stringSetting(cmd, "dataset", "dataset", "data/sti-survey.json")
}

// loadDataset reads and normalizes the dataset for the current invocation.
func loadDataset(cmd *cobra.Command) ([]types.Record, error) {
	return ingest.Load(datasetPath(cmd))
}

// httpSettings assembles the shared HTTP configuration from the config file
// and environment. Zero values fall back to the client defaults.
func httpSettings() types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:    time.Duration(viper.GetInt("http.timeout-seconds")) * time.Second,
		UserAgent:  viper.GetString("http.user-agent"),
		MaxRetries: viper.GetInt("http.max-retries"),
	}
}

// contactEmail returns the curator contact address sent to polite API pools,
// preferring the config file over the secrets directory.
func contactEmail() string {
	if v := viper.GetString("contact-email"); v != "" {
		return v
	}
	return loadedSecrets[secrets.KeyContactEmail]
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintln(os.Stderr, "Wrote", path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
