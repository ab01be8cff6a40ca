// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the catalog entries matching opts to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions, path string) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the catalog entries matching opts to path as JSON.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions, path string) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	entries, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return entries, nil
}
