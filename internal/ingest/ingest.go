// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest loads the survey dataset and normalizes every historical
// wire shape into the canonical camelCase record shape. Downstream code
// (statistics, validation, catalog, exports) only ever sees canonical
// records; shape differences stop here.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// Load reads the dataset file and returns normalized records.
func Load(path string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// Parse decodes a JSON array of records and normalizes each one.
func Parse(r io.Reader) ([]types.Record, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding record array: %w", err)
	}

	records := make([]types.Record, len(raw))
	for i, m := range raw {
		records[i] = Normalize(m)
	}
	return records, nil
}

// Write serializes records back to a dataset file, 2-space indented with a
// trailing newline, matching how the dataset has always been stored.
func Write(path string, records []types.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dataset: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Backup copies the dataset file next to itself with a timestamp suffix and
// returns the backup path. Rewrite flows call this before touching the file.
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s for backup: %w", path, err)
	}
	backup := fmt.Sprintf("%s.bak-%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", backup, err)
	}
	return backup, nil
}
