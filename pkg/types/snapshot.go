// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"sort"
)

// Bucket is one category value of a distribution with its record count and
// its share of all entries.
type Bucket struct {
	// Value is the literal category string, "N/A" for absent values.
	Value string `json:"value" yaml:"value"`

	// Count is the number of records in this bucket.
	Count int `json:"count" yaml:"count"`

	// Percentage is 100 * Count / totalEntries, 0 when the dataset is empty.
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Distribution is an ordered list of buckets. Order is first occurrence
// during the aggregation pass; display sorting is the consumer's concern.
type Distribution []Bucket

// Get returns the bucket for value and whether it exists.
func (d Distribution) Get(value string) (Bucket, bool) {
	for _, b := range d {
		if b.Value == value {
			return b, true
		}
	}
	return Bucket{}, false
}

// Total sums the counts across all buckets.
func (d Distribution) Total() int {
	n := 0
	for _, b := range d {
		n += b.Count
	}
	return n
}

// ByCountDesc returns a copy sorted by count descending. Ties keep the
// original first-occurrence order.
func (d Distribution) ByCountDesc() Distribution {
	out := make(Distribution, len(d))
	copy(out, d)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// YearRange is the span of numeric publication years seen in the dataset.
// When no record carried a numeric year it serializes as "N/A"/"N/A".
type YearRange struct {
	Min   int  `json:"-" yaml:"-"`
	Max   int  `json:"-" yaml:"-"`
	Valid bool `json:"-" yaml:"-"`
}

type yearRangeWire struct {
	Min any `json:"min" yaml:"min"`
	Max any `json:"max" yaml:"max"`
}

func (yr YearRange) wire() yearRangeWire {
	if !yr.Valid {
		return yearRangeWire{Min: "N/A", Max: "N/A"}
	}
	return yearRangeWire{Min: yr.Min, Max: yr.Max}
}

// MarshalJSON emits {"min": 2010, "max": 2024} or "N/A" strings when invalid.
func (yr YearRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(yr.wire())
}

// MarshalYAML mirrors MarshalJSON for YAML output.
func (yr YearRange) MarshalYAML() (any, error) {
	return yr.wire(), nil
}

// TaskCounts holds the number of records addressing each core task.
type TaskCounts struct {
	CTA  int `json:"cta" yaml:"cta"`
	CPA  int `json:"cpa" yaml:"cpa"`
	CEA  int `json:"cea" yaml:"cea"`
	CNEA int `json:"cnea" yaml:"cnea"`
}

// TaskPercentages holds each core-task count as a share of all entries.
type TaskPercentages struct {
	CTA  float64 `json:"cta" yaml:"cta"`
	CPA  float64 `json:"cpa" yaml:"cpa"`
	CEA  float64 `json:"cea" yaml:"cea"`
	CNEA float64 `json:"cnea" yaml:"cnea"`
}

// StepCount is the coverage count for one support-task pipeline step.
type StepCount struct {
	// Step is the canonical step name (e.g. "dataPreparation").
	Step string `json:"step" yaml:"step"`

	// Count is the number of records covering the step.
	Count int `json:"count" yaml:"count"`
}

// FieldCount is the missing-value count for one required field path.
type FieldCount struct {
	// Path is the dotted required-field path (e.g. "mainMethod.type").
	Path string `json:"path" yaml:"path"`

	// Count is the number of records missing the field.
	Count int `json:"count" yaml:"count"`
}

// KGUsage counts records declaring knowledge-graph backends.
type KGUsage struct {
	// TripleStore is the number of records with a non-empty inputs.kg.tripleStore.
	TripleStore int `json:"tripleStore" yaml:"tripleStore"`

	// Index is the number of records with a non-empty inputs.kg.index.
	Index int `json:"index" yaml:"index"`
}

// AuthorVerification is the tri-state split of checkedByAuthor values.
// False is a real answer, distinct from the field being absent.
type AuthorVerification struct {
	// Verified counts records where checkedByAuthor is literally true.
	Verified int `json:"verified" yaml:"verified"`

	// NotVerified counts records where checkedByAuthor is literally false.
	NotVerified int `json:"notVerified" yaml:"notVerified"`

	// Missing counts records where checkedByAuthor is anything else.
	Missing int `json:"missing" yaml:"missing"`
}

// Snapshot is the complete output of one statistics pass over the dataset.
// It is immutable once returned; every view (table badges, overview counters,
// charts) reads the same snapshot so their numbers can never diverge.
type Snapshot struct {
	// TotalEntries is the number of records aggregated.
	TotalEntries int `json:"totalEntries" yaml:"totalEntries"`

	// EntriesWithMissingFields counts records missing at least one required field.
	EntriesWithMissingFields int `json:"entriesWithMissingFields" yaml:"entriesWithMissingFields"`

	// TotalMissingFields is the sum of missing required fields across all records.
	TotalMissingFields int `json:"totalMissingFields" yaml:"totalMissingFields"`

	// MostMissingField is "<path> (<count>)" for the worst field, "None" when
	// nothing is missing. Ties resolve to the first path in declaration order.
	MostMissingField string `json:"mostMissingField" yaml:"mostMissingField"`

	// MissingFields lists per-path missing counts in required-field order.
	MissingFields []FieldCount `json:"missingFields" yaml:"missingFields"`

	// YearRange is the min/max numeric publication year.
	YearRange YearRange `json:"yearRange" yaml:"yearRange"`

	// MainMethodType buckets records by mainMethod.type.
	MainMethodType Distribution `json:"mainMethodType" yaml:"mainMethodType"`

	// Domain buckets records by domain.domain.
	Domain Distribution `json:"domain" yaml:"domain"`

	// License buckets records by license.
	License Distribution `json:"license" yaml:"license"`

	// Venue buckets records by venue display string.
	Venue Distribution `json:"venue" yaml:"venue"`

	// UserRevisionType buckets records by userRevision.type.
	UserRevisionType Distribution `json:"userRevisionType" yaml:"userRevisionType"`

	// InputTypeOfTable buckets records by inputs.typeOfTable.
	InputTypeOfTable Distribution `json:"inputTypeOfTable" yaml:"inputTypeOfTable"`

	// ApproachesWithCode counts records with a non-blank codeAvailability string.
	ApproachesWithCode int `json:"approachesWithCode" yaml:"approachesWithCode"`

	// CodePercentage is ApproachesWithCode as a share of all entries.
	CodePercentage float64 `json:"codePercentage" yaml:"codePercentage"`

	// TaskCounts counts records addressing each of the four core tasks.
	TaskCounts TaskCounts `json:"taskCounts" yaml:"taskCounts"`

	// TaskPercentages is each task count as a share of all entries.
	TaskPercentages TaskPercentages `json:"taskPercentages" yaml:"taskPercentages"`

	// StepsCoverage counts records covering each support-task step, in
	// canonical step order.
	StepsCoverage []StepCount `json:"stepsCoverage" yaml:"stepsCoverage"`

	// KGUsage counts knowledge-graph backend declarations.
	KGUsage KGUsage `json:"kgUsage" yaml:"kgUsage"`

	// AuthorVerification is the tri-state checkedByAuthor split.
	AuthorVerification AuthorVerification `json:"authorVerification" yaml:"authorVerification"`
}
