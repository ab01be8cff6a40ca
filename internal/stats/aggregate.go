// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats is the single shared implementation of the survey's derived
// statistics: the required-field schema, the dotted-path resolver, and the
// aggregation engine that reduces the record collection to one Snapshot.
// Every consumer (table badges, overview counters, chart inputs, reports)
// imports this package, so their numbers come from the same pass and cannot
// drift apart.
package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// Aggregate reduces records to a statistics snapshot in one linear pass.
// It is a pure function: no hidden state, no mutation of records, identical
// input yields a structurally identical snapshot. Malformed or partial
// records contribute "N/A"/missing tallies instead of failing; an empty
// slice yields the all-zero snapshot with the same shape as a populated one.
func Aggregate(records []types.Record) *types.Snapshot {
	snap := &types.Snapshot{TotalEntries: len(records)}

	missing := make(map[FieldPath]int, len(RequiredFields))
	methodType := newCounter()
	domain := newCounter()
	license := newCounter()
	venue := newCounter()
	revisionType := newCounter()
	inputType := newCounter()
	stepCounts := make([]int, len(steps))

	for _, r := range records {
		recordMissing := 0
		for _, p := range RequiredFields {
			if IsEmpty(Resolve(r, p)) {
				missing[p]++
				recordMissing++
			}
		}
		if recordMissing > 0 {
			snap.EntriesWithMissingFields++
			snap.TotalMissingFields += recordMissing
		}

		methodType.incr(bucketKey(Resolve(r, FieldMainMethodType)))
		domain.incr(bucketKey(Resolve(r, FieldDomain)))
		license.incr(bucketKey(Resolve(r, FieldLicense)))
		revisionType.incr(bucketKey(Resolve(r, FieldUserRevisionType)))
		inputType.incr(bucketKey(Resolve(r, FieldInputTypeOfTable)))
		if label := r.VenueLabel(); label != "" {
			venue.incr(label)
		} else {
			venue.incr("N/A")
		}

		if y, ok := r.Year(); ok {
			if !snap.YearRange.Valid || y < snap.YearRange.Min {
				snap.YearRange.Min = y
			}
			if !snap.YearRange.Valid || y > snap.YearRange.Max {
				snap.YearRange.Max = y
			}
			snap.YearRange.Valid = true
		}

		if Truthy(Resolve(r, FieldCoreTaskCTA)) {
			snap.TaskCounts.CTA++
		}
		if Truthy(Resolve(r, FieldCoreTaskCPA)) {
			snap.TaskCounts.CPA++
		}
		if Truthy(Resolve(r, FieldCoreTaskCEA)) {
			snap.TaskCounts.CEA++
		}
		if Truthy(Resolve(r, FieldCoreTaskCNEA)) {
			snap.TaskCounts.CNEA++
		}

		for i, st := range steps {
			if stepCovered(r, st) {
				stepCounts[i]++
			}
		}

		if s, ok := Resolve(r, pathCode).(string); ok && strings.TrimSpace(s) != "" {
			snap.ApproachesWithCode++
		}

		switch v := Resolve(r, FieldCheckedByAuthor).(type) {
		case bool:
			if v {
				snap.AuthorVerification.Verified++
			} else {
				snap.AuthorVerification.NotVerified++
			}
		default:
			snap.AuthorVerification.Missing++
		}

		if !IsEmpty(Resolve(r, FieldKGTripleStore)) {
			snap.KGUsage.TripleStore++
		}
		if !IsEmpty(Resolve(r, pathKGIndex)) {
			snap.KGUsage.Index++
		}
	}

	// Post-pass: derive from the counters only, never by re-scanning records.
	total := snap.TotalEntries
	snap.MissingFields = make([]types.FieldCount, 0, len(RequiredFields))
	worst, worstCount := FieldPath(""), 0
	for _, p := range RequiredFields {
		snap.MissingFields = append(snap.MissingFields, types.FieldCount{Path: string(p), Count: missing[p]})
		if missing[p] > worstCount {
			worst, worstCount = p, missing[p]
		}
	}
	if worstCount == 0 {
		snap.MostMissingField = "None"
	} else {
		snap.MostMissingField = fmt.Sprintf("%s (%d)", worst, worstCount)
	}

	snap.MainMethodType = methodType.distribution(total)
	snap.Domain = domain.distribution(total)
	snap.License = license.distribution(total)
	snap.Venue = venue.distribution(total)
	snap.UserRevisionType = revisionType.distribution(total)
	snap.InputTypeOfTable = inputType.distribution(total)

	snap.CodePercentage = percentage(snap.ApproachesWithCode, total)
	snap.TaskPercentages = types.TaskPercentages{
		CTA:  percentage(snap.TaskCounts.CTA, total),
		CPA:  percentage(snap.TaskCounts.CPA, total),
		CEA:  percentage(snap.TaskCounts.CEA, total),
		CNEA: percentage(snap.TaskCounts.CNEA, total),
	}

	snap.StepsCoverage = make([]types.StepCount, len(steps))
	for i, st := range steps {
		snap.StepsCoverage[i] = types.StepCount{Step: st.name, Count: stepCounts[i]}
	}

	return snap
}

// stepCovered applies the per-step coverage definition: structured steps need
// a non-blank description, the rest count on any truthy raw value.
func stepCovered(r types.Record, st step) bool {
	v := Resolve(r, FieldPath("supportTasks."+st.name))
	if st.description {
		m, ok := asMap(v)
		if !ok {
			return false
		}
		d, ok := m["description"].(string)
		return ok && strings.TrimSpace(d) != ""
	}
	return Truthy(v)
}

// bucketKey maps a resolved value to its distribution key. Absent or empty
// values land in the literal "N/A" bucket so no record is ever dropped from
// a distribution.
func bucketKey(v any) string {
	if IsEmpty(v) {
		return "N/A"
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// percentage guards the zero-record boundary: an empty dataset reports 0%,
// never a division by zero.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}

// counter accumulates a categorical distribution preserving first-occurrence
// order, which is the snapshot's published bucket order.
type counter struct {
	order []string
	count map[string]int
}

func newCounter() *counter {
	return &counter{count: make(map[string]int)}
}

func (c *counter) incr(key string) {
	if _, seen := c.count[key]; !seen {
		c.order = append(c.order, key)
	}
	c.count[key]++
}

func (c *counter) distribution(total int) types.Distribution {
	out := make(types.Distribution, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, types.Bucket{Value: k, Count: c.count[k], Percentage: percentage(c.count[k], total)})
	}
	return out
}
