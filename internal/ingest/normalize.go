// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// topLevelRenames maps legacy kebab-case and transitional camelCase keys to
// the canonical record keys. Keys already canonical pass through untouched,
// which makes normalization idempotent.
var topLevelRenames = map[string]string{
	"author":               "firstAuthor",
	"conference-journal":   "conferenceJournal",
	"name-of-approach":     "nameOfApproach",
	"main-method":          "mainMethod",
	"tasks":                "coreTasks",
	"steps":                "supportTasks",
	"user-revision":        "userRevision",
	"revision":             "userRevision",
	"code-availability":    "codeAvailability",
	"code":                 "codeAvailability",
	"output-format":        "outputFormat",
	"output":               "outputFormat",
	"checked-by-author":    "checkedByAuthor",
	"checked-by-ai":        "checkedByAi",
	"application-purpose":  "applicationPurpose",
	"user-interface-tool":  "userInterfaceTool",
}

var supportTaskRenames = map[string]string{
	"data-preparation":     "dataPreparation",
	"column-analysis":      "columnClassification",
	"subject-detection":    "subjectDetection",
	"datatype-annotation":  "datatypeAnnotation",
	"entity-linking":       "entityLinking",
	"type-annotation":      "typeAnnotation",
	"predicate-annotation": "predicateAnnotation",
	"nil-annotation":       "nilAnnotation",
}

var dataPreparationRenames = map[string]string{
	"spell-checker":         "spellChecker",
	"units-of-measurements": "unitsOfMeasurements",
}

var entityLinkingRenames = map[string]string{
	"candidate-generation":  "candidateGeneration",
	"entity-disambiguation": "entityDisambiguation",
}

// Normalize maps a record in any known wire shape to the canonical shape.
// The input map is not modified. Unknown keys are carried over unchanged;
// the record model is semi-structured and tolerant by design of the data.
func Normalize(raw map[string]any) types.Record {
	out := make(types.Record, len(raw))
	for key, value := range raw {
		canonical, renamed := topLevelRenames[key]
		if !renamed {
			canonical = key
		}
		switch canonical {
		case "supportTasks":
			out[canonical] = normalizeSupportTasks(value)
		case "inputs":
			out[canonical] = normalizeInputs(value)
		case "citations":
			out[canonical] = normalizeCitations(value)
		default:
			out[canonical] = value
		}
	}

	// A legacy single-string venue becomes the canonical venue object, but
	// never clobbers an existing one.
	if cj, ok := out["conferenceJournal"]; ok {
		if s, isString := cj.(string); isString {
			if _, hasVenue := out["venue"]; !hasVenue && strings.TrimSpace(s) != "" {
				out["venue"] = map[string]any{"name": s}
			}
			delete(out, "conferenceJournal")
		}
	}

	return out
}

func normalizeSupportTasks(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for key, v := range m {
		canonical, renamed := supportTaskRenames[key]
		if !renamed {
			canonical = key
		}
		switch canonical {
		case "dataPreparation":
			out[canonical] = renameKeys(v, dataPreparationRenames)
		case "entityLinking":
			out[canonical] = renameKeys(v, entityLinkingRenames)
		default:
			out[canonical] = v
		}
	}
	return out
}

func normalizeInputs(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for key, v := range m {
		switch key {
		case "type-of-table":
			out["typeOfTable"] = v
		case "kg":
			out["kg"] = renameKeys(v, map[string]string{"triple-store": "tripleStore"})
		default:
			out[key] = v
		}
	}
	return out
}

// normalizeCitations unwraps the older {references: [...]} form into the
// canonical plain list.
func normalizeCitations(value any) any {
	if m, ok := value.(map[string]any); ok {
		if refs, ok := m["references"]; ok {
			return refs
		}
	}
	return value
}

func renameKeys(value any, renames map[string]string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for key, v := range m {
		if canonical, renamed := renames[key]; renamed {
			out[canonical] = v
		} else {
			out[key] = v
		}
	}
	return out
}

var mainMethodTypes = map[string]string{
	"unsup":  "Unsupervised",
	"sup":    "Supervised",
	"hybrid": "Hybrid",
}

var domainValues = map[string]string{
	"dependent":   "Dependent",
	"independent": "Independent",
}

var revisionTypes = map[string]string{
	"none":            "None",
	"semi-automated":  "Semi automated",
	"semi automated":  "Semi automated",
	"fully-automated": "Fully automated",
	"fully automated": "Fully automated",
}

// NormalizeValues rewrites the historical shorthand category values
// (unsup, sup, dependent, semi-automated, ...) to their display forms.
// This is a dataset formatting pass; the statistics engine always buckets
// whatever literal values it is given.
func NormalizeValues(r types.Record) types.Record {
	out := make(types.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	rewriteNested(out, "mainMethod", "type", mainMethodTypes)
	rewriteNested(out, "domain", "domain", domainValues)
	rewriteNested(out, "userRevision", "type", revisionTypes)
	return out
}

func rewriteNested(r types.Record, parent, key string, table map[string]string) {
	m, ok := r[parent].(map[string]any)
	if !ok {
		return
	}
	s, ok := m[key].(string)
	if !ok {
		return
	}
	display, known := table[strings.ToLower(s)]
	if !known {
		return
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out[key] = display
	r[parent] = out
}
