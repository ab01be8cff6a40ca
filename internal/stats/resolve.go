// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"strings"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// Resolve walks record along the dotted path and returns the value found,
// or nil when any intermediate is absent or not an object. It never panics;
// malformed records read as missing data, not as errors.
func Resolve(r types.Record, path FieldPath) any {
	if r == nil || path == "" {
		return nil
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(string(path), ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// IsEmpty classifies a resolved value as absent. Nil, blank strings, and
// objects with no keys are empty. Numbers (including 0), booleans (including
// false), and slices are never empty by structure; list-length rules live
// with the fields that need them.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case types.Record:
		return len(t) == 0
	}
	return false
}

// IsRequiredFieldMissing reports whether path is a required field that record
// leaves empty. Paths outside RequiredFields are never missing, whatever
// their value, so callers can probe any path without flagging noise.
func IsRequiredFieldMissing(r types.Record, path FieldPath) bool {
	if !requiredSet[path] {
		return false
	}
	return IsEmpty(Resolve(r, path))
}

// Truthy applies the loose-typing rules of the dataset's origin: nil, false,
// zero, and the empty string are false, everything else is true. Distinct
// from IsEmpty, which trims strings and inspects objects. Task counting and
// the catalog's task columns share this one definition.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case types.Record:
		return map[string]any(m), true
	}
	return nil, false
}
