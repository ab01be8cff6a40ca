// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"reflect"
	"testing"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// fullRecord builds a record with every required field filled, so tests can
// knock out individual fields and observe exactly one change.
func fullRecord(id string) types.Record {
	return types.Record{
		"id":          id,
		"firstAuthor": "Rossi",
		"authors":     []any{"Mario Rossi", "Ada Bianchi"},
		"year":        float64(2021),
		"title":       map[string]any{"text": "Knowledge graph matching for tables", "link": "https://example.org/p"},
		"venue":       map[string]any{"name": "Extending Database Technology", "acronym": "EDBT", "type": "conference"},
		"mainMethod":  map[string]any{"type": "Unsupervised", "technique": "clustering"},
		"domain":      map[string]any{"domain": "Independent", "type": ""},
		"coreTasks":   map[string]any{"cta": true, "cpa": false, "cea": true, "cnea": false},
		"supportTasks": map[string]any{
			"dataPreparation":      map[string]any{"description": "unit normalization", "spellChecker": "hunspell"},
			"subjectDetection":     "first non-numeric column",
			"columnClassification": true,
			"entityLinking":        map[string]any{"description": "lookup and rank", "candidateGeneration": "label search"},
		},
		"userRevision":     map[string]any{"type": "None", "description": ""},
		"license":          "MIT",
		"inputs":           map[string]any{"typeOfTable": "relational", "kg": map[string]any{"tripleStore": "Wikidata", "index": ""}},
		"outputFormat":     "RDF",
		"codeAvailability": "https://github.com/example/approach",
		"checkedByAuthor":  true,
		"checkedByAi":      true,
		"doi":              "https://doi.org/10.5555/12345",
	}
}

func deleteNested(t *testing.T, r types.Record, parent, key string) {
	t.Helper()
	m, ok := r[parent].(map[string]any)
	if !ok {
		t.Fatalf("fixture has no %s object", parent)
	}
	delete(m, key)
}

// --- boundary tests ---

func TestAggregateEmptyInput(t *testing.T) {
	snap := Aggregate(nil)

	if snap.TotalEntries != 0 {
		t.Errorf("TotalEntries = %d, want 0", snap.TotalEntries)
	}
	if snap.MostMissingField != "None" {
		t.Errorf("MostMissingField = %q, want \"None\"", snap.MostMissingField)
	}
	if snap.YearRange.Valid {
		t.Errorf("YearRange.Valid = true, want false")
	}
	if snap.CodePercentage != 0 {
		t.Errorf("CodePercentage = %v, want 0", snap.CodePercentage)
	}
	if snap.TaskPercentages != (types.TaskPercentages{}) {
		t.Errorf("TaskPercentages = %+v, want all zero", snap.TaskPercentages)
	}
	if len(snap.StepsCoverage) != 8 {
		t.Fatalf("StepsCoverage has %d steps, want 8", len(snap.StepsCoverage))
	}
	for _, sc := range snap.StepsCoverage {
		if sc.Count != 0 {
			t.Errorf("step %s count = %d, want 0", sc.Step, sc.Count)
		}
	}
	if len(snap.MissingFields) != len(RequiredFields) {
		t.Errorf("MissingFields has %d paths, want %d", len(snap.MissingFields), len(RequiredFields))
	}
	if len(snap.Domain) != 0 {
		t.Errorf("Domain distribution not empty: %+v", snap.Domain)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []types.Record{fullRecord("2021_rossi_knowledge"), {}, {"year": "not a number"}}

	first := Aggregate(records)
	second := Aggregate(records)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// --- missing-field tests ---

func TestAggregateMissingFieldTally(t *testing.T) {
	complete := fullRecord("2021_rossi_knowledge")

	sparse := fullRecord("2020_bianchi_linking")
	delete(sparse, "doi")
	deleteNested(t, sparse, "title", "text")

	snap := Aggregate([]types.Record{complete, sparse})

	if snap.EntriesWithMissingFields != 1 {
		t.Errorf("EntriesWithMissingFields = %d, want 1", snap.EntriesWithMissingFields)
	}
	if snap.TotalMissingFields != 2 {
		t.Errorf("TotalMissingFields = %d, want 2", snap.TotalMissingFields)
	}

	counts := make(map[string]int)
	for _, fc := range snap.MissingFields {
		counts[fc.Path] = fc.Count
	}
	if counts["doi"] != 1 || counts["title.text"] != 1 {
		t.Errorf("per-path counts = %v, want doi=1 title.text=1", counts)
	}
	if counts["license"] != 0 {
		t.Errorf("license count = %d, want 0", counts["license"])
	}
}

func TestAggregateBooleanFalseIsPresent(t *testing.T) {
	declined := fullRecord("2021_rossi_knowledge")
	declined["checkedByAuthor"] = false

	unanswered := fullRecord("2020_bianchi_linking")
	delete(unanswered, "checkedByAuthor")

	snap := Aggregate([]types.Record{declined, unanswered})

	if snap.EntriesWithMissingFields != 1 {
		t.Errorf("EntriesWithMissingFields = %d, want 1 (false must count as present)", snap.EntriesWithMissingFields)
	}
	want := types.AuthorVerification{Verified: 0, NotVerified: 1, Missing: 1}
	if snap.AuthorVerification != want {
		t.Errorf("AuthorVerification = %+v, want %+v", snap.AuthorVerification, want)
	}
}

func TestAggregateMostMissingField(t *testing.T) {
	t.Run("single worst field", func(t *testing.T) {
		a := fullRecord("a")
		delete(a, "doi")
		b := fullRecord("b")
		delete(b, "doi")
		c := fullRecord("c")
		delete(c, "license")

		snap := Aggregate([]types.Record{a, b, c})
		if snap.MostMissingField != "doi (2)" {
			t.Errorf("MostMissingField = %q, want \"doi (2)\"", snap.MostMissingField)
		}
	})

	t.Run("tie resolves to declaration order", func(t *testing.T) {
		r := fullRecord("a")
		delete(r, "venue")
		delete(r, "license")

		snap := Aggregate([]types.Record{r})
		if snap.MostMissingField != "venue (1)" {
			t.Errorf("MostMissingField = %q, want \"venue (1)\"", snap.MostMissingField)
		}
	})

	t.Run("nothing missing", func(t *testing.T) {
		snap := Aggregate([]types.Record{fullRecord("a")})
		if snap.MostMissingField != "None" {
			t.Errorf("MostMissingField = %q, want \"None\"", snap.MostMissingField)
		}
	})
}

// --- distribution tests ---

func TestAggregateDistributionOrderAndSum(t *testing.T) {
	records := []types.Record{
		{"domain": map[string]any{"domain": "Dependent"}},
		{"domain": map[string]any{"domain": "Independent"}},
		{"domain": map[string]any{"domain": "Dependent"}},
		{},
	}

	snap := Aggregate(records)

	wantOrder := []string{"Dependent", "Independent", "N/A"}
	if len(snap.Domain) != len(wantOrder) {
		t.Fatalf("Domain has %d buckets, want %d", len(snap.Domain), len(wantOrder))
	}
	for i, v := range wantOrder {
		if snap.Domain[i].Value != v {
			t.Errorf("bucket %d = %q, want %q (first-occurrence order)", i, snap.Domain[i].Value, v)
		}
	}
	if snap.Domain.Total() != snap.TotalEntries {
		t.Errorf("bucket counts sum to %d, want %d", snap.Domain.Total(), snap.TotalEntries)
	}
	if got, _ := snap.Domain.Get("Dependent"); got.Percentage != 50 {
		t.Errorf("Dependent percentage = %v, want 50", got.Percentage)
	}
}

func TestAggregateBlankValuesBucketAsNA(t *testing.T) {
	records := []types.Record{
		{"license": "  "},
		{"license": nil},
		{"mainMethod": map[string]any{}},
	}

	snap := Aggregate(records)

	na, ok := snap.License.Get("N/A")
	if !ok || na.Count != 3 {
		t.Errorf("License N/A bucket = %+v (ok=%v), want count 3", na, ok)
	}
	naMethod, ok := snap.MainMethodType.Get("N/A")
	if !ok || naMethod.Count != 3 {
		t.Errorf("MainMethodType N/A bucket = %+v (ok=%v), want count 3", naMethod, ok)
	}
}

func TestAggregateVenueDisplayString(t *testing.T) {
	records := []types.Record{
		{"venue": map[string]any{"name": "Extending Database Technology", "acronym": "EDBT"}},
		{"venue": map[string]any{"name": "Semantic Web Journal"}},
		{},
	}

	snap := Aggregate(records)

	if b, _ := snap.Venue.Get("EDBT"); b.Count != 1 {
		t.Errorf("EDBT bucket = %+v, want count 1 (acronym wins over name)", b)
	}
	if b, _ := snap.Venue.Get("Semantic Web Journal"); b.Count != 1 {
		t.Errorf("name fallback bucket = %+v, want count 1", b)
	}
	if b, _ := snap.Venue.Get("N/A"); b.Count != 1 {
		t.Errorf("N/A bucket = %+v, want count 1", b)
	}
}

// --- numeric summary tests ---

func TestAggregateYearRange(t *testing.T) {
	records := []types.Record{
		{"year": float64(2015)},
		{"year": float64(2023)},
		{"year": "2019"},
		{},
	}

	snap := Aggregate(records)

	if !snap.YearRange.Valid || snap.YearRange.Min != 2015 || snap.YearRange.Max != 2023 {
		t.Errorf("YearRange = %+v, want 2015..2023 (string years ignored)", snap.YearRange)
	}
}

func TestAggregateCodeAvailability(t *testing.T) {
	records := []types.Record{
		{"codeAvailability": "https://github.com/example/approach"},
		{"codeAvailability": "   "},
		{"codeAvailability": true},
		{},
	}

	snap := Aggregate(records)

	if snap.ApproachesWithCode != 1 {
		t.Errorf("ApproachesWithCode = %d, want 1 (only non-blank strings count)", snap.ApproachesWithCode)
	}
	if snap.CodePercentage != 25 {
		t.Errorf("CodePercentage = %v, want 25", snap.CodePercentage)
	}
}

func TestAggregateKGUsage(t *testing.T) {
	records := []types.Record{
		{"inputs": map[string]any{"kg": map[string]any{"tripleStore": "Wikidata", "index": "Elastic"}}},
		{"inputs": map[string]any{"kg": map[string]any{"tripleStore": "DBpedia", "index": ""}}},
		{"inputs": map[string]any{"kg": map[string]any{}}},
	}

	snap := Aggregate(records)

	want := types.KGUsage{TripleStore: 2, Index: 1}
	if snap.KGUsage != want {
		t.Errorf("KGUsage = %+v, want %+v", snap.KGUsage, want)
	}
}

// --- task and step tests ---

func TestAggregateTaskCounting(t *testing.T) {
	records := []types.Record{
		{"coreTasks": map[string]any{"cta": true}},
		{"coreTasks": map[string]any{"cta": false}},
		{"coreTasks": map[string]any{}},
	}

	snap := Aggregate(records)

	if snap.TaskCounts.CTA != 1 {
		t.Errorf("TaskCounts.CTA = %d, want 1", snap.TaskCounts.CTA)
	}
	want := 100 * float64(1) / float64(3)
	if snap.TaskPercentages.CTA != want {
		t.Errorf("TaskPercentages.CTA = %v, want %v", snap.TaskPercentages.CTA, want)
	}
	if snap.TaskCounts.CPA != 0 || snap.TaskCounts.CEA != 0 || snap.TaskCounts.CNEA != 0 {
		t.Errorf("untouched tasks moved: %+v", snap.TaskCounts)
	}
}

func TestAggregateStepsCoverage(t *testing.T) {
	tests := []struct {
		name    string
		tasks   map[string]any
		step    string
		covered bool
	}{
		{"structured step with blank description", map[string]any{"dataPreparation": map[string]any{"description": "  "}}, "dataPreparation", false},
		{"structured step with description", map[string]any{"dataPreparation": map[string]any{"description": "x"}}, "dataPreparation", true},
		{"structured step given as plain string", map[string]any{"entityLinking": "lookup"}, "entityLinking", false},
		{"raw step true", map[string]any{"subjectDetection": true}, "subjectDetection", true},
		{"raw step empty string", map[string]any{"subjectDetection": ""}, "subjectDetection", false},
		{"raw step text", map[string]any{"columnClassification": "header heuristics"}, "columnClassification", true},
		{"raw step false", map[string]any{"nilAnnotation": false}, "nilAnnotation", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Aggregate([]types.Record{{"supportTasks": tt.tasks}})

			var got *types.StepCount
			for i := range snap.StepsCoverage {
				if snap.StepsCoverage[i].Step == tt.step {
					got = &snap.StepsCoverage[i]
				}
			}
			if got == nil {
				t.Fatalf("step %s not in coverage output", tt.step)
			}
			want := 0
			if tt.covered {
				want = 1
			}
			if got.Count != want {
				t.Errorf("step %s count = %d, want %d", tt.step, got.Count, want)
			}
		})
	}
}

func TestAggregateStepOrder(t *testing.T) {
	snap := Aggregate(nil)

	want := []string{
		"dataPreparation", "subjectDetection", "columnClassification", "typeAnnotation",
		"predicateAnnotation", "datatypeAnnotation", "entityLinking", "nilAnnotation",
	}
	for i, name := range want {
		if snap.StepsCoverage[i].Step != name {
			t.Errorf("step %d = %q, want %q", i, snap.StepsCoverage[i].Step, name)
		}
	}
}

// --- end-to-end scenario ---

func TestAggregateTwoRecordScenario(t *testing.T) {
	records := []types.Record{
		{
			"id":         "1",
			"year":       float64(2020),
			"title":      map[string]any{"text": ""},
			"mainMethod": map[string]any{"type": "sup"},
		},
		{
			"id":         "2",
			"year":       float64(2021),
			"title":      map[string]any{"text": "T"},
			"mainMethod": map[string]any{"type": "sup"},
		},
	}

	snap := Aggregate(records)

	if snap.TotalEntries != 2 {
		t.Errorf("TotalEntries = %d, want 2", snap.TotalEntries)
	}
	if snap.YearRange.Min != 2020 || snap.YearRange.Max != 2021 {
		t.Errorf("YearRange = %+v, want 2020..2021", snap.YearRange)
	}
	sup, ok := snap.MainMethodType.Get("sup")
	if !ok || sup.Count != 2 || sup.Percentage != 100 {
		t.Errorf("sup bucket = %+v (ok=%v), want count 2 at 100%%", sup, ok)
	}
	if !IsRequiredFieldMissing(records[0], FieldTitleText) {
		t.Errorf("record 1 should be flagged missing title.text")
	}
	if IsRequiredFieldMissing(records[1], FieldTitleText) {
		t.Errorf("record 2 should not be flagged for title.text")
	}
}
