package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.CatalogConfig{
		Path:       filepath.Join(t.TempDir(), "catalog", "survey.db"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecords() []types.Record {
	return []types.Record{
		{
			"id":          "2019_zhang_web",
			"year":        float64(2019),
			"firstAuthor": "Zhang",
			"authors":     []any{"Wei Zhang", "Li Chen"},
			"title":       map[string]any{"text": "Entity Linking over Web Tables"},
			"venue":       map[string]any{"name": "Very Large Data Bases", "acronym": "VLDB", "type": "conference"},
			"mainMethod":  map[string]any{"type": "sup", "technique": "gradient boosting"},
			"domain":      map[string]any{"domain": "independent"},
			"coreTasks":   map[string]any{"cta": true, "cpa": false, "cea": true, "cnea": false},
			"inputs": map[string]any{
				"typeOfTable": "horizontal relational",
				"kg":          map[string]any{"tripleStore": "Wikidata"},
			},
			"checkedByAuthor":  true,
			"codeAvailability": "https://github.com/zhang/webtables",
			"doi":              "https://doi.org/10.1000/zhang19",
		},
		{
			"id":              "2021_rossi_steel",
			"year":            float64(2021),
			"firstAuthor":     "Rossi",
			"title":           map[string]any{"text": "Semantic Annotation of Industrial Tables"},
			"venue":           map[string]any{"name": "Journal of Web Semantics"},
			"mainMethod":      map[string]any{"type": "unsup"},
			"domain":          map[string]any{"domain": "dependent", "type": "industrial"},
			"coreTasks":       map[string]any{"cpa": true},
			"checkedByAuthor": false,
		},
		{
			"id":               "2022_kim_sheets",
			"year":             float64(2022),
			"firstAuthor":      "Kim",
			"title":            map[string]any{"text": "Knowledge Graph Construction from Spreadsheets"},
			"venue":            map[string]any{"acronym": "ISWC"},
			"mainMethod":       map[string]any{"type": "hybrid"},
			"domain":           map[string]any{"domain": "independent"},
			"coreTasks":        map[string]any{"cea": true, "cnea": true},
			"codeAvailability": "https://github.com/kim/sheets2kg",
		},
	}
}

func loadRecords(t *testing.T, store *Store, records []types.Record) LoadSummary {
	t.Helper()
	var buf strings.Builder
	summary, err := store.Load(context.Background(), records, &buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return summary
}

func queryIDs(t *testing.T, store *Store, opts QueryOptions) []string {
	t.Helper()
	entries, err := store.Query(context.Background(), opts)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testStore(t)

	for _, table := range []string{"approaches", "approaches_fts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "survey.db")

	store, err := NewStore(types.CatalogConfig{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

func TestNewStoreRequiresPath(t *testing.T) {
	if _, err := NewStore(types.CatalogConfig{}); err == nil {
		t.Error("expected error for empty catalog path")
	}
}

// --- load tests ---

func TestLoadIndexesAndUpdates(t *testing.T) {
	store := testStore(t)

	first := loadRecords(t, store, sampleRecords())
	if first.Indexed != 3 || first.Updated != 0 || first.Failed != 0 {
		t.Errorf("first load = %+v, want 3 indexed", first)
	}

	second := loadRecords(t, store, sampleRecords())
	if second.Indexed != 0 || second.Updated != 3 {
		t.Errorf("second load = %+v, want 3 updated", second)
	}
	if second.Total() != 3 {
		t.Errorf("Total() = %d, want 3", second.Total())
	}
}

func TestLoadSkipsRecordsWithoutID(t *testing.T) {
	store := testStore(t)
	records := append(sampleRecords(), types.Record{"year": float64(2020)})

	var buf strings.Builder
	summary, err := store.Load(context.Background(), records, &buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if summary.Indexed != 3 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 3 indexed and 1 failed", summary)
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("progress output missing failure note:\n%s", buf.String())
	}
}

func TestLoadColumns(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	entries, err := store.Query(context.Background(), QueryOptions{MaxResults: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	byID := make(map[string]Entry)
	for _, e := range entries {
		byID[e.ID] = e
	}

	zhang := byID["2019_zhang_web"]
	if zhang.Year != 2019 || zhang.FirstAuthor != "Zhang" {
		t.Errorf("zhang identity columns = %+v", zhang)
	}
	if zhang.Venue != "VLDB" {
		t.Errorf("venue = %q, want acronym VLDB", zhang.Venue)
	}
	if zhang.MethodType != "sup" || zhang.MethodTechnique != "gradient boosting" {
		t.Errorf("method columns = %q/%q", zhang.MethodType, zhang.MethodTechnique)
	}
	if !zhang.CTA || zhang.CPA || !zhang.CEA || zhang.CNEA {
		t.Errorf("task columns = %v/%v/%v/%v", zhang.CTA, zhang.CPA, zhang.CEA, zhang.CNEA)
	}
	if zhang.TripleStore != "Wikidata" {
		t.Errorf("kg_triple_store = %q", zhang.TripleStore)
	}
	if zhang.CheckedByAuthor == nil || !*zhang.CheckedByAuthor {
		t.Errorf("checked_by_author = %v, want true", zhang.CheckedByAuthor)
	}

	rossi := byID["2021_rossi_steel"]
	if rossi.Venue != "Journal of Web Semantics" {
		t.Errorf("venue without acronym = %q, want full name", rossi.Venue)
	}
	if rossi.CheckedByAuthor == nil || *rossi.CheckedByAuthor {
		t.Errorf("checked_by_author = %v, want false (distinct from missing)", rossi.CheckedByAuthor)
	}

	kim := byID["2022_kim_sheets"]
	if kim.CheckedByAuthor != nil {
		t.Errorf("checked_by_author = %v, want nil when the field is absent", kim.CheckedByAuthor)
	}
}

// --- query tests ---

func TestQueryFilters(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"task cea", QueryOptions{Task: "cea"}, []string{"2022_kim_sheets", "2019_zhang_web"}},
		{"task cpa", QueryOptions{Task: "cpa"}, []string{"2021_rossi_steel"}},
		{"method type", QueryOptions{MethodType: "sup"}, []string{"2019_zhang_web"}},
		{"domain dependent", QueryOptions{Domain: "dependent"}, []string{"2021_rossi_steel"}},
		{"venue case-insensitive", QueryOptions{Venue: "vldb"}, []string{"2019_zhang_web"}},
		{"year from", QueryOptions{YearFrom: 2021}, []string{"2022_kim_sheets", "2021_rossi_steel"}},
		{"year to", QueryOptions{YearTo: 2019}, []string{"2019_zhang_web"}},
		{"with code", QueryOptions{WithCode: true}, []string{"2022_kim_sheets", "2019_zhang_web"}},
		{"combined", QueryOptions{YearFrom: 2020, WithCode: true}, []string{"2022_kim_sheets"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := queryIDs(t, store, tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryRejectsUnknownTask(t *testing.T) {
	store := testStore(t)
	if _, err := store.Query(context.Background(), QueryOptions{Task: "linking"}); err == nil {
		t.Error("expected error for unknown task filter")
	}
}

func TestQueryDeterministicOrder(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	want := []string{"2022_kim_sheets", "2021_rossi_steel", "2019_zhang_web"}
	got := queryIDs(t, store, QueryOptions{})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want newest first then id", got)
	}
}

func TestQueryFullText(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"title word", "Spreadsheets", []string{"2022_kim_sheets"}},
		{"author name", "Zhang", []string{"2019_zhang_web"}},
		{"no match", "blockchain", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := queryIDs(t, store, QueryOptions{Text: tt.text})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryMaxResults(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	if got := queryIDs(t, store, QueryOptions{MaxResults: 1}); len(got) != 1 {
		t.Errorf("limited query returned %d entries, want 1", len(got))
	}
	if got := queryIDs(t, store, QueryOptions{}); len(got) != 3 {
		t.Errorf("default limit returned %d entries, want all 3", len(got))
	}
}

func TestUpdateKeepsFTSInSync(t *testing.T) {
	store := testStore(t)
	records := sampleRecords()
	loadRecords(t, store, records)

	records[2]["title"] = map[string]any{"text": "Completely Different Topic"}
	loadRecords(t, store, records)

	if got := queryIDs(t, store, QueryOptions{Text: "Spreadsheets"}); len(got) != 0 {
		t.Errorf("stale FTS entry still matches old title: %v", got)
	}
	if got := queryIDs(t, store, QueryOptions{Text: "Different"}); !reflect.DeepEqual(got, []string{"2022_kim_sheets"}) {
		t.Errorf("updated title not searchable: %v", got)
	}
}

// --- get tests ---

func TestGetRoundTrip(t *testing.T) {
	store := testStore(t)
	records := sampleRecords()
	loadRecords(t, store, records)

	got, err := store.Get(context.Background(), "2019_zhang_web")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, records[0]) {
		t.Errorf("round-tripped record differs:\ngot  %v\nwant %v", got, records[0])
	}
}

func TestGetNotFound(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	_, err := store.Get(context.Background(), "1999_nobody_nothing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not-found error", err)
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	path := filepath.Join(t.TempDir(), "export.yaml")
	if err := store.ExportYAML(context.Background(), QueryOptions{}, path); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]any
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("exported %d entries, want 3", len(entries))
	}
	if entries[0]["id"] != "2022_kim_sheets" {
		t.Errorf("first exported entry = %v, want newest", entries[0]["id"])
	}
}

func TestExportJSON(t *testing.T) {
	store := testStore(t)
	loadRecords(t, store, sampleRecords())

	path := filepath.Join(t.TempDir(), "export.json")
	if err := store.ExportJSON(context.Background(), QueryOptions{WithCode: true}, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("exported %d entries, want the 2 with code", len(entries))
	}
}
