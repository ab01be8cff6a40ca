// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"
)

func TestYearRangeMarshal(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		data, err := json.Marshal(YearRange{Min: 2010, Max: 2024, Valid: true})
		if err != nil {
			t.Fatal(err)
		}
		if got := string(data); got != `{"min":2010,"max":2024}` {
			t.Errorf("JSON = %s", got)
		}
	})

	t.Run("no numeric years", func(t *testing.T) {
		data, err := json.Marshal(YearRange{})
		if err != nil {
			t.Fatal(err)
		}
		if got := string(data); got != `{"min":"N/A","max":"N/A"}` {
			t.Errorf("JSON = %s", got)
		}

		out, err := yaml.Marshal(YearRange{})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(out), `min: N/A`) {
			t.Errorf("YAML = %s", out)
		}
	})
}

func TestDistributionByCountDesc(t *testing.T) {
	d := Distribution{
		{Value: "rare", Count: 1},
		{Value: "common", Count: 5},
		{Value: "tied-a", Count: 3},
		{Value: "tied-b", Count: 3},
	}

	sorted := d.ByCountDesc()

	wantOrder := []string{"common", "tied-a", "tied-b", "rare"}
	for i, v := range wantOrder {
		if sorted[i].Value != v {
			t.Errorf("sorted[%d] = %q, want %q (ties keep first-occurrence order)", i, sorted[i].Value, v)
		}
	}
	if d[0].Value != "rare" {
		t.Errorf("ByCountDesc mutated its receiver: %+v", d)
	}
}

func TestDistributionAccessors(t *testing.T) {
	d := Distribution{
		{Value: "sup", Count: 2, Percentage: 40},
		{Value: "N/A", Count: 3, Percentage: 60},
	}

	if got := d.Total(); got != 5 {
		t.Errorf("Total = %d, want 5", got)
	}

	b, ok := d.Get("sup")
	if !ok || b.Count != 2 {
		t.Errorf("Get(sup) = %+v (ok=%v)", b, ok)
	}
	if _, ok := d.Get("unsup"); ok {
		t.Error("Get of an absent value reported ok")
	}
}

func TestDistributionMarshalsAsOrderedArray(t *testing.T) {
	d := Distribution{
		{Value: "second-seen", Count: 1, Percentage: 50},
		{Value: "first-alphabetically", Count: 1, Percentage: 50},
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var round []map[string]any
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatal(err)
	}

	got := []string{round[0]["value"].(string), round[1]["value"].(string)}
	if !reflect.DeepEqual(got, []string{"second-seen", "first-alphabetically"}) {
		t.Errorf("serialized order = %v, want engine order preserved", got)
	}
}
