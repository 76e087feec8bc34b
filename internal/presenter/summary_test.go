package presenter

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSummary string
		wantSources []string
		wantDests   []string
	}{
		{
			name:        "dedupes in first-seen order",
			body:        `{"summary": {"n": 3}, "packets": [{"source_ip": "10.0.0.2", "destination_ip": "10.0.0.9"}, {"source_ip": "10.0.0.1", "destination_ip": "10.0.0.9"}, {"source_ip": "10.0.0.2", "destination_ip": "10.0.0.8"}]}`,
			wantSummary: `{"n": 3}`,
			wantSources: []string{"10.0.0.2", "10.0.0.1"},
			wantDests:   []string{"10.0.0.9", "10.0.0.8"},
		},
		{
			name:        "missing packets",
			body:        `{"summary": "ok"}`,
			wantSummary: `"ok"`,
			wantSources: []string{},
			wantDests:   []string{},
		},
		{
			name:        "packets is not an array",
			body:        `{"summary": null, "packets": {"source_ip": "1.1.1.1"}}`,
			wantSummary: `null`,
			wantSources: []string{},
			wantDests:   []string{},
		},
		{
			name:        "skips malformed packets and non-string addresses",
			body:        `{"packets": [7, {"source_ip": 42}, {"destination_ip": "8.8.8.8"}]}`,
			wantSources: []string{},
			wantDests:   []string{"8.8.8.8"},
		},
		{
			name:        "top level array",
			body:        `[1, 2]`,
			wantSources: []string{},
			wantDests:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(mustResult(t, tt.body))

			if string(got.Summary) != tt.wantSummary {
				t.Errorf("Summary = %s, want %s", got.Summary, tt.wantSummary)
			}
			if !reflect.DeepEqual(got.UniqueIPs.Sources, tt.wantSources) {
				t.Errorf("Sources = %v, want %v", got.UniqueIPs.Sources, tt.wantSources)
			}
			if !reflect.DeepEqual(got.UniqueIPs.Destinations, tt.wantDests) {
				t.Errorf("Destinations = %v, want %v", got.UniqueIPs.Destinations, tt.wantDests)
			}
		})
	}
}

func TestSummarize_JSONShape(t *testing.T) {
	summary := Summarize(mustResult(t, `{"summary": {"a": 1}}`))

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"summary":{"a":1},"unique_ips":{"sources":[],"destinations":[]}}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}

func TestSummarize_Nil(t *testing.T) {
	got := Summarize(nil)
	if got.UniqueIPs.Sources == nil || got.UniqueIPs.Destinations == nil {
		t.Error("Sets should be empty, not nil")
	}
}
