package presenter

import (
	"encoding/json"

	"github.com/yildizm/PcapView/internal/client"
)

// Summary is the condensed projection shown before the detailed report
type Summary struct {
	Summary   json.RawMessage `json:"summary"`
	UniqueIPs UniqueIPs       `json:"unique_ips"`
}

// UniqueIPs lists each address once, in order of first appearance
type UniqueIPs struct {
	Sources      []string `json:"sources"`
	Destinations []string `json:"destinations"`
}

// orderedSet keeps insertion order and drops repeats
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// Summarize projects a result onto its summary field and unique endpoint sets.
// Anything the projection does not understand is skipped: a missing or
// non-array "packets" is treated as empty, and packets without a string
// address do not contribute to that address set.
func Summarize(result *client.Result) Summary {
	summary := Summary{
		UniqueIPs: UniqueIPs{Sources: []string{}, Destinations: []string{}},
	}
	if result == nil {
		return summary
	}

	var doc struct {
		Summary json.RawMessage `json:"summary"`
		Packets json.RawMessage `json:"packets"`
	}
	if err := json.Unmarshal(result.Raw(), &doc); err != nil {
		return summary
	}
	summary.Summary = doc.Summary

	var packets []json.RawMessage
	if err := json.Unmarshal(doc.Packets, &packets); err != nil {
		return summary
	}

	sources := newOrderedSet()
	destinations := newOrderedSet()
	for _, raw := range packets {
		var packet map[string]json.RawMessage
		if err := json.Unmarshal(raw, &packet); err != nil {
			continue
		}
		if ip, ok := stringField(packet, "source_ip"); ok {
			sources.add(ip)
		}
		if ip, ok := stringField(packet, "destination_ip"); ok {
			destinations.add(ip)
		}
	}

	summary.UniqueIPs.Sources = sources.items
	summary.UniqueIPs.Destinations = destinations.items
	return summary
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
