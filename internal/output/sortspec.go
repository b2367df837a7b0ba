package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phyten/docblocker/internal/engine"
)

type SortKey struct {
	Name string
	Desc bool
}

type SortSpec struct {
	Keys []SortKey
}

// ParseSortSpec parses --sort. Keys are comma separated and may carry a
// leading "+" or "-".
func ParseSortSpec(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortSpec{}, nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: empty segment")
		}
		desc := false
		switch token[0] {
		case '+':
			token = token[1:]
		case '-':
			desc = true
			token = token[1:]
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: sign without name")
		}
		name := strings.ToLower(token)
		switch name {
		case "type":
			name = "kind"
		case "location":
			keys = append(keys, SortKey{Name: "file", Desc: desc}, SortKey{Name: "line", Desc: desc})
			continue
		case "kind", "name", "file", "line", "params":
		default:
			return SortSpec{}, fmt.Errorf("invalid sort key: %s", token)
		}
		keys = append(keys, SortKey{Name: name, Desc: desc})
	}
	return SortSpec{Keys: keys}, nil
}

// ApplySort orders findings by spec, then by file and line.
func ApplySort(findings []engine.Finding, spec SortSpec) {
	keys := append(append([]SortKey{}, spec.Keys...), SortKey{Name: "file"}, SortKey{Name: "line"})
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := &findings[i], &findings[j]
		for _, key := range keys {
			c := compareKey(a, b, key.Name)
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareKey(a, b *engine.Finding, name string) int {
	switch name {
	case "kind":
		return strings.Compare(string(a.Kind), string(b.Kind))
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "file":
		return strings.Compare(a.File, b.File)
	case "line":
		return a.Line - b.Line
	case "params":
		return a.Params - b.Params
	}
	return 0
}
