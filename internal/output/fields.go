package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/docblocker/internal/engine"
)

// Field is one output column.
type Field struct {
	Key    string
	Header string
}

// FieldSelection is the resolved --fields value.
type FieldSelection struct {
	Fields   []Field
	ShowText bool
}

type fieldMeta struct {
	header string
	isText bool
}

var fieldRegistry = map[string]fieldMeta{
	"kind":     {header: "KIND"},
	"name":     {header: "NAME"},
	"file":     {header: "FILE"},
	"line":     {header: "LINE"},
	"location": {header: "LOCATION"},
	"lang":     {header: "LANG"},
	"params":   {header: "PARAMS"},
	"fixed":    {header: "FIXED"},
	"text":     {header: "TEXT", isText: true},
	"url":      {header: "URL"},
}

var fieldAliases = map[string]string{
	"type": "kind",
	"loc":  "location",
	"decl": "text",
	"link": "url",
}

// ResolveFields parses a comma separated field list. An empty list selects
// the default columns, plus TEXT when withText is set.
func ResolveFields(raw string, withText bool) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		keys := []string{"kind", "name", "location"}
		if withText {
			keys = append(keys, "text")
		}
		sel := FieldSelection{ShowText: withText}
		for _, key := range keys {
			sel.Fields = append(sel.Fields, Field{Key: key, Header: fieldRegistry[key].header})
		}
		return sel, nil
	}

	parts := strings.Split(raw, ",")
	sel := FieldSelection{Fields: make([]Field, 0, len(parts))}
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
		}
		key := strings.ToLower(name)
		if alias, ok := fieldAliases[key]; ok {
			key = alias
		}
		meta, ok := fieldRegistry[key]
		if !ok {
			return FieldSelection{}, fmt.Errorf("unknown field: %s", name)
		}
		sel.Fields = append(sel.Fields, Field{Key: key, Header: meta.header})
		if meta.isText {
			sel.ShowText = true
		}
	}
	return sel, nil
}

// Headers returns the column headers of fields.
func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

// RowValues returns the cell values of f for fields.
func RowValues(f engine.Finding, fields []Field) []string {
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = formatFieldValue(f, field.Key)
	}
	return out
}

func formatFieldValue(f engine.Finding, key string) string {
	switch key {
	case "kind":
		return string(f.Kind)
	case "name":
		return f.Name
	case "file":
		return f.File
	case "line":
		return strconv.Itoa(f.Line)
	case "location":
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	case "lang":
		return f.Lang
	case "params":
		if f.Kind != "function" {
			return ""
		}
		return strconv.Itoa(f.Params)
	case "fixed":
		return strconv.FormatBool(f.Fixed)
	case "text":
		return f.Text
	case "url":
		return f.URL
	default:
		return ""
	}
}
