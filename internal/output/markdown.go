package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/phyten/docblocker/internal/engine"
)

// WriteMarkdownTable renders findings as a GitHub Flavored Markdown table.
// The TEXT column is wrapped in code spans.
func WriteMarkdownTable(w io.Writer, findings []engine.Finding, sel FieldSelection) error {
	headers := Headers(sel.Fields)
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | ")); err != nil {
		return err
	}
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, f := range findings {
		row := RowValues(f, sel.Fields)
		for i := range row {
			row[i] = escapeMarkdownCell(row[i])
			if sel.Fields[i].Key == "text" && row[i] != "" {
				row[i] = codeSpan(row[i])
			}
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func escapeMarkdownCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}

// codeSpan picks a backtick fence longer than any run inside s.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", longest+1)
	if longest > 0 {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
