// Package output renders scan results and generated docblocks.
package output

import (
	"fmt"
	"io"

	"github.com/phyten/docblocker/internal/engine"
)

// Write renders res in format, one of the values accepted by
// opts.NormalizeOutput.
func Write(w io.Writer, format string, res *engine.Result, sel FieldSelection, opt TableOptions) error {
	switch format {
	case "json":
		return WriteJSON(w, res)
	case "ndjson":
		return WriteNDJSON(w, res.Findings)
	case "csv":
		return WriteCSV(w, res.Findings, sel)
	case "markdown":
		return WriteMarkdownTable(w, res.Findings, sel)
	case "tsv":
		return WriteTSV(w, res.Findings, sel)
	case "table", "":
		return WriteTable(w, res.Findings, sel, opt)
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// WriteErrors prints per-file failures, one per line.
func WriteErrors(w io.Writer, errs []engine.ItemError) error {
	for _, e := range errs {
		loc := e.File
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", e.File, e.Line)
		}
		if _, err := fmt.Fprintf(w, "error: %s: %s: %s\n", loc, e.Stage, e.Message); err != nil {
			return err
		}
	}
	return nil
}
