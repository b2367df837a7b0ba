package output

import (
	"encoding/csv"
	"io"

	"github.com/phyten/docblocker/internal/engine"
)

// WriteCSV renders findings as RFC 4180 CSV with CRLF line endings.
func WriteCSV(w io.Writer, findings []engine.Finding, sel FieldSelection) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(Headers(sel.Fields)); err != nil {
		return err
	}
	for _, f := range findings {
		if err := writer.Write(RowValues(f, sel.Fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
