package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/phyten/docblocker/internal/engine"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/termcolor"
	"github.com/phyten/docblocker/internal/textutil"
)

// TableOptions tune the human readable formats.
type TableOptions struct {
	Palette termcolor.Palette
	// MaxText truncates the TEXT column to that many columns; 0 keeps it whole.
	MaxText int
}

const columnGap = "  "

// WriteTable renders findings as space aligned columns. Widths are measured
// in terminal columns so wide characters and colours line up.
func WriteTable(w io.Writer, findings []engine.Finding, sel FieldSelection, opt TableOptions) error {
	headers := Headers(sel.Fields)
	rows := make([][]string, len(findings))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textutil.VisibleWidth(h)
	}
	for r, f := range findings {
		row := RowValues(f, sel.Fields)
		for i := range row {
			row[i] = tableCell(row[i], sel.Fields[i].Key, opt.MaxText)
			if cw := textutil.VisibleWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
		rows[r] = row
	}

	p := opt.Palette
	line := make([]string, len(headers))
	for i, h := range headers {
		line[i] = pad(p.Paint(termcolor.HeaderStyle(), h), widths[i], i == len(headers)-1)
	}
	if _, err := fmt.Fprintln(w, strings.Join(line, columnGap)); err != nil {
		return err
	}
	for r, row := range rows {
		for i, cell := range row {
			line[i] = pad(p.Paint(cellStyle(sel.Fields[i].Key, findings[r], p), cell), widths[i], i == len(row)-1)
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, columnGap)); err != nil {
			return err
		}
	}
	return nil
}

// WriteTSV renders findings as tab separated values with a header line.
// Tabs and newlines inside cells are folded into spaces.
func WriteTSV(w io.Writer, findings []engine.Finding, sel FieldSelection) error {
	if _, err := fmt.Fprintln(w, strings.Join(Headers(sel.Fields), "\t")); err != nil {
		return err
	}
	for _, f := range findings {
		row := RowValues(f, sel.Fields)
		for i := range row {
			row[i] = textutil.OneLine(row[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func tableCell(value, key string, maxText int) string {
	value = textutil.OneLine(value)
	if key == "text" && maxText > 0 {
		value = textutil.TruncateByWidth(value, maxText, "…")
	}
	return value
}

func cellStyle(key string, f engine.Finding, p termcolor.Palette) termcolor.Style {
	switch key {
	case "kind":
		return termcolor.KindStyle(f.Kind, p.Scheme, p.Profile)
	case "location", "file":
		return termcolor.LocationStyle()
	}
	return termcolor.Style{}
}

func pad(cell string, width int, last bool) string {
	if last {
		return cell
	}
	return textutil.PadRight(cell, width)
}

// WriteSummary prints the one line trailer of scan and fix runs.
func WriteSummary(w io.Writer, res *engine.Result, fix bool) error {
	counts := map[model.Kind]int{}
	for _, f := range res.Findings {
		counts[f.Kind]++
	}
	parts := []string{
		fmt.Sprintf("%d undocumented in %d files", res.Total, res.Files),
		fmt.Sprintf("function=%d", counts[model.KindFunction]),
		fmt.Sprintf("property=%d", counts[model.KindProperty]),
		fmt.Sprintf("class=%d", counts[model.KindClass]),
	}
	if fix {
		parts = append(parts, fmt.Sprintf("fixed=%d", res.Fixed))
	}
	if res.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("errors=%d", res.ErrorCount))
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}
