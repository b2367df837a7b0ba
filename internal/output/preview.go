package output

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/snippet"
	"github.com/phyten/docblocker/internal/termcolor"
)

// SnippetFormats lists the renderings of a single generated docblock.
var SnippetFormats = []string{"text", "snippet", "json"}

// SnippetReport is the JSON rendering of one generated docblock.
type SnippetReport struct {
	Valid   bool             `json:"valid"`
	Kind    model.Kind       `json:"kind,omitempty"`
	Name    string           `json:"name,omitempty"`
	Doc     *model.Doc       `json:"doc,omitempty"`
	Snippet string           `json:"snippet,omitempty"`
	Text    string           `json:"text,omitempty"`
	Parts   *snippet.Snippet `json:"parts,omitempty"`
}

// NewSnippetReport fills a report for s; a nil s produces an invalid report.
func NewSnippetReport(kind model.Kind, name string, doc model.Doc, s *snippet.Snippet) SnippetReport {
	if s == nil {
		return SnippetReport{}
	}
	return SnippetReport{
		Valid:   true,
		Kind:    kind,
		Name:    name,
		Doc:     &doc,
		Snippet: s.String(),
		Text:    s.Text(),
		Parts:   s,
	}
}

// RenderPreview renders s with placeholder defaults highlighted per stop.
// indent is prefixed to every line.
func RenderPreview(s *snippet.Snippet, indent string, p termcolor.Palette) string {
	var b strings.Builder
	b.WriteString(indent)
	for _, seg := range s.Segments() {
		text := strings.ReplaceAll(seg.Text, "\n", "\n"+indent)
		if seg.IsPlaceholder() {
			text = p.Paint(termcolor.PlaceholderStyle(seg.Stop, p.Scheme, p.Profile), text)
		}
		b.WriteString(text)
	}
	return b.String()
}

// WriteSnippet writes s in the given format: "text" is the highlighted
// preview, "snippet" the placeholder syntax and "json" a SnippetReport.
func WriteSnippet(w io.Writer, format string, report SnippetReport, s *snippet.Snippet, p termcolor.Palette) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "snippet":
		_, err := io.WriteString(w, s.String()+"\n")
		return err
	default:
		_, err := io.WriteString(w, RenderPreview(s, "", p)+"\n")
		return err
	}
}
