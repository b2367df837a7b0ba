package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phyten/docblocker/internal/snippet"
)

type TabStop struct {
	Stop  int   `json:"stop"`
	Range Range `json:"range"`
}

// Buffer is an in-memory text document. It is not safe for concurrent use.
type Buffer struct {
	lines  []string
	eol    string
	undo   [][]string
	open   bool
	stops  []TabStop
	joined bool
}

// NewBuffer splits text into lines. CRLF input keeps CRLF on output.
func NewBuffer(text string) *Buffer {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	return &Buffer{lines: strings.Split(text, eol), eol: eol, open: true}
}

func (b *Buffer) Text() string {
	return strings.Join(b.lines, b.eol)
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

func (b *Buffer) LineAt(n int) (string, error) {
	if n < 0 || n >= len(b.lines) {
		return "", fmt.Errorf("%w: %d", ErrLineOutOfRange, n+1)
	}
	return b.lines[n], nil
}

// Close makes every further edit fail with ErrRejected, like a document
// closed under the caller's feet.
func (b *Buffer) Close() {
	b.open = false
}

func (b *Buffer) TabStops() []TabStop {
	out := make([]TabStop, len(b.stops))
	copy(out, b.stops)
	return out
}

// InsertSnippet replaces at with the snippet's text. Every line after the
// first is prefixed with the indentation of the line at.Start is on. It
// returns the range the inserted text now occupies.
func (b *Buffer) InsertSnippet(s *snippet.Snippet, at Range) (Range, error) {
	if err := b.check(at); err != nil {
		return Range{}, err
	}
	indent := leadingWhitespace(b.lines[at.Start.Line])

	var text strings.Builder
	var stops []TabStop
	pos := at.Start
	write := func(chunk string) {
		for i, part := range strings.Split(chunk, "\n") {
			if i > 0 {
				text.WriteString(b.eol)
				text.WriteString(indent)
				pos = Position{Line: pos.Line + 1, Col: len(indent)}
			}
			text.WriteString(part)
			pos.Col += len(part)
		}
	}
	for _, seg := range s.Segments() {
		start := pos
		write(seg.Text)
		if seg.IsPlaceholder() {
			stops = append(stops, TabStop{Stop: seg.Stop, Range: Range{Start: start, End: pos}})
		}
	}

	b.pushUndo()
	end := b.replace(at, text.String())
	b.stops = stops
	b.joined = true
	return Range{Start: at.Start, End: end}, nil
}

type editOp struct {
	r    Range
	text string
}

type builder struct {
	ops []editOp
}

func (e *builder) Insert(at Position, text string) {
	e.ops = append(e.ops, editOp{r: Range{Start: at, End: at}, text: text})
}

func (e *builder) Delete(r Range) {
	e.ops = append(e.ops, editOp{r: r})
}

func (e *builder) Replace(r Range, text string) {
	e.ops = append(e.ops, editOp{r: r, text: text})
}

// Edit applies every operation collected by fn as one change. Ranges refer
// to the document as it was before the edit and must not overlap.
//
// Without UndoStopBefore the edit joins the undo group of the previous
// change, unless that change closed its group with UndoStopAfter. A snippet
// insertion leaves its group open.
func (b *Buffer) Edit(fn func(EditBuilder), opts EditOptions) error {
	eb := &builder{}
	fn(eb)
	if len(eb.ops) == 0 {
		return nil
	}
	ops := eb.ops
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].r.Start.Before(ops[j].r.Start) })
	for i, op := range ops {
		if err := b.check(op.r); err != nil {
			return err
		}
		if i > 0 && op.r.Start.Before(ops[i-1].r.End) {
			return fmt.Errorf("%w: overlapping ranges %s and %s", ErrRejected, ops[i-1].r, op.r)
		}
	}
	if opts.UndoStopBefore || !b.joined || len(b.undo) == 0 {
		b.pushUndo()
	}
	for i := len(ops) - 1; i >= 0; i-- {
		b.replace(ops[i].r, strings.ReplaceAll(ops[i].text, "\n", b.eol))
	}
	b.joined = !opts.UndoStopAfter
	return nil
}

func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	last := len(b.undo) - 1
	b.lines = b.undo[last]
	b.undo = b.undo[:last]
	b.stops = nil
	b.joined = false
	return true
}

func (b *Buffer) pushUndo() {
	snapshot := make([]string, len(b.lines))
	copy(snapshot, b.lines)
	b.undo = append(b.undo, snapshot)
}

func (b *Buffer) check(r Range) error {
	if !b.open {
		return fmt.Errorf("%w: document is closed", ErrRejected)
	}
	for _, p := range []Position{r.Start, r.End} {
		if p.Line < 0 || p.Line >= len(b.lines) || p.Col < 0 || p.Col > len(b.lines[p.Line]) {
			return fmt.Errorf("%w: position %s outside document", ErrRejected, p)
		}
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: inverted range %s", ErrRejected, r)
	}
	return nil
}

func (b *Buffer) replace(r Range, text string) Position {
	prefix := b.lines[r.Start.Line][:r.Start.Col]
	suffix := b.lines[r.End.Line][r.End.Col:]
	parts := strings.Split(text, b.eol)
	end := Position{Line: r.Start.Line + len(parts) - 1, Col: len(parts[len(parts)-1])}
	if len(parts) == 1 {
		end.Col += len(prefix)
	}
	parts[0] = prefix + parts[0]
	parts[len(parts)-1] += suffix

	out := make([]string, 0, len(b.lines)-(r.End.Line-r.Start.Line)+len(parts)-1)
	out = append(out, b.lines[:r.Start.Line]...)
	out = append(out, parts...)
	out = append(out, b.lines[r.End.Line+1:]...)
	b.lines = out
	return end
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
