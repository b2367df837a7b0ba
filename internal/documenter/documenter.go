// Package documenter turns the declaration below an opened comment marker
// into a docblock snippet and inserts it through an Editor.
package documenter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/editor"
	"github.com/phyten/docblocker/internal/matcher"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/snippet"
)

// Editor is the editing context a Documenter works against.
type Editor interface {
	LineAt(n int) (string, error)
	InsertSnippet(s *snippet.Snippet, at editor.Range) (editor.Range, error)
	Edit(fn func(editor.EditBuilder), opts editor.EditOptions) error
}

// ErrNotApplicable is returned by Run when the trigger line does not open a
// fresh docblock.
var ErrNotApplicable = errors.New("nothing to document at this position")

var (
	reTrigger      = regexp.MustCompile(`^\s*/\*\*\s+$`)
	reContinuation = regexp.MustCompile(`^\s*\*`)
	reMarker       = regexp.MustCompile(`/\*\*\s*$`)
)

const (
	blockOpen  = "/**"
	blockClose = "\n */"
	linePrefix = "\n * "
)

type Documenter struct {
	ed       Editor
	src      config.Source
	registry *matcher.Registry
	trigger  editor.Position

	triggerLine string
	targetLine  string
}

// New reads the trigger line and the line below it. A trigger on the last
// line of the document has an empty target.
func New(ed Editor, src config.Source, reg *matcher.Registry, trigger editor.Position) (*Documenter, error) {
	if ed == nil {
		return nil, errors.New("documenter: nil editor")
	}
	if src == nil {
		src = config.Static(config.Defaults())
	}
	if reg == nil {
		reg = matcher.PHP(model.DefaultPlaceholders())
	}
	line, err := ed.LineAt(trigger.Line)
	if err != nil {
		return nil, fmt.Errorf("read trigger line: %w", err)
	}
	target, err := ed.LineAt(trigger.Line + 1)
	if err != nil {
		if !errors.Is(err, editor.ErrLineOutOfRange) {
			return nil, fmt.Errorf("read target line: %w", err)
		}
		target = ""
	}
	return &Documenter{
		ed:          ed,
		src:         src,
		registry:    reg,
		trigger:     trigger,
		triggerLine: line,
		targetLine:  target,
	}, nil
}

func (d *Documenter) TargetLine() string {
	return d.targetLine
}

// IsValid reports whether the trigger line is a bare comment opener and the
// line below is not already part of a comment.
func (d *Documenter) IsValid() bool {
	return reTrigger.MatchString(d.triggerLine) && !reContinuation.MatchString(d.targetLine)
}

func (d *Documenter) Describe() matcher.Match {
	return d.registry.Describe(d.targetLine)
}

func (d *Documenter) AutoDocument() (*snippet.Snippet, error) {
	return d.BuildSnippet(d.Describe().Doc)
}

// BuildSnippet renders doc as a docblock. Settings are read from the source
// on every call.
func (d *Documenter) BuildSnippet(doc model.Doc) (*snippet.Snippet, error) {
	snap, err := d.src.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := Build(doc, snap)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("build snippet: %w", err)
	}
	return s, nil
}

func Build(doc model.Doc, snap config.Snapshot) *snippet.Snippet {
	s := snippet.New()
	stops := snippet.NewAllocator(1)

	s.AppendText(blockOpen + linePrefix)
	s.AppendPlaceholder(stops.Next(), doc.Message)

	gapPending := !snap.Gap
	section := func() {
		if gapPending {
			s.AppendText(linePrefix)
			gapPending = false
		}
	}

	if len(doc.Params) > 0 {
		section()
		for _, p := range doc.Params {
			s.AppendText(linePrefix + "@param ")
			s.AppendPlaceholder(stops.Next(), p.Type)
			s.AppendText(" ")
			s.AppendPlaceholder(stops.Next(), p.Name)
		}
	}
	if doc.VarType != nil {
		section()
		s.AppendText(linePrefix + "@var ")
		s.AppendPlaceholder(stops.Next(), *doc.VarType)
	}
	if doc.ReturnType != nil {
		section()
		s.AppendText(linePrefix + "@return ")
		s.AppendPlaceholder(stops.Next(), *doc.ReturnType)
	}
	if len(snap.Extra) > 0 {
		section()
		for _, line := range snap.Extra {
			s.AppendText(linePrefix + line)
		}
	}

	s.AppendText(blockClose)
	return s
}

// InsertSnippet replaces the trigger line's marker with s, then removes the
// whitespace typed after the marker. The removal joins the undo group of the
// insertion. Editor errors are returned as they are.
func (d *Documenter) InsertSnippet(s *snippet.Snippet) error {
	loc := reMarker.FindStringIndex(d.triggerLine)
	if loc == nil {
		return fmt.Errorf("%w: no comment opener on line %d", ErrNotApplicable, d.trigger.Line+1)
	}
	markerStart := loc[0]
	markerEnd := markerStart + len(blockOpen)
	at := editor.Range{
		Start: editor.Position{Line: d.trigger.Line, Col: markerStart},
		End:   editor.Position{Line: d.trigger.Line, Col: markerEnd},
	}
	inserted, err := d.ed.InsertSnippet(s, at)
	if err != nil {
		return err
	}

	typed := min(d.trigger.Col, len(d.triggerLine)) - markerEnd
	if typed <= 0 {
		return nil
	}
	trailing := editor.Range{
		Start: inserted.End,
		End:   editor.Position{Line: inserted.End.Line, Col: inserted.End.Col + typed},
	}
	return d.ed.Edit(func(b editor.EditBuilder) {
		b.Delete(trailing)
	}, editor.EditOptions{UndoStopBefore: false, UndoStopAfter: false})
}

func (d *Documenter) Run() (*snippet.Snippet, error) {
	if !d.IsValid() {
		return nil, ErrNotApplicable
	}
	s, err := d.AutoDocument()
	if err != nil {
		return nil, err
	}
	if err := d.InsertSnippet(s); err != nil {
		return nil, err
	}
	return s, nil
}
