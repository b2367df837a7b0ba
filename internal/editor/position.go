// Package editor provides the editing-context types the documenter talks to,
// and Buffer, an in-memory implementation used by the CLI, the HTTP
// playground and the tests.
package editor

import (
	"errors"
	"fmt"
)

// Position is a zero-based line and a byte column within that line.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Col+1)
}

func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Range is a half-open span [Start, End).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// EditOptions controls undo grouping. With both stops off an edit joins the
// undo group of the change before it.
type EditOptions struct {
	UndoStopBefore bool
	UndoStopAfter  bool
}

func DefaultEditOptions() EditOptions {
	return EditOptions{UndoStopBefore: true, UndoStopAfter: true}
}

// EditBuilder collects the operations of one atomic edit.
type EditBuilder interface {
	Insert(at Position, text string)
	Delete(r Range)
	Replace(r Range, text string)
}

var (
	ErrRejected = errors.New("edit rejected")
	ErrLineOutOfRange = errors.New("line out of range")
)
