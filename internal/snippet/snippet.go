// Package snippet models a docblock as an ordered list of literal text and
// numbered placeholders, and renders it for the various consumers.
package snippet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Segment is either literal text (Stop == 0) or a numbered placeholder.
type Segment struct {
	Text string
	Stop int
}

func (s Segment) IsPlaceholder() bool {
	return s.Stop > 0
}

type Snippet struct {
	segments []Segment
}

func New() *Snippet {
	return &Snippet{}
}

// AppendText adds a literal segment. Adjacent literals are merged.
func (s *Snippet) AppendText(text string) *Snippet {
	if text == "" {
		return s
	}
	if n := len(s.segments); n > 0 && !s.segments[n-1].IsPlaceholder() {
		s.segments[n-1].Text += text
		return s
	}
	s.segments = append(s.segments, Segment{Text: text})
	return s
}

func (s *Snippet) AppendPlaceholder(stop int, def string) *Snippet {
	s.segments = append(s.segments, Segment{Text: def, Stop: stop})
	return s
}

func (s *Snippet) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

func (s *Snippet) Stops() []int {
	var out []int
	for _, seg := range s.segments {
		if seg.IsPlaceholder() {
			out = append(out, seg.Stop)
		}
	}
	return out
}

var (
	ErrNoStops        = errors.New("snippet has no placeholders")
	ErrStopNumbering  = errors.New("placeholder numbering is not sequential")
	ErrStopOutOfRange = errors.New("placeholder number out of range")
)

// Validate checks that stops start at 1 and increase by one in emission
// order, with no duplicates.
func (s *Snippet) Validate() error {
	stops := s.Stops()
	if len(stops) == 0 {
		return ErrNoStops
	}
	for i, stop := range stops {
		if stop < 1 {
			return fmt.Errorf("%w: %d", ErrStopOutOfRange, stop)
		}
		if stop != i+1 {
			return fmt.Errorf("%w: position %d has $%d, want $%d", ErrStopNumbering, i, stop, i+1)
		}
	}
	return nil
}

// Text renders the snippet with every placeholder replaced by its default.
func (s *Snippet) Text() string {
	var b strings.Builder
	for _, seg := range s.segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// String renders TextMate/LSP snippet syntax: ${N:default}.
func (s *Snippet) String() string {
	var b strings.Builder
	for _, seg := range s.segments {
		if !seg.IsPlaceholder() {
			b.WriteString(escapeText(seg.Text))
			continue
		}
		b.WriteString("${")
		b.WriteString(strconv.Itoa(seg.Stop))
		if seg.Text != "" {
			b.WriteByte(':')
			b.WriteString(escapePlaceholder(seg.Text))
		}
		b.WriteByte('}')
	}
	return b.String()
}

var (
	textEscaper        = strings.NewReplacer(`\`, `\\`, `$`, `\$`)
	placeholderEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapePlaceholder(s string) string {
	return placeholderEscaper.Replace(s)
}

type jsonSegment struct {
	Text    *string `json:"text,omitempty"`
	Stop    int     `json:"stop,omitempty"`
	Default *string `json:"default,omitempty"`
}

// MarshalJSON encodes the snippet as {"segments":[...]}.
func (s *Snippet) MarshalJSON() ([]byte, error) {
	out := struct {
		Segments []jsonSegment `json:"segments"`
	}{Segments: make([]jsonSegment, 0, len(s.segments))}
	for _, seg := range s.segments {
		text := seg.Text
		if seg.IsPlaceholder() {
			out.Segments = append(out.Segments, jsonSegment{Stop: seg.Stop, Default: &text})
			continue
		}
		out.Segments = append(out.Segments, jsonSegment{Text: &text})
	}
	return json.Marshal(out)
}

func (s *Snippet) UnmarshalJSON(data []byte) error {
	var in struct {
		Segments []jsonSegment `json:"segments"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.segments = s.segments[:0]
	for i, seg := range in.Segments {
		switch {
		case seg.Stop > 0:
			def := ""
			if seg.Default != nil {
				def = *seg.Default
			}
			s.segments = append(s.segments, Segment{Text: def, Stop: seg.Stop})
		case seg.Text != nil:
			s.segments = append(s.segments, Segment{Text: *seg.Text})
		default:
			return fmt.Errorf("segment %d: neither text nor stop", i)
		}
	}
	return nil
}
