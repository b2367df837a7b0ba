package termcolor

import (
	"strconv"
	"strings"
)

// Style is a set of SGR attributes. At most one foreground is emitted,
// truecolor first.
type Style struct {
	Bold      bool
	Dim       bool
	Underline bool
	FGBasic   *int
	FG256     *int
	FGTrue    *[3]uint8
}

const reset = "\x1b[0m"

// Apply wraps text in the escape sequence for s. Resets already inside text
// re-open the style so nested paint does not end it early.
func Apply(s Style, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	codes := s.codes()
	if len(codes) == 0 {
		return text
	}
	open := "\x1b[" + strings.Join(codes, ";") + "m"
	return open + strings.ReplaceAll(text, reset, reset+open) + reset
}

func (s Style) codes() []string {
	var codes []string
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	switch {
	case s.FGTrue != nil:
		rgb := *s.FGTrue
		codes = append(codes, "38;2;"+strconv.Itoa(int(rgb[0]))+";"+strconv.Itoa(int(rgb[1]))+";"+strconv.Itoa(int(rgb[2])))
	case s.FG256 != nil:
		codes = append(codes, "38;5;"+strconv.Itoa(*s.FG256))
	case s.FGBasic != nil:
		codes = append(codes, "3"+strconv.Itoa(*s.FGBasic))
	}
	return codes
}
