package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// ANSI escape sequences (CSI and OSC forms).
var ansiRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

func StripANSI(s string) string {
	if !strings.ContainsRune(s, 0x1b) {
		return s
	}
	return ansiRe.ReplaceAllString(s, "")
}

// VisibleWidth returns the terminal display width of s, counting each
// grapheme cluster once.
func VisibleWidth(s string) int {
	width := 0
	g := uniseg.NewGraphemes(StripANSI(s))
	for g.Next() {
		width += runewidth.StringWidth(g.Str())
	}
	return width
}

// TruncateByWidth cuts s to at most w columns without splitting a grapheme
// cluster. When s is cut and ellipsis fits, it is appended. Escape
// sequences are dropped from truncated results.
func TruncateByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	limit := w
	ellW := runewidth.StringWidth(ellipsis)
	if ellipsis != "" && ellW <= w {
		limit = w - ellW
	} else {
		ellipsis = ""
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(StripANSI(s))
	for g.Next() {
		seg := g.Str()
		segW := runewidth.StringWidth(seg)
		if used+segW > limit {
			break
		}
		b.WriteString(seg)
		used += segW
	}
	return b.String() + ellipsis
}

// OneLine collapses every run of whitespace, including newlines and tabs,
// into a single space and trims the ends.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func PadRight(s string, w int) string {
	if pad := w - VisibleWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func PadLeft(s string, w int) string {
	if pad := w - VisibleWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}
