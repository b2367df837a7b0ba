package textutil

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestVisibleWidth(t *testing.T) {
	setEastAsianWidth(t, false)
	cases := []struct {
		name string
		s    string
		want int
	}{
		{name: "ASCII", s: "ABC", want: 3},
		{name: "Hiragana", s: "„ÅÇ„ÅÑ„ÅÜ", want: 6},
		{name: "CombiningMark", s: "e\u0301", want: 1},
		{name: "EmojiSequence", s: "üë®üèΩ‚Äçüíª", want: 2},
		{name: "ANSIColored", s: "\x1b[31mËµ§\x1b[0m", want: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VisibleWidth(tc.s); got != tc.want {
				t.Fatalf("VisibleWidth(%q) = %d, want %d", tc.s, got, tc.want)
			}
		})
	}
}

func TestTruncateByWidth(t *testing.T) {
	setEastAsianWidth(t, false)
	cases := []struct {
		name     string
		s        string
		width    int
		want     string
		ellipsis string
	}{
		{name: "Japanese", s: "„Åì„Çì„Å´„Å°„ÅØ‰∏ñÁïå", width: 6, want: "„Åì„Çì‚Ä¶", ellipsis: "‚Ä¶"},
		{name: "EmojiSafe", s: "üë©‚Äç‚ù§Ô∏è‚Äçüíã‚Äçüë©„ÉÜ„Çπ„Éà", width: 4, want: "üë©‚Äç‚ù§Ô∏è‚Äçüíã‚Äçüë©‚Ä¶", ellipsis: "‚Ä¶"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateByWidth(tc.s, tc.width, tc.ellipsis); got != tc.want {
				t.Fatalf("TruncateByWidth(%q, %d) = %q, want %q", tc.s, tc.width, got, tc.want)
			}
			if width := VisibleWidth(tc.want); width > tc.width {
				t.Fatalf("result width %d exceeds limit %d", width, tc.width)
			}
		})
	}
}

func TestStripANSI(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "\x1b[31mRed\x1b[0m", want: "Red"},
		{in: "\x1b]8;;https://example.com\x07link\x1b]8;;\x07", want: "link"},
	}
	for _, tc := range cases {
		if got := StripANSI(tc.in); got != tc.want {
			t.Fatalf("StripANSI(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestPadHelpers(t *testing.T) {
	setEastAsianWidth(t, false)
	if got := VisibleWidth(PadRight("„ÅÇ", 6)); got != 6 {
		t.Fatalf("PadRight did not reach target width: %d", got)
	}
	if got := VisibleWidth(PadLeft("„ÉÜ„Çπ„Éà", 8)); got != 8 {
		t.Fatalf("PadLeft did not reach target width: %d", got)
	}
}

func setEastAsianWidth(t *testing.T, eastAsian bool) {
	t.Helper()
	runewidth.EastAsianWidth = eastAsian
	runewidth.DefaultCondition = runewidth.NewCondition()
}

func TestOneLine(t *testing.T) {
	got := OneLine("  public function add(\n\tint $a,\r\n  int $b\n)  ")
	if want := "public function add( int $a, int $b )"; got != want {
		t.Fatalf("OneLine = %q, want %q", got, want)
	}
}

func TestTruncateByWidthWithoutRoom(t *testing.T) {
	if got := TruncateByWidth("abcdef", 2, "..."); got != "ab" {
		t.Fatalf("ellipsis wider than the limit must be dropped, got %q", got)
	}
	if got := TruncateByWidth("abc", 0, "…"); got != "" {
		t.Fatalf("zero width should yield empty, got %q", got)
	}
}
