package termcolor

import (
	"github.com/phyten/docblocker/internal/colorutil"
	"github.com/phyten/docblocker/internal/model"
)

// HeaderStyle is used for table headers.
func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

// LocationStyle is used for file:line cells.
func LocationStyle() Style {
	return Style{Dim: true}
}

// kindColors are the basic-8 and truecolor colours of each declaration kind.
var kindColors = map[model.Kind]struct {
	basic int
	rgb   colorutil.RGB
}{
	model.KindFunction: {basic: 4, rgb: colorutil.RGB{R: 59, G: 130, B: 246}},
	model.KindProperty: {basic: 2, rgb: colorutil.RGB{R: 34, G: 197, B: 94}},
	model.KindClass:    {basic: 5, rgb: colorutil.RGB{R: 168, G: 85, B: 247}},
}

// KindStyle colours a declaration kind. Light schemes get darker shades so
// the text keeps a 4.5:1 contrast against the background.
func KindStyle(kind model.Kind, scheme Scheme, profile Profile) Style {
	c, ok := kindColors[kind]
	if !ok {
		return Style{}
	}
	return colorStyle(c.basic, c.rgb, scheme, profile, true)
}

// placeholderColors cycles per tab stop.
var placeholderColors = []struct {
	basic int
	rgb   colorutil.RGB
}{
	{basic: 3, rgb: colorutil.RGB{R: 245, G: 158, B: 11}},
	{basic: 6, rgb: colorutil.RGB{R: 6, G: 182, B: 212}},
	{basic: 5, rgb: colorutil.RGB{R: 236, G: 72, B: 153}},
	{basic: 2, rgb: colorutil.RGB{R: 132, G: 204, B: 22}},
}

// PlaceholderStyle highlights the default text of tab stop n in snippet
// previews. Stops below 1 are rendered without colour.
func PlaceholderStyle(n int, scheme Scheme, profile Profile) Style {
	if n < 1 {
		return Style{}
	}
	c := placeholderColors[(n-1)%len(placeholderColors)]
	s := colorStyle(c.basic, c.rgb, scheme, profile, false)
	s.Underline = true
	return s
}

func colorStyle(basic int, rgb colorutil.RGB, scheme Scheme, profile Profile, bold bool) Style {
	bg := colorutil.DarkBackground
	if scheme == SchemeLight {
		bg = colorutil.LightBackground
	}
	fg := colorutil.EnsureContrast(rgb, bg, 4.5)
	switch profile {
	case ProfileTrueColor:
		v := [3]uint8{fg.R, fg.G, fg.B}
		return Style{Bold: bold, FGTrue: &v}
	case ProfileANSI256:
		idx := rgbToANSI256(fg.R, fg.G, fg.B)
		return Style{Bold: bold, FG256: &idx}
	default:
		color := basic
		return Style{Bold: bold, FGBasic: &color}
	}
}

func rgbToANSI256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (int(r)-8)*24/247
	}
	rr := int(r) * 5 / 255
	gg := int(g) * 5 / 255
	bb := int(b) * 5 / 255
	return 16 + 36*rr + 6*gg + bb
}
