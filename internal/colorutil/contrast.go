package colorutil

import "math"

type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// Backgrounds assumed for light and dark terminal schemes.
var (
	LightBackground = RGB{249, 250, 251}
	DarkBackground  = RGB{17, 24, 39}
)

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// Luminance is the WCAG relative luminance of rgb.
func Luminance(rgb RGB) float64 {
	r := srgbToLinear(float64(rgb.R) / 255.0)
	g := srgbToLinear(float64(rgb.G) / 255.0)
	b := srgbToLinear(float64(rgb.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio is the WCAG contrast ratio of fg against bg, from 1 to 21.
func ContrastRatio(fg, bg RGB) float64 {
	l1 := Luminance(fg)
	l2 := Luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// AutoTextColor returns black or white, whichever reads better on bg.
func AutoTextColor(bg RGB) RGB {
	if ContrastRatio(Black, bg) >= ContrastRatio(White, bg) {
		return Black
	}
	return White
}

// Mix blends a toward b; t=0 yields a and t=1 yields b.
func Mix(a, b RGB, t float64) RGB {
	t = math.Max(0, math.Min(1, t))
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return RGB{ch(a.R, b.R), ch(a.G, b.G), ch(a.B, b.B)}
}

// EnsureContrast shifts fg toward black or white in small steps until it
// reaches minRatio against bg, keeping as much of the hue as possible.
func EnsureContrast(fg, bg RGB, minRatio float64) RGB {
	if minRatio <= 0 {
		minRatio = 4.5
	}
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	target := AutoTextColor(bg)
	for step := 1; step <= 20; step++ {
		candidate := Mix(fg, target, float64(step)/20)
		if ContrastRatio(candidate, bg) >= minRatio {
			return candidate
		}
	}
	return target
}
