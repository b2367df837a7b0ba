package termcolor

import (
	"strconv"
	"strings"
)

// Scheme is the terminal background the palette adapts its colours to.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeDark
	SchemeLight
)

func (s Scheme) String() string {
	switch s {
	case SchemeDark:
		return "dark"
	case SchemeLight:
		return "light"
	}
	return "unknown"
}

// ParseScheme accepts "dark" and "light" in any case.
func ParseScheme(raw string) (Scheme, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dark":
		return SchemeDark, true
	case "light":
		return SchemeLight, true
	}
	return SchemeUnknown, false
}

// DetectScheme prefers DOCBLOCKER_THEME, then the background index in
// COLORFGBG, then a TERM name containing "light". Anything else is dark.
func DetectScheme(env map[string]string) Scheme {
	if s, ok := ParseScheme(env["DOCBLOCKER_THEME"]); ok {
		return s
	}
	if bg, ok := colorfgbgBackground(env["COLORFGBG"]); ok {
		if bg >= 7 {
			return SchemeLight
		}
		return SchemeDark
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "light") {
		return SchemeLight
	}
	return SchemeDark
}

// colorfgbgBackground reads the last non-empty field of "fg;bg" or
// "fg;default;bg".
func colorfgbgBackground(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ";")
	for i := len(parts) - 1; i >= 0 && i >= len(parts)-2; i-- {
		field := strings.TrimSpace(parts[i])
		if field == "" {
			continue
		}
		bg, err := strconv.Atoi(field)
		if err != nil || bg < 0 {
			return 0, false
		}
		return bg, true
	}
	return 0, false
}
